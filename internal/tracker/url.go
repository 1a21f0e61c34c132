package tracker

import (
	"net/url"
	"strings"
)

// wsURL derives the progress WebSocket URL for a document from the HTTP API
// base URL: http(s) becomes ws(s) and the token rides as a query parameter.
func wsURL(base, documentID, token string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimSuffix(base, "/")

	return base + "/api/v1/documents/ws/" + url.PathEscape(documentID) +
		"?token=" + url.QueryEscape(token)
}
