// docwatch tracks a single document to completion and prints every progress
// update. Manual end-to-end testing tool for the sync stack.
// Usage: go run ./cmd/docwatch -api https://api.briefhub.io -doc <id>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briefhub/docsync/internal/api"
	"github.com/briefhub/docsync/internal/auth"
	"github.com/briefhub/docsync/internal/notify"
	"github.com/briefhub/docsync/internal/tracker"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "document backend base URL")
	docID := flag.String("doc", "", "document ID to track (required)")
	token := flag.String("token", "", "bearer token (default: token file)")
	tokenPath := flag.String("token-path", "", "token file path (default: XDG data dir)")
	translation := flag.Bool("translation", false, "track the translation task instead of processing")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *docID == "" {
		fmt.Fprintln(os.Stderr, "docwatch: -doc is required")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	var tokens auth.Source
	if *token != "" {
		tokens = auth.StaticToken(*token)
	} else {
		tokens = auth.NewFileStore(*tokenPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := api.NewClient(*apiURL, tokens, api.WithLogger(logger))

	doc, err := client.GetDocument(ctx, *docID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docwatch: fetch document: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("document %s (%s): status=%s\n", doc.ID, doc.Name, doc.Status)

	cfg := tracker.DefaultConfig()
	cfg.APIBaseURL = *apiURL

	notifier := notify.New()
	registry := tracker.New(cfg, tokens, client, nil, notifier, logger)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		registry.Close(closeCtx)
	}()

	changes, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	if *translation {
		registry.ConnectTranslation(doc)
	} else {
		registry.Connect(doc)
	}

	var lastPrinted string
	for {
		select {
		case <-ctx.Done():
			fmt.Println("interrupted")
			return
		case <-changes:
		}

		u := registry.Status(doc.ID)
		if u == nil {
			// Entry removed after its grace period: tracking is done.
			if lastPrinted != "" {
				fmt.Println("done")
				return
			}
			continue
		}

		line := fmt.Sprintf("%3d%%  %-12s %s", u.Percent(), u.StatusText(), u.Stage())
		if line != lastPrinted {
			fmt.Println(line)
			lastPrinted = line
		}
		if u.Failed() && u.ErrorDetail() != "" {
			fmt.Printf("error: %s\n", u.ErrorDetail())
		}
	}
}
