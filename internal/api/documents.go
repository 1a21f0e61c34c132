package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/briefhub/docsync/internal/model"
)

// APIDocument is the wire representation of a document.
type APIDocument struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	FolderID    string              `json:"folder_id,omitempty"`
	Status      string              `json:"status"`
	PageCount   int                 `json:"page_count"`
	SizeBytes   int64               `json:"size_bytes"`
	Error       *APIProcessingError `json:"error,omitempty"`
	Translation *APITranslationTask `json:"translation,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// APIProcessingError is the wire form of a processing failure.
type APIProcessingError struct {
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// APITranslationTask is the wire form of a translation task.
type APITranslationTask struct {
	TaskID         string `json:"task_id"`
	TargetLanguage string `json:"target_language"`
	Status         string `json:"status"`
}

// ToModel converts the wire document to the domain type.
func (d *APIDocument) ToModel() model.Document {
	doc := model.Document{
		ID:        d.ID,
		Name:      d.Name,
		FolderID:  d.FolderID,
		Status:    model.DocumentStatus(d.Status),
		PageCount: d.PageCount,
		SizeBytes: d.SizeBytes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Error != nil {
		doc.Error = &model.ProcessingError{
			Message:   d.Error.Message,
			Type:      d.Error.Type,
			Timestamp: d.Error.Timestamp,
		}
	}
	if d.Translation != nil {
		doc.Translation = &model.TranslationTask{
			TaskID:         d.Translation.TaskID,
			TargetLanguage: d.Translation.TargetLanguage,
			Status:         model.TranslationStatus(d.Translation.Status),
		}
	}
	return doc
}

// GetDocument fetches a single document by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (model.Document, error) {
	var wire APIDocument
	path := "/api/v1/documents/" + url.PathEscape(id)
	if err := c.get(ctx, path, nil, &wire); err != nil {
		return model.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return wire.ToModel(), nil
}

// DocumentsResponse is one page of a document listing.
type DocumentsResponse struct {
	Documents []APIDocument `json:"documents"`
	Cursor    string        `json:"cursor"`
}

// ListDocumentsOptions filters a document listing.
type ListDocumentsOptions struct {
	Status   string // Filter by processing status, empty for all
	FolderID string // Filter by folder, empty for all
	Limit    int    // Page size, 0 for server default
	Cursor   string // Continuation cursor from a previous page
}

// ListDocuments fetches one page of documents.
func (c *Client) ListDocuments(ctx context.Context, opts ListDocumentsOptions) (*DocumentsResponse, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.FolderID != "" {
		query.Set("folder_id", opts.FolderID)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var resp DocumentsResponse
	if err := c.get(ctx, "/api/v1/documents", query, &resp); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return &resp, nil
}

// ListAllDocuments pages through the full listing for the given filter.
func (c *Client) ListAllDocuments(ctx context.Context, opts ListDocumentsOptions) ([]model.Document, error) {
	var out []model.Document

	for {
		resp, err := c.ListDocuments(ctx, opts)
		if err != nil {
			return nil, err
		}
		for i := range resp.Documents {
			out = append(out, resp.Documents[i].ToModel())
		}

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	c.logger.Debug("listed documents", "count", len(out), "status", opts.Status)
	return out, nil
}
