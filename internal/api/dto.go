package api

import (
	"github.com/tsvoboda/inkwell/internal/catalog"
	"github.com/tsvoboda/inkwell/internal/docservice"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"posts/hello-world.md" validate:"required"`
	Content string `json:"content" example:"---\ntitle: Hello\n---\nBody" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"---\ntitle: Hello\n---\nUpdated" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// TermCount is one taxonomy term with its document count (aliased from the catalog).
type TermCount = catalog.TermCount

// TaxonomiesResponse maps every taxonomy kind to its term counts.
type TaxonomiesResponse struct {
	Taxonomies map[string][]TermCount `json:"taxonomies" validate:"required"`
}

// TaxonomyResponse wraps the terms of a single taxonomy kind.
type TaxonomyResponse struct {
	Kind  string      `json:"kind" example:"tag" validate:"required"`
	Terms []TermCount `json:"terms" validate:"required"`
}

// TermDocumentsResponse lists the documents carrying one taxonomy term.
type TermDocumentsResponse struct {
	Documents []string `json:"documents" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"diagram.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/diagram.png" validate:"required"`
}
