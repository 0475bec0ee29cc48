package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tsvoboda/inkwell/internal/apperr"
	"github.com/tsvoboda/inkwell/internal/catalog"
	"github.com/tsvoboda/inkwell/internal/checksum"
	"github.com/tsvoboda/inkwell/internal/frontmatter"
	"github.com/tsvoboda/inkwell/internal/models"
	"github.com/tsvoboda/inkwell/internal/storage"
)

// DocumentDetail is the full representation of a document.
type DocumentDetail struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Date        time.Time      `json:"date"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Keywords    []string       `json:"keywords"`
	Description string         `json:"description,omitempty"`
	Draft       bool           `json:"draft"`
	Body        string         `json:"body"`
	Content     string         `json:"content"`
	Format      string         `json:"format"`
	Extra       map[string]any `json:"extra,omitempty"`
	Checksum    string         `json:"checksum"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Draft     bool      `json:"draft"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finding is one problem reported by Audit. Kind is "read", "parse", or
// "validate".
type Finding struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Service coordinates storage and catalog operations.
type Service struct {
	store  storage.Provider
	db     *catalog.DB
	strict bool
}

// NewService creates a new document service. In strict mode writes are
// rejected when the front matter is missing required fields or the body is
// empty; content that does not parse at all is rejected in either mode.
func NewService(store storage.Provider, db *catalog.DB, strict bool) *Service {
	return &Service{store: store, db: db, strict: strict}
}

// GetDocument reads a document from storage and parses it into a detail.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return buildDetail(path, data)
}

// CreateDocument writes a new document and catalogs it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.check(path, content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.CatalogDocument(path, content); err != nil && !errors.Is(err, apperr.ErrInvalid) {
		return nil, err
	}
	return buildDetail(path, content)
}

// UpdateDocument writes updated content with optimistic concurrency: a
// non-empty ifMatch must equal the SHA-256 checksum of the current bytes.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.check(path, content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.CatalogDocument(path, content); err != nil && !errors.Is(err, apperr.ErrInvalid) {
		return nil, err
	}
	return buildDetail(path, content)
}

// DeleteDocument removes a document from storage and catalog.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListDocuments returns one page of documents from the catalog.
func (s *Service) ListDocuments(_ context.Context, opts catalog.ListOptions) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(opts)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:      r.Path,
			Title:     r.Title,
			Date:      r.Date,
			Category:  r.Category,
			Tags:      nonNilSlice(r.Tags),
			Draft:     r.Draft,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Taxonomies returns term counts for every taxonomy kind.
func (s *Service) Taxonomies(_ context.Context) (map[string][]catalog.TermCount, error) {
	out := make(map[string][]catalog.TermCount, 3)
	for _, kind := range catalog.Kinds() {
		tc, err := s.db.Taxonomy(kind)
		if err != nil {
			return nil, err
		}
		out[kind] = nonNilSlice(tc)
	}
	return out, nil
}

// Taxonomy returns term counts for one taxonomy kind.
func (s *Service) Taxonomy(_ context.Context, kind string) ([]catalog.TermCount, error) {
	if !catalog.ValidKind(kind) {
		return nil, apperr.Invalid(fmt.Errorf("unknown taxonomy kind: %s", kind))
	}
	return s.db.Taxonomy(kind)
}

// DocumentsWithTerm returns the paths of documents carrying a term.
func (s *Service) DocumentsWithTerm(_ context.Context, kind, term string) ([]string, error) {
	if !catalog.ValidKind(kind) {
		return nil, apperr.Invalid(fmt.Errorf("unknown taxonomy kind: %s", kind))
	}
	return s.db.DocumentsWithTerm(kind, term)
}

// CatalogDocument parses data and upserts it into the catalog.
// Exported so that server wiring can reuse it.
func (s *Service) CatalogDocument(path string, data []byte) error {
	return catalog.CatalogFile(s.db, path, data, time.Now())
}

// Audit walks every document under the content root and reports files whose
// front matter is missing, fails to parse or validate, or whose body is
// empty. A clean tree returns no findings.
func (s *Service) Audit(_ context.Context) ([]Finding, error) {
	return Audit(s.store)
}

// Audit is the store-level form of Service.Audit, usable without a catalog.
func Audit(store storage.Provider) ([]Finding, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}
	var findings []Finding
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			findings = append(findings, Finding{Path: m.Path, Kind: "read", Message: err.Error()})
			continue
		}
		parsed, err := frontmatter.Parse(data)
		if err != nil {
			findings = append(findings, Finding{Path: m.Path, Kind: "parse", Message: err.Error()})
			continue
		}
		if parsed.Format == frontmatter.FormatNone {
			findings = append(findings, Finding{Path: m.Path, Kind: "validate", Message: "missing front matter"})
			continue
		}
		doc := models.Document{Path: m.Path, FrontMatter: parsed.FrontMatter, Body: parsed.Body}
		if err := doc.Validate(); err != nil {
			findings = append(findings, Finding{Path: m.Path, Kind: "validate", Message: err.Error()})
		}
	}
	return findings, nil
}

// check enforces write-time integrity: content must parse in either mode,
// and in strict mode the front matter must be present and valid.
func (s *Service) check(path string, content []byte) error {
	parsed, err := frontmatter.Parse(content)
	if err != nil {
		return apperr.Invalid(err)
	}
	if !s.strict {
		return nil
	}
	if parsed.Format == frontmatter.FormatNone {
		return apperr.Invalid(errors.New("missing front matter"))
	}
	doc := models.Document{Path: path, FrontMatter: parsed.FrontMatter, Body: parsed.Body}
	return apperr.Invalid(doc.Validate())
}

// buildDetail constructs a DocumentDetail from raw data without re-reading
// the file.
func buildDetail(path string, data []byte) (*DocumentDetail, error) {
	parsed, err := frontmatter.Parse(data)
	if err != nil {
		return nil, apperr.Invalid(err)
	}
	fm := parsed.FrontMatter
	return &DocumentDetail{
		Path:        path,
		Title:       fm.Title,
		Date:        fm.Date,
		Category:    fm.Category,
		Tags:        nonNilSlice(fm.Tags),
		Keywords:    nonNilSlice(fm.Keywords),
		Description: fm.Description,
		Draft:       fm.Draft,
		Body:        parsed.Body,
		Content:     string(data),
		Format:      string(parsed.Format),
		Extra:       fm.Extra,
		Checksum:    checksum.Sum(data),
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
