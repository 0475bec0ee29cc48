package docservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsvoboda/inkwell/internal/apperr"
	"github.com/tsvoboda/inkwell/internal/catalog"
	"github.com/tsvoboda/inkwell/internal/checksum"
	"github.com/tsvoboda/inkwell/internal/storage"
	"github.com/tsvoboda/inkwell/internal/testutil"
)

const validDoc = `---
title: Task Queues
date: 2026-01-15
category: python
tags:
  - celery
keywords:
  - queues
---
Intro paragraph.
`

func testService(t *testing.T, strict bool) (*Service, storage.Provider, *catalog.DB) {
	t.Helper()
	_, store := testutil.TestContentDir(t)
	db := testutil.TestCatalog(t)
	return NewService(store, db, strict), store, db
}

func TestCreateDocument_OK(t *testing.T) {
	svc, store, db := testService(t, true)

	detail, err := svc.CreateDocument(context.Background(), "posts/queues.md", []byte(validDoc))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if detail.Title != "Task Queues" || detail.Category != "python" {
		t.Errorf("detail = %+v", detail)
	}
	if detail.Checksum != checksum.Sum([]byte(validDoc)) {
		t.Errorf("checksum = %q", detail.Checksum)
	}
	if detail.Format != "yaml" {
		t.Errorf("format = %q", detail.Format)
	}
	if !strings.Contains(detail.Body, "Intro paragraph.") {
		t.Errorf("body = %q", detail.Body)
	}

	if _, err := store.Read("posts/queues.md"); err != nil {
		t.Errorf("file not written: %v", err)
	}
	row, _ := db.GetDocument("posts/queues.md")
	if row == nil || row.Title != "Task Queues" {
		t.Errorf("catalog row = %+v", row)
	}
	paths, _ := db.DocumentsWithTerm(catalog.TaxonomyTag, "celery")
	if len(paths) != 1 {
		t.Errorf("tag celery paths = %v", paths)
	}
}

func TestCreateDocument_AlreadyExists(t *testing.T) {
	svc, _, _ := testService(t, true)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "a.md", []byte(validDoc)); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateDocument(ctx, "a.md", []byte(validDoc))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateDocument_StrictRejectsMissingFields(t *testing.T) {
	svc, store, _ := testService(t, true)

	doc := "---\ntitle: No Category\ndate: 2026-01-15\n---\nBody.\n"
	_, err := svc.CreateDocument(context.Background(), "bad.md", []byte(doc))
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "category") {
		t.Errorf("error = %q, want mention of category", err)
	}
	if _, readErr := store.Read("bad.md"); readErr == nil {
		t.Error("rejected document must not be written")
	}
}

func TestCreateDocument_StrictRejectsEmptyBody(t *testing.T) {
	svc, _, _ := testService(t, true)

	doc := "---\ntitle: Empty\ndate: 2026-01-15\ncategory: go\n---\n"
	_, err := svc.CreateDocument(context.Background(), "empty.md", []byte(doc))
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "body") {
		t.Errorf("error = %q, want mention of body", err)
	}
}

func TestCreateDocument_UnparseableRejectedInLaxMode(t *testing.T) {
	svc, _, _ := testService(t, false)

	_, err := svc.CreateDocument(context.Background(), "b.md", []byte("---\ntitle: Unterminated\n"))
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestCreateDocument_LaxAllowsMissingFields(t *testing.T) {
	svc, _, db := testService(t, false)

	doc := "---\ntitle: Sketch\n---\nJust a draft idea.\n"
	if _, err := svc.CreateDocument(context.Background(), "sketch.md", []byte(doc)); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	row, _ := db.GetDocument("sketch.md")
	if row == nil || row.Title != "Sketch" {
		t.Errorf("catalog row = %+v", row)
	}
}

func TestUpdateDocument_IfMatch(t *testing.T) {
	svc, _, _ := testService(t, true)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "up.md", []byte(validDoc)); err != nil {
		t.Fatal(err)
	}
	updated := strings.Replace(validDoc, "Intro paragraph.", "Rewritten intro.", 1)

	_, err := svc.UpdateDocument(ctx, "up.md", []byte(updated), "wrong-checksum")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	detail, err := svc.UpdateDocument(ctx, "up.md", []byte(updated), checksum.Sum([]byte(validDoc)))
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if !strings.Contains(detail.Body, "Rewritten intro.") {
		t.Errorf("body = %q", detail.Body)
	}

	// No If-Match skips the concurrency check.
	if _, err := svc.UpdateDocument(ctx, "up.md", []byte(validDoc), ""); err != nil {
		t.Fatalf("UpdateDocument without If-Match: %v", err)
	}
}

func TestUpdateDocument_NotFound(t *testing.T) {
	svc, _, _ := testService(t, true)
	_, err := svc.UpdateDocument(context.Background(), "nope.md", []byte(validDoc), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	svc, _, _ := testService(t, true)
	_, err := svc.GetDocument(context.Background(), "missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDocument_ParseErrorSurfaces(t *testing.T) {
	svc, store, _ := testService(t, true)

	// Dropped onto disk outside the service, e.g. by a careless editor.
	if err := store.Write("broken.md", []byte("---\ntitle: Broken\n")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.GetDocument(context.Background(), "broken.md")
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	svc, store, db := testService(t, true)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "del.md", []byte(validDoc)); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteDocument(ctx, "del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := store.Read("del.md"); err == nil {
		t.Error("file should be gone")
	}
	row, _ := db.GetDocument("del.md")
	if row != nil {
		t.Errorf("catalog row should be gone, got %+v", row)
	}

	if err := svc.DeleteDocument(ctx, "del.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestTaxonomy_UnknownKind(t *testing.T) {
	svc, _, _ := testService(t, true)
	_, err := svc.Taxonomy(context.Background(), "colors")
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	_, err = svc.DocumentsWithTerm(context.Background(), "colors", "red")
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestAudit(t *testing.T) {
	svc, store, _ := testService(t, true)

	_ = store.Write("good.md", []byte(validDoc))
	_ = store.Write("broken.md", []byte("---\ntitle: Broken\n"))
	_ = store.Write("bare.md", []byte("# No front matter\nJust text.\n"))
	_ = store.Write("hollow.md", []byte("---\ntitle: Hollow\ndate: 2026-01-01\ncategory: go\n---\n"))

	findings, err := svc.Audit(context.Background())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	byPath := map[string]Finding{}
	for _, f := range findings {
		byPath[f.Path] = f
	}
	if _, ok := byPath["good.md"]; ok {
		t.Error("good.md should have no finding")
	}
	if f := byPath["broken.md"]; f.Kind != "parse" {
		t.Errorf("broken.md finding = %+v, want kind parse", f)
	}
	if f := byPath["bare.md"]; f.Kind != "validate" || !strings.Contains(f.Message, "front matter") {
		t.Errorf("bare.md finding = %+v", f)
	}
	if f := byPath["hollow.md"]; f.Kind != "validate" || !strings.Contains(f.Message, "body") {
		t.Errorf("hollow.md finding = %+v", f)
	}
}
