package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tsvoboda/inkwell/internal/catalog"
	"github.com/tsvoboda/inkwell/internal/storage"
	"github.com/tsvoboda/inkwell/internal/testutil"
)

const validDoc = `---
title: Task Queues
date: 2026-01-15
category: python
tags: [python, celery]
---

Celery is a task queue.
`

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()
	_, store := testutil.TestContentDir(t)
	db := testutil.TestCatalog(t)
	return New(store, db), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "create_document":
		result, err = srv.createDocument(ctx, req)
	case "get_taxonomy":
		result, err = srv.getTaxonomy(ctx, req)
	case "get_document_contract":
		result, err = srv.getDocumentContract(ctx, req)
	case "upload_asset":
		result, err = srv.uploadAsset(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadDocument(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_document", map[string]interface{}{
		"path":    "posts/queues.md",
		"content": validDoc,
	})
	text := resultText(r)
	if text != "created: posts/queues.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{
		"path": "posts/queues.md",
	})
	if resultText(r) != validDoc {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestCreateDocument_MissingCategory(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_document", map[string]interface{}{
		"path":    "posts/thin.md",
		"content": "---\ntitle: Thin\ndate: 2026-01-15\n---\n\nBody.\n",
	})
	if !r.IsError {
		t.Fatal("expected error for missing category")
	}
	if !strings.Contains(resultText(r), "category") {
		t.Errorf("error = %q, want category mention", resultText(r))
	}
}

func TestCreateDocument_NoFrontMatter(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_document", map[string]interface{}{
		"path":    "bare.md",
		"content": "# Bare\nNo metadata here.",
	})
	if !r.IsError {
		t.Fatal("expected error for missing front matter")
	}
	if !strings.Contains(resultText(r), "front matter") {
		t.Errorf("error = %q", resultText(r))
	}
	// Rejected content must not be written.
	if _, err := store.Read("bare.md"); err == nil {
		t.Error("rejected document was written")
	}
}

func TestCreateDocument_Duplicate(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "create_document", map[string]interface{}{
		"path": "dup.md", "content": validDoc,
	})
	r := callTool(t, srv, "create_document", map[string]interface{}{
		"path": "dup.md", "content": validDoc,
	})
	if !r.IsError {
		t.Error("expected error for duplicate create")
	}
}

func TestListDocuments(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("a.md", []byte("a"))
	_ = store.Write("b.md", []byte("b"))

	r := callTool(t, srv, "list_documents", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "a.md") || !strings.Contains(text, "b.md") {
		t.Errorf("list = %q", text)
	}
}

func TestReadDocumentMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestGetTaxonomy(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_document", map[string]interface{}{
		"path": "posts/queues.md", "content": validDoc,
	})

	r := callTool(t, srv, "get_taxonomy", map[string]interface{}{"kind": "tag"})
	if r.IsError {
		t.Fatalf("get_taxonomy error: %s", resultText(r))
	}
	var terms []catalog.TermCount
	if err := json.Unmarshal([]byte(resultText(r)), &terms); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(terms) != 2 {
		t.Errorf("terms = %#v, want celery and python", terms)
	}

	r = callTool(t, srv, "get_taxonomy", map[string]interface{}{"kind": "bogus"})
	if !r.IsError {
		t.Error("expected error for unknown kind")
	}
}

func TestGetDocumentContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_document_contract", map[string]interface{}{})
	text := resultText(r)
	for _, want := range []string{"title", "date", "category", "front matter"} {
		if !strings.Contains(strings.ToLower(text), want) {
			t.Errorf("contract missing %q", want)
		}
	}
}

func TestUploadAsset_DataURI(t *testing.T) {
	srv, store := testServer(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake image payload")...)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	r := callTool(t, srv, "upload_asset", map[string]interface{}{
		"url":      uri,
		"filename": "cover.png",
	})
	if r.IsError {
		t.Fatalf("upload error: %s", resultText(r))
	}
	var out uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.SavedPath != "/attachments/cover.png" {
		t.Errorf("savedPath = %q", out.SavedPath)
	}
	if out.MarkdownImage != "![cover.png](/attachments/cover.png)" {
		t.Errorf("markdownImage = %q", out.MarkdownImage)
	}
	if out.Size != int64(len(png)) {
		t.Errorf("size = %d, want %d", out.Size, len(png))
	}

	data, err := store.Read("attachments/cover.png")
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != string(png) {
		t.Error("stored content mismatch")
	}
}

func TestUploadAsset_RejectsMismatchedContent(t *testing.T) {
	srv, _ := testServer(t)

	// Plain text declared as PNG fails the magic-byte check.
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("just text"))
	r := callTool(t, srv, "upload_asset", map[string]interface{}{
		"url":      uri,
		"filename": "fake.png",
	})
	if !r.IsError {
		t.Error("expected error for mismatched content")
	}
}
