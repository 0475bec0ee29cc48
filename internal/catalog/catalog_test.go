package catalog

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "inkwell-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM terms`).Scan(&count); err != nil {
		t.Fatalf("terms table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{
		Path:      "posts/hello.md",
		Title:     "Hello World",
		Date:      day(15),
		Category:  "essays",
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertDocument(row, []Term{{TaxonomyTag, "go"}, {TaxonomyKeyword, "golang"}}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.GetChecksum("posts/hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{
		Path: "a.md", Title: "A", Date: day(1), Category: "go",
		Draft: true, Checksum: "1", UpdatedAt: time.Now(),
	}, nil)

	d, err := db.GetDocument("a.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if d == nil {
		t.Fatal("expected a row")
	}
	if d.Title != "A" || d.Category != "go" || !d.Draft {
		t.Errorf("row = %+v", d)
	}
	if !d.Date.Equal(day(1)) {
		t.Errorf("date = %v, want %v", d.Date, day(1))
	}

	missing, err := db.GetDocument("nope.md")
	if err != nil {
		t.Fatalf("GetDocument missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing path, got %+v", missing)
	}
}

func TestUpsertReplacesTerms(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{Path: "up.md", Title: "Old", Checksum: "1", UpdatedAt: time.Now()}
	_ = db.UpsertDocument(row, []Term{{TaxonomyTag, "old"}})

	row.Title = "New"
	row.Checksum = "2"
	_ = db.UpsertDocument(row, []Term{{TaxonomyTag, "new"}})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	paths, _ := db.DocumentsWithTerm(TaxonomyTag, "old")
	if len(paths) != 0 {
		t.Error("old term should be removed on upsert")
	}
	paths, _ = db.DocumentsWithTerm(TaxonomyTag, "new")
	if len(paths) != 1 {
		t.Error("new term should exist")
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "del.md", Checksum: "x", UpdatedAt: time.Now()}, []Term{{TaxonomyTag, "t"}})

	if err := db.DeleteDocument("del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted document still has checksum %q", cs)
	}
	paths, _ := db.DocumentsWithTerm(TaxonomyTag, "t")
	if len(paths) != 0 {
		t.Errorf("expected 0 paths after delete, got %d", len(paths))
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func seedListFixtures(t *testing.T, db *DB) {
	t.Helper()
	now := time.Now()
	docs := []struct {
		row   DocumentRow
		terms []Term
	}{
		{DocumentRow{Path: "about.md", Title: "About", Date: day(1), Category: "pages", Checksum: "a", UpdatedAt: now}, nil},
		{DocumentRow{Path: "posts/django.md", Title: "Django Tasks", Date: day(10), Category: "python", Checksum: "b", UpdatedAt: now},
			[]Term{{TaxonomyTag, "python"}, {TaxonomyTag, "celery"}, {TaxonomyKeyword, "queues"}}},
		{DocumentRow{Path: "posts/gin.md", Title: "Gin API", Date: day(20), Category: "go", Checksum: "c", UpdatedAt: now},
			[]Term{{TaxonomyTag, "go"}, {TaxonomyKeyword, "rest"}}},
		{DocumentRow{Path: "posts/wip.md", Title: "WIP", Date: day(25), Category: "go", Draft: true, Checksum: "d", UpdatedAt: now},
			[]Term{{TaxonomyTag, "go"}}},
	}
	for _, d := range docs {
		if err := db.UpsertDocument(d.row, d.terms); err != nil {
			t.Fatalf("seed %s: %v", d.row.Path, err)
		}
	}
}

func TestListDocuments_DefaultSort(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	rows, total, err := db.ListDocuments(ListOptions{})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(rows) != 4 {
		t.Fatalf("len = %d, want 4", len(rows))
	}
	// Newest first.
	if rows[0].Path != "posts/wip.md" || rows[3].Path != "about.md" {
		t.Errorf("order = %v", pathsOf(rows))
	}
}

func TestListDocuments_Pagination(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	rows, total, err := db.ListDocuments(ListOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Path != "posts/gin.md" || rows[1].Path != "posts/django.md" {
		t.Errorf("page = %v", pathsOf(rows))
	}
}

func TestListDocuments_Filters(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	rows, total, err := db.ListDocuments(ListOptions{Category: "go"})
	if err != nil {
		t.Fatalf("category filter: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("category filter: total=%d rows=%v", total, pathsOf(rows))
	}

	rows, _, err = db.ListDocuments(ListOptions{Tag: "celery"})
	if err != nil {
		t.Fatalf("tag filter: %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "posts/django.md" {
		t.Errorf("tag filter = %v", pathsOf(rows))
	}

	rows, _, err = db.ListDocuments(ListOptions{Keyword: "rest"})
	if err != nil {
		t.Fatalf("keyword filter: %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "posts/gin.md" {
		t.Errorf("keyword filter = %v", pathsOf(rows))
	}

	noDrafts := false
	rows, _, err = db.ListDocuments(ListOptions{Draft: &noDrafts})
	if err != nil {
		t.Fatalf("draft filter: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("draft=false filter = %v", pathsOf(rows))
	}

	onlyDrafts := true
	rows, _, err = db.ListDocuments(ListOptions{Draft: &onlyDrafts})
	if err != nil {
		t.Fatalf("draft filter: %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "posts/wip.md" {
		t.Errorf("draft=true filter = %v", pathsOf(rows))
	}
}

func TestListDocuments_AttachesTags(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	rows, _, err := db.ListDocuments(ListOptions{Category: "python"})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", pathsOf(rows))
	}
	tags := rows[0].Tags
	if len(tags) != 2 || tags[0] != "python" || tags[1] != "celery" {
		t.Errorf("tags = %v, want [python celery]", tags)
	}
}

func TestListDocuments_SortTitle(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	rows, _, err := db.ListDocuments(ListOptions{Sort: "title"})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if rows[0].Title != "About" || rows[len(rows)-1].Title != "WIP" {
		t.Errorf("title order = %v", pathsOf(rows))
	}
}

func TestTaxonomy(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	tags, err := db.Taxonomy(TaxonomyTag)
	if err != nil {
		t.Fatalf("Taxonomy tag: %v", err)
	}
	// go appears twice, celery and python once each.
	if len(tags) != 3 {
		t.Fatalf("tags = %v, want 3 terms", tags)
	}
	if tags[0].Term != "go" || tags[0].Count != 2 {
		t.Errorf("top tag = %+v, want go/2", tags[0])
	}

	cats, err := db.Taxonomy(TaxonomyCategory)
	if err != nil {
		t.Fatalf("Taxonomy category: %v", err)
	}
	if len(cats) != 3 || cats[0].Term != "go" || cats[0].Count != 2 {
		t.Errorf("categories = %v", cats)
	}

	if _, err := db.Taxonomy("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestDocumentsWithTerm_Category(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	paths, err := db.DocumentsWithTerm(TaxonomyCategory, "go")
	if err != nil {
		t.Fatalf("DocumentsWithTerm: %v", err)
	}
	if len(paths) != 2 || paths[0] != "posts/gin.md" || paths[1] != "posts/wip.md" {
		t.Errorf("paths = %v", paths)
	}

	if _, err := db.DocumentsWithTerm("bogus", "x"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	seedListFixtures(t, db)

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(cs) != 4 || cs["about.md"] != "a" {
		t.Errorf("checksums = %v", cs)
	}
}

func pathsOf(rows []DocumentRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Path
	}
	return out
}
