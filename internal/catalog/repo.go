package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Taxonomy kinds. Category lives on the document row itself; tags and
// keywords are stored as terms.
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "tag"
	TaxonomyKeyword  = "keyword"
)

// Kinds returns the supported taxonomy kinds in display order.
func Kinds() []string {
	return []string{TaxonomyCategory, TaxonomyTag, TaxonomyKeyword}
}

// ValidKind reports whether kind names a supported taxonomy.
func ValidKind(kind string) bool {
	switch kind {
	case TaxonomyCategory, TaxonomyTag, TaxonomyKeyword:
		return true
	}
	return false
}

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string
	Title     string
	Date      time.Time
	Category  string
	Draft     bool
	Checksum  string
	UpdatedAt time.Time
	// Tags is filled by ListDocuments from the terms table; it is not a
	// column and is ignored by UpsertDocument.
	Tags []string
}

// Term attaches one taxonomy term to a document.
type Term struct {
	Taxonomy string
	Term     string
}

// TermCount is one taxonomy term with the number of documents carrying it.
type TermCount struct {
	Term  string
	Count int
}

// ListOptions control filtering, ordering, and pagination of ListDocuments.
type ListOptions struct {
	Limit    int
	Offset   int
	Category string
	Tag      string
	Keyword  string
	// Draft filters on the draft flag when non-nil.
	Draft *bool
	// Sort is one of date (default, newest first), title, path, updated_at.
	Sort string
}

// UpsertDocument inserts or replaces a document row and its terms within a
// transaction. The document's previous terms are removed first.
func (db *DB) UpsertDocument(row DocumentRow, terms []Term) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, date, category, draft, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			date       = excluded.date,
			category   = excluded.category,
			draft      = excluded.draft,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, row.Path, row.Title, row.Date, row.Category, row.Draft, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert document: %w", err)
	}

	// Replace terms: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM terms WHERE path = ?`, row.Path)
	if len(terms) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO terms (path, taxonomy, term) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare term insert: %w", err)
		}
		defer stmt.Close()
		for _, t := range terms {
			if _, err := stmt.Exec(row.Path, t.Taxonomy, t.Term); err != nil {
				return fmt.Errorf("catalog: insert term: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document row and its terms.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM terms WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetDocument returns the catalogued row for path, or nil when absent.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, title, date, category, draft, checksum, updated_at
		FROM documents WHERE path = ?
	`, path)
	var d DocumentRow
	err := row.Scan(&d.Path, &d.Title, &d.Date, &d.Category, &d.Draft, &d.Checksum, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get document: %w", err)
	}
	return &d, nil
}

// GetChecksum returns the stored checksum for a document, or empty string
// when the path is not catalogued.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: get checksum: %w", err)
	}
	return cs, nil
}

// ListDocuments returns one page of documents plus the total count before
// pagination. Limit defaults to 50 and is capped at 500.
func (db *DB) ListDocuments(opts ListOptions) ([]DocumentRow, int, error) {
	where, args := listFilters(opts)
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count documents: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT path, title, date, category, draft, checksum, updated_at FROM documents` +
		cond + ` ORDER BY ` + orderClause(opts.Sort) + ` LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.Path, &d.Title, &d.Date, &d.Category, &d.Draft, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := db.attachTags(out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// attachTags fills the Tags field of each row from the terms table in one
// batch query.
func (db *DB) attachTags(docs []DocumentRow) error {
	if len(docs) == 0 {
		return nil
	}
	placeholders := make([]string, len(docs))
	args := make([]any, 0, len(docs)+1)
	args = append(args, TaxonomyTag)
	for i, d := range docs {
		placeholders[i] = "?"
		args = append(args, d.Path)
	}
	rows, err := db.conn.Query(
		`SELECT path, term FROM terms WHERE taxonomy = ? AND path IN (`+strings.Join(placeholders, ",")+`) ORDER BY rowid`,
		args...)
	if err != nil {
		return fmt.Errorf("catalog: attach tags: %w", err)
	}
	defer rows.Close()

	byPath := make(map[string][]string, len(docs))
	for rows.Next() {
		var p, term string
		if err := rows.Scan(&p, &term); err != nil {
			return err
		}
		byPath[p] = append(byPath[p], term)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range docs {
		docs[i].Tags = byPath[docs[i].Path]
	}
	return nil
}

func listFilters(opts ListOptions) ([]string, []any) {
	var where []string
	var args []any
	if opts.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, opts.Category)
	}
	if opts.Tag != "" {
		where = append(where, `path IN (SELECT path FROM terms WHERE taxonomy = 'tag' AND term = ?)`)
		args = append(args, opts.Tag)
	}
	if opts.Keyword != "" {
		where = append(where, `path IN (SELECT path FROM terms WHERE taxonomy = 'keyword' AND term = ?)`)
		args = append(args, opts.Keyword)
	}
	if opts.Draft != nil {
		where = append(where, `draft = ?`)
		args = append(args, *opts.Draft)
	}
	return where, args
}

// orderClause maps a sort name to an ORDER BY expression. Unknown values
// fall back to the default date ordering.
func orderClause(sort string) string {
	switch sort {
	case "title":
		return `title COLLATE NOCASE ASC, path ASC`
	case "path":
		return `path ASC`
	case "updated_at":
		return `updated_at DESC, path ASC`
	default:
		return `date DESC, path ASC`
	}
}

// Taxonomy returns the distinct terms of one taxonomy kind with document
// counts, ordered by count descending then term ascending.
func (db *DB) Taxonomy(kind string) ([]TermCount, error) {
	var rows *sql.Rows
	var err error
	switch kind {
	case TaxonomyCategory:
		rows, err = db.conn.Query(`
			SELECT category, count(*) FROM documents
			WHERE category != ''
			GROUP BY category
			ORDER BY count(*) DESC, category ASC
		`)
	case TaxonomyTag, TaxonomyKeyword:
		rows, err = db.conn.Query(`
			SELECT term, count(*) FROM terms
			WHERE taxonomy = ?
			GROUP BY term
			ORDER BY count(*) DESC, term ASC
		`, kind)
	default:
		return nil, fmt.Errorf("catalog: unknown taxonomy kind: %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: taxonomy %s: %w", kind, err)
	}
	defer rows.Close()

	var out []TermCount
	for rows.Next() {
		var tc TermCount
		if err := rows.Scan(&tc.Term, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// DocumentsWithTerm returns the paths of all documents carrying a term,
// ordered by path.
func (db *DB) DocumentsWithTerm(kind, term string) ([]string, error) {
	var rows *sql.Rows
	var err error
	switch kind {
	case TaxonomyCategory:
		rows, err = db.conn.Query(`SELECT path FROM documents WHERE category = ? ORDER BY path`, term)
	case TaxonomyTag, TaxonomyKeyword:
		rows, err = db.conn.Query(`SELECT path FROM terms WHERE taxonomy = ? AND term = ? ORDER BY path`, kind, term)
	default:
		return nil, fmt.Errorf("catalog: unknown taxonomy kind: %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: documents with term: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllPaths returns every catalogued document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns the checksum of every catalogued document keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
