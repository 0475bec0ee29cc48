package catalog

// Catalog defines the interface for document catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	UpsertDocument(row DocumentRow, terms []Term) error
	DeleteDocument(path string) error
	GetDocument(path string) (*DocumentRow, error)
	GetChecksum(path string) (string, error)
	ListDocuments(opts ListOptions) ([]DocumentRow, int, error)
	Taxonomy(kind string) ([]TermCount, error)
	DocumentsWithTerm(kind, term string) ([]string, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
