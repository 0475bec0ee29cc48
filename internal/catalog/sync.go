package catalog

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tsvoboda/inkwell/internal/apperr"
	"github.com/tsvoboda/inkwell/internal/checksum"
	"github.com/tsvoboda/inkwell/internal/frontmatter"
	"github.com/tsvoboda/inkwell/internal/models"
	"github.com/tsvoboda/inkwell/internal/storage"
)

// Sync walks the content root and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		switch err := CatalogFile(db, m.Path, data, m.UpdatedAt); {
		case err == nil:
			logger.Debug("sync: catalogued", slog.String("path", m.Path))
		case errors.Is(err, apperr.ErrInvalid):
			// Catalogued anyway so the broken file stays visible in listings.
			logger.Warn("sync: catalogued with parse error", slog.String("path", m.Path), slog.String("error", err.Error()))
		default:
			logger.Warn("sync: catalog failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// CatalogFile parses data and upserts the document into the catalog. When the
// front matter fails to parse, the path is still catalogued with empty
// metadata and the parse diagnostic is returned wrapped in apperr.ErrInvalid.
func CatalogFile(db *DB, path string, data []byte, updatedAt time.Time) error {
	row := DocumentRow{
		Path:      path,
		Checksum:  checksum.Sum(data),
		UpdatedAt: updatedAt,
	}
	var terms []Term

	parsed, parseErr := frontmatter.Parse(data)
	if parseErr == nil {
		row.Title = parsed.FrontMatter.Title
		row.Date = parsed.FrontMatter.Date
		row.Category = parsed.FrontMatter.Category
		row.Draft = parsed.FrontMatter.Draft
		terms = termsFor(parsed.FrontMatter)
	}

	if err := db.UpsertDocument(row, terms); err != nil {
		return err
	}
	return apperr.Invalid(parseErr)
}

func termsFor(fm models.FrontMatter) []Term {
	out := make([]Term, 0, len(fm.Tags)+len(fm.Keywords))
	for _, t := range fm.Tags {
		out = append(out, Term{Taxonomy: TaxonomyTag, Term: t})
	}
	for _, k := range fm.Keywords {
		out = append(out, Term{Taxonomy: TaxonomyKeyword, Term: k})
	}
	return out
}
