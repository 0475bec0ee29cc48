// Package models defines the domain types for Inkwell.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FrontMatter is the typed metadata block of a document. Keys the schema
// does not recognize are preserved in Extra so editing never loses data.
type FrontMatter struct {
	Title       string         `json:"title" yaml:"title"`
	Date        time.Time      `json:"date" yaml:"date"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string         `json:"category" yaml:"category"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Keywords    []string       `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Draft       bool           `json:"draft,omitempty" yaml:"draft,omitempty"`
	Extra       map[string]any `json:"extra,omitempty" yaml:"-"`
}

// Validate checks the metadata rules every publishable document must meet.
func (fm FrontMatter) Validate() error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&fm.Date, validation.Required),
		validation.Field(&fm.Category, validation.Required, validation.Length(1, 64)),
		validation.Field(&fm.Tags, validation.Each(validation.Required, validation.Length(1, 64))),
		validation.Field(&fm.Keywords, validation.Each(validation.Required, validation.Length(1, 64))),
	)
}

// Document represents a parsed Markdown file in the content root.
type Document struct {
	Path        string      `json:"path"`
	FrontMatter FrontMatter `json:"frontmatter"`
	Body        string      `json:"body"`
	Format      string      `json:"format"` // front-matter dialect: yaml, toml, none
	Raw         []byte      `json:"-"`
	Checksum    string      `json:"checksum"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks document well-formedness: a .md path, valid front matter,
// and a body with at least one non-whitespace character.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Path, validation.Required, validation.By(mdPath)),
		validation.Field(&d.FrontMatter),
		validation.Field(&d.Body, validation.By(notBlank)),
	)
}

func mdPath(value any) error {
	s, _ := value.(string)
	if !strings.HasSuffix(s, ".md") {
		return validation.NewError("validation_md_path", "must end with .md")
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_body_blank", "body must not be empty")
	}
	return nil
}

// DocumentMetadata is a lightweight representation returned by storage
// listings; it requires no parsing.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slugify derives a file-name-safe slug from a title: lowercased, runs of
// non-alphanumerics collapsed to single hyphens, hyphens trimmed.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
