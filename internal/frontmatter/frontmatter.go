// Package frontmatter implements the document file format: a metadata block
// delimited at the top of the file (--- for YAML, +++ for TOML) followed by
// a Markdown body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/tsvoboda/inkwell/internal/models"
)

// Format identifies the front-matter dialect of a document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatNone Format = "none"
)

const (
	yamlDelim = "---"
	tomlDelim = "+++"
)

// ErrUnterminated is returned when an opening delimiter has no closing line.
var ErrUnterminated = errors.New("front matter: missing closing delimiter")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parsed holds the output of parsing a document file.
type Parsed struct {
	FrontMatter models.FrontMatter
	Body        string
	Format      Format
	// Fields is the raw decoded metadata block, including recognized keys.
	Fields map[string]any
}

// Parse splits a document into its front-matter block and body and coerces
// the block into typed metadata. A file that does not start with a delimiter
// has no front matter: the whole content is body and Format is FormatNone.
func Parse(data []byte) (*Parsed, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	delim, format := detectDelim(data)
	if format == FormatNone {
		return &Parsed{Body: string(data), Format: FormatNone}, nil
	}

	block, body, err := split(data, delim)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(block, &fields); err != nil {
			return nil, fmt.Errorf("front matter: decode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(block, &fields); err != nil {
			return nil, fmt.Errorf("front matter: decode toml: %w", err)
		}
	}

	fm, err := fromFields(fields)
	if err != nil {
		return nil, err
	}

	return &Parsed{
		FrontMatter: fm,
		Body:        body,
		Format:      format,
		Fields:      fields,
	}, nil
}

// detectDelim reports which dialect opens the file. The delimiter must be
// the very first content; leading blank lines mean no front matter.
func detectDelim(data []byte) (string, Format) {
	if opensWith(data, yamlDelim) {
		return yamlDelim, FormatYAML
	}
	if opensWith(data, tomlDelim) {
		return tomlDelim, FormatTOML
	}
	return "", FormatNone
}

func opensWith(data []byte, delim string) bool {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return false
	}
	rest := data[len(delim):]
	return len(rest) > 0 && (rest[0] == '\n' || bytes.HasPrefix(rest, []byte("\r\n")))
}

// split returns the metadata block between the delimiters and the body after
// the closing delimiter line.
func split(data []byte, delim string) (block []byte, body string, err error) {
	rest := data[len(delim):]
	// Scan for a line that is exactly the delimiter (allowing trailing \r).
	search := rest
	offset := 0
	for {
		idx := bytes.Index(search, []byte("\n"+delim))
		if idx < 0 {
			return nil, "", ErrUnterminated
		}
		lineEnd := idx + 1 + len(delim)
		tail := search[lineEnd:]
		if len(tail) == 0 || tail[0] == '\n' || bytes.HasPrefix(tail, []byte("\r\n")) || (len(tail) == 1 && tail[0] == '\r') {
			block = rest[:offset+idx]
			body = strings.TrimLeft(string(tail), "\r\n")
			return block, body, nil
		}
		// A line merely starting with the delimiter (e.g. "----"): keep looking.
		offset += lineEnd
		search = search[lineEnd:]
	}
}

// fromFields coerces a raw metadata map into typed front matter. Values are
// accepted in the sloppy shapes that show up in real content: dates as
// strings in common layouts, tags as a scalar or comma-joined string.
func fromFields(fields map[string]any) (models.FrontMatter, error) {
	var fm models.FrontMatter
	extra := map[string]any{}

	for k, v := range fields {
		switch k {
		case "title":
			fm.Title = cast.ToString(v)
		case "date":
			d, err := toDate(v)
			if err != nil {
				return fm, fmt.Errorf("front matter: field date: %w", err)
			}
			fm.Date = d
		case "description":
			fm.Description = cast.ToString(v)
		case "category":
			fm.Category = cast.ToString(v)
		case "tags":
			fm.Tags = toStringList(v)
		case "keywords":
			fm.Keywords = toStringList(v)
		case "draft":
			fm.Draft = cast.ToBool(v)
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		fm.Extra = extra
	}
	return fm, nil
}

// toDate accepts the date shapes the dialect decoders produce: native
// timestamps, TOML local dates, and strings in common layouts.
func toDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case toml.LocalDate:
		return d.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return d.AsTime(time.UTC), nil
	case nil:
		return time.Time{}, nil
	default:
		t, err := cast.ToTimeE(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse %q as a date", cast.ToString(v))
		}
		return t, nil
	}
}

// toStringList accepts a list, a single scalar, or a comma-joined string.
func toStringList(v any) []string {
	if v == nil {
		return nil
	}
	var out []string
	appendItem := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			appendItem(cast.ToString(item))
		}
	case []string:
		for _, item := range list {
			appendItem(item)
		}
	case string:
		for _, item := range strings.Split(list, ",") {
			appendItem(item)
		}
	default:
		appendItem(cast.ToString(v))
	}
	return out
}

// yamlEmit and tomlEmit fix the key order for encoded documents. Dates are
// emitted as strings so both dialects round-trip through Parse.
type yamlEmit struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description,omitempty"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Draft       bool     `yaml:"draft,omitempty"`
}

type tomlEmit struct {
	Title       string   `toml:"title"`
	Date        string   `toml:"date"`
	Description string   `toml:"description,omitempty"`
	Category    string   `toml:"category"`
	Tags        []string `toml:"tags,omitempty"`
	Keywords    []string `toml:"keywords,omitempty"`
	Draft       bool     `toml:"draft,omitempty"`
}

func dateString(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// Encode serializes front matter and body back into file bytes. Recognized
// keys come first in canonical order; Extra keys follow sorted by name.
func Encode(fm models.FrontMatter, body string, format Format) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatYAML:
		buf.WriteString(yamlDelim + "\n")
		head := yamlEmit{
			Title:       fm.Title,
			Date:        dateString(fm.Date),
			Description: fm.Description,
			Category:    fm.Category,
			Tags:        fm.Tags,
			Keywords:    fm.Keywords,
			Draft:       fm.Draft,
		}
		out, err := yaml.Marshal(head)
		if err != nil {
			return nil, fmt.Errorf("front matter: encode yaml: %w", err)
		}
		buf.Write(out)
		if err := writeExtraYAML(&buf, fm.Extra); err != nil {
			return nil, err
		}
		buf.WriteString(yamlDelim + "\n")

	case FormatTOML:
		buf.WriteString(tomlDelim + "\n")
		head := tomlEmit{
			Title:       fm.Title,
			Date:        dateString(fm.Date),
			Description: fm.Description,
			Category:    fm.Category,
			Tags:        fm.Tags,
			Keywords:    fm.Keywords,
			Draft:       fm.Draft,
		}
		out, err := toml.Marshal(head)
		if err != nil {
			return nil, fmt.Errorf("front matter: encode toml: %w", err)
		}
		buf.Write(out)
		if err := writeExtraTOML(&buf, fm.Extra); err != nil {
			return nil, err
		}
		buf.WriteString(tomlDelim + "\n")

	default:
		return nil, fmt.Errorf("front matter: unsupported format: %s", format)
	}

	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(body, "\n"))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// writeExtraYAML appends extra keys as additional top-level mapping entries.
// Marshalling each key separately keeps the sorted order stable.
func writeExtraYAML(buf *bytes.Buffer, extra map[string]any) error {
	for _, k := range sortedKeys(extra) {
		out, err := yaml.Marshal(map[string]any{k: extra[k]})
		if err != nil {
			return fmt.Errorf("front matter: encode yaml key %s: %w", k, err)
		}
		buf.Write(out)
	}
	return nil
}

// writeExtraTOML appends extra keys, scalar values first: a scalar emitted
// after a [table] header would be parsed back into that table.
func writeExtraTOML(buf *bytes.Buffer, extra map[string]any) error {
	keys := sortedKeys(extra)
	sort.SliceStable(keys, func(i, j int) bool {
		_, ti := extra[keys[i]].(map[string]any)
		_, tj := extra[keys[j]].(map[string]any)
		return !ti && tj
	})
	for _, k := range keys {
		out, err := toml.Marshal(map[string]any{k: extra[k]})
		if err != nil {
			return fmt.Errorf("front matter: encode toml key %s: %w", k, err)
		}
		buf.Write(out)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
