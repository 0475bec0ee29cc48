// Package seed carries the starter content embedded into the binary:
// the About page and the initial posts, written out by `inkwell init`.
package seed

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed content
var content embed.FS

// Entry is one embedded starter document.
type Entry struct {
	Path string // relative path under the content root
	Data []byte
}

// Entries returns every embedded starter document.
func Entries() ([]Entry, error) {
	var entries []Entry
	err := fs.WalkDir(content, "content", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := content.ReadFile(path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Path: strings.TrimPrefix(path, "content/"),
			Data: data,
		})
		return nil
	})
	return entries, err
}

// Write materializes the starter content under dir. Files that already
// exist are left untouched. Returns the paths written.
func Write(dir string) ([]string, error) {
	entries, err := Entries()
	if err != nil {
		return nil, err
	}
	var written []string
	for _, e := range entries {
		dst := filepath.Join(dir, filepath.FromSlash(e.Path))
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, err
		}
		if err := os.WriteFile(dst, e.Data, 0o644); err != nil {
			return written, err
		}
		written = append(written, e.Path)
	}
	return written, nil
}
