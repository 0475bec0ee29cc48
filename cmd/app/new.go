package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/tsvoboda/inkwell/internal/frontmatter"
	"github.com/tsvoboda/inkwell/internal/models"
	"github.com/tsvoboda/inkwell/internal/storage"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Scaffold a new document with front matter",
		ArgsUsage: "[PATH]",
		Flags: []cli.Flag{
			configFlag(),
			dirFlag(),
			&cli.StringFlag{
				Name:  "title",
				Usage: "Document title; derives posts/<slug>.md when no PATH is given",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Category for the new document",
				Value: "general",
			},
			&cli.StringSliceFlag{
				Name:  "tags",
				Usage: "Tags, comma separated or repeated",
			},
			&cli.StringSliceFlag{
				Name:  "keywords",
				Usage: "Keywords, comma separated or repeated",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "One-line description",
			},
			&cli.BoolFlag{
				Name:  "draft",
				Usage: "Mark the document as a draft",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Front matter dialect, yaml or toml",
				Value: "yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			relPath := cmd.Args().First()
			title := strings.TrimSpace(cmd.String("title"))
			if relPath == "" && title == "" {
				return cli.Exit("usage: inkwell new PATH, or inkwell new --title TITLE", 1)
			}

			format := frontmatter.Format(cmd.String("format"))
			if format != frontmatter.FormatYAML && format != frontmatter.FormatTOML {
				return cli.Exit(fmt.Sprintf("unknown front matter format %q, use yaml or toml", cmd.String("format")), 1)
			}

			if relPath == "" {
				slug := models.Slugify(title)
				if slug == "" {
					return cli.Exit(fmt.Sprintf("title %q produces an empty slug", title), 1)
				}
				relPath = path.Join("posts", slug+".md")
			}
			if !strings.HasSuffix(relPath, ".md") {
				return cli.Exit(fmt.Sprintf("document path must end with .md, got %s", relPath), 1)
			}
			if title == "" {
				title = titleFromPath(relPath)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			now := time.Now()
			fm := models.FrontMatter{
				Title:       title,
				Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
				Description: cmd.String("description"),
				Category:    cmd.String("category"),
				Tags:        cmd.StringSlice("tags"),
				Keywords:    cmd.StringSlice("keywords"),
				Draft:       cmd.Bool("draft"),
			}
			data, err := frontmatter.Encode(fm, "Write here.\n", format)
			if err != nil {
				return fmt.Errorf("encode front matter: %w", err)
			}

			if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
				return fmt.Errorf("create content dir: %w", err)
			}
			store, err := storage.NewFS(cfg.Content.Path)
			if err != nil {
				return err
			}
			if _, err := store.Read(relPath); err == nil {
				return cli.Exit(fmt.Sprintf("%s already exists", relPath), 1)
			}
			if err := store.Write(relPath, data); err != nil {
				return fmt.Errorf("write document: %w", err)
			}

			color.Green("  + %s", relPath)
			return nil
		},
	}
}

// titleFromPath turns posts/my-first-post.md into "My First Post".
func titleFromPath(relPath string) string {
	base := strings.TrimSuffix(path.Base(relPath), ".md")
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
