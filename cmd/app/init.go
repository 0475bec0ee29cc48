package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/tsvoboda/inkwell/internal/seed"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write the starter content (About page and example posts) into the content directory",
		Flags: []cli.Flag{configFlag(), dirFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			entries, err := seed.Entries()
			if err != nil {
				return fmt.Errorf("read starter content: %w", err)
			}
			written, err := seed.Write(cfg.Content.Path)
			if err != nil {
				return fmt.Errorf("init content: %w", err)
			}
			if len(written) == 0 {
				fmt.Printf("content in %s is already initialized, nothing to do\n", cfg.Content.Path)
				return nil
			}
			for _, p := range written {
				color.Green("  + %s", p)
			}
			if skipped := len(entries) - len(written); skipped > 0 {
				fmt.Printf("wrote %d documents to %s, %d already present\n", len(written), cfg.Content.Path, skipped)
			} else {
				fmt.Printf("wrote %d documents to %s\n", len(written), cfg.Content.Path)
			}
			return nil
		},
	}
}
