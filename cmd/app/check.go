package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/tsvoboda/inkwell/internal/docservice"
	"github.com/tsvoboda/inkwell/internal/storage"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate every document in the content directory and report problems",
		Flags: []cli.Flag{configFlag(), dirFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := storage.NewFS(cfg.Content.Path)
			if err != nil {
				return fmt.Errorf("open content dir: %w", err)
			}
			metas, err := store.List("")
			if err != nil {
				return err
			}
			findings, err := docservice.Audit(store)
			if err != nil {
				return err
			}

			problems := make(map[string][]docservice.Finding, len(findings))
			for _, f := range findings {
				problems[f.Path] = append(problems[f.Path], f)
			}
			for _, m := range metas {
				fs, bad := problems[m.Path]
				if !bad {
					color.Green("  ok    %s", m.Path)
					continue
				}
				for _, f := range fs {
					color.Red("  FAIL  %s (%s): %s", f.Path, f.Kind, f.Message)
				}
			}

			if len(problems) > 0 {
				return cli.Exit(fmt.Sprintf("checked %d documents, %d with problems", len(metas), len(problems)), 1)
			}
			fmt.Printf("checked %d documents, no problems found\n", len(metas))
			return nil
		},
	}
}
