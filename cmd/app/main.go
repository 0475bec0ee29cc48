package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/tsvoboda/inkwell/internal"
	pkgconfig "github.com/tsvoboda/inkwell/pkg/config"
)

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		Value:       "config/config.yaml",
		DefaultText: "config/config.yaml",
		Sources:     cli.EnvVars("INKWELL_CONFIG_FILE"),
	}
}

func dirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "dir",
		Usage: "Content directory, overrides the config file",
	}
}

// loadConfig reads the YAML config named by --config on top of the
// defaults. The default path may be absent; a path the user named
// explicitly must exist. --dir and --catalog override the loaded paths
// on commands that define them.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	err := pkgconfig.Load(cmd.String("config"), cfg)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config"):
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.IsSet("dir") {
		cfg.Content.Path = cmd.String("dir")
	}
	if cmd.IsSet("catalog") {
		cfg.Catalog.Path = cmd.String("catalog")
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "inkwell",
		Usage:  "Content vault for a Markdown blog with front matter, taxonomies and an editing API",
		Flags:  []cli.Flag{configFlag()},
		Action: serve,
		Commands: []*cli.Command{
			initCommand(),
			newCommand(),
			checkCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
