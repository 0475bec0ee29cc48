package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tsvoboda/inkwell/internal/catalog"
	"github.com/tsvoboda/inkwell/internal/mcpserver"
	"github.com/tsvoboda/inkwell/internal/storage"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve document tools to AI assistants over the Model Context Protocol on stdio",
		Flags: []cli.Flag{
			configFlag(),
			dirFlag(),
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Catalog database path, overrides the config file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// stdout carries the MCP transport, so logs go to stderr.
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.App.LogLevel,
			}))
			slog.SetDefault(logger)

			if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
				return fmt.Errorf("create content dir: %w", err)
			}
			store, err := storage.NewFS(cfg.Content.Path)
			if err != nil {
				return err
			}
			db, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			if err := catalog.Sync(db, store, logger); err != nil {
				logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
			}

			logger.Info("MCP server listening on stdio",
				slog.String("content_path", cfg.Content.Path))
			return mcpserver.New(store, db).ServeStdio()
		},
	}
}
