// Package main prints the tables of the configured database, one per line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/edgard/consolidator/internal/app"
	"github.com/edgard/consolidator/internal/config"
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	tables, err := app.ListTables(ctx, cfg)
	if err != nil {
		slog.Error("Failed to list tables", "path", cfg.Database.Path, "error", err)
		return 0
	}

	fmt.Printf("Tables in %s:\n", cfg.Database.Path)
	for _, t := range tables {
		fmt.Println(t)
	}
	return 0
}
