// Command sync regenerates the catalog document from the editor spreadsheet.
//
// It reads the CSV export, keeps the taxonomy of the existing document and
// replaces its projects. Paths come from the environment (SYNC_CSV_PATH,
// SYNC_JSON_PATH, SYNC_CSV_DELIMITER); there are no flags.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"portfolio/internal/catalog"
	"portfolio/internal/config"
	"portfolio/internal/csvsync"
	"portfolio/internal/logging"
)

func main() {
	// Optional .env; process environment wins for the tool.
	_ = godotenv.Load()

	cfg, err := config.LoadSync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sync:", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout carries only the summary.
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := csvsync.Run(ctx, csvsync.Options{
		CSVPath:   cfg.CSVPath,
		JSONPath:  cfg.JSONPath,
		Delimiter: cfg.DelimiterRune(),
		Logger:    slog.Default(),
	})
	if err != nil {
		msg := catalog.MapError(err)
		slog.Error("sync failed", "error", err, "code", msg.Code)
		fmt.Fprintln(os.Stderr, catalog.FormatUserError(err))
		os.Exit(1)
	}

	fmt.Println(res.Summary())
}
