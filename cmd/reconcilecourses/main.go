// reconcilecourses links products to courses via the tiered match
// cascade and, in execute mode, writes both sides of the reference.
// Dry-run by default; the full cascade runs either way and the audit
// CSV is always attempted.
package main

import (
	"context"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/config"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/export"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/logging"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/reconcile"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/sftpclient"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	runID := uuid.NewString()
	start := time.Now()

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN())
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	engine := reconcile.Engine{
		Products:          st.Collection("products"),
		Courses:           st.Collection("courses"),
		Execute:           cfg.Execute,
		PartialNameMinLen: cfg.Rules.PartialNameMinLen,
	}

	slog.Info("starting reconciliation", "run", runID, "dryRun", !cfg.Execute)

	sum, matches, err := engine.Run(ctx)
	slog.Info("reconciliation summary",
		"run", runID, "summary", sum.String(), "took", time.Since(start).String())
	for method, n := range sum.ByMethod {
		slog.Info("tier result", "run", runID, "method", string(method), "matches", n)
	}
	if err != nil {
		log.Fatal(err)
	}

	// audit CSV, best effort
	path := filepath.Join(cfg.ReportDir, "reconcile-matches.csv")
	if err := export.WriteMatchCSV(path, runID, matches, sum.NoMatch); err != nil {
		slog.Warn("match report not written", "run", runID, "error", err)
		return
	}
	slog.Info("match report written", "run", runID, "path", path)

	if cfg.SFTP.Upload {
		up := sftpclient.Config{
			Host: cfg.SFTP.Host, Port: cfg.SFTP.Port,
			User: cfg.SFTP.User, Pass: cfg.SFTP.Pass,
			RemoteDir: cfg.SFTP.RemoteDir,
		}
		if err := sftpclient.UploadReports(ctx, up, path); err != nil {
			slog.Warn("report upload failed", "run", runID, "error", err)
		}
	}
}
