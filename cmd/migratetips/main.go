// migratetips ingests the legacy export and upserts the tips
// collection, sanitizing the rendered HTML on the way in. Dry-run by
// default.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/config"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/export"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/logging"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/mappers"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/migrate"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/sftpclient"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/store"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/wpxml"
)

func main() {
	_ = godotenv.Load()

	in := flag.String("in", "export.xml", "legacy export: file path, .br path, or http(s) URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	runID := uuid.NewString()
	start := time.Now()

	items, err := wpxml.Load(ctx, *in)
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN())
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	tips := wpxml.FilterType(items, "tip")
	slog.Info("starting tip migration",
		"run", runID, "items", len(tips), "dryRun", !cfg.Execute)

	runner := migrate.Runner{
		Col:     st.Collection("tips"),
		Execute: cfg.Execute,
	}
	rep, mapped, err := runner.Run(ctx, tips, func(it wpxml.Item) (any, error) {
		t, err := mappers.TipFromItem(it)
		return t, err
	})

	slog.Info("tip migration summary",
		"run", runID, "summary", rep.String(), "took", time.Since(start).String())
	if err != nil {
		log.Fatal(err)
	}

	entities := make([]any, 0, len(mapped))
	for _, m := range mapped {
		entities = append(entities, m.Doc)
	}
	path := filepath.Join(cfg.ReportDir, "tips.json")
	if err := export.WriteEntityReport(path, entities); err != nil {
		slog.Warn("entity report not written", "run", runID, "error", err)
		return
	}
	slog.Info("entity report written", "run", runID, "path", path, "entities", len(entities))

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
