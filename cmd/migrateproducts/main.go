// migrateproducts ingests the legacy export and upserts the products
// collection. Dry-run by default; set MIGRATION_EXECUTE=true to write.
package main

import (
	"context"
	"encoding/json"
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

	products := wpxml.FilterType(items, "product")
	slog.Info("starting product migration",
		"run", runID, "items", len(products), "dryRun", !cfg.Execute)

	runner := migrate.Runner{
		Col:     st.Collection("products"),
		Execute: cfg.Execute,
	}
	rep, mapped, err := runner.Run(ctx, products, func(it wpxml.Item) (any, error) {
		p, err := mappers.ProductFromItem(it, cfg.Rules.Locations)
		return p, err
	})

	slog.Info("product migration summary",
		"run", runID, "summary", rep.String(), "took", time.Since(start).String())
	if len(mapped) > 0 {
		slog.Debug("sample document",
			"doc", pick(mapped[0].Doc, "id", "name", "price", "location", "status"))
	}
	if err != nil {
		// batch commit failure: earlier flushes stay committed
		log.Fatal(err)
	}

	writeReport(ctx, cfg, runID, mapped)
}

// writeReport emits the side-channel JSON dump for manual inspection.
// Best effort: failures are warnings, never a nonzero exit.
func writeReport(ctx context.Context, cfg config.Config, runID string, mapped []migrate.Mapped) {
	entities := make([]any, 0, len(mapped))
	for _, m := range mapped {
		entities = append(entities, m.Doc)
	}

	path := filepath.Join(cfg.ReportDir, "products.json")
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
			return
		}
		slog.Info("report uploaded", "run", runID, "remoteDir", up.RemoteDir)
	}
}

// pick flattens a document through JSON and keeps only the given keys.
// Útil para debug sin volcar el documento entero.
func pick(v any, keys ...string) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}
