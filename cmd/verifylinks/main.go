// verifylinks audits the product/course references using only the
// deterministic tiers (stored reference, slug, legacy id). Read-only,
// regardless of the execute toggle.
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/config"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/logging"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/reconcile"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN())
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	engine := reconcile.Engine{
		Products: st.Collection("products"),
		Courses:  st.Collection("courses"),
	}

	sum, err := engine.Verify(ctx)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("verification summary", "summary", sum.String())
	for method, n := range sum.ByMethod {
		slog.Info("tier result", "method", string(method), "matches", n)
	}
	if len(sum.NoMatch) > 0 {
		slog.Info("products without a deterministic link", "count", len(sum.NoMatch))
	}
}
