// Package migrate is the upsert engine shared by the three content
// migrations. It decides create vs update per document, batches writes,
// and isolates per-item failures so one broken post never aborts a run.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/store"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/wpxml"
)

// DefaultBatchSize is the write flush threshold.
const DefaultBatchSize = 500

// Mapper turns one export item into the document to persist.
type Mapper func(it wpxml.Item) (doc any, err error)

// Mapped is one successfully mapped document, retained for the
// side-channel report.
type Mapped struct {
	ID  string
	Doc any
}

// Report is the end-of-run summary. It is produced even when items
// failed; partial success is observable without re-reading logs.
type Report struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

func (r Report) String() string {
	return fmt.Sprintf("processed=%d created=%d updated=%d skipped=%d errors=%d",
		r.Processed, r.Created, r.Updated, r.Skipped, r.Errors)
}

// Runner migrates one collection. Execute is resolved once at
// construction; in dry-run mode no write call reaches the store.
type Runner struct {
	Col       store.Collection
	Execute   bool
	BatchSize int
	Log       *slog.Logger
}

// Run maps and upserts items sequentially. The returned error is
// non-nil only for batch commit failures, which abort the run (earlier
// flushes stay committed). Item-level problems are counted in the
// report instead.
func (r *Runner) Run(ctx context.Context, items []wpxml.Item, mapFn Mapper) (Report, []Mapped, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var (
		rep    Report
		mapped []Mapped
		batch  = r.Col.Batch()
	)

	for _, it := range items {
		id, ok := validID(it.ID)
		if !ok {
			rep.Skipped++
			log.Warn("skipping item without a usable legacy id",
				"rawId", it.ID, "type", it.Type, "slug", it.Slug)
			continue
		}
		rep.Processed++

		doc, err := mapFn(it)
		if err != nil {
			rep.Errors++
			log.Error("mapping failed", "id", id, "slug", it.Slug, "error", err)
			continue
		}
		mapped = append(mapped, Mapped{ID: id, Doc: doc})

		_, err = r.Col.GetByID(ctx, id)
		switch {
		case err == nil:
			rep.Updated++
		case errors.Is(err, store.ErrNotFound):
			rep.Created++
		default:
			rep.Errors++
			log.Error("existence check failed", "id", id, "error", err)
			continue
		}

		if !r.Execute {
			continue
		}
		if err := batch.Set(id, doc); err != nil {
			rep.Errors++
			log.Error("queue write failed", "id", id, "error", err)
			continue
		}
		if batch.Len() >= batchSize {
			if err := batch.Flush(ctx); err != nil {
				return rep, mapped, fmt.Errorf("migrate: flush batch: %w", err)
			}
		}
	}

	if r.Execute && batch.Len() > 0 {
		if err := batch.Flush(ctx); err != nil {
			return rep, mapped, fmt.Errorf("migrate: flush final batch: %w", err)
		}
	}

	return rep, mapped, nil
}

// validID accepts only positive integer legacy ids, in their canonical
// string form.
func validID(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
