package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/reconcile"
)

// WriteMatchCSV writes one row per product: the matched course and the
// tier that found it, or a "no-match" row. runID ties the file to the
// run's log output.
func WriteMatchCSV(path, runID string, matches []reconcile.Match, noMatch []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create csv dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"run_id", "product_id", "product_name", "course_id", "course_title", "method", "needs_update"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	for _, m := range matches {
		row := []string{
			runID,
			m.Product.ID,
			m.Product.Name,
			m.Course.ID,
			m.Course.Title,
			string(m.Method),
			strconv.FormatBool(m.NeedsUpdate),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	for _, id := range noMatch {
		if err := w.Write([]string{runID, id, "", "", "", "no-match", "false"}); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}
