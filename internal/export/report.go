// Package export writes the side-channel artifacts of a run: the JSON
// dump of transformed entities and the reconciliation audit CSV. Both
// are for manual inspection only; callers treat failures as warnings,
// never as run failures.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
)

// WriteEntityReport writes the transformed entities as a JSON array.
// A ".br" path suffix produces a brotli-compressed file. Parent
// directories are created as needed.
func WriteEntityReport(path string, entities any) error {
	b, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create report: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var bw *brotli.Writer
	if strings.HasSuffix(path, ".br") {
		bw = brotli.NewWriter(f)
		w = bw
	}

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("export: write report: %w", err)
	}
	if bw != nil {
		if err := bw.Close(); err != nil {
			return fmt.Errorf("export: finish report: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close report: %w", err)
	}
	return nil
}
