package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/reconcile"
)

func TestWriteEntityReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "products.json")
	entities := []domain.Product{
		{ID: "1", Name: "Molde base", Status: domain.StatusPublish, Price: 5000},
		{ID: "2", Name: "Molde falda", Status: domain.StatusDraft},
	}

	if err := WriteEntityReport(path, entities); err != nil {
		t.Fatalf("WriteEntityReport() error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []domain.Product
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Molde base" || got[0].Price != 5000 {
		t.Errorf("unexpected report contents: %+v", got)
	}
}

func TestWriteEntityReportBrotli(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json.br")
	entities := []domain.Product{{ID: "1", Name: "Molde", Status: domain.StatusPublish}}

	if err := WriteEntityReport(path, entities); err != nil {
		t.Fatalf("WriteEntityReport() error: %v", err)
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		t.Fatalf("report is not valid brotli: %v", err)
	}
	var got []domain.Product
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decompressed report is not valid JSON: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("unexpected report contents: %+v", got)
	}
}

func TestWriteMatchCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "matches.csv")
	matches := []reconcile.Match{
		{
			Product:     &domain.Product{ID: "55", Name: "Molde de falda"},
			Course:      &domain.Course{ID: "100", Title: "Curso de Moldería"},
			Method:      reconcile.MethodExactName,
			NeedsUpdate: true,
		},
	}

	if err := WriteMatchCSV(path, "run-abc", matches, []string{"77"}); err != nil {
		t.Fatalf("WriteMatchCSV() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	header := rows[0]
	if header[0] != "run_id" || header[5] != "method" || header[6] != "needs_update" {
		t.Errorf("unexpected header: %v", header)
	}

	match := rows[1]
	if match[0] != "run-abc" || match[1] != "55" || match[3] != "100" ||
		match[5] != string(reconcile.MethodExactName) || match[6] != "true" {
		t.Errorf("unexpected match row: %v", match)
	}

	noMatch := rows[2]
	if noMatch[1] != "77" || noMatch[5] != "no-match" || noMatch[6] != "false" {
		t.Errorf("unexpected no-match row: %v", noMatch)
	}
}

func TestWriteMatchCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.csv")
	if err := WriteMatchCSV(path, "run-x", nil, nil); err != nil {
		t.Fatalf("WriteMatchCSV() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected only the header, got %d rows", len(rows))
	}
}
