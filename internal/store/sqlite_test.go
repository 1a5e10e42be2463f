package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundtrip(t *testing.T) {
	ctx := context.Background()
	col := openTestSQLite(t).Collection("products")

	_, err := col.GetByID(ctx, "1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	b := col.Batch()
	if err := b.Set("1", map[string]any{"id": "1", "name": "molde", "status": "publish"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := col.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["name"] != "molde" {
		t.Errorf("unexpected document: %v", doc)
	}
}

func TestSQLiteUpsert(t *testing.T) {
	ctx := context.Background()
	col := openTestSQLite(t).Collection("products")

	b := col.Batch()
	b.Set("1", map[string]any{"id": "1", "name": "original"})
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	b2 := col.Batch()
	b2.Set("1", map[string]any{"id": "1", "name": "actualizado"})
	if err := b2.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := col.GetByID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["name"] != "actualizado" {
		t.Errorf("second write must replace the document, got %v", doc)
	}
}

func TestSQLiteCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	b := s.Collection("products").Batch()
	b.Set("1", map[string]any{"id": "1"})
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := s.Collection("courses").GetByID(ctx, "1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across collections, got %v", err)
	}
}

func TestSQLiteBatchGet(t *testing.T) {
	ctx := context.Background()
	col := openTestSQLite(t).Collection("courses")

	b := col.Batch()
	for i := 1; i <= 23; i++ {
		id := fmt.Sprintf("%d", i)
		b.Set(id, map[string]any{"id": id})
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for i := 1; i <= 23; i++ {
		ids = append(ids, fmt.Sprintf("%d", i))
	}
	ids = append(ids, "999")

	got, err := col.BatchGet(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 23 {
		t.Errorf("expected 23 found across chunks, got %d", len(got))
	}
	if _, ok := got["999"]; ok {
		t.Error("missing id must simply be absent")
	}
}

func TestSQLiteQuery(t *testing.T) {
	ctx := context.Background()
	col := openTestSQLite(t).Collection("products")

	b := col.Batch()
	b.Set("10", map[string]any{"id": "10", "status": "publish"})
	b.Set("2", map[string]any{"id": "2", "status": "publish"})
	b.Set("7", map[string]any{"id": "7", "status": "draft"})
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	docs, err := col.Query(ctx, "status", "publish")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 published docs, got %d", len(docs))
	}
	if docs[0].ID != "2" || docs[1].ID != "10" {
		t.Errorf("expected numeric id order [2 10], got [%s %s]", docs[0].ID, docs[1].ID)
	}

	if _, err := col.Query(ctx, "status'; --", "x"); err == nil {
		t.Error("expected error for invalid field name")
	}
}

func TestSQLiteEmptyFlush(t *testing.T) {
	col := openTestSQLite(t).Collection("products")
	if err := col.Batch().Flush(context.Background()); err != nil {
		t.Errorf("empty flush must be a no-op, got %v", err)
	}
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
