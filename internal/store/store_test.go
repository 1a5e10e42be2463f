package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestChunkIDs(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{1, []int{1}},
		{10, []int{10}},
		{11, []int{10, 1}},
		{25, []int{10, 10, 5}},
	}

	for _, tt := range tests {
		ids := make([]string, tt.n)
		for i := range ids {
			ids[i] = fmt.Sprintf("%d", i+1)
		}

		chunks := chunkIDs(ids)
		if len(chunks) != len(tt.want) {
			t.Errorf("chunkIDs(%d ids): got %d chunks, want %d", tt.n, len(chunks), len(tt.want))
			continue
		}
		for i, c := range chunks {
			if len(c) != tt.want[i] {
				t.Errorf("chunkIDs(%d ids): chunk %d has %d ids, want %d", tt.n, i, len(c), tt.want[i])
			}
		}
	}
}

func TestMemoryGetByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	col := m.Collection("products")

	_, err := col.GetByID(ctx, "1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	b := col.Batch()
	if err := b.Set("1", map[string]string{"id": "1", "name": "molde"}); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 1 {
		t.Errorf("expected batch len 1, got %d", b.Len())
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 0 {
		t.Errorf("flush must drain the batch, len=%d", b.Len())
	}

	data, err := col.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID after flush: %v", err)
	}
	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["name"] != "molde" {
		t.Errorf("unexpected document: %v", doc)
	}
}

func TestMemoryBatchGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	col := m.Collection("courses")

	b := col.Batch()
	for i := 1; i <= 15; i++ {
		id := fmt.Sprintf("%d", i)
		if err := b.Set(id, map[string]string{"id": id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	ids := []string{"1", "5", "15", "99"}
	got, err := col.BatchGet(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 found, got %d", len(got))
	}
	if _, ok := got["99"]; ok {
		t.Error("missing id must be absent from the result, not an error")
	}
}

func TestMemoryQueryOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	col := m.Collection("products")

	b := col.Batch()
	for _, id := range []string{"10", "2", "101", "33"} {
		if err := b.Set(id, map[string]string{"id": id, "status": "publish"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Set("7", map[string]string{"id": "7", "status": "draft"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	docs, err := col.Query(ctx, "status", "publish")
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, d := range docs {
		order = append(order, d.ID)
	}
	want := []string{"2", "10", "33", "101"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("expected numeric id order %v, got %v", want, order)
	}
}

func TestMemoryWriteCount(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	col := m.Collection("products")

	if m.WriteCount() != 0 {
		t.Fatalf("fresh store must have zero writes, got %d", m.WriteCount())
	}

	b := col.Batch()
	b.Set("1", map[string]string{"id": "1"})
	b.Set("2", map[string]string{"id": "2"})
	if m.WriteCount() != 0 {
		t.Error("queued writes must not count before flush")
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if m.WriteCount() != 2 {
		t.Errorf("expected 2 committed writes, got %d", m.WriteCount())
	}
}

func TestValidateField(t *testing.T) {
	for _, ok := range []string{"status", "relatedCourseId", "field_1"} {
		if err := validateField(ok); err != nil {
			t.Errorf("validateField(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a.b", "x'); DROP TABLE", "$status"} {
		if err := validateField(bad); err == nil {
			t.Errorf("validateField(%q) expected error", bad)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "dsn")
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
