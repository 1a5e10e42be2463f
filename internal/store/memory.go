package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory is an in-process store used by engine tests and local dry
// runs. It counts writes so tests can assert the dry-run guarantee.
type Memory struct {
	mu    sync.Mutex
	cols  map[string]map[string]json.RawMessage
	wrote int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cols: map[string]map[string]json.RawMessage{}}
}

// WriteCount reports how many documents have been committed through
// flushed batches since creation.
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wrote
}

func (m *Memory) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cols[name] == nil {
		m.cols[name] = map[string]json.RawMessage{}
	}
	return &memCollection{store: m, name: name}
}

func (m *Memory) Close() error { return nil }

type memCollection struct {
	store *Memory
	name  string
}

func (c *memCollection) GetByID(_ context.Context, id string) (json.RawMessage, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	data, ok := c.store.cols[c.name][id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (c *memCollection) BatchGet(_ context.Context, ids []string) (map[string]json.RawMessage, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	out := make(map[string]json.RawMessage, len(ids))
	for _, chunk := range chunkIDs(ids) {
		for _, id := range chunk {
			if data, ok := c.store.cols[c.name][id]; ok {
				out[id] = data
			}
		}
	}
	return out, nil
}

func (c *memCollection) Query(_ context.Context, field, value string) ([]Doc, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	var out []Doc
	for id, data := range c.store.cols[c.name] {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if s, ok := m[field].(string); ok && s == value {
			out = append(out, Doc{ID: id, Data: data})
		}
	}
	// same deterministic order as the persistent backends
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].ID) != len(out[j].ID) {
			return len(out[i].ID) < len(out[j].ID)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *memCollection) Batch() WriteBatch {
	return &memBatch{col: c}
}

type memBatch struct {
	col    *memCollection
	writes []Doc
}

func (b *memBatch) Set(id string, doc any) error {
	data, err := marshalDoc(doc)
	if err != nil {
		return err
	}
	b.writes = append(b.writes, Doc{ID: id, Data: data})
	return nil
}

func (b *memBatch) Len() int { return len(b.writes) }

func (b *memBatch) Flush(_ context.Context) error {
	b.col.store.mu.Lock()
	defer b.col.store.mu.Unlock()

	for _, w := range b.writes {
		b.col.store.cols[b.col.name][w.ID] = w.Data
		b.col.store.wrote++
	}
	b.writes = b.writes[:0]
	return nil
}
