package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	id text NOT NULL,
	data jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// pgStore is the server-backed variant used when several jobs share one
// catalog. Same contract as the sqlite backend.
type pgStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and ensures the documents table exists. A
// connection failure here is fatal configuration, reported before any
// write is attempted.
func OpenPostgres(ctx context.Context, dsn string) (Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: init postgres schema: %w", err)
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Collection(name string) Collection {
	return &pgCollection{pool: s.pool, name: name}
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

type pgCollection struct {
	pool *pgxpool.Pool
	name string
}

func (c *pgCollection) GetByID(ctx context.Context, id string) (json.RawMessage, error) {
	var data []byte
	err := c.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`, c.name, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s/%s: %w", c.name, id, err)
	}
	return json.RawMessage(data), nil
}

func (c *pgCollection) BatchGet(ctx context.Context, ids []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(ids))

	for _, chunk := range chunkIDs(ids) {
		rows, err := c.pool.Query(ctx,
			`SELECT id, data FROM documents WHERE collection = $1 AND id = ANY($2)`,
			c.name, chunk)
		if err != nil {
			return nil, fmt.Errorf("store: batch get %s: %w", c.name, err)
		}
		for rows.Next() {
			var id string
			var data []byte
			if err := rows.Scan(&id, &data); err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: batch get %s: %w", c.name, err)
			}
			out[id] = json.RawMessage(data)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("store: batch get %s: %w", c.name, err)
		}
	}
	return out, nil
}

func (c *pgCollection) Query(ctx context.Context, field, value string) ([]Doc, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx,
		`SELECT id, data FROM documents
		 WHERE collection = $1 AND data ->> $2 = $3
		 ORDER BY length(id), id`,
		c.name, field, value)
	if err != nil {
		return nil, fmt.Errorf("store: query %s.%s: %w", c.name, field, err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("store: query %s.%s: %w", c.name, field, err)
		}
		out = append(out, Doc{ID: id, Data: json.RawMessage(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: query %s.%s: %w", c.name, field, err)
	}
	return out, nil
}

func (c *pgCollection) Batch() WriteBatch {
	return &pgBatch{col: c}
}

type pgBatch struct {
	col    *pgCollection
	writes []Doc
}

func (b *pgBatch) Set(id string, doc any) error {
	data, err := marshalDoc(doc)
	if err != nil {
		return err
	}
	b.writes = append(b.writes, Doc{ID: id, Data: data})
	return nil
}

func (b *pgBatch) Len() int { return len(b.writes) }

func (b *pgBatch) Flush(ctx context.Context) error {
	if len(b.writes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, w := range b.writes {
		batch.Queue(
			`INSERT INTO documents (collection, id, data, updated_at) VALUES ($1, $2, $3, now())
			 ON CONFLICT (collection, id) DO UPDATE SET
				data = EXCLUDED.data,
				updated_at = EXCLUDED.updated_at`,
			b.col.name, w.ID, []byte(w.Data))
	}

	br := b.col.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, w := range b.writes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: write %s/%s: %w", b.col.name, w.ID, err)
		}
	}

	b.writes = b.writes[:0]
	return nil
}
