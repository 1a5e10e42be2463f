package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Schema for the documents table. Applied on open.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_status
	ON documents(collection, json_extract(data, '$.status'));
`

// sqliteStore keeps every collection in one documents table. This is
// the default backend: a single file, no server, good enough for the
// migration's sequential writer.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and initializes) a file-backed store.
func OpenSQLite(path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: sqlite path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// one writer by design; a second connection would only hit SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init sqlite schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Collection(name string) Collection {
	return &sqliteCollection{db: s.db, name: name}
}

func (s *sqliteStore) Close() error { return s.db.Close() }

type sqliteCollection struct {
	db   *sql.DB
	name string
}

func (c *sqliteCollection) GetByID(ctx context.Context, id string) (json.RawMessage, error) {
	var data string
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, c.name, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s/%s: %w", c.name, id, err)
	}
	return json.RawMessage(data), nil
}

func (c *sqliteCollection) BatchGet(ctx context.Context, ids []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(ids))

	for _, chunk := range chunkIDs(ids) {
		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, c.name)
		for _, id := range chunk {
			args = append(args, id)
		}

		rows, err := c.db.QueryContext(ctx,
			`SELECT id, data FROM documents WHERE collection = ? AND id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("store: batch get %s: %w", c.name, err)
		}
		if err := scanDocsInto(rows, out); err != nil {
			return nil, fmt.Errorf("store: batch get %s: %w", c.name, err)
		}
	}
	return out, nil
}

func (c *sqliteCollection) Query(ctx context.Context, field, value string) ([]Doc, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, data FROM documents
		 WHERE collection = ? AND json_extract(data, ?) = ?
		 ORDER BY CAST(id AS INTEGER), id`,
		c.name, "$."+field, value)
	if err != nil {
		return nil, fmt.Errorf("store: query %s.%s: %w", c.name, field, err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		var id, data string
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

func (c *sqliteCollection) Batch() WriteBatch {
	return &sqliteBatch{col: c}
}

type sqliteBatch struct {
	col    *sqliteCollection
	writes []Doc
}

func (b *sqliteBatch) Set(id string, doc any) error {
	data, err := marshalDoc(doc)
	if err != nil {
		return err
	}
	b.writes = append(b.writes, Doc{ID: id, Data: data})
	return nil
}

func (b *sqliteBatch) Len() int { return len(b.writes) }

func (b *sqliteBatch) Flush(ctx context.Context) error {
	if len(b.writes) == 0 {
		return nil
	}

	tx, err := b.col.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin flush: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: prepare flush: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, w := range b.writes {
		if _, err := stmt.ExecContext(ctx, b.col.name, w.ID, string(w.Data), now); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: write %s/%s: %w", b.col.name, w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit flush: %w", err)
	}

	b.writes = b.writes[:0]
	return nil
}

func scanDocsInto(rows *sql.Rows, out map[string]json.RawMessage) error {
	defer rows.Close()
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return err
		}
		out[id] = json.RawMessage(data)
	}
	return rows.Err()
}

// validateField rejects field names that would escape the JSON path.
func validateField(field string) error {
	for _, r := range field {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !ok {
			return fmt.Errorf("store: invalid query field %q", field)
		}
	}
	if field == "" {
		return errors.New("store: empty query field")
	}
	return nil
}
