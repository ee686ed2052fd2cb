package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (collection, id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_teacher_email
    ON documents (json_extract(data, '$.email')) WHERE collection = 'teachers';
`

// SQLiteStore keeps documents in a single SQLite file, for local development
// and tests. Fields are read with the JSON1 functions.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite serialises writers, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	id, data, err := prepare(doc)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return "", fmt.Errorf("insert %s: %w", collection, ErrConflict)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string, dst any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Snapshot{ID: id, Data: []byte(data)}.Decode(dst)
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	data, err := preparePatch(patch)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = json_patch(data, ?), updated_at = CURRENT_TIMESTAMP
		 WHERE collection = ? AND id = ?`,
		string(data), collection, id,
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	args := []any{collection}

	for _, f := range filters {
		path := "$." + f.Field
		switch f.Op {
		case OpContains:
			sb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(data, ?) WHERE json_each.value = ?)`)
			args = append(args, path, f.text())
		default:
			if b, ok := f.Value.(bool); ok {
				// json_extract yields 1 and 0 for JSON booleans.
				sb.WriteString(` AND json_extract(data, ?) = ?`)
				args = append(args, path, boolInt(b))
				continue
			}
			sb.WriteString(` AND json_extract(data, ?) = ?`)
			args = append(args, path, f.text())
		}
	}
	sb.WriteString(` ORDER BY seq`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		snaps = append(snaps, Snapshot{ID: id, Data: []byte(data)})
	}
	return snaps, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
