package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore keeps documents in the JSONB "documents" table created by
// the migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts or replaces a document.
func (s *PostgresStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	id, data, err := prepare(doc)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("insert %s: %w", collection, ErrConflict)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Get retrieves a document by its ID.
func (s *PostgresStore) Get(ctx context.Context, collection, id string, dst any) error {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Snapshot{ID: id, Data: data}.Decode(dst)
}

// Update merges patch into the stored document.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	data, err := preparePatch(patch)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = CURRENT_TIMESTAMP
		 WHERE collection = $1 AND id = $2`,
		collection, id, string(data),
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document by its ID.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Query lists the documents of a collection matching every filter.
func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []any{collection}

	for _, f := range filters {
		args = append(args, f.Field, f.text())
		fieldArg, valueArg := len(args)-1, len(args)
		switch f.Op {
		case OpContains:
			fmt.Fprintf(&sb, ` AND data->($%d::text) @> jsonb_build_array($%d::text)`, fieldArg, valueArg)
		default:
			fmt.Fprintf(&sb, ` AND data->>($%d::text) = $%d::text`, fieldArg, valueArg)
		}
	}
	sb.WriteString(` ORDER BY seq`)

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var data []byte
		if err := rows.Scan(&snap.ID, &data); err != nil {
			return nil, err
		}
		snap.Data = data
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
