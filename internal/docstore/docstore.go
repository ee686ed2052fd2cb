// Package docstore is a small document database over a relational engine.
// Documents are JSON objects grouped into named collections and addressed by
// string id. Writes are last-write-wins.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a document id does not exist in the collection.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a write breaks a unique field index.
	ErrConflict = errors.New("document conflicts with a unique field")
)

// Collection names used by the application.
const (
	CollectionItems        = "items"
	CollectionTests        = "tests"
	CollectionClasses      = "classes"
	CollectionTeachers     = "teachers"
	CollectionScoreRecords = "score_records"
)

// Store is the document storage capability.
type Store interface {
	// Create stores doc and returns its id. A non-empty "id" field in doc is
	// kept, and an existing document with that id is replaced.
	Create(ctx context.Context, collection string, doc any) (string, error)
	// Get decodes the document into dst.
	Get(ctx context.Context, collection, id string, dst any) error
	// Update replaces the top-level fields named in patch.
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Query returns the documents matching every filter, oldest first.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error)
}

// Op is a filter comparison.
type Op int

const (
	// OpEq matches a scalar field equal to the value.
	OpEq Op = iota
	// OpContains matches an array field holding the value.
	OpContains
)

// Filter is one query predicate on a top-level document field.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq matches documents whose field equals value. Value must be a string or bool.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Contains matches documents whose array field holds value.
func Contains(field string, value string) Filter {
	return Filter{Field: field, Op: OpContains, Value: value}
}

// text renders a filter value the way the engines expose scalar JSON fields.
func (f Filter) text() string {
	switch v := f.Value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Snapshot is a stored document.
type Snapshot struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document into dst.
func (s Snapshot) Decode(dst any) error {
	return json.Unmarshal(s.Data, dst)
}

// QueryAs runs a query and decodes every match into T.
func QueryAs[T any](ctx context.Context, s Store, collection string, filters ...Filter) ([]T, error) {
	snaps, err := s.Query(ctx, collection, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var v T
		if err := snap.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, snap.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// prepare serialises doc as a JSON object carrying its id, assigning a new
// id when the document has none.
func prepare(doc any) (string, []byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("marshal document: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	if fields == nil {
		return "", nil, errors.New("document must be a JSON object")
	}

	id, _ := fields["id"].(string)
	if id == "" {
		id = uuid.NewString()
		fields["id"] = id
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return "", nil, fmt.Errorf("marshal document: %w", err)
	}
	return id, data, nil
}

// preparePatch serialises a patch. The id field can never be patched.
func preparePatch(patch map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" {
			continue
		}
		clean[k] = v
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	return data, nil
}
