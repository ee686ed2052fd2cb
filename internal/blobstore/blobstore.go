// Package blobstore stores uploaded files such as item images.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sentinel errors for blob operations.
var (
	ErrInvalidPath = errors.New("invalid blob path")
	ErrNotFound    = errors.New("blob not found")
)

// Ref is a stored blob's slash-separated path inside the store.
type Ref string

// Store is the blob storage capability.
type Store interface {
	Upload(ctx context.Context, path string, r io.Reader) (Ref, error)
	AccessURL(ref Ref) string
	Delete(ctx context.Context, ref Ref) error
	List(ctx context.Context, prefix string) ([]Ref, error)
}

// PublicPrefix is the URL path under which DiskStore blobs are served.
const PublicPrefix = "/uploads/"

// DiskStore keeps blobs as files under a root directory.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at dir. Access URLs are baseURL
// followed by PublicPrefix; an empty baseURL gives root-relative URLs.
func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root returns the directory blobs are written to.
func (s *DiskStore) Root() string {
	return s.root
}

// Clean normalises a blob path and rejects anything that would leave the store.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

func (s *DiskStore) filePath(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

// Upload writes r to path, replacing any blob already there.
func (s *DiskStore) Upload(ctx context.Context, p string, r io.Reader) (Ref, error) {
	cleaned, err := Clean(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest := s.filePath(cleaned)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if err := copyAndClose(dst, r); err != nil {
		os.Remove(dest)
		return "", err
	}
	return Ref(cleaned), nil
}

// copyAndClose writes r to dst and closes it. A failed close means the data
// may not have reached the disk, so it is reported like a failed write.
func copyAndClose(dst io.WriteCloser, r io.Reader) error {
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// AccessURL returns the public URL of a blob.
func (s *DiskStore) AccessURL(ref Ref) string {
	return s.baseURL + PublicPrefix + string(ref)
}

// Delete removes a blob.
func (s *DiskStore) Delete(ctx context.Context, ref Ref) error {
	cleaned, err := Clean(string(ref))
	if err != nil {
		return err
	}
	if err := os.Remove(s.filePath(cleaned)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// List returns every blob under prefix in lexical order. A prefix with no
// blobs yields an empty list.
func (s *DiskStore) List(ctx context.Context, prefix string) ([]Ref, error) {
	cleaned, err := Clean(prefix)
	if err != nil {
		return nil, err
	}

	refs := []Ref{}
	err = filepath.WalkDir(s.filePath(cleaned), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		refs = append(refs, Ref(filepath.ToSlash(rel)))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []Ref{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", cleaned, err)
	}
	return refs, nil
}
