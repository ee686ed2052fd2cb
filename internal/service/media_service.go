package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/stemsi/testcraft-backend/internal/blobstore"
	"github.com/stemsi/testcraft-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// imageRoot is the blob folder holding every teacher's image bank.
const imageRoot = "itemImages"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Upload describes an incoming image.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaRef is a stored image together with its public URL.
type MediaRef struct {
	Ref blobstore.Ref `json:"ref"`
	URL string        `json:"url"`
}

// MediaService handles image uploads and the per-teacher image bank.
type MediaService struct {
	cfg   *config.Config
	blobs blobstore.Store
	now   func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config, blobs blobstore.Store) *MediaService {
	return &MediaService{cfg: cfg, blobs: blobs, now: time.Now}
}

func ownerPrefix(ownerID string) string {
	return imageRoot + "/" + ownerID
}

// SaveImage stores an image in the signed-in teacher's image bank under
// itemImages/<teacher>/<unix millis>-<file name>.
func (s *MediaService) SaveImage(ctx context.Context, up Upload) (*MediaRef, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}

	ext, ok := allowedMIMETypes[up.ContentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, up.ContentType, strings.Join(allowedTypes(), ", "))
	}

	if up.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, up.Size, s.cfg.MaxUploadBytes)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), safeFilename(up.Filename, ext))
	ref, err := s.blobs.Upload(ctx, ownerPrefix(ownerID)+"/"+name, io.LimitReader(up.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return &MediaRef{Ref: ref, URL: s.blobs.AccessURL(ref)}, nil
}

// List returns the signed-in teacher's image bank.
func (s *MediaService) List(ctx context.Context) ([]MediaRef, error) {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := s.blobs.List(ctx, ownerPrefix(ownerID))
	if err != nil {
		return nil, err
	}
	out := make([]MediaRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, MediaRef{Ref: ref, URL: s.blobs.AccessURL(ref)})
	}
	return out, nil
}

// Delete removes an image from the signed-in teacher's image bank.
func (s *MediaService) Delete(ctx context.Context, ref blobstore.Ref) error {
	ownerID, err := currentOwner(ctx)
	if err != nil {
		return err
	}
	cleaned, err := blobstore.Clean(string(ref))
	if err != nil {
		return err
	}
	if !strings.HasPrefix(cleaned, ownerPrefix(ownerID)+"/") {
		return ErrNotOwner
	}
	if err := s.blobs.Delete(ctx, blobstore.Ref(cleaned)); err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// safeFilename keeps the base name readable while dropping path parts and
// characters that do not belong in a URL. The extension follows the MIME type.
func safeFilename(name, ext string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.Trim(unsafeFilenameChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "image"
	}
	return base + ext
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	return types
}
