package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stemsi/testcraft-backend/internal/blobstore"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediaService(t *testing.T) *MediaService {
	t.Helper()
	cfg := &config.Config{MaxUploadBytes: 1024}
	s := NewMediaService(cfg, blobstore.NewDiskStore(t.TempDir(), "https://cdn.example"))
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestMediaService_SaveListDelete(t *testing.T) {
	s := newMediaService(t)
	ctx := as("t1")

	ref, err := s.SaveImage(ctx, Upload{
		Filename:    "My Diagram (1).PNG",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	})
	require.NoError(t, err)
	assert.Equal(t, blobstore.Ref("itemImages/t1/1700000000000-My_Diagram_1.png"), ref.Ref)
	assert.Equal(t, "https://cdn.example/uploads/"+string(ref.Ref), ref.URL)

	refs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, ref.Ref, refs[0].Ref)

	others, err := s.List(as("t2"))
	require.NoError(t, err)
	assert.Empty(t, others)

	assert.ErrorIs(t, s.Delete(as("t2"), ref.Ref), ErrNotOwner)
	require.NoError(t, s.Delete(ctx, ref.Ref))
	assert.ErrorIs(t, s.Delete(ctx, ref.Ref), ErrNotFound)
}

func TestMediaService_Rejects(t *testing.T) {
	s := newMediaService(t)
	ctx := as("t1")

	_, err := s.SaveImage(ctx, Upload{Filename: "a.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF")})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = s.SaveImage(ctx, Upload{Filename: "a.png", ContentType: "image/png", Size: 4096, Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = s.SaveImage(as(""), Upload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, s.Delete(ctx, "itemImages/t1/../t2/x.png"), blobstore.ErrInvalidPath)
}
