package assets

import (
	"context"
	"errors"
	"io"
	"strings"

	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no cache entry exists for a video. Readers
// racing with a concurrent deletion see this as well; it is a cache miss,
// never a fault.
var ErrNotFound = errors.New("asset not found")

// Extension is the fixed extension of every cache entry.
const Extension = ".jpg"

// Entry describes one file found in the cache.
type Entry struct {
	Path    string     // provider-specific path or object key, usable with Delete
	VideoID *uuid.UUID // nil when the filename does not decode to a video identity
	Size    int64
}

// Store is the timeline-preview asset cache. It exclusively owns the cache
// root; no other component writes into it.
type Store interface {
	// Exists reports whether a non-empty cache entry is present for the video.
	Exists(ctx context.Context, videoID uuid.UUID) (bool, error)

	// Read opens the cache entry for the video, returning the content and its
	// size. A missing entry yields ErrNotFound.
	Read(ctx context.Context, videoID uuid.UUID) (io.ReadCloser, int64, error)

	// Write stores the entry atomically: concurrent readers never observe a
	// partially written file at the final path.
	Write(ctx context.Context, videoID uuid.UUID, r io.Reader) error

	// Delete removes the entry at the given path and returns the bytes freed.
	// Deleting an already absent entry is not an error.
	Delete(ctx context.Context, path string) (int64, error)

	// List enumerates every file in the cache root. A missing root is an
	// empty cache, not an error.
	List(ctx context.Context) ([]Entry, error)
}

// entryName returns the canonical filename for a video's cache entry
func entryName(videoID uuid.UUID) string {
	return model.CanonicalVideoID(videoID) + Extension
}

// parseEntryName decodes a cache filename back to a video identity. Files with
// a foreign extension or an undecodable stem return nil: they can never be a
// cache hit and are deletion candidates for the reconciler.
func parseEntryName(name string) *uuid.UUID {
	if !strings.HasSuffix(name, Extension) {
		return nil
	}

	stem := strings.TrimSuffix(name, Extension)
	id, err := model.ParseVideoID(stem)
	if err != nil {
		return nil
	}
	return &id
}
