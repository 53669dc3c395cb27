package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// localStore implements Store on the local filesystem
type localStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed store rooted at the given
// directory. The root is created lazily on first write; a store pointed at a
// directory that never materializes behaves as an empty cache.
func NewLocalStore(root string) Store {
	return &localStore{
		root: root,
	}
}

// Exists reports whether a non-empty cache entry is present for the video
func (l *localStore) Exists(ctx context.Context, videoID uuid.UUID) (bool, error) {
	stat, err := os.Stat(filepath.Join(l.root, entryName(videoID)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat cache entry: %w", err)
	}

	return stat.Size() > 0, nil
}

// Read opens the cache entry for the video
func (l *localStore) Read(ctx context.Context, videoID uuid.UUID) (io.ReadCloser, int64, error) {
	file, err := os.Open(filepath.Join(l.root, entryName(videoID)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to open cache entry: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat cache entry: %w", err)
	}

	return file, stat.Size(), nil
}

// Write stores the entry by writing to a temporary name in the cache root and
// renaming into place, so concurrent readers never observe a partial file.
func (l *localStore) Write(ctx context.Context, videoID uuid.UUID, r io.Reader) error {
	err := os.MkdirAll(l.root, 0755)
	if err != nil {
		return fmt.Errorf("failed to create cache root: %w", err)
	}

	tmp, err := os.CreateTemp(l.root, ".write-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// rename is atomic within the same directory
	err = os.Rename(tmpPath, filepath.Join(l.root, entryName(videoID)))
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}

	return nil
}

// Delete removes the entry at the given path and returns the bytes freed
func (l *localStore) Delete(ctx context.Context, path string) (int64, error) {
	fullPath := filepath.Join(l.root, path)

	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			// already gone, nothing left to free
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat cache entry: %w", err)
	}

	err = os.Remove(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return stat.Size(), nil
}

// List enumerates every file in the cache root
func (l *localStore) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list cache root: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		// hidden files are in-flight writes, not cache entries
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}

		info, err := de.Info()
		if err != nil {
			// raced with a concurrent deletion
			continue
		}

		entries = append(entries, Entry{
			Path:    de.Name(),
			VideoID: parseEntryName(de.Name()),
			Size:    info.Size(),
		})
	}

	return entries, nil
}
