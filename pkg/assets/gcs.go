package assets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// gcsStore implements Store on a Google Cloud Storage bucket
type gcsStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a GCS-backed store
func NewGCSStore(ctx context.Context, bucketName string) (Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &gcsStore{
		client: client,
		bucket: bucketName,
	}, nil
}

func (g *gcsStore) Exists(ctx context.Context, videoID uuid.UUID) (bool, error) {
	attrs, err := g.client.Bucket(g.bucket).Object(entryName(videoID)).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get object attrs: %w", err)
	}

	return attrs.Size > 0, nil
}

func (g *gcsStore) Read(ctx context.Context, videoID uuid.UUID) (io.ReadCloser, int64, error) {
	reader, err := g.client.Bucket(g.bucket).Object(entryName(videoID)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to open object: %w", err)
	}

	return reader, reader.Attrs.Size, nil
}

func (g *gcsStore) Write(ctx context.Context, videoID uuid.UUID, r io.Reader) error {
	// the object only becomes visible when the writer is closed successfully
	writer := g.client.Bucket(g.bucket).Object(entryName(videoID)).NewWriter(ctx)
	writer.ContentType = "image/jpeg"

	_, err := io.Copy(writer, r)
	if err != nil {
		writer.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize object: %w", err)
	}

	return nil
}

func (g *gcsStore) Delete(ctx context.Context, path string) (int64, error) {
	obj := g.client.Bucket(g.bucket).Object(path)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get object attrs: %w", err)
	}

	err = obj.Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to delete object: %w", err)
	}

	return attrs.Size, nil
}

func (g *gcsStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	it := g.client.Bucket(g.bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		entries = append(entries, Entry{
			Path:    attrs.Name,
			VideoID: parseEntryName(attrs.Name),
			Size:    attrs.Size,
		})
	}

	return entries, nil
}
