package assets

import (
	"context"
	"fmt"
	"io"

	"deovr-bridge/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioStore implements Store on a MinIO (or any S3 compatible) bucket.
// Object PUTs are atomic, so the local store's temp-and-rename dance is not
// needed here.
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates a MinIO-backed store
func NewMinIOStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &minioStore{
		client: client,
		bucket: bucket,
	}

	err = store.ensureBucket(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	logger.Infof("MinIO asset store initialized, endpoint: %s, bucket: %s", endpoint, bucket)
	return store, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (m *minioStore) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Infof("created asset bucket %s", m.bucket)
	}

	return nil
}

func (m *minioStore) Exists(ctx context.Context, videoID uuid.UUID) (bool, error) {
	stat, err := m.client.StatObject(ctx, m.bucket, entryName(videoID), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}

	return stat.Size > 0, nil
}

func (m *minioStore) Read(ctx context.Context, videoID uuid.UUID) (io.ReadCloser, int64, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, entryName(videoID), minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}

	// GetObject is lazy, Stat surfaces a missing key
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, stat.Size, nil
}

func (m *minioStore) Write(ctx context.Context, videoID uuid.UUID, r io.Reader) error {
	_, err := m.client.PutObject(ctx, m.bucket, entryName(videoID), r, -1, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	return nil
}

func (m *minioStore) Delete(ctx context.Context, path string) (int64, error) {
	stat, err := m.client.StatObject(ctx, m.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat object: %w", err)
	}

	err = m.client.RemoveObject(ctx, m.bucket, path, minio.RemoveObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete object: %w", err)
	}

	return stat.Size, nil
}

func (m *minioStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}

		entries = append(entries, Entry{
			Path:    obj.Key,
			VideoID: parseEntryName(obj.Key),
			Size:    obj.Size,
		})
	}

	return entries, nil
}
