package assets

import (
	"context"
	"fmt"

	"deovr-bridge/pkg/config"
)

// Store provider constants
const (
	StoreProviderLocal = "local"
	StoreProviderMinIO = "minio"
	StoreProviderGCS   = "gcs"
)

// NewStore creates an asset store based on configuration
func NewStore(ctx context.Context, cfg *config.CacheConfig) (Store, error) {
	switch cfg.Provider {
	case StoreProviderLocal:
		if cfg.LocalPath == "" {
			return nil, fmt.Errorf("local cache path is required")
		}
		return NewLocalStore(cfg.LocalPath), nil

	case StoreProviderMinIO:
		if cfg.MinIOEndpoint == "" {
			return nil, fmt.Errorf("MinIO endpoint is required")
		}
		return NewMinIOStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)

	case StoreProviderGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS bucket name is required")
		}
		return NewGCSStore(ctx, cfg.GCSBucket)

	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}
