package tasks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupClassifiesAndDeletes(t *testing.T) {
	root := t.TempDir()
	store := assets.NewLocalStore(root)
	ctx := context.Background()

	valid := testVideo(uuid.New(), "valid")
	orphan := uuid.New()

	require.NoError(t, store.Write(ctx, valid.ID, bytes.NewReader([]byte("keep me"))))
	require.NoError(t, store.Write(ctx, orphan, bytes.NewReader([]byte("stale entry"))))
	require.NoError(t, os.WriteFile(filepath.Join(root, "not-a-guid.jpg"), []byte("junk"), 0o644))

	cat := &fakeCatalog{libraries: map[string][]catalog.Video{"lib1": {valid}}}
	svc := NewCleanupService(settingsLoader(timelineLibrary("lib1")), cat, store)

	result, err := svc.Run(ctx, func(float64) {})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Valid)
	assert.Equal(t, 1, result.Orphaned)
	assert.Equal(t, 1, result.Malformed)
	assert.Equal(t, 2, result.Deleted)
	assert.Zero(t, result.DeleteFailed)
	assert.Equal(t, int64(len("stale entry")+len("junk")), result.BytesFreed)

	exists, err := store.Exists(ctx, valid.ID)
	require.NoError(t, err)
	assert.True(t, exists, "entries backed by the catalog must survive")

	exists, err = store.Exists(ctx, orphan)
	require.NoError(t, err)
	assert.False(t, exists)

	_, statErr := os.Stat(filepath.Join(root, "not-a-guid.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanupIsIdempotent(t *testing.T) {
	root := t.TempDir()
	store := assets.NewLocalStore(root)
	ctx := context.Background()

	valid := testVideo(uuid.New(), "valid")
	require.NoError(t, store.Write(ctx, valid.ID, bytes.NewReader([]byte("keep me"))))
	require.NoError(t, store.Write(ctx, uuid.New(), bytes.NewReader([]byte("stale"))))

	cat := &fakeCatalog{libraries: map[string][]catalog.Video{"lib1": {valid}}}
	svc := NewCleanupService(settingsLoader(timelineLibrary("lib1")), cat, store)

	first, err := svc.Run(ctx, func(float64) {})
	require.NoError(t, err)
	require.Equal(t, 1, first.Deleted)

	second, err := svc.Run(ctx, func(float64) {})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Valid)
	assert.Zero(t, second.Deleted)
	assert.Zero(t, second.BytesFreed)
}

func TestCleanupMissingRootCompletesWithZeroEffect(t *testing.T) {
	store := assets.NewLocalStore(filepath.Join(t.TempDir(), "never-created"))
	cat := &fakeCatalog{libraries: map[string][]catalog.Video{}}
	svc := NewCleanupService(settingsLoader(timelineLibrary("lib1")), cat, store)

	var reported []float64
	result, err := svc.Run(context.Background(), func(p float64) { reported = append(reported, p) })
	require.NoError(t, err)

	assert.Zero(t, result.Deleted)
	assert.Equal(t, float64(100), reported[len(reported)-1])
}

func TestCleanupSettingsUnavailableIsNotAnError(t *testing.T) {
	store := assets.NewLocalStore(t.TempDir())
	loader := func() (*config.LibrarySettings, error) {
		return nil, config.ErrSettingsUnavailable
	}
	svc := NewCleanupService(loader, &fakeCatalog{}, store)

	var reported []float64
	result, err := svc.Run(context.Background(), func(p float64) { reported = append(reported, p) })
	require.NoError(t, err)

	assert.Zero(t, result.Deleted)
	assert.Equal(t, []float64{100}, reported)
}

func TestCleanupAbortsWhenCatalogIsUnreachable(t *testing.T) {
	store := assets.NewLocalStore(t.TempDir())
	ctx := context.Background()

	stale := uuid.New()
	require.NoError(t, store.Write(ctx, stale, bytes.NewReader([]byte("do not touch"))))

	cat := &fakeCatalog{err: errors.New("origin down")}
	svc := NewCleanupService(settingsLoader(timelineLibrary("lib1")), cat, store)

	_, err := svc.Run(ctx, func(float64) {})
	require.Error(t, err)

	exists, statErr := store.Exists(ctx, stale)
	require.NoError(t, statErr)
	assert.True(t, exists, "nothing may be deleted when the valid set cannot be established")
}

func TestCleanupProgressWeighting(t *testing.T) {
	root := t.TempDir()
	store := assets.NewLocalStore(root)
	ctx := context.Background()

	valid := testVideo(uuid.New(), "valid")
	require.NoError(t, store.Write(ctx, valid.ID, bytes.NewReader([]byte("keep"))))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Write(ctx, uuid.New(), bytes.NewReader([]byte("stale"))))
	}

	cat := &fakeCatalog{libraries: map[string][]catalog.Video{"lib1": {valid}}}
	svc := NewCleanupService(settingsLoader(timelineLibrary("lib1")), cat, store)

	var reported []float64
	_, err := svc.Run(ctx, func(p float64) { reported = append(reported, p) })
	require.NoError(t, err)

	require.NotEmpty(t, reported)
	assert.True(t, isMonotonic(reported))
	assert.Equal(t, float64(100), reported[len(reported)-1])

	// classification reports stay within the first 80 percent,
	// deletion fills the remainder
	var sawClassify, sawDelete bool
	for _, p := range reported {
		if p <= 80 {
			sawClassify = true
		}
		if p > 80 && p < 100 {
			sawDelete = true
		}
	}
	assert.True(t, sawClassify)
	assert.True(t, sawDelete)
}

func TestCleanupHonorsCancellation(t *testing.T) {
	store := assets.NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())

	valid := testVideo(uuid.New(), "valid")
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Write(ctx, uuid.New(), bytes.NewReader([]byte("stale"))))
	}

	cat := &fakeCatalog{libraries: map[string][]catalog.Video{"lib1": {valid}}}
	svc := NewCleanupService(settingsLoader(timelineLibrary("lib1")), cat, store)

	_, err := svc.Run(ctx, func(p float64) {
		if p >= 24 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
