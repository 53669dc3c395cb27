package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/auth"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/model"
	"deovr-bridge/pkg/progress"
	proxyService "deovr-bridge/service-api/internal/service/proxy"
	"deovr-bridge/service-api/internal/service/tasks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type catalogStub struct{}

func (catalogStub) VideosForLibrary(ctx context.Context, libraryID string) ([]catalog.Video, error) {
	return nil, nil
}

func (catalogStub) Video(ctx context.Context, videoID uuid.UUID) (*catalog.Video, error) {
	return nil, catalog.ErrVideoNotFound
}

func (catalogStub) ThumbnailURL(videoID uuid.UUID) string { return "" }

type encoderStub struct{}

func (encoderStub) GeneratePreview(ctx context.Context, videoID uuid.UUID, mediaSourceID string, durationSeconds int64) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func TestGetTimeline(t *testing.T) {
	store := assets.NewLocalStore(t.TempDir())
	cached := uuid.New()
	require.NoError(t, store.Write(context.Background(), cached, bytes.NewReader([]byte("sprite bytes"))))

	router := gin.New()
	router.GET("/timeline/:videoId", NewTimelineController(store).GetTimeline)

	cases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"cached entry", "/timeline/" + model.CanonicalVideoID(cached), http.StatusOK},
		{"hyphenated form accepted", "/timeline/" + cached.String(), http.StatusOK},
		{"cache miss", "/timeline/" + model.CanonicalVideoID(uuid.New()), http.StatusNotFound},
		{"malformed id", "/timeline/not-a-guid", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
				assert.Equal(t, "sprite bytes", rec.Body.String())
			}
		})
	}
}

func TestStreamRejectsBadRequests(t *testing.T) {
	signer := auth.NewStreamTokenSigner("controller-test-secret")
	router := gin.New()
	router.GET("/stream/:videoId/:mediaSourceId/:expiresAt/:signature",
		NewStreamController(proxyService.NewService(signer, "http://origin", "")).Stream)

	videoID := model.CanonicalVideoID(uuid.New())
	expired := time.Now().Add(-time.Second).Unix()
	valid := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{
			"malformed video id",
			fmt.Sprintf("/stream/nope/src-1/%d/%s", valid, signer.Sign("nope", "src-1", valid)),
			http.StatusBadRequest,
		},
		{
			"malformed expiry",
			"/stream/" + videoID + "/src-1/soon/sig",
			http.StatusBadRequest,
		},
		{
			"expired token",
			fmt.Sprintf("/stream/%s/src-1/%d/%s", videoID, expired, signer.Sign(videoID, "src-1", expired)),
			http.StatusUnauthorized,
		},
		{
			"forged signature",
			fmt.Sprintf("/stream/%s/src-1/%d/%s", videoID, valid, signer.Sign(videoID, "other-source", valid)),
			http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestTriggerGenerationConflictsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	blockingLoader := func() (*config.LibrarySettings, error) {
		<-release
		return nil, config.ErrSettingsUnavailable
	}

	store := assets.NewLocalStore(t.TempDir())
	generation := tasks.NewGenerationService(blockingLoader, catalogStub{}, encoderStub{}, store)
	cleanup := tasks.NewCleanupService(blockingLoader, catalogStub{}, store)
	runner := tasks.NewRunner(progress.NewMemoryTracker(), generation, cleanup)
	defer func() {
		close(release)
		runner.Shutdown()
	}()

	router := gin.New()
	tc := NewTasksController(runner)
	router.POST("/tasks/generation", tc.TriggerGeneration)
	router.GET("/tasks/:name", tc.GetTask)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/generation", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/generation", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/generation", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(model.TaskRunning))
}

func TestGetUnknownTask(t *testing.T) {
	store := assets.NewLocalStore(t.TempDir())
	loader := func() (*config.LibrarySettings, error) { return &config.LibrarySettings{}, nil }
	runner := tasks.NewRunner(progress.NewMemoryTracker(),
		tasks.NewGenerationService(loader, catalogStub{}, encoderStub{}, store),
		tasks.NewCleanupService(loader, catalogStub{}, store))

	router := gin.New()
	router.GET("/tasks/:name", NewTasksController(runner).GetTask)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/never-started", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
