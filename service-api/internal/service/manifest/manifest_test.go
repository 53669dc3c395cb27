package manifest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/auth"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	videos map[uuid.UUID]catalog.Video
}

func (f *fakeCatalog) VideosForLibrary(ctx context.Context, libraryID string) ([]catalog.Video, error) {
	return nil, nil
}

func (f *fakeCatalog) Video(ctx context.Context, videoID uuid.UUID) (*catalog.Video, error) {
	v, ok := f.videos[videoID]
	if !ok {
		return nil, catalog.ErrVideoNotFound
	}
	return &v, nil
}

func (f *fakeCatalog) ThumbnailURL(videoID uuid.UUID) string {
	return "http://origin/videos/" + videoID.String() + "/thumbnail"
}

func newService(t *testing.T, v catalog.Video, libs ...config.LibraryConfig) (*Service, assets.Store) {
	t.Helper()
	store := assets.NewLocalStore(t.TempDir())
	cat := &fakeCatalog{videos: map[uuid.UUID]catalog.Video{v.ID: v}}
	loader := func() (*config.LibrarySettings, error) {
		return &config.LibrarySettings{Libraries: libs}, nil
	}
	signer := auth.NewStreamTokenSigner("manifest-test-secret")
	return NewService(loader, cat, store, signer, "http://bridge/"), store
}

func testVideo() catalog.Video {
	return catalog.Video{
		ID:              uuid.New(),
		LibraryID:       "lib1",
		Title:           "Sample",
		DurationSeconds: 600,
		MediaSources: []catalog.MediaSource{
			{ID: "src-1080", Codec: "h264", Height: 1080},
		},
	}
}

func TestBuildUnknownVideo(t *testing.T) {
	svc, _ := newService(t, testVideo())

	_, err := svc.Build(context.Background(), uuid.New())
	assert.ErrorIs(t, err, catalog.ErrVideoNotFound)
}

func TestBuildStereoFromItemFormat(t *testing.T) {
	cases := map[string]string{
		catalog.Format3DSideBySide:   model.StereoSBS,
		catalog.Format3DHalfSBS:      model.StereoSBS,
		catalog.Format3DTopAndBottom: model.StereoTB,
		catalog.Format3DHalfTB:       model.StereoTB,
	}

	for format, want := range cases {
		t.Run(format, func(t *testing.T) {
			v := testVideo()
			v.Video3DFormat = format
			// the library fallback must lose against item metadata
			svc, _ := newService(t, v, config.LibraryConfig{ID: "lib1", Enabled: true, FallbackStereoMode: model.StereoOff})

			m, err := svc.Build(context.Background(), v.ID)
			require.NoError(t, err)

			assert.Equal(t, want, m.StereoMode)
			assert.True(t, m.Is3D)
		})
	}
}

func TestBuildFallsBackToLibraryPresentation(t *testing.T) {
	v := testVideo()
	svc, _ := newService(t, v, config.LibraryConfig{
		ID:                 "lib1",
		Enabled:            true,
		FallbackStereoMode: model.StereoSBS,
		FallbackProjection: model.ScreenDome,
	})

	m, err := svc.Build(context.Background(), v.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StereoSBS, m.StereoMode)
	assert.Equal(t, model.ScreenDome, m.ScreenType)
	assert.True(t, m.Is3D)
}

func TestBuildDefaultsToFlatOff(t *testing.T) {
	v := testVideo()
	svc, _ := newService(t, v)

	m, err := svc.Build(context.Background(), v.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StereoOff, m.StereoMode)
	assert.Equal(t, model.ScreenFlat, m.ScreenType)
	assert.False(t, m.Is3D)
}

func TestBuildSignsEveryMediaSource(t *testing.T) {
	v := testVideo()
	v.MediaSources = []catalog.MediaSource{
		{ID: "src-2160", Codec: "hevc", Height: 2160},
		{ID: "src-1080", Codec: "h264", Height: 1080},
		{ID: "src-720", Codec: "h264", Height: 720},
	}
	svc, _ := newService(t, v)

	before := time.Now().Unix()
	m, err := svc.Build(context.Background(), v.ID)
	require.NoError(t, err)

	require.Len(t, m.Encodings, 2)

	canonical := model.CanonicalVideoID(v.ID)
	signer := auth.NewStreamTokenSigner("manifest-test-secret")

	total := 0
	for _, enc := range m.Encodings {
		for _, src := range enc.VideoSources {
			total++
			parts := strings.Split(strings.TrimPrefix(src.URL, "http://bridge/stream/"), "/")
			require.Len(t, parts, 4, "stream URL shape: videoId/mediaSourceId/expiresAt/signature")
			assert.Equal(t, canonical, parts[0])

			var expiresAt int64
			_, scanErr := fmt.Sscanf(parts[2], "%d", &expiresAt)
			require.NoError(t, scanErr)
			assert.GreaterOrEqual(t, expiresAt, before+2*v.DurationSeconds)

			assert.True(t, signer.Verify(parts[0], parts[1], expiresAt, parts[3], time.Now()))
		}
	}
	assert.Equal(t, 3, total)
}

func TestBuildChaptersAndEmptyTimeStamps(t *testing.T) {
	v := testVideo()
	v.Chapters = []catalog.Chapter{
		{StartSeconds: 0, Name: "Intro"},
		{StartSeconds: 120, Name: "Act One"},
	}
	svc, _ := newService(t, v)

	m, err := svc.Build(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.TimeStamp{{TS: 0, Name: "Intro"}, {TS: 120, Name: "Act One"}}, m.TimeStamps)

	bare := testVideo()
	svc, _ = newService(t, bare)
	m, err = svc.Build(context.Background(), bare.ID)
	require.NoError(t, err)
	assert.NotNil(t, m.TimeStamps)
	assert.Empty(t, m.TimeStamps)
}

func TestBuildTimelinePreviewOnlyWhenCached(t *testing.T) {
	v := testVideo()
	svc, store := newService(t, v)
	ctx := context.Background()

	m, err := svc.Build(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, m.TimelinePreviewURL)

	require.NoError(t, store.Write(ctx, v.ID, bytes.NewReader([]byte("sprite"))))

	m, err = svc.Build(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://bridge/timeline/"+model.CanonicalVideoID(v.ID), m.TimelinePreviewURL)
}
