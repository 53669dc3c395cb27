package manifest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/auth"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
)

// SettingsLoader yields the current library settings snapshot.
type SettingsLoader func() (*config.LibrarySettings, error)

// Service builds the per-video deep-link descriptor.
type Service struct {
	settings SettingsLoader
	catalog  catalog.Catalog
	store    assets.Store
	signer   *auth.StreamTokenSigner
	baseURL  string
	now      func() time.Time
}

// NewService creates a new manifest service
func NewService(settings SettingsLoader, cat catalog.Catalog, store assets.Store, signer *auth.StreamTokenSigner, publicBaseURL string) *Service {
	return &Service{
		settings: settings,
		catalog:  cat,
		store:    store,
		signer:   signer,
		baseURL:  strings.TrimSuffix(publicBaseURL, "/"),
		now:      time.Now,
	}
}

// Build assembles the descriptor for one video. Stream URLs are signed with
// an expiry of twice the video's duration from now, so a token stays valid
// for a full playback started right away plus generous seeking.
func (s *Service) Build(ctx context.Context, videoID uuid.UUID) (*model.Manifest, error) {
	video, err := s.catalog.Video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	stereo, screen := s.presentation(video)
	canonical := model.CanonicalVideoID(videoID)
	expiresAt := s.now().Unix() + 2*video.DurationSeconds

	m := &model.Manifest{
		ID:           canonical,
		Title:        video.Title,
		VideoLength:  video.DurationSeconds,
		Is3D:         stereo != model.StereoOff,
		StereoMode:   stereo,
		ScreenType:   screen,
		ThumbnailURL: s.catalog.ThumbnailURL(videoID),
		TimeStamps:   timeStamps(video.Chapters),
		Encodings:    s.encodings(video, canonical, expiresAt),
	}

	if cached, err := s.store.Exists(ctx, videoID); err != nil {
		logger.Warnf("timeline lookup failed for %s: %v", canonical, err)
	} else if cached {
		m.TimelinePreviewURL = fmt.Sprintf("%s/timeline/%s", s.baseURL, canonical)
	}

	return m, nil
}

// presentation resolves stereo mode and projection: the item's own 3D format
// wins, then the library's configured fallback, then flat/off.
func (s *Service) presentation(video *catalog.Video) (stereo, screen string) {
	stereo = stereoFromFormat(video.Video3DFormat)
	screen = ""

	if settings, err := s.settings(); err == nil {
		if lib, ok := settings.LibraryByID(video.LibraryID); ok {
			if stereo == "" {
				stereo = lib.FallbackStereoMode
			}
			screen = lib.FallbackProjection
		}
	}

	if stereo == "" {
		stereo = model.StereoOff
	}
	if screen == "" {
		screen = model.ScreenFlat
	}
	return stereo, screen
}

func stereoFromFormat(format string) string {
	switch format {
	case catalog.Format3DSideBySide, catalog.Format3DHalfSBS:
		return model.StereoSBS
	case catalog.Format3DTopAndBottom, catalog.Format3DHalfTB:
		return model.StereoTB
	default:
		return ""
	}
}

// encodings groups the media sources by codec, one signed stream URL per
// source. Every source of a video shares the same expiry.
func (s *Service) encodings(video *catalog.Video, canonical string, expiresAt int64) []model.Encoding {
	byCodec := make(map[string]int)
	encodings := make([]model.Encoding, 0, 1)

	for _, src := range video.MediaSources {
		source := model.VideoSource{
			Resolution: src.Height,
			URL:        s.signer.StreamURL(s.baseURL, canonical, src.ID, expiresAt),
		}

		idx, seen := byCodec[src.Codec]
		if !seen {
			byCodec[src.Codec] = len(encodings)
			encodings = append(encodings, model.Encoding{Name: src.Codec})
			idx = len(encodings) - 1
		}
		encodings[idx].VideoSources = append(encodings[idx].VideoSources, source)
	}

	return encodings
}

func timeStamps(chapters []catalog.Chapter) []model.TimeStamp {
	stamps := make([]model.TimeStamp, 0, len(chapters))
	for _, ch := range chapters {
		stamps = append(stamps, model.TimeStamp{TS: ch.StartSeconds, Name: ch.Name})
	}
	return stamps
}
