package tasks

import (
	"context"
	"errors"
	"fmt"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/encoder"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"
	"deovr-bridge/pkg/progress"
)

// SettingsLoader produces a fresh library settings snapshot at the start of a
// run. Components never re-read settings mid-operation.
type SettingsLoader func() (*config.LibrarySettings, error)

// GenerationService regenerates the timeline preview cache for every video of
// the enabled, timeline-enabled libraries.
type GenerationService struct {
	settings SettingsLoader
	catalog  catalog.Catalog
	encoder  encoder.Encoder
	store    assets.Store
}

// NewGenerationService creates a new generation orchestrator
func NewGenerationService(settings SettingsLoader, cat catalog.Catalog, enc encoder.Encoder, store assets.Store) *GenerationService {
	return &GenerationService{
		settings: settings,
		catalog:  cat,
		encoder:  enc,
		store:    store,
	}
}

// Run processes the qualifying videos sequentially. A failing item never
// aborts the batch; cancellation is honored between items and returns the
// partial report together with the context error.
func (s *GenerationService) Run(ctx context.Context, force bool, report progress.Reporter) (*model.GenerationReport, error) {
	result := &model.GenerationReport{}

	settings, err := s.settings()
	if err != nil {
		// nothing configured means nothing to do, not a failure
		logger.Warnf("timeline generation skipped: %v", err)
		report(100)
		return result, nil
	}

	videos := s.collectVideos(ctx, settings)
	result.Total = len(videos)

	if result.Total == 0 {
		report(100)
		return result, nil
	}

	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := s.processVideo(ctx, video, force, result)
		if err != nil {
			result.Failed++
			logger.Warnf("timeline preview for video %s failed: %v", video.ID, err)
		}

		report(float64(i+1) / float64(result.Total) * 100)
	}

	return result, nil
}

// collectVideos unions the qualifying videos of every timeline-enabled library
func (s *GenerationService) collectVideos(ctx context.Context, settings *config.LibrarySettings) []catalog.Video {
	var videos []catalog.Video
	seen := make(map[string]bool)

	for _, lib := range settings.TimelineLibraries() {
		libVideos, err := s.catalog.VideosForLibrary(ctx, lib.ID)
		if err != nil {
			logger.Error(err, fmt.Sprintf("failed to list videos for library %s, skipping it this run", lib.ID))
			continue
		}

		for _, v := range libVideos {
			key := model.CanonicalVideoID(v.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			videos = append(videos, v)
		}
	}

	return videos
}

// processVideo generates and stores the preview for one video
func (s *GenerationService) processVideo(ctx context.Context, video catalog.Video, force bool, result *model.GenerationReport) error {
	if !force {
		exists, err := s.store.Exists(ctx, video.ID)
		if err != nil {
			return fmt.Errorf("failed to check cache entry: %w", err)
		}
		if exists {
			result.Skipped++
			return nil
		}
	}

	if len(video.MediaSources) == 0 {
		return errors.New("video has no media sources")
	}

	preview, err := s.encoder.GeneratePreview(ctx, video.ID, video.MediaSources[0].ID, video.DurationSeconds)
	if err != nil {
		return fmt.Errorf("encoder failed: %w", err)
	}
	defer preview.Close()

	err = s.store.Write(ctx, video.ID, preview)
	if err != nil {
		return fmt.Errorf("failed to store preview: %w", err)
	}

	result.Succeeded++
	return nil
}
