package scenes

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
)

// SettingsLoader yields the current library settings snapshot.
type SettingsLoader func() (*config.LibrarySettings, error)

// Service projects catalog libraries into the playback client's scene list.
type Service struct {
	settings SettingsLoader
	catalog  catalog.Catalog
	baseURL  string
}

// NewService creates a new scene list service
func NewService(settings SettingsLoader, cat catalog.Catalog, publicBaseURL string) *Service {
	return &Service{
		settings: settings,
		catalog:  cat,
		baseURL:  strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Build assembles the scene list for one request. Library listings are
// fetched concurrently, ordered as configured; a library whose listing fails
// is dropped from this response rather than failing the whole list.
func (s *Service) Build(ctx context.Context) (*model.SceneList, error) {
	settings, err := s.settings()
	if err != nil {
		logger.Warnf("scene list served empty: %v", err)
		return &model.SceneList{Scenes: []model.Scene{}}, nil
	}

	libraries := settings.EnabledLibraries()
	sections := make([][]model.Scene, len(libraries))

	var wg sync.WaitGroup
	for i, lib := range libraries {
		wg.Add(1)
		go func(i int, lib config.LibraryConfig) {
			defer wg.Done()
			sections[i] = s.librarySections(ctx, lib)
		}(i, lib)
	}
	wg.Wait()

	list := &model.SceneList{Scenes: []model.Scene{}}
	for _, section := range sections {
		list.Scenes = append(list.Scenes, section...)
	}
	return list, nil
}

// librarySections builds the scene(s) one library contributes: its sorted
// listing, plus an extra shuffled copy when the library asks for one.
func (s *Service) librarySections(ctx context.Context, lib config.LibraryConfig) []model.Scene {
	videos, err := s.catalog.VideosForLibrary(ctx, lib.ID)
	if err != nil {
		logger.Warnf("failed to list videos for library %s: %v", lib.ID, err)
		return nil
	}

	sortVideos(videos, lib.SortBy, lib.SortOrder)

	sections := []model.Scene{{Name: lib.Name, List: s.sceneItems(videos)}}

	if lib.RandomDuplicate {
		shuffled := make([]catalog.Video, len(videos))
		copy(shuffled, videos)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		sections = append(sections, model.Scene{
			Name: lib.Name + " (Random)",
			List: s.sceneItems(shuffled),
		})
	}

	return sections
}

func (s *Service) sceneItems(videos []catalog.Video) []model.SceneItem {
	items := make([]model.SceneItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, model.SceneItem{
			Title:        v.Title,
			VideoLength:  v.DurationSeconds,
			ThumbnailURL: s.catalog.ThumbnailURL(v.ID),
			VideoURL:     s.manifestURL(v.ID),
		})
	}
	return items
}

// manifestURL is the deep link the player follows for one video. It points
// at the per-video descriptor, never at a storage path; the descriptor in
// turn carries the signed stream URLs.
func (s *Service) manifestURL(videoID uuid.UUID) string {
	return fmt.Sprintf("%s/items/%s/manifest", s.baseURL, model.CanonicalVideoID(videoID))
}

func sortVideos(videos []catalog.Video, sortBy, sortOrder string) {
	descending := sortOrder == config.SortDescending

	sort.SliceStable(videos, func(a, b int) bool {
		var less bool
		switch sortBy {
		case config.SortByDateAdded:
			less = videos[a].DateAdded.Before(videos[b].DateAdded)
		default:
			less = strings.ToLower(videos[a].Title) < strings.ToLower(videos[b].Title)
		}
		if descending {
			return !less
		}
		return less
	})
}
