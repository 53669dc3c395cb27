package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrSettingsUnavailable is returned when the library settings document cannot
// be read. Batch tasks treat it as "nothing to do" rather than a failure.
var ErrSettingsUnavailable = errors.New("library settings unavailable")

// Sort options for the per-library scene listing.
const (
	SortByTitle     = "title"
	SortByDateAdded = "dateAdded"

	SortAscending  = "asc"
	SortDescending = "desc"
)

// LibraryConfig holds the externally managed per-library settings. The host
// admin UI mutates the document; this service only reads it.
type LibraryConfig struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Enabled               bool   `json:"enabled"`
	TimelineImagesEnabled bool   `json:"timelineImagesEnabled"`
	SortBy                string `json:"sortBy"`
	SortOrder             string `json:"sortOrder"`
	FallbackStereoMode    string `json:"fallbackStereoMode"`
	FallbackProjection    string `json:"fallbackProjection"`
	RandomDuplicate       bool   `json:"randomDuplicate"`
}

// LibrarySettings is an immutable snapshot of the settings document. Each run
// of a batch task and each catalog-listing request loads its own snapshot so
// mid-run edits never produce inconsistent partial effects.
type LibrarySettings struct {
	Libraries []LibraryConfig `json:"libraries"`
}

// LoadLibrarySettings reads the settings document from disk and returns a
// fresh snapshot. A missing or unreadable document yields ErrSettingsUnavailable.
func LoadLibrarySettings(path string) (*LibrarySettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}

	var settings LibrarySettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}

	return &settings, nil
}

// EnabledLibraries returns the libraries exposed to the playback client.
func (s *LibrarySettings) EnabledLibraries() []LibraryConfig {
	out := make([]LibraryConfig, 0, len(s.Libraries))
	for _, lib := range s.Libraries {
		if lib.Enabled {
			out = append(out, lib)
		}
	}
	return out
}

// TimelineLibraries returns the libraries that participate in timeline
// preview generation and reconciliation.
func (s *LibrarySettings) TimelineLibraries() []LibraryConfig {
	out := make([]LibraryConfig, 0, len(s.Libraries))
	for _, lib := range s.Libraries {
		if lib.Enabled && lib.TimelineImagesEnabled {
			out = append(out, lib)
		}
	}
	return out
}

// LibraryByID looks up one library in the snapshot.
func (s *LibrarySettings) LibraryByID(id string) (LibraryConfig, bool) {
	for _, lib := range s.Libraries {
		if lib.ID == id {
			return lib, true
		}
	}
	return LibraryConfig{}, false
}
