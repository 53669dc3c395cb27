package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library-settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLibrarySettings(t *testing.T) {
	path := writeSettings(t, `{
		"libraries": [
			{"id": "lib1", "name": "Movies", "enabled": true, "timelineImagesEnabled": true},
			{"id": "lib2", "name": "Shorts", "enabled": true, "timelineImagesEnabled": false},
			{"id": "lib3", "name": "Archive", "enabled": false, "timelineImagesEnabled": true}
		]
	}`)

	settings, err := LoadLibrarySettings(path)
	require.NoError(t, err)

	enabled := settings.EnabledLibraries()
	require.Len(t, enabled, 2)
	assert.Equal(t, "lib1", enabled[0].ID)
	assert.Equal(t, "lib2", enabled[1].ID)

	// disabled libraries never generate previews, even with the flag set
	timeline := settings.TimelineLibraries()
	require.Len(t, timeline, 1)
	assert.Equal(t, "lib1", timeline[0].ID)

	lib, ok := settings.LibraryByID("lib2")
	require.True(t, ok)
	assert.Equal(t, "Shorts", lib.Name)

	_, ok = settings.LibraryByID("missing")
	assert.False(t, ok)
}

func TestLoadLibrarySettingsMissingFile(t *testing.T) {
	_, err := LoadLibrarySettings(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrSettingsUnavailable)
}

func TestLoadLibrarySettingsInvalidJSON(t *testing.T) {
	path := writeSettings(t, "{not json")

	_, err := LoadLibrarySettings(path)
	assert.ErrorIs(t, err, ErrSettingsUnavailable)
}
