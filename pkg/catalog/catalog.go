package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrVideoNotFound is returned when the origin no longer knows the video.
var ErrVideoNotFound = errors.New("video not found in catalog")

// 3D layouts reported by the media origin for an item.
const (
	Format3DSideBySide   = "SideBySide"
	Format3DHalfSBS      = "HalfSideBySide"
	Format3DTopAndBottom = "TopAndBottom"
	Format3DHalfTB       = "HalfTopAndBottom"
)

// Video is one playable catalog item.
type Video struct {
	ID              uuid.UUID     `json:"id"`
	LibraryID       string        `json:"libraryId"`
	Title           string        `json:"title"`
	DurationSeconds int64         `json:"durationSeconds"`
	Video3DFormat   string        `json:"video3dFormat"` // empty when the item carries no 3D metadata
	DateAdded       time.Time     `json:"dateAdded"`
	Chapters        []Chapter     `json:"chapters"`
	MediaSources    []MediaSource `json:"mediaSources"`
}

// MediaSource is one concrete playable rendition of a video.
type MediaSource struct {
	ID     string `json:"id"`
	Codec  string `json:"codec"`
	Height int    `json:"height"`
}

// Chapter is one chapter marker of a video.
type Chapter struct {
	StartSeconds int64  `json:"startSeconds"`
	Name         string `json:"name"`
}

// Catalog is the narrow capability the core needs from the media catalog:
// it is owned and mutated by the external host, this service only reads it.
type Catalog interface {
	// VideosForLibrary lists the qualifying videos (non-folder, video-typed
	// items, recursively) of one library.
	VideosForLibrary(ctx context.Context, libraryID string) ([]Video, error)

	// Video returns full detail for one video, ErrVideoNotFound when the
	// catalog no longer contains it.
	Video(ctx context.Context, videoID uuid.UUID) (*Video, error)

	// ThumbnailURL returns the origin URL of a video's poster image.
	ThumbnailURL(videoID uuid.UUID) string
}

// OriginStreamURL builds the origin URL the proxy forwards to and the encoder
// reads from. Only the video and media source identities go upstream; the
// client-facing token fields never do.
func OriginStreamURL(baseURL string, videoID, mediaSourceID string) string {
	return fmt.Sprintf("%s/videos/%s/stream?mediaSourceId=%s",
		strings.TrimSuffix(baseURL, "/"), videoID, mediaSourceID)
}
