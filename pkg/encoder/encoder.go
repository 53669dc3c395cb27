package encoder

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Encoder is the external capability that turns a video into a timeline
// preview image. The generation orchestrator depends only on this interface;
// how frames get extracted and tiled is the adapter's business.
type Encoder interface {
	// GeneratePreview produces the preview image for one video. The caller
	// owns the returned reader and must close it.
	GeneratePreview(ctx context.Context, videoID uuid.UUID, mediaSourceID string, durationSeconds int64) (io.ReadCloser, error)
}
