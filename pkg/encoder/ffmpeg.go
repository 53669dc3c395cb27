package encoder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
)

// Sprite layout: a 10x10 grid of frames, each column 320px wide.
const (
	tileColumns = 10
	tileRows    = 10
	tileWidth   = 320
)

// ffmpegEncoder implements Encoder by sampling frames from the origin stream
// with ffmpeg and tiling them into one sprite JPEG
type ffmpegEncoder struct {
	originBaseURL string
	tempDir       string
	ffmpegPath    string
}

// NewFFmpegEncoder creates an ffmpeg-backed preview encoder
func NewFFmpegEncoder(cfg *config.OriginConfig, tempDir string) Encoder {
	return &ffmpegEncoder{
		originBaseURL: cfg.BaseURL,
		tempDir:       tempDir,
		ffmpegPath:    "ffmpeg", // assumes ffmpeg is in PATH
	}
}

// GeneratePreview produces the tiled preview sprite for one video
func (e *ffmpegEncoder) GeneratePreview(ctx context.Context, videoID uuid.UUID, mediaSourceID string, durationSeconds int64) (io.ReadCloser, error) {
	err := os.MkdirAll(e.tempDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	// one frame per grid cell, spread across the whole runtime
	interval := durationSeconds / (tileColumns * tileRows)
	if interval < 1 {
		interval = 1
	}

	inputURL := catalog.OriginStreamURL(e.originBaseURL, model.CanonicalVideoID(videoID), mediaSourceID)
	outputPath := filepath.Join(e.tempDir, model.CanonicalVideoID(videoID)+".jpg")

	cmd := exec.CommandContext(ctx,
		e.ffmpegPath,
		"-i", inputURL,
		"-vf", fmt.Sprintf("fps=1/%d,scale=%d:-1,tile=%dx%d", interval, tileWidth, tileColumns, tileRows),
		"-frames:v", "1",
		"-q:v", "5",
		"-y",
		outputPath,
	)

	logger.Debugf("generating timeline preview: %s", cmd.String())

	cmdOutput, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("ffmpeg failed for video %s: %w: %s", videoID, err, string(cmdOutput))
	}

	file, err := os.Open(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open generated preview: %w", err)
	}

	return &tempFileReader{File: file, path: outputPath}, nil
}

// tempFileReader removes the scratch file once the caller is done with it
type tempFileReader struct {
	*os.File
	path string
}

func (t *tempFileReader) Close() error {
	err := t.File.Close()
	os.Remove(t.path)
	return err
}
