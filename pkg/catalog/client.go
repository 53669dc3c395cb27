package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
)

// Client implements Catalog against the media origin's REST API
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a catalog client for the configured media origin
func NewClient(cfg *config.OriginConfig) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// VideosForLibrary lists the qualifying videos of one library
func (c *Client) VideosForLibrary(ctx context.Context, libraryID string) ([]Video, error) {
	url := fmt.Sprintf("%s/api/libraries/%s/videos?recursive=true", c.baseURL, libraryID)

	var videos []Video
	err := c.getJSON(ctx, url, &videos)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for library %s: %w", libraryID, err)
	}

	// listing responses omit the owning library
	for i := range videos {
		videos[i].LibraryID = libraryID
	}

	return videos, nil
}

// Video returns full detail for one video
func (c *Client) Video(ctx context.Context, videoID uuid.UUID) (*Video, error) {
	url := fmt.Sprintf("%s/api/videos/%s", c.baseURL, model.CanonicalVideoID(videoID))

	var video Video
	err := c.getJSON(ctx, url, &video)
	if err != nil {
		return nil, err
	}

	return &video, nil
}

// ThumbnailURL returns the origin URL of a video's poster image
func (c *Client) ThumbnailURL(videoID uuid.UUID) string {
	return fmt.Sprintf("%s/videos/%s/thumbnail", c.baseURL, model.CanonicalVideoID(videoID))
}

// getJSON issues an authenticated GET and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrVideoNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request returned status %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return nil
}
