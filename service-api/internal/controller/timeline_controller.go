package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"

	"github.com/gin-gonic/gin"
)

// TimelineController serves cached timeline preview sprites.
type TimelineController struct {
	store assets.Store
}

// NewTimelineController creates a new timeline controller
func NewTimelineController(store assets.Store) *TimelineController {
	return &TimelineController{store: store}
}

// GetTimeline handles GET /timeline/{videoId}
func (tc *TimelineController) GetTimeline(c *gin.Context) {
	videoID, err := model.ParseVideoID(c.Param("videoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video ID"})
		return
	}

	body, size, err := tc.store.Read(c.Request.Context(), videoID)
	if err != nil {
		// a read racing a concurrent deletion lands here too
		if errors.Is(err, assets.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "timeline preview not found"})
			return
		}
		logger.Error(err, "failed to read timeline preview")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read timeline preview"})
		return
	}
	defer body.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Length", strconv.FormatInt(size, 10))
	c.Header("Cache-Control", "public, max-age=3600")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.Warnf("timeline preview transfer interrupted: %v", err)
	}
}
