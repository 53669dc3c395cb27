package controller

import (
	"errors"
	"net/http"

	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"
	manifestService "deovr-bridge/service-api/internal/service/manifest"

	"github.com/gin-gonic/gin"
)

// ManifestController serves the per-video deep-link descriptor.
type ManifestController struct {
	manifest *manifestService.Service
}

// NewManifestController creates a new manifest controller
func NewManifestController(manifest *manifestService.Service) *ManifestController {
	return &ManifestController{manifest: manifest}
}

// GetManifest handles GET /items/{videoId}/manifest
func (mc *ManifestController) GetManifest(c *gin.Context) {
	videoID, err := model.ParseVideoID(c.Param("videoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video ID"})
		return
	}

	m, err := mc.manifest.Build(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, catalog.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		logger.Error(err, "failed to build manifest")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build manifest"})
		return
	}

	c.JSON(http.StatusOK, m)
}
