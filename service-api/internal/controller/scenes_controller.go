package controller

import (
	"net/http"

	"deovr-bridge/pkg/logger"
	scenesService "deovr-bridge/service-api/internal/service/scenes"

	"github.com/gin-gonic/gin"
)

// ScenesController serves the catalog projection the playback client browses.
type ScenesController struct {
	scenes *scenesService.Service
}

// NewScenesController creates a new scenes controller
func NewScenesController(scenes *scenesService.Service) *ScenesController {
	return &ScenesController{scenes: scenes}
}

// GetScenes handles GET /scenes and GET /deovr (the player's default path)
func (sc *ScenesController) GetScenes(c *gin.Context) {
	list, err := sc.scenes.Build(c.Request.Context())
	if err != nil {
		logger.Error(err, "failed to build scene list")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build scene list"})
		return
	}

	c.JSON(http.StatusOK, list)
}
