package controller

import (
	"errors"
	"net/http"
	"strconv"

	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"
	proxyService "deovr-bridge/service-api/internal/service/proxy"

	"github.com/gin-gonic/gin"
)

// StreamController relays signed streaming requests to the media origin.
type StreamController struct {
	proxy *proxyService.Service
}

// NewStreamController creates a new stream controller
func NewStreamController(proxy *proxyService.Service) *StreamController {
	return &StreamController{proxy: proxy}
}

// Stream handles GET /stream/{videoId}/{mediaSourceId}/{expiresAt}/{signature}
func (sc *StreamController) Stream(c *gin.Context) {
	videoID, err := model.ParseVideoID(c.Param("videoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video ID"})
		return
	}

	expiresAt, err := strconv.ParseInt(c.Param("expiresAt"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiry"})
		return
	}

	mediaSourceID := c.Param("mediaSourceId")
	signature := c.Param("signature")

	if err := sc.proxy.Authorize(videoID, mediaSourceID, expiresAt, signature); err != nil {
		if errors.Is(err, proxyService.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "stream token expired"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid stream token"})
		return
	}

	if err := sc.proxy.Stream(c.Writer, c.Request, videoID, mediaSourceID); err != nil {
		// nothing has been written yet when the origin is unreachable
		logger.Error(err, "failed to reach media origin")
		c.JSON(http.StatusBadGateway, gin.H{"error": "media origin unavailable"})
	}
}
