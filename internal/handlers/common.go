package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CommonHandler serves the liveness and version endpoints.
type CommonHandler struct {
	version int
}

// NewCommonHandler returns a new CommonHandler.
func NewCommonHandler(version int) *CommonHandler {
	return &CommonHandler{version: version}
}

// Health handles GET /health.
func (h *CommonHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": true})
}

// Version handles GET /version.
func (h *CommonHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}
