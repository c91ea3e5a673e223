package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createStreamConfigRequest struct {
	Name           string `json:"name"`
	StreamID       string `json:"stream_id"`
	StreamUser     string `json:"stream_user"`
	StreamPassword string `json:"stream_password"`
}

// CreateStreamConfig handles POST /api/streamcfgs.
func (h *Handler) CreateStreamConfig(c *gin.Context) {
	var req createStreamConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cfg, err := h.store.CreateStreamConfig(c.Request.Context(),
		req.Name, req.StreamID, req.StreamUser, req.StreamPassword)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// GetStreamConfig handles GET /api/streamcfgs/:id.
func (h *Handler) GetStreamConfig(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cfg, err := h.store.GetStreamConfig(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// ListStreamConfigs handles GET /api/streamcfgs.
func (h *Handler) ListStreamConfigs(c *gin.Context) {
	cfgs, err := h.store.ListStreamConfigs(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfgs)
}
