package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RedunliveLocations handles GET /api/redunlive/locations: per-location
// livestream status, synced live against the devices.
func (h *Handler) RedunliveLocations(c *gin.Context) {
	locations, err := h.redun.Locations(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

type redunliveToggleRequest struct {
	ActiveDevice string `json:"active_device"`
}

// RedunliveToggle handles POST /api/redunlive/locations/:loc/active: it
// switches the location's active livestream to the requested side.
func (h *Handler) RedunliveToggle(c *gin.Context) {
	var req redunliveToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	loc, err := h.redun.Toggle(c.Request.Context(), c.Param("loc"), req.ActiveDevice)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}
