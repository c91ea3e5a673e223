package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createLocationRequest struct {
	Name string `json:"name"`
}

// CreateLocation handles POST /api/locations.
func (h *Handler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	loc, err := h.store.CreateLocation(c.Request.Context(), req.Name)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

// GetLocation handles GET /api/locations/:id.
func (h *Handler) GetLocation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	loc, err := h.store.GetLocation(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// ListLocations handles GET /api/locations.
func (h *Handler) ListLocations(c *gin.Context) {
	locs, err := h.store.ListLocations(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, locs)
}

// UpdateLocation handles PUT /api/locations/:id.
func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	loc, err := h.store.UpdateLocation(c.Request.Context(), id, fields)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/locations/:id.
func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteLocation(c.Request.Context(), id); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
