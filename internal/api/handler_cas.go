package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createCaRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	VendorID     int64  `json:"vendor_id"`
	SerialNumber string `json:"serial_number"`
}

// CreateCa handles POST /api/cas.
func (h *Handler) CreateCa(c *gin.Context) {
	var req createCaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ca, err := h.store.CreateCa(c.Request.Context(), req.Name, req.Address, req.VendorID, req.SerialNumber)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ca)
}

// GetCa handles GET /api/cas/:id.
func (h *Handler) GetCa(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ca, err := h.store.GetCa(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ca)
}

// ListCas handles GET /api/cas.
func (h *Handler) ListCas(c *gin.Context) {
	cas, err := h.store.ListCas(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, cas)
}

// UpdateCa handles PUT /api/cas/:id.
func (h *Handler) UpdateCa(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	ca, err := h.store.UpdateCa(c.Request.Context(), id, fields)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ca)
}

// DeleteCa handles DELETE /api/cas/:id.
func (h *Handler) DeleteCa(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCa(c.Request.Context(), id); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCaConfig handles GET /api/cas/:id/config: it ensures the standard
// sub-configs exist and returns the assembled device configuration.
func (h *Handler) GetCaConfig(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cfg, err := h.store.DeviceConfig(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateCaChannel handles PUT /api/cas/:id/channels/:name.
func (h *Handler) UpdateCaChannel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	cfg, err := h.store.EnsureRoleConfig(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	ch, err := h.store.UpdateChannel(c.Request.Context(), cfg.ID, c.Param("name"), fields)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}
