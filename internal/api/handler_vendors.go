package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createVendorRequest struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// CreateVendor handles POST /api/vendors.
func (h *Handler) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	vendor, err := h.store.CreateVendor(c.Request.Context(), req.Name, req.Model)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// GetVendor handles GET /api/vendors/:id.
func (h *Handler) GetVendor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	vendor, err := h.store.GetVendor(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// ListVendors handles GET /api/vendors.
func (h *Handler) ListVendors(c *gin.Context) {
	vendors, err := h.store.ListVendors(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// DeleteVendor handles DELETE /api/vendors/:id. Vendors cannot be
// deleted; the store always rejects it.
func (h *Handler) DeleteVendor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteVendor(c.Request.Context(), id); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateVendor handles PUT /api/vendors/:id.
func (h *Handler) UpdateVendor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	vendor, err := h.store.UpdateVendor(c.Request.Context(), id, fields)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}
