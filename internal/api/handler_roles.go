package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createRoleRequest struct {
	CaID       int64  `json:"ca_id"`
	LocationID int64  `json:"location_id"`
	ClusterID  int64  `json:"cluster_id"`
	Name       string `json:"name"`
}

// CreateRole handles POST /api/roles.
func (h *Handler) CreateRole(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	role, err := h.store.CreateRole(c.Request.Context(), req.CaID, req.LocationID, req.ClusterID, req.Name)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// GetRole handles GET /api/roles/:ca_id.
func (h *Handler) GetRole(c *gin.Context) {
	caID, ok := idParam(c, "ca_id")
	if !ok {
		return
	}
	role, err := h.store.GetRole(c.Request.Context(), caID)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// ListRoles handles GET /api/roles.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.store.ListRoles(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// DeleteRole handles DELETE /api/roles/:ca_id.
func (h *Handler) DeleteRole(c *gin.Context) {
	caID, ok := idParam(c, "ca_id")
	if !ok {
		return
	}
	if err := h.store.DeleteRole(c.Request.Context(), caID); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
