package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createClusterRequest struct {
	Name      string `json:"name"`
	AdminHost string `json:"admin_host"`
	Env       string `json:"env"`
}

// CreateCluster handles POST /api/clusters.
func (h *Handler) CreateCluster(c *gin.Context) {
	var req createClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cluster, err := h.store.CreateCluster(c.Request.Context(), req.Name, req.AdminHost, req.Env)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cluster)
}

// GetCluster handles GET /api/clusters/:id.
func (h *Handler) GetCluster(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cluster, err := h.store.GetCluster(c.Request.Context(), id)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, cluster)
}

// ListClusters handles GET /api/clusters.
func (h *Handler) ListClusters(c *gin.Context) {
	clusters, err := h.store.ListClusters(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, clusters)
}

// UpdateCluster handles PUT /api/clusters/:id.
func (h *Handler) UpdateCluster(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	cluster, err := h.store.UpdateCluster(c.Request.Context(), id, fields)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, cluster)
}

// DeleteCluster handles DELETE /api/clusters/:id.
func (h *Handler) DeleteCluster(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCluster(c.Request.Context(), id); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
