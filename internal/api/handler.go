package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cadash/internal/inventory"
	"cadash/internal/redunlive"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store inventory.Store
	redun *redunlive.Service
	log   zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s inventory.Store, redun *redunlive.Service, log zerolog.Logger) *Handler {
	return &Handler{
		store: s,
		redun: redun,
		log:   log.With().Str("component", "api").Logger(),
	}
}

// abortError maps inventory errors onto HTTP statuses: 404 for unknown
// resources, 400 for every constraint violation a client can correct,
// 500 otherwise.
func (h *Handler) abortError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrDuplicateName),
		errors.Is(err, inventory.ErrDuplicateDeviceID),
		errors.Is(err, inventory.ErrEmptyValue),
		errors.Is(err, inventory.ErrInvalidRole),
		errors.Is(err, inventory.ErrInvalidEnvironment),
		errors.Is(err, inventory.ErrAssociationExists),
		errors.Is(err, inventory.ErrInvalidOperation),
		errors.Is(err, inventory.ErrInvalidJSON),
		errors.Is(err, inventory.ErrMissingVendor),
		errors.Is(err, inventory.ErrMissingConfig):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// bindFields decodes an update request body into the field map the store
// validates against its allow-lists.
func bindFields(c *gin.Context) (map[string]any, bool) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	return fields, true
}
