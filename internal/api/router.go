package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"cadash/internal/inventory"
	"cadash/internal/mw"
	"cadash/internal/redunlive"
)

// RouterOptions tune the API middleware.
type RouterOptions struct {
	RateLimit rate.Limit
	RateBurst int
	CacheTTL  time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s inventory.Store, redun *redunlive.Service, log zerolog.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	handler := NewHandler(s, redun, log)

	rateLimiter := mw.RateLimiter(opts.RateLimit, opts.RateBurst)
	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(mw.RequestID(), mw.RequestLogger(log), rateLimiter)
	{
		api.GET("/vendors", caching, handler.ListVendors)
		api.POST("/vendors", handler.CreateVendor)
		api.GET("/vendors/:id", handler.GetVendor)
		api.PUT("/vendors/:id", handler.UpdateVendor)
		api.DELETE("/vendors/:id", handler.DeleteVendor)

		api.GET("/locations", caching, handler.ListLocations)
		api.POST("/locations", handler.CreateLocation)
		api.GET("/locations/:id", handler.GetLocation)
		api.PUT("/locations/:id", handler.UpdateLocation)
		api.DELETE("/locations/:id", handler.DeleteLocation)

		api.GET("/clusters", caching, handler.ListClusters)
		api.POST("/clusters", handler.CreateCluster)
		api.GET("/clusters/:id", handler.GetCluster)
		api.PUT("/clusters/:id", handler.UpdateCluster)
		api.DELETE("/clusters/:id", handler.DeleteCluster)

		api.GET("/cas", caching, handler.ListCas)
		api.POST("/cas", handler.CreateCa)
		api.GET("/cas/:id", handler.GetCa)
		api.PUT("/cas/:id", handler.UpdateCa)
		api.DELETE("/cas/:id", handler.DeleteCa)
		api.GET("/cas/:id/config", handler.GetCaConfig)
		api.PUT("/cas/:id/channels/:name", handler.UpdateCaChannel)

		api.GET("/roles", caching, handler.ListRoles)
		api.POST("/roles", handler.CreateRole)
		api.GET("/roles/:ca_id", handler.GetRole)
		// role assignments are immutable: delete and recreate instead
		api.PUT("/roles/:ca_id", func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed,
				gin.H{"error": "roles cannot be updated; delete and recreate"})
		})
		api.DELETE("/roles/:ca_id", handler.DeleteRole)

		api.GET("/streamcfgs", caching, handler.ListStreamConfigs)
		api.POST("/streamcfgs", handler.CreateStreamConfig)
		api.GET("/streamcfgs/:id", handler.GetStreamConfig)

		api.GET("/redunlive/locations", handler.RedunliveLocations)
		api.POST("/redunlive/locations/:loc/active", handler.RedunliveToggle)
	}

	return r
}
