package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flash-backend/internal/shared/config"
	"flash-backend/internal/shared/metrics"
	"flash-backend/internal/shared/server/middleware"
	"flash-backend/internal/shared/server/respond"
)

// Routes is implemented by feature handlers that mount under /api/v1.
type Routes interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries what NewRouter needs to mount the API.
type RouterDeps struct {
	Config   config.Config
	Features []Routes
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(middleware.CORSPolicy{
			Origins: deps.Config.CORSAllowOrigin,
			MaxAge:  deps.Config.CORSMaxAge,
		}),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRateLimitRules(),
			GroupFor: middleware.FlashRouteGroup,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)
	for _, feature := range deps.Features {
		if feature != nil {
			feature.RegisterRoutes(api)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
