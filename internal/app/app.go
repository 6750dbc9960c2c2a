package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ytstream.api/internal/api/admin"
	"ytstream.api/internal/api/media"
	"ytstream.api/internal/api/pages"
	"ytstream.api/internal/config"
	"ytstream.api/internal/cookie"
	"ytstream.api/internal/keys"
	"ytstream.api/internal/metrics"
	"ytstream.api/internal/middleware"
	"ytstream.api/internal/stream"
	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/response"
	"ytstream.api/pkg/token"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "ytstream.api/docs"
)

// Version is reported by /health.
const Version = "1.0.0"

// Deps are the long-lived components the router serves.
type Deps struct {
	Keys      *keys.Store
	Token     token.Provider
	Resolver  media.Resolver
	Registry  *stream.Registry
	Proxy     *stream.Proxy
	Cookies   *cookie.Artifact
	Refresher *cookie.Refresher
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	YoutubeAuth bool      `json:"youtube_auth"`
}

func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	l := d.Logger

	r := gin.New()

	// Global Middleware
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(l))
	r.Use(middleware.ErrorHandler(l))
	// the API is consumed from arbitrary origins
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "Range"},
		ExposeHeaders:   []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		MaxAge:          12 * time.Hour,
	}))
	if cfg.RateLimit.PerMinute > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.PerMinute, time.Minute)))
	}

	// Only enable Swagger in non-release mode
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/health", health(d.Cookies))

	pagesHandler := pages.NewHandler()
	r.GET("/", pagesHandler.Index)

	authMiddleware := middleware.NewAuthMiddleware(d.Keys, d.Token, l)

	mediaHandler := media.NewHandler(l, cfg, d.Resolver, d.Registry, d.Proxy)
	youtube := []gin.HandlerFunc{}
	if cfg.RateLimit.YoutubePerHour > 0 {
		youtube = append(youtube, middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.YoutubePerHour, time.Hour)))
	}
	youtube = append(youtube, authMiddleware.RequireKey(), mediaHandler.Youtube)
	r.GET("/youtube", youtube...)
	r.GET("/stream/:id", mediaHandler.Stream)

	adminHandler := admin.NewHandler(l, cfg, d.Keys, d.Token, d.Cookies, d.Refresher)
	adminGroup := r.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAdmin())
	{
		adminGroup.GET("", pagesHandler.Admin)
		adminGroup.GET("/metrics", adminHandler.Metrics)
		adminGroup.GET("/list_api_keys", adminHandler.ListAPIKeys)
		adminGroup.POST("/create_api_key", adminHandler.CreateAPIKey)
		adminGroup.POST("/revoke_api_key", adminHandler.RevokeAPIKey)
		adminGroup.GET("/recent_logs", adminHandler.RecentLogs)
		adminGroup.POST("/session", adminHandler.CreateSession)
		adminGroup.GET("/auth_status", adminHandler.AuthStatus)
	}

	return r
}

// @Summary      Health check
// @Description  Service status and whether a usable cookie artifact is present
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func health(cookies *cookie.Artifact) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, HealthResponse{
			Status:      "healthy",
			Version:     Version,
			Timestamp:   time.Now(),
			YoutubeAuth: cookies.Path() != "",
		})
	}
}
