package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/musiq-backend/internal/config"
	"github.com/stemsi/musiq-backend/internal/handler"
	"github.com/stemsi/musiq-backend/internal/middleware"
	"github.com/stemsi/musiq-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Question *handler.QuestionHandler
	Media    *handler.MediaHandler
	History  *handler.HistoryHandler
	WS       *handler.WSHandler
}

// Dependencies are the non-handler pieces the routes need.
type Dependencies struct {
	Auth            middleware.TokenValidator
	GenerateLimiter middleware.Limiter
	Log             zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Dependencies, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Brotli())

	// Bound multipart bodies slightly above the per-file limit so both files fit.
	router.MaxMultipartMemory = 2*cfg.MaxUploadBytes + 1<<20

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	var generateLimit []gin.HandlerFunc
	if deps.GenerateLimiter != nil {
		generateLimit = append(generateLimit, middleware.RateLimit(deps.GenerateLimiter, deps.Log))
	}

	// ─── 1. Public API ─────────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/catalog", middleware.CacheControl(300), handlers.Catalog.GetCatalog)
		api.POST("/media/upload", handlers.Media.UploadMedia)
	}

	questions := api.Group("/questions", middleware.NoStore())
	{
		questions.POST("/generate", append(generateLimit, handlers.Question.Generate)...)
		questions.POST("/document", handlers.Question.ExportDocument)
		questions.GET("/:id", handlers.Question.GetGeneration)
		questions.GET("/:id/document", handlers.Question.DownloadDocument)
	}

	// ─── 2. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(deps.Auth), handlers.Auth.GetAdminProfile)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/generate", append(generateLimit, handlers.WS.GenerateStream)...)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(deps.Auth), middleware.NoStore())
	{
		adminAPI.GET("/history", handlers.History.ListHistory)
		adminAPI.GET("/history/:id", handlers.History.GetHistory)
		adminAPI.DELETE("/history/:id", handlers.History.DeleteHistory)
		adminAPI.GET("/history/:id/document", handlers.History.DownloadHistoryDocument)
	}

	return router
}
