package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/blobstore"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/handler"
	"github.com/stemsi/testcraft-backend/internal/middleware"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Class     *handler.ClassHandler
	Item      *handler.ItemHandler
	Editor    *handler.EditorHandler
	Test      *handler.TestHandler
	Media     *handler.MediaHandler
	Analytics *handler.AnalyticsHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work owned by the router, such as the rate limiter sweep.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())

	// Images are already compressed.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPrefixes(blobstore.PublicPrefix),
	}))

	// Uploaded images never change under the same reference; cache for a year.
	uploadsGroup := router.Group(strings.TrimSuffix(blobstore.PublicPrefix, "/"))
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireTeacher := []gin.HandlerFunc{
		middleware.RequireTeacherJWT(authService),
		middleware.CheckTeacherSession(authService),
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(ctx, 30, time.Minute)

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/signup", authLimiter.Middleware(), handlers.Auth.Signup)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.POST("/logout", append(requireTeacher, handlers.Auth.Logout)...)
		auth.GET("/me", append(requireTeacher, handlers.Auth.Me)...)
	}

	// ─── 2. Teacher Group (JWT + Single Session) ───────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(requireTeacher...)
	{
		// Classes
		teacherAPI.GET("/classes", handlers.Class.ListClasses)
		teacherAPI.POST("/classes", handlers.Class.CreateClass)
		teacherAPI.DELETE("/classes/:id", handlers.Class.DeleteClass)
		teacherAPI.GET("/classes/:id/published-tests", handlers.Class.ListPublishedTests)

		// Item bank
		teacherAPI.GET("/items", handlers.Item.ListItems)
		teacherAPI.POST("/items", handlers.Item.CreateItem)
		teacherAPI.GET("/items/:id", handlers.Item.GetItem)
		teacherAPI.PUT("/items/:id", handlers.Item.UpdateItem)
		teacherAPI.DELETE("/items/:id", handlers.Item.DeleteItem)

		// Editor
		teacherAPI.POST("/editor/convert", handlers.Editor.Convert)
		teacherAPI.POST("/editor/apply", handlers.Editor.Apply)

		// Tests
		teacherAPI.GET("/tests", handlers.Test.ListTests)
		teacherAPI.POST("/tests", handlers.Test.CreateTest)
		teacherAPI.GET("/tests/:id", handlers.Test.GetTest)
		teacherAPI.PUT("/tests/:id", handlers.Test.UpdateTest)
		teacherAPI.DELETE("/tests/:id", handlers.Test.DeleteTest)
		teacherAPI.POST("/tests/:id/publish", handlers.Test.PublishTest)

		// Image bank
		teacherAPI.POST("/media/upload", handlers.Media.UploadMedia)
		teacherAPI.GET("/media", handlers.Media.ListMedia)
		teacherAPI.DELETE("/media", handlers.Media.DeleteMedia)

		// Analytics
		teacherAPI.GET("/classes/:id/analytics", handlers.Analytics.ClassSummary)
		teacherAPI.GET("/classes/:id/analytics/tests/:test_id", handlers.Analytics.TestStats)
		teacherAPI.GET("/classes/:id/analytics/tests/:test_id/export", handlers.Analytics.ExportTestStats)
		teacherAPI.GET("/classes/:id/analytics/students/:student/trend", handlers.Analytics.StudentTrend)
		teacherAPI.GET("/classes/:id/analytics/records/:record_id", handlers.Analytics.Attempt)
		teacherAPI.GET("/classes/:id/analytics/records/:record_id/export", handlers.Analytics.ExportAttempt)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(requireTeacher...)
	{
		ws.GET("/teacher/classes/:id/stream", handlers.Monitor.ClassStream)
	}

	return router
}
