package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/handler"
	"github.com/jrmmllrs/test-app-backend/internal/middleware"
	"github.com/jrmmllrs/test-app-backend/internal/model"
	"github.com/jrmmllrs/test-app-backend/internal/response"
	"github.com/jrmmllrs/test-app-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Test       *handler.TestHandler
	Invitation *handler.InvitationHandler
	Proctoring *handler.ProctoringHandler
	Result     *handler.ResultHandler
	User       *handler.UserHandler
	Monitor    *handler.MonitorHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── Auth (public, rate limited) ───────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── Invitation token flow ─────────────────────────────────────────
	// Resolution is public so the landing page works before login; accept
	// requires the invited candidate to be authenticated.
	invitation := router.Group("/api/v1/invitation")
	{
		invitation.GET("/:token", handlers.Invitation.Resolve)
		invitation.POST("/:token/accept", middleware.RequireAuth(authService), handlers.Invitation.Accept)
	}

	// ─── Invitation management (employer/admin) ────────────────────────
	invitations := router.Group("/api/v1/invitations")
	invitations.Use(middleware.RequireAuth(authService))
	{
		invitations.POST("/verify-access", handlers.Invitation.VerifyAccess)

		manage := invitations.Group("")
		manage.Use(middleware.RequireRole(model.RoleEmployer, model.RoleAdmin))
		{
			manage.POST("", handlers.Invitation.Send)
			manage.GET("/test/:testId", handlers.Invitation.ListByTest)
			manage.POST("/:id/remind", handlers.Invitation.Remind)
			manage.DELETE("/:id", handlers.Invitation.Delete)
		}
	}

	// ─── Tests ─────────────────────────────────────────────────────────
	tests := router.Group("/api/v1/tests")
	tests.Use(middleware.RequireAuth(authService))
	{
		taking := tests.Group("")
		taking.Use(middleware.RequireRole(model.RoleCandidate))
		{
			taking.GET("/available", handlers.Test.Available)
			taking.GET("/:id/take", handlers.Test.Take)
			taking.GET("/:id/status", handlers.Test.Status)
			taking.POST("/:id/save-progress", handlers.Test.SaveProgress)
			taking.POST("/:id/submit", handlers.Test.Submit)
		}

		authoring := tests.Group("")
		authoring.Use(middleware.RequireRole(model.RoleEmployer, model.RoleAdmin))
		{
			authoring.POST("", handlers.Test.Create)
			authoring.GET("/my-tests", handlers.Test.MyTests)
			authoring.GET("/:id", handlers.Test.Get)
			authoring.PUT("/:id", handlers.Test.Update)
			authoring.DELETE("/:id", handlers.Test.Delete)
			authoring.GET("/:id/results", handlers.Test.Results)
		}
	}

	// ─── Results ───────────────────────────────────────────────────────
	results := router.Group("/api/v1/results")
	results.Use(middleware.RequireAuth(authService))
	{
		results.GET("/my-results", handlers.Result.Mine)
		results.GET("/all", middleware.RequireRole(model.RoleAdmin), handlers.Result.All)
	}

	// ─── Proctoring ────────────────────────────────────────────────────
	proctoring := router.Group("/api/v1/proctoring")
	proctoring.Use(middleware.RequireAuth(authService))
	{
		proctoring.POST("/events", handlers.Proctoring.LogEvent)
		proctoring.GET("/settings/:testId", handlers.Proctoring.Settings)

		review := proctoring.Group("")
		review.Use(middleware.RequireRole(model.RoleEmployer, model.RoleAdmin))
		{
			review.GET("/test/:testId/events", handlers.Proctoring.TestEvents)
			review.GET("/test/:testId/candidate/:candidateId", handlers.Proctoring.CandidateReport)
		}
	}

	// ─── Users (admin) ─────────────────────────────────────────────────
	users := router.Group("/api/v1/users")
	users.Use(middleware.RequireAuth(authService))
	{
		users.GET("/departments", handlers.User.Departments)

		admin := users.Group("")
		admin.Use(middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("", handlers.User.List)
			admin.POST("", handlers.User.Create)
			admin.GET("/:id", handlers.User.Get)
			admin.PUT("/:id", handlers.User.Update)
			admin.DELETE("/:id", handlers.User.Delete)
		}
	}

	// ─── Meta ──────────────────────────────────────────────────────────
	router.GET("/api/v1/meta/question-types", handler.QuestionTypes)

	// ─── Admin system metrics (SSE) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAuth(authService), middleware.RequireRole(model.RoleAdmin))
	{
		adminAPI.GET("/system/metrics", handlers.System.MetricsSSE)
	}

	// ─── WebSocket (token via query param) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/tests/:testId/monitor", handlers.Monitor.Stream)
	}

	return router
}
