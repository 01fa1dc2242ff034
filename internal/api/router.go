package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/campus-issues/issue-tracker/internal/api/handler"
	"github.com/campus-issues/issue-tracker/internal/api/middleware"
	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// uploadBodyLimit leaves headroom above the 5MB image cap for multipart framing.
const uploadBodyLimit = "6M"

// Services bundles the application services the routes are served by.
type Services struct {
	Auth    ports.AuthService
	Issues  ports.IssueService
	Query   ports.QueryService
	Uploads ports.UploadService
}

// Options carries the HTTP-level settings.
type Options struct {
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds and returns the Echo instance with all /api routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.ContextLogger(log))
	e.Use(middleware.AccessLog())
	e.Use(echomiddleware.Recover())
	e.Use(echoprometheus.NewMiddleware("campus_issues"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	issueHandler := handler.NewIssueHandler(svc.Issues, svc.Query)
	statsHandler := handler.NewStatsHandler(svc.Query)
	uploadHandler := handler.NewUploadHandler(svc.Uploads)

	authMiddleware := middleware.Auth(opts.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	throttle := middleware.RateLimitPerIP(opts.RateLimitRPS, opts.RateLimitBurst)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, throttle)
	auth.POST("/login", authHandler.Login, throttle)
	auth.GET("/me", authHandler.Me, authMiddleware)
	auth.PUT("/profile", authHandler.UpdateProfile, authMiddleware)

	// --- Issue routes ---
	issues := api.Group("/issues", authMiddleware)
	issues.GET("", issueHandler.List)
	issues.POST("", issueHandler.Create)
	issues.GET("/:id", issueHandler.Get)
	issues.PUT("/:id", issueHandler.Edit)
	issues.DELETE("/:id", issueHandler.Delete)
	issues.PUT("/:id/status", issueHandler.ChangeStatus, adminOnly)
	issues.POST("/:id/comments", issueHandler.AddComment)

	// --- Stats routes ---
	stats := api.Group("/stats", authMiddleware)
	stats.GET("", statsHandler.Dashboard)
	stats.GET("/admin", statsHandler.Admin, adminOnly)

	// --- Upload routes ---
	upload := api.Group("/upload", authMiddleware)
	upload.POST("", uploadHandler.Upload, echomiddleware.BodyLimit(uploadBodyLimit))
	upload.DELETE("/:public_id", uploadHandler.Delete)

	return e
}
