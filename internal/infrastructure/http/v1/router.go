package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cgl/internal/domain/auth"
	"cgl/internal/domain/book"
	"cgl/internal/domain/chapter"
	"cgl/internal/domain/record"
	"cgl/internal/infrastructure/http/v1/handlers"
	"cgl/internal/infrastructure/http/v1/middleware"
	"cgl/internal/infrastructure/metrics"
	"cgl/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	AuthService    *auth.Service
	BookService    *book.Service
	ChapterService *chapter.Service
	RecordService  *record.Service

	// DB is pinged by the readiness probe.
	DB handlers.Pinger

	// Metrics is optional; nil disables /metrics and request metrics.
	Metrics *metrics.Metrics

	// CORSOrigins lists allowed browser origins ("*" for any).
	CORSOrigins []string

	Version string
	// Debug enables gin debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	router.GET("/", healthHandler.Banner)
	router.GET("/healthz", healthHandler.Live)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		registerBookRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers account endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.AuthService)

	public := rg.Group("/user")
	protected := rg.Group("/user")
	protected.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(public, protected)
}

// registerBookRoutes registers books and their chapters and records.
func registerBookRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	books := rg.Group("/books")
	baseHandler := handlers.NewBaseHandler()

	// --- BOOKS ---
	if cfg.BookService != nil {
		handler := handlers.NewBookHandler(baseHandler, cfg.BookService)
		RegisterContentRoutes(books, handler, "id", middleware.RequireAdmin())
	}

	// --- CHAPTERS ---
	if cfg.ChapterService != nil {
		handler := handlers.NewChapterHandler(baseHandler, cfg.ChapterService)
		chapters := books.Group("/:id/chapters")
		RegisterContentRoutes(chapters, handler, "chapterId")
		chapters.GET("/:chapterId/markdown", handler.Markdown)
	}

	// --- RECORDS ---
	if cfg.RecordService != nil {
		handler := handlers.NewRecordHandler(baseHandler, cfg.RecordService)
		RegisterContentRoutes(books.Group("/:id/records"), handler, "recordId")
	}
}
