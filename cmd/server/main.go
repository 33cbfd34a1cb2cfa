// Package main is the entry point for the CGL API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"

	"cgl/internal/config"
	corenumbering "cgl/internal/core/numbering"
	"cgl/internal/domain"
	"cgl/internal/domain/auth"
	"cgl/internal/domain/book"
	"cgl/internal/domain/chapter"
	"cgl/internal/domain/record"
	"cgl/internal/infrastructure/events"
	v1 "cgl/internal/infrastructure/http/v1"
	"cgl/internal/infrastructure/mail"
	"cgl/internal/infrastructure/metrics"
	"cgl/internal/infrastructure/numbering"
	"cgl/internal/infrastructure/render"
	"cgl/internal/infrastructure/storage/postgres"
	"cgl/internal/infrastructure/storage/postgres/auth_repo"
	"cgl/internal/infrastructure/storage/postgres/content_repo"
	"cgl/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $CGL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting cgl server", "version", version, "env", cfg.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	if cfg.Database.Migrate {
		applied, err := postgres.ApplySchema(ctx, txManager)
		if err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
		log.Infow("schema applied", "files", applied)
	}

	bookRepo := content_repo.NewBookRepo(txManager)
	chapterRepo := content_repo.NewChapterRepo(txManager)
	recordRepo := content_repo.NewRecordRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Metrics ---
	appMetrics := metrics.New(nil)
	appMetrics.RegisterPool(pool.Stats)

	// --- Numbering ---
	strategy, err := corenumbering.ParseStrategy(cfg.Numbering.Strategy)
	if err != nil {
		log.Fatalw("invalid numbering strategy", "error", err)
	}
	finder := numbering.ScopeFinder{
		corenumbering.KindBook:    bookRepo,
		corenumbering.KindChapter: chapterRepo,
		corenumbering.KindRecord:  recordRepo,
	}
	allocator, err := numbering.NewAllocator(strategy, pool, finder)
	if err != nil {
		log.Fatalw("failed to build number allocator", "error", err)
	}
	assignerCfg := corenumbering.DefaultAssignerConfig()
	assignerCfg.MaxAttempts = cfg.Numbering.MaxAttempts
	assignerCfg.Observer = appMetrics
	assigner := corenumbering.NewAssigner(allocator, assignerCfg)
	log.Infow("numbering configured", "strategy", strategy, "max_attempts", assignerCfg.MaxAttempts)

	// --- Events ---
	var publisher domain.Publisher = domain.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(events.Config{
			URL:           cfg.NATS.URL,
			Name:          cfg.NATS.Name,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
		})
		if err != nil {
			log.Fatalw("failed to connect to nats", "error", err)
		}
		defer nc.Drain()
		publisher = events.NewPublisher(nc)
		log.Infow("content events enabled", "url", cfg.NATS.URL)
	}

	// --- Mail ---
	var mailer auth.Mailer = mail.LogMailer{}
	if cfg.Mail.Host != "" {
		smtp, err := mail.NewSMTPMailer(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			TLS:      cfg.Mail.TLS,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			log.Fatalw("failed to configure mail", "error", err)
		}
		mailer = smtp
	} else {
		log.Warn("smtp host not configured, mail is logged instead of sent")
	}

	// --- Services ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	authConfig := auth.DefaultServiceConfig()
	authConfig.OTPTTL = cfg.Auth.OTPTTL
	authService := auth.NewService(userRepo, txManager, jwtService, mailer, authConfig)

	bookService := book.NewService(bookRepo, txManager, assigner, publisher)
	chapterService := chapter.NewService(chapterRepo, bookRepo, txManager, assigner, publisher, render.NewMarkdown())
	recordService := record.NewService(recordRepo, bookRepo, chapterRepo, txManager, assigner, publisher)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		BookService:    bookService,
		ChapterService: chapterService,
		RecordService:  recordService,
		DB:             pool,
		Metrics:        appMetrics,
		CORSOrigins:    cfg.CORS.Origins,
		Version:        version,
		Debug:          cfg.IsDevelopment() && cfg.Log.Level == "debug",
	})

	var handler http.Handler = router
	if cfg.Server.Gzip {
		handler = gzhttp.GzipHandler(router)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	pool.LogStats(shutdownCtx)
	log.Info("server stopped")
}
