package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/gastos-intake/internal/application"
	appdocs "github.com/bryanwahyu/gastos-intake/internal/application/documents"
	"github.com/bryanwahyu/gastos-intake/internal/config"
	auditdomain "github.com/bryanwahyu/gastos-intake/internal/domain/audit"
	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
	"github.com/bryanwahyu/gastos-intake/internal/infra/cache"
	mysqlp "github.com/bryanwahyu/gastos-intake/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/gastos-intake/internal/infra/db/postgres"
	extheuristic "github.com/bryanwahyu/gastos-intake/internal/infra/extraction/heuristic"
	extopenai "github.com/bryanwahyu/gastos-intake/internal/infra/extraction/openai"
	"github.com/bryanwahyu/gastos-intake/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/gastos-intake/internal/infra/storage"
	"github.com/bryanwahyu/gastos-intake/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database (mysql default, postgres optional)
	var (
		repo      domain.Repository
		auditRepo auditdomain.Repository
		dbChecker middleware.HealthChecker
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		defer db.Close()
		repo = postgresp.NewDocumentRepository(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		defer db.Close()
		repo = mysqlp.NewDocumentRepository(db)
		auditRepo = mysqlp.NewAuditRepository(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init error", zap.Error(err))
	}

	// signed-URL cache is optional
	var urls appdocs.URLCache
	checkers := map[string]middleware.HealthChecker{"database": dbChecker}
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		urls = c
		checkers["cache"] = &middleware.CacheHealthChecker{Cache: c}
	}

	// extraction engine: LLM when configured, heuristic otherwise
	var engine extraction.Engine
	if cfg.OpenAI.APIKey != "" {
		engine = extopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		engine = extheuristic.New()
	}

	// init service
	svc := &appdocs.Service{
		Repo:   repo,
		Files:  store,
		Engine: engine,
		Audit:  auditRepo,
		URLs:   urls,
		Clock:  application.SystemClock{},
		Log:    logger,
		Cfg: appdocs.Config{
			UmbralConfianza: cfg.Intake.UmbralConfianza,
			SignedURLTTL:    cfg.SignedURLTTL(),
			MonedaBase:      cfg.Intake.MonedaBase,
		},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.RequestLogger(logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	mux.Use(middleware.RateLimitMiddleware(30, 5))
	mux.Method("GET", "/healthz", middleware.HealthHandler(checkers))
	mux.Mount("/", httpserver.NewRouter(svc, cfg.Intake.MaxUploadBytes))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
