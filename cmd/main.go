package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-books-api/config"
	"github.com/oksasatya/go-books-api/internal/container"
	pginfra "github.com/oksasatya/go-books-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-books-api/internal/infrastructure/search"
	"github.com/oksasatya/go-books-api/internal/router"
	"github.com/oksasatya/go-books-api/pkg/helpers"
	"github.com/oksasatya/go-books-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Optional backends: a failure disables the feature instead of the server.
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		helpers.LogWarn(logger, "redis unavailable; rate limiting and book cache disabled", err, nil)
	}

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
	if err != nil {
		helpers.LogWarn(logger, "gcs unavailable; thumbnail upload disabled", err, nil)
	}

	esClient, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		helpers.LogWarn(logger, "elasticsearch unavailable; search disabled", err, nil)
		esClient = nil
	}
	if esClient != nil {
		if err := search.NewBookIndex(esClient, cfg.ESBooksIndex).EnsureIndex(ctx); err != nil {
			helpers.LogWarn(logger, "elasticsearch index setup failed", err, logrus.Fields{"index": cfg.ESBooksIndex})
		}
	}

	var rabbitPub *helpers.RabbitPublisher
	if cfg.MailSendEnabled {
		rabbitPub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; welcome emails disabled", err, nil)
			rabbitPub = nil
		}
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetGCS(gcsClient)
	container.SetES(esClient)
	container.SetRabbitPub(rabbitPub)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn))
	defer container.Close()

	// With SHUTDOWN_ON_PANIC the first recovered panic starts a graceful shutdown.
	panicked := make(chan struct{}, 1)
	onPanic := func(any) {
		if !cfg.ShutdownOnPanic {
			return
		}
		select {
		case panicked <- struct{}{}:
		default:
		}
	}

	engine, reg := router.NewEngine(onPanic)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down server")
	case <-panicked:
		logger.Error("unhandled panic; shutting down server")
		exitCode = 1
	case err := <-serverErr:
		logger.WithError(err).Error("listen failed")
		exitCode = 1
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		exitCode = 1
	}
	logger.Info("server exited")
	if exitCode != 0 {
		cancel()
		container.Close()
		pool.Close()
		os.Exit(exitCode)
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
