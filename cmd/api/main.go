package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpadp "credapp/internal/adapter/http"
	idempotency "credapp/internal/adapter/middleware"
	"credapp/internal/adapter/opener"
	"credapp/internal/adapter/repository/gormdb"
	"credapp/internal/adapter/repository/memory"
	"credapp/internal/adapter/repository/redisdb"
	"credapp/internal/config"
	"credapp/internal/infrastructure/cache"
	"credapp/internal/infrastructure/db"
	"credapp/internal/infrastructure/logging"
	"credapp/internal/infrastructure/metrics"
	"credapp/internal/infrastructure/storage"
	ucClient "credapp/internal/usecase/client"
	"credapp/internal/usecase/dataset"
	ucHistory "credapp/internal/usecase/history"
	"credapp/internal/usecase/inbox"
	"credapp/internal/usecase/simulation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid LOG_LEVEL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database")
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis")
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// repositories
	clientRepo := gormdb.NewClientRepository(gdb)
	historyStore := redisdb.NewHistoryStore(rdb, cfg.HistoryTTL())

	// usecases
	clients := ucClient.NewUsecase(clientRepo, cache.NewJSONCache(rdb, "stats:"), cfg.StatsCacheTTL(), m)
	hist := ucHistory.NewUsecase(historyStore, cfg.CreditBudget)
	sim, err := simulation.NewUsecase(cfg.CreditPolicy, hist, m)
	if err != nil {
		logger.Fatal().Err(err).Str("policy", cfg.CreditPolicy).Msg("CREDIT_POLICY")
	}
	requests := inbox.NewUsecase(clients, memory.NewInboxStore(), hist, m)
	importer := dataset.NewService(newOpener(ctx, cfg, logger), gormdb.NewGormUoW(gdb), clientRepo, clients, m)

	if res, imported, err := importer.SeedIfEmpty(ctx, cfg.DatasetPath); err != nil {
		logger.Error().Err(err).Str("path", cfg.DatasetPath).Msg("dataset seed failed")
	} else if imported {
		logger.Info().Int("rows", res.Rows).Str("sha256", res.SHA256).Msg("registry seeded")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{
			echo.HeaderContentType,
			idempotency.HeaderRequestID,
			idempotency.HeaderRequestAt,
			idempotency.HeaderSession,
		},
	}))

	httpadp.Register(e, httpadp.Handlers{
		Health:     httpadp.NewHandler(),
		Clients:    httpadp.NewClientHandler(clients),
		Simulation: httpadp.NewSimulationHandler(sim),
		Inbox:      httpadp.NewInboxHandler(requests),
		History:    httpadp.NewHistoryHandler(hist),
		Dataset:    httpadp.NewDatasetHandler(importer),
		Metrics:    metrics.Handler(reg),
	}, idempotency.Idempotency(rdb, cfg.IdempotencyTTL(), logger))

	go requests.Run(ctx, cfg.PollInterval())

	go func() {
		addr := ":" + cfg.AppPort
		logger.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newOpener reads local files under DATASET_DIR, http(s) URLs when
// DATASET_ALLOW_REMOTE is set and, when an S3 endpoint is configured, s3://
// objects.
func newOpener(ctx context.Context, cfg *config.Config, l zerolog.Logger) *opener.CompoundOpener {
	var s3op *opener.S3Opener
	if cfg.S3Endpoint != "" {
		cli, err := storage.OpenS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			l.Fatal().Err(err).Str("endpoint", cfg.S3Endpoint).Msg("s3")
		}
		if cfg.S3Bucket != "" {
			if ok, err := cli.BucketExists(ctx, cfg.S3Bucket); err != nil || !ok {
				l.Warn().Err(err).Str("bucket", cfg.S3Bucket).Msg("dataset bucket not reachable")
			}
		}
		s3op = opener.NewS3Opener(cli)
	}
	var httpop *opener.HTTPOpener
	if cfg.DatasetRemote {
		httpop = opener.NewHTTPOpener(&http.Client{Timeout: 60 * time.Second})
	}
	fileRoot := cfg.DatasetDir
	if cfg.DatasetAnyPath {
		fileRoot = ""
	}
	return opener.NewCompoundOpener(opener.NewFileOpener(fileRoot), httpop, s3op)
}
