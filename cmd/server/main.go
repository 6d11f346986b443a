package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/GSMS-B/ProjectQR/config"
	appmodel "github.com/GSMS-B/ProjectQR/internal/app/model"
	apprepository "github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/GSMS-B/ProjectQR/internal/app/safety"
	appserver "github.com/GSMS-B/ProjectQR/internal/app/server"
	appservice "github.com/GSMS-B/ProjectQR/internal/app/service"
	"github.com/GSMS-B/ProjectQR/internal/infra/geoip"
	"github.com/GSMS-B/ProjectQR/internal/infra/logger"
	infraNATS "github.com/GSMS-B/ProjectQR/internal/infra/nats"
	infraPostgres "github.com/GSMS-B/ProjectQR/internal/infra/postgres"
	infraPrometheus "github.com/GSMS-B/ProjectQR/internal/infra/prometheus"
	infraRedis "github.com/GSMS-B/ProjectQR/internal/infra/redis"
	"go.uber.org/zap"
)

const expirySweepInterval = 30 * time.Second

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
		FilePath:    cfg.App.LogFile,
	})
	defer func() { _ = logger.Sync() }()

	log.Info("Configuration loaded successfully",
		zap.String("base_url", cfg.App.BaseURL),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.Bool("safe_browsing_configured", cfg.Safety.SafeBrowsingKey != ""),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Account{},
		&appmodel.Link{},
		&appmodel.LinkHistory{},
		&appmodel.ScanEvent{},
		&appmodel.Report{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	geoReader, err := geoip.Open(cfg.GeoIP.DBPath)
	if err != nil {
		log.Warn("Failed to open GeoLite2 database, falling back to remote lookups",
			zap.String("path", cfg.GeoIP.DBPath), zap.Error(err))
	}
	if geoReader != nil {
		defer geoReader.Close()
	}

	linkRepo := apprepository.NewLinkRepository(gormDB)
	scanRepo := apprepository.NewScanRepository(gormDB)
	accountRepo := apprepository.NewAccountRepository(gormDB)
	reportRepo := apprepository.NewReportRepository(gormDB)
	statsRepo := apprepository.NewStatsRepository(pool)

	generator, err := appservice.NewCodeGenerator(ctx, linkRepo)
	if err != nil {
		log.Fatal("Failed to seed short-code generator", zap.Error(err))
	}

	tokenTTL := 24 * time.Hour
	if cfg.Auth.AccessTokenTTL != "" {
		if parsed, err := time.ParseDuration(cfg.Auth.AccessTokenTTL); err == nil {
			tokenTTL = parsed
		}
	}
	tokenService, err := appservice.NewTokenService(cfg.Auth.JWTSecret, tokenTTL, cfg.Auth.Issuer)
	if err != nil {
		log.Fatal("Failed to build token service", zap.Error(err))
	}

	locator := appservice.NewIPLocator(log, geoReader)
	recorder := appservice.NewScanRecorder(log, scanRepo, locator)
	publisher := appservice.NewScanPublisher(js)
	consumer := appservice.NewScanConsumer(js, log, recorder)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start scan consumer", zap.Error(err))
	}

	sweeper := appservice.NewExpirySweeper(log, linkRepo, expirySweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	threatCache := safety.NewRedisThreatCache(redisClient)
	threats := safety.NewThreatChecker(log, threatCache, cfg.Safety.SafeBrowsingKey)
	evaluator := safety.NewEvaluator(log, threats)

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Redis:     redisClient,
		Links:     linkRepo,
		Linker:    appservice.NewLinkService(linkRepo, generator),
		QR:        appservice.NewQRService(),
		Auth:      appservice.NewAuthService(accountRepo, tokenService),
		Tokens:    tokenService,
		Analytics: appservice.NewAnalyticsService(linkRepo, scanRepo, statsRepo),
		Reports:   appservice.NewReportService(linkRepo, reportRepo),
		Safety:    evaluator,
		Publisher: publisher,
		Secret:    []byte(cfg.App.Secret),
		BaseURL:   cfg.App.BaseURL,
	})

	if err := server.Listen(":8080"); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
