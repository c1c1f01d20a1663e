package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/config"
	appmodel "github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	apprepository "github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	appserver "github.com/Vanjivaka-Sairam/url-shortener/internal/app/server"
	appservice "github.com/Vanjivaka-Sairam/url-shortener/internal/app/service"
	httputil "github.com/Vanjivaka-Sairam/url-shortener/internal/http/util"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/infra/geoip"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/infra/logger"
	infraNATS "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/nats"
	infraPostgres "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/postgres"
	infraPrometheus "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/prometheus"
	infraRedis "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_user", cfg.Postgres.User),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.String("geoip_db", cfg.GeoIP.Database),
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

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}, &appmodel.Visit{}, &appmodel.User{}); err != nil {
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

	var geo *geoip.Resolver
	if cfg.GeoIP.Database != "" {
		geo, err = geoip.Open(cfg.GeoIP.Database)
		if err != nil {
			log.Warn("GeoIP database unavailable, visits will carry no geo data", zap.Error(err))
		} else {
			defer geo.Close()
		}
	}

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

	linkRepo := apprepository.NewLinkRepository(gormDB)
	visitRepo := apprepository.NewVisitRepository(gormDB, pool)
	userRepo := apprepository.NewUserRepository(gormDB)

	appservice.EnsureDefaultUser(ctx, userRepo, log)

	codeFilter := appservice.NewCodeFilter(0)
	if codes, err := linkRepo.ListCodes(ctx); err != nil {
		log.Warn("Failed to seed code filter, fast-path lookups disabled", zap.Error(err))
	} else {
		codeFilter.Seed(codes)
		log.Info("Code filter seeded", zap.Int("codes", len(codes)))
	}

	cacheTTL, _ := time.ParseDuration(cfg.App.CacheTTL)
	linkCache := appservice.NewLinkCache(redisClient, cacheTTL, log)

	lifecycle := appservice.NewLifecycle(time.Duration(cfg.App.LinkTTLDays) * 24 * time.Hour)
	classifier := appservice.NewClassifier(geo)
	publisher := appservice.NewVisitPublisher(js)

	consumer := appservice.NewVisitConsumer(js, log, classifier, linkRepo, visitRepo)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start visit consumer", zap.Error(err))
	}

	resolver := appservice.NewResolver(appservice.ResolverDeps{
		Links:     linkRepo,
		Lifecycle: lifecycle,
		Filter:    codeFilter,
		Cache:     linkCache,
		Sink:      publisher,
		Logger:    log,
	})

	linkService := appservice.NewLinkService(appservice.LinkServiceDeps{
		Links:      linkRepo,
		Aggregator: appservice.NewAggregator(visitRepo),
		Lifecycle:  lifecycle,
		Filter:     codeFilter,
		Cache:      linkCache,
		CodeLength: cfg.App.ShortCodeLength,
		MaxRetries: cfg.App.CreateRetries,
	})

	tokens := httputil.NewTokenSigner([]byte(cfg.Auth.Secret), time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	port := cfg.App.Port
	if port == 0 {
		port = 8080
	}
	baseURL := cfg.App.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Postgres:  pool,
		Redis:     redisClient,
		NATS:      natsConn,
		JetStream: js,
		Users:     userRepo,
		Links:     linkService,
		Resolver:  resolver,
		Tokens:    tokens,
		BaseURL:   baseURL,
	})

	if err := server.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
