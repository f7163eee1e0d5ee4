package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"recruit-eval/internal/config"
	"recruit-eval/internal/db"
	apihttp "recruit-eval/internal/http"
	"recruit-eval/internal/repository"
	"recruit-eval/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Ping(ctx, pool); err != nil {
		logger.Warn("db ping failed", zap.Error(err))
	}

	responseRepo := repository.NewPgResponseRepository(pool)
	processRepo := repository.NewPgProcessRepository(pool)

	resultCache := service.NewMemoryResultCache(cfg.ResultCacheSize, cfg.ResultCacheTTL)
	rankingLimiter := service.NewMemoryRateLimiter(time.Minute, cfg.RankingRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory cache and rate limiter", zap.Error(err))
		} else {
			resultCache = service.NewRedisResultCache(redisClient, cfg.ResultCacheTTL)
			rankingLimiter = service.NewRedisRateLimiter(redisClient, time.Minute, cfg.RankingRateLimit)
		}
		cancel()
	}

	compatSvc := service.NewCompatibilityService(
		responseRepo,
		processRepo,
		resultCache,
		logger,
		service.ScoringOptions{
			MaxScale:           cfg.ScoringMaxScale,
			TrustUpstreamScore: cfg.TrustUpstreamScore,
		},
		cfg.RankingConcurrency,
	)
	if observer, err := service.NewPrometheusObserver("compatibility", nil); err != nil {
		logger.Warn("metrics disabled", zap.Error(err))
	} else {
		compatSvc.SetObserver(observer)
	}

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)
	} else if cfg.IsDevelopment() {
		logger.Warn("jwt secret not configured, compatibility routes are unauthenticated in development")
	} else {
		logger.Error("jwt secret not configured, compatibility routes will reject requests")
	}

	compatHandler := apihttp.NewCompatibilityHandler(logger, compatSvc)
	router := apihttp.NewRouter(logger, compatHandler, jwtSvc, rankingLimiter, cfg.IsDevelopment())

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
