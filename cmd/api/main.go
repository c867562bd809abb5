package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"buddy-mind/internal/config"
	"buddy-mind/internal/db"
	apihttp "buddy-mind/internal/http"
	"buddy-mind/internal/llm"
	"buddy-mind/internal/repository"
	"buddy-mind/internal/service"

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
	defer logger.Sync()

	if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	profileRepo := repository.NewPgProfileRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.EmbeddingModel, cfg.EmbeddingDim, logger)

	var profileLock service.ProfileLock = service.NewLocalProfileLock()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process profile lock", zap.Error(err))
		} else {
			profileLock = service.NewRedisProfileLock(redisClient, 10*time.Second)
		}
		cancel()
	}

	extractor := service.NewLLMEvidenceExtractor(llmClient, logger)
	personalitySvc := service.NewPersonalityService(extractor, profileRepo, profileLock, logger)
	memorySvc := service.NewMemoryService(memoryRepo, llmClient, cfg.EmbeddingDim, logger)

	personalityHandler := apihttp.NewPersonalityHandler(logger, personalitySvc, memorySvc)
	memoryHandler := apihttp.NewMemoryHandler(logger, memorySvc)
	router := apihttp.NewRouter(logger, personalityHandler, memoryHandler, pool)

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
