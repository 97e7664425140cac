package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"store-register/internal/config"
	"store-register/internal/database"
	httpserver "store-register/internal/http"
	"store-register/internal/ledger"
	"store-register/internal/session"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	logger := config.GetLogger()

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}
	store := ledger.New(db, ledger.WithLocation(cfg.Location()))

	r := httpserver.NewServer(cfg, store, sessionStore(cfg))
	logger.Infof("listening on :%s (default charge %s%%)", cfg.Port, decimal.NewFromFloat(cfg.DefaultChargePct))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal(err)
	}
}

func sessionStore(cfg *config.Config) session.Store {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(cfg.SessionTTL)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		config.GetLogger().WithError(err).Warn("redis unreachable, keeping drafts in memory")
		return session.NewMemoryStore(cfg.SessionTTL)
	}
	return session.NewRedisStore(client, cfg.SessionTTL)
}
