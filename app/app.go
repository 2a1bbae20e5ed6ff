package app

import (
	"context"
	"log"
	"time"

	"Tcp_postgres_redis_library_system/config"
	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App 聚合各依赖 / wires config, storage, sessions and tokens together.
type App struct {
	Config config.Config
	DB     *gorm.DB
	RDB    *redis.Client // nil when Redis is not configured
	Repo   *db.Repo
	Tokens *session.TokenService
}

func MustNew() *App {
	cfg := config.Load()

	dbConn := db.ConnectDB(cfg)

	// --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
	}

	// --- Sessions ---
	var registry session.Registry
	if rdb != nil {
		registry = session.NewRedisRegistry(rdb)
	} else {
		registry = session.NewMemoryRegistry()
	}
	tokens := session.NewTokenService(cfg.TokenSecret, cfg.TokenTTL, registry)

	a := &App{
		Config: cfg,
		DB:     dbConn,
		RDB:    rdb,
		Repo:   db.NewRepo(dbConn),
		Tokens: tokens,
	}

	if cfg.BootstrapToken != "" {
		admin := a.ensureBootstrapAdmin(context.Background())
		tokens.EnableBootstrapToken(cfg.BootstrapToken, admin)
		log.Println("[WARN] bootstrap token enabled; do not run this in production")
	}
	return a
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
