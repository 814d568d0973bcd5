package app

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fieldstock/cache"
	"fieldstock/config"
	"fieldstock/db"
	"fieldstock/logger"
)

// Handler-facing aliases.
type Ctx = gin.Context
type H = gin.H

// App aggregates the shared dependencies.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Cache  *cache.StockCache
	Config config.Config
	Log    *slog.Logger
}

func MustNew(cfg config.Config) *App {
	lg := logger.New(cfg.App.Env)

	dbConn := db.ConnectDB(cfg.Postgres.DSN)
	lg.Info("database connected")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	useCORS(r, cfg.HTTP.CORSOrigin)
	r.Use(Observe())

	return &App{
		Router: r,
		DB:     dbConn,
		RDB:    rdb,
		Cache:  cache.New(rdb, cfg.Redis.CacheTTL),
		Config: cfg,
		Log:    lg,
	}
}

func (a *App) Close() { _ = a.RDB.Close() }
