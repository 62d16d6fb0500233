package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/app"
	"github.com/vncsmyrnk/questionpoll/internal/config"
	"github.com/vncsmyrnk/questionpoll/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.Database.Host, "db-host", cfg.Database.Host, "Database host")
	flag.StringVar(&cfg.Database.Port, "db-port", cfg.Database.Port, "Database port")
	flag.StringVar(&cfg.Database.User, "db-user", cfg.Database.User, "Database user")
	flag.StringVar(&cfg.Database.Password, "db-pass", cfg.Database.Password, "Database password")
	flag.StringVar(&cfg.Database.DBName, "db-name", cfg.Database.DBName, "Database name")
	flag.StringVar(&cfg.Redis.Addr, "redis-addr", cfg.Redis.Addr, "Redis address")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum duration of the job")
	flag.Parse()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	if cfg.Redis.Addr == "" {
		zl.Fatal("REDIS_ADDR is required to refresh statistics")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	application, err := app.New(ctx, cfg, zl, app.Options{Job: true})
	if err != nil {
		zl.Fatal("startup", zap.Error(err))
	}
	defer application.Close()

	zl.Info("starting statistics refresh")
	if err := application.Summary.RefreshAllStatistics(ctx); err != nil {
		zl.Fatal("statistics refresh failed", zap.Error(err))
	}
	zl.Info("statistics refresh completed")
}
