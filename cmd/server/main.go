package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/app"
	"github.com/vncsmyrnk/questionpoll/internal/config"
	"github.com/vncsmyrnk/questionpoll/internal/logger"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending database migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, zl, app.Options{Migrate: *migrate})
	if err != nil {
		zl.Fatal("startup", zap.Error(err))
	}
	defer application.Close()

	server := &stdhttp.Server{
		Addr:              net.JoinHostPort("0.0.0.0", cfg.Server.Port),
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", server.Addr), zap.String("storage", cfg.Database.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
}
