package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kern-inventory-api/internal"
	"kern-inventory-api/internal/config"

	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	srv, err := internal.NewServer(dsn, cfg, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router,
	}

	go func() {
		log.Info("starting kern inventory api", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := srv.Close(ctx); err != nil {
		log.Warn("db close failed", zap.Error(err))
	}
}
