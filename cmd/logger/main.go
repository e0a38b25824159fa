package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle-access-service/internal/config"
	"vehicle-access-service/internal/db"
	apphttp "vehicle-access-service/internal/http"
	"vehicle-access-service/internal/logging"
	"vehicle-access-service/internal/queue"
	"vehicle-access-service/internal/repository"
	"vehicle-access-service/internal/service"
)

func main() {
	cfg, err := config.Load("logger")
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Log.Level, cfg.Service)

	gdb, err := db.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	broker, err := queue.ConnectNATS(cfg.NATS.URL, cfg.NATS.ConnectRetries, cfg.NATS.PublishRetries, log)
	if err != nil {
		log.Fatal().Err(err).Msg("broker connection failed")
	}
	defer broker.Close()

	repo := repository.NewAccessRepository(gdb)
	ledger := service.NewLedger(repo, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ledger.Run(ctx, broker); err != nil {
		log.Fatal().Err(err).Msg("failed to start ledger consumers")
	}

	r := apphttp.NewRouter(cfg.Service)
	apphttp.NewLogsHandler(repo, log).Register(r)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("logger listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
