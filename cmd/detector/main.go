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
	apphttp "vehicle-access-service/internal/http"
	"vehicle-access-service/internal/logging"
	"vehicle-access-service/internal/queue"
)

func main() {
	cfg, err := config.Load("detector")
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Log.Level, cfg.Service)

	broker, err := queue.ConnectNATS(cfg.NATS.URL, cfg.NATS.ConnectRetries, cfg.NATS.PublishRetries, log)
	if err != nil {
		log.Fatal().Err(err).Msg("broker connection failed")
	}
	defer broker.Close()

	r := apphttp.NewRouter(cfg.Service)
	apphttp.NewDetectHandler(broker, log).Register(r)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("detector listening")
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
