package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sorenkld/hfbridge/internal/api"
	"github.com/sorenkld/hfbridge/internal/config"
	"github.com/sorenkld/hfbridge/internal/logger"
	"github.com/sorenkld/hfbridge/internal/upstream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	log := logger.GetLogger().WithComponent("server")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	if cfg.Upstream.Token == "" {
		log.Warn("HF_API_TOKEN is not set; chat requests will fail with a configuration error")
	}

	generator := upstream.NewHFClient(cfg)
	router := api.NewRouter(cfg, generator)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Listening on port %d, proxying to model %s", cfg.Server.Port, cfg.Upstream.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error: %v", err)
	}
}
