package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/app"
	"news-atlas/internal/config"
)

func main() {
	var (
		port        = flag.String("port", "", "Port to run the server on (overrides PORT)")
		noScheduler = flag.Bool("no-refresh", false, "Disable the scheduled refresh job")
		refreshNow  = flag.Bool("refresh-on-start", true, "Run one refresh right after startup")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	app.SetupLogging(cfg.Log)
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if !*noScheduler {
		if err := application.Scheduler.Start(cfg.Refresh.Schedule); err != nil {
			log.Fatal().Err(err).Msg("Failed to start refresh scheduler")
		}
	}
	if *refreshNow {
		go func() {
			runCtx, runCancel := context.WithTimeout(ctx, cfg.Refresh.Timeout)
			defer runCancel()
			if _, err := application.Scheduler.RunOnce(runCtx); err != nil {
				log.Warn().Err(err).Msg("Initial refresh did not complete")
			}
		}()
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      application.NewHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if !*noScheduler {
		application.Scheduler.Stop(shutdownCtx)
	}

	log.Info().Msg("Server stopped")
}
