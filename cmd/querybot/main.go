// main is the entry point of the querybot service.
// It initializes the configuration, logger, directory database, GeoIP
// provider, and starts the HTTP API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/srcquery/querybot/internal/config"
	"github.com/srcquery/querybot/internal/fake"
	"github.com/srcquery/querybot/internal/game"
	"github.com/srcquery/querybot/internal/geoip"
	"github.com/srcquery/querybot/internal/logger"
	"github.com/srcquery/querybot/internal/maintenance"
	"github.com/srcquery/querybot/internal/server"
	"github.com/srcquery/querybot/internal/storage"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)
	log.Info().Msg("Starting querybot service...")

	// Optional GeoIP annotation
	var geoProvider *geoip.Provider
	if cfg.GeoIP.Path != "" {
		log.Info().Msg("Checking GeoIP database...")
		if err := geoip.EnsureDB(cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
			log.Error().Err(err).Msg("Failed to download GeoIP database")
		}

		provider, err := geoip.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open GeoIP database, country annotation disabled")
		} else {
			geoProvider = provider
			defer func() {
				if err := geoProvider.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing GeoIP provider")
				}
			}()
		}
	}

	// Directory database
	dir, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize directory database")
	}
	defer func() {
		if err := dir.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing directory database")
		}
	}()

	client := game.NewA2S(cfg.Query)

	// Data generation or one-shot directory audit
	if cfg.Storage.GenerateCount > 0 {
		fake.GenerateData(dir, cfg.Storage.GenerateCount)
		return
	} else if maintenance.Run(cfg, dir, client) {
		return
	}

	srvHandler := server.New(dir, geoProvider, client, cfg)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srvHandler.Run(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
