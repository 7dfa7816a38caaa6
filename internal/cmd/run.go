// Package cmd wires configuration, logging, and the API server into the
// running service.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pankratov/modelrelay/internal/api"
	"github.com/pankratov/modelrelay/internal/config"
	"github.com/pankratov/modelrelay/internal/constant"
	"github.com/pankratov/modelrelay/internal/util"
)

// StartService builds the API server from the configuration, starts it, and
// blocks until a shutdown signal arrives, then shuts the server down
// gracefully.
//
// Parameters:
//   - cfg: The application configuration
func StartService(cfg *config.Config) {
	if cfg.UpstreamAPIKey == "" {
		log.Warn("no upstream API key configured; upstream requests will be unauthenticated")
	}

	apiServer := api.NewServer(cfg)

	log.Infof("%s %s listening on port %d, upstream %s (key %s)",
		constant.ServiceName, constant.Version, cfg.Port, cfg.UpstreamBaseURL, util.HideAPIKey(cfg.UpstreamAPIKey))

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start()
	}()

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	case sig := <-sigChan:
		log.Infof("Received %s. Cleaning up...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := apiServer.Stop(ctx); err != nil {
			log.Errorf("Error stopping API server: %v", err)
		}
		log.Debug("Cleanup completed. Exiting...")
	}
}
