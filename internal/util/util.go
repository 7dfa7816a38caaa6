// Package util provides small helpers shared across the relay.
package util

import (
	log "github.com/sirupsen/logrus"

	"github.com/pankratov/modelrelay/internal/config"
)

// SetLogLevel configures the logrus log level based on the configuration.
// It sets the log level to DebugLevel if debug mode is enabled, otherwise to InfoLevel.
func SetLogLevel(cfg *config.Config) {
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// HideAPIKey obscures an API key for logging, keeping only the first and
// last four characters of sufficiently long keys.
func HideAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(none)"
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
