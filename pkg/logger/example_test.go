package logger_test

import (
	"errors"

	"github.com/wonny/histolib/pkg/config"
	"github.com/wonny/histolib/pkg/logger"
)

// Example_withFields demonstrates structured logging scoped to a ticker
func Example_withFields() {
	log := logger.New(&config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	})

	log.WithTicker("AAPL").WithFields(map[string]interface{}{
		"endpoint": "hist",
		"points":   1258,
	}).Info("History loaded")

	log.WithTicker("MSFT").WithError(errors.New("HTTP 503")).Warn("Stats pending")
}
