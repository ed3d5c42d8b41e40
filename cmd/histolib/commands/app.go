package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/internal/detail"
	"github.com/wonny/histolib/internal/gateway"
	"github.com/wonny/histolib/internal/quiz"
	"github.com/wonny/histolib/internal/registry"
	"github.com/wonny/histolib/internal/scorestore"
	"github.com/wonny/histolib/pkg/config"
	"github.com/wonny/histolib/pkg/httputil"
	"github.com/wonny/histolib/pkg/logger"
)

// app holds the wired core shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	gateway  *gateway.Gateway
	registry *registry.Registry
	loader   *registry.Loader
	details  *detail.Loader
	engine   *quiz.Engine
	store    *scorestore.Handle
	dash     *dashboard.Dashboard
}

// newApp loads config and wires the core. Terminal commands pass quiet so
// only warnings reach the log unless --verbose is set.
func newApp(ctx context.Context, quiet bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(apiURL, "/")
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "warn"
		cfg.LogFormat = "console"
	}

	log := logger.New(cfg)

	gw := gateway.New(httputil.New(cfg, log), cfg.API.BaseURL, log)

	reg := registry.New(log)
	loader := registry.NewLoader(gw, gw, reg, log)
	details := detail.NewLoader(gw, log)

	store, err := scorestore.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	bank, err := quiz.DefaultBank()
	if err != nil {
		store.Close()
		return nil, err
	}
	engine := quiz.NewEngine(bank, store, log)
	if err := engine.LoadBest(ctx); err != nil {
		log.WithError(err).Warn("Best score unavailable, starting without one")
	}

	return &app{
		cfg:      cfg,
		log:      log,
		gateway:  gw,
		registry: reg,
		loader:   loader,
		details:  details,
		engine:   engine,
		store:    store,
		dash:     dashboard.New(reg, loader, details, engine, log),
	}, nil
}

// Close releases the score store connection
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close score store")
	}
}
