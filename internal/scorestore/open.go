package scorestore

import (
	"context"
	"fmt"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/pkg/config"
	"github.com/wonny/histolib/pkg/database"
	"github.com/wonny/histolib/pkg/logger"
	"github.com/wonny/histolib/pkg/redis"
)

// Handle is an opened store plus whatever connection backs it
type Handle struct {
	contracts.ScoreStore
	Backend string
	close   func() error
	ping    func(ctx context.Context) error
}

// Close releases the backing connection, if any
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Ping checks the backing connection. File and memory stores are always healthy.
func (h *Handle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

// Open builds the store selected by SCORE_STORE
// ⭐ SSOT: 최고점 저장소 선택은 여기서만
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Handle, error) {
	backend := cfg.ScoreStore.Backend
	log = log.WithField("score_store", backend)

	switch backend {
	case "", "file":
		log.WithField("path", cfg.ScoreStore.File).Debug("Using file score store")
		return &Handle{ScoreStore: NewFile(cfg.ScoreStore.File), Backend: "file"}, nil

	case "redis":
		client, err := redis.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open redis score store: %w", err)
		}
		if !client.Enabled() {
			return nil, fmt.Errorf("open redis score store: redis is disabled")
		}
		log.WithField("key", cfg.ScoreStore.Key).Info("Using redis score store")
		return &Handle{
			ScoreStore: NewRedis(client.Redis(), cfg.ScoreStore.Key),
			Backend:    backend,
			close:      client.Close,
			ping:       client.Ping,
		}, nil

	case "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres score store: %w", err)
		}
		store := NewPostgres(db.Pool, cfg.ScoreStore.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.WithField("key", cfg.ScoreStore.Key).Info("Using postgres score store")
		return &Handle{
			ScoreStore: store,
			Backend:    backend,
			close: func() error {
				db.Close()
				return nil
			},
			ping: func(ctx context.Context) error {
				_, err := db.HealthCheck(ctx)
				return err
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown score store %q", backend)
	}
}
