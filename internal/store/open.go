package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
)

// Open creates the key-value store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (domain.KeyValueStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.StoreDriverBolt, "":
		s, err := NewBoltStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened bolt store", "path", cfg.Path)
		return s, nil

	case config.StoreDriverBadger:
		s, err := NewBadgerStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened badger store", "path", cfg.Path)
		return s, nil

	case config.StoreDriverRedis:
		s, err := NewRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("connected redis store", "prefix", cfg.KeyPrefix)
		return s, nil

	case config.StoreDriverMemory:
		s, _ := NewBoltStore("")
		logger.Info("using memory-only store")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
