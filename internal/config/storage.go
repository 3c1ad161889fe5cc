package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/boardkit/boardclient/pkg/store"
)

// Open connects the configured backend. The returned close function releases
// any connection and is never nil.
func (s *Storage) Open(ctx context.Context) (store.Storage, func() error, error) {
	noop := func() error { return nil }

	switch s.Backend {
	case BackendFile:
		fs, err := store.NewFileStorage(afero.NewOsFs(), expandHome(s.Path))
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil

	case BackendMemory:
		fs, err := store.NewFileStorage(afero.NewMemMapFs(), "/state")
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", s.RedisAddr, err)
		}

		prefix := s.RedisPrefix
		if prefix == "" {
			prefix = store.DefaultRedisPrefix
		}
		return store.NewRedisStorageWithPrefix(client, prefix), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
