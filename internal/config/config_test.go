package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/boardclient/pkg/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// emptyDotEnv returns a .env file with no entries so tests never read the
// working directory's .env.
func emptyDotEnv(t *testing.T) string {
	return writeFile(t, ".env", "")
}

func TestLoad_HCL(t *testing.T) {
	path := writeFile(t, "boardctl.hcl", `
server_url = "http://127.0.0.1:8000"
timeout    = "5s"
tls_verify = false
log_level  = "debug"

storage {
  backend    = "redis"
  redis_addr = "localhost:6379"
}
`)

	cfg, err := Load(path, emptyDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.False(t, cfg.TLSVerify)
	assert.Equal(t, hclog.Debug, cfg.Level())
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)

	d := cfg.Dispatch()
	assert.Equal(t, "http://127.0.0.1:8000", d.BaseURL)
	assert.Equal(t, 5*time.Second, d.Timeout)
	require.NotNil(t, d.TLSVerify)
	assert.False(t, *d.TLSVerify)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, "boardctl.hcl", `server_url = "http://example.com"`)

	cfg, err := Load(path, emptyDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.True(t, cfg.TLSVerify)
	assert.Equal(t, hclog.Info, cfg.Level())
	require.NotNil(t, cfg.Storage)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "boardctl.hcl", `
server_url = "http://from-file"
storage {
  backend = "memory"
}
`)
	t.Setenv("BOARD_SERVER_URL", "https://from-env:8443")
	t.Setenv("BOARD_TIMEOUT", "2s")
	t.Setenv("BOARD_STORAGE_BACKEND", "redis")
	t.Setenv("BOARD_STORAGE_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path, emptyDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "https://from-env:8443", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.RedisAddr)
}

func TestLoad_DotEnv(t *testing.T) {
	dotenv := writeFile(t, ".env", "BOARD_SERVER_URL=http://dotenv.local\n")
	t.Cleanup(func() { _ = os.Unsetenv("BOARD_SERVER_URL") })

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.local", cfg.ServerURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		hcl     string
		wantErr string
	}{
		{name: "missing server url", hcl: `timeout = "1s"`, wantErr: "server_url"},
		{name: "bad scheme", hcl: `server_url = "ftp://x"`, wantErr: "http or https"},
		{name: "bad timeout", hcl: `
server_url = "http://x"
timeout    = "soon"
`, wantErr: "duration"},
		{name: "bad log level", hcl: `
server_url = "http://x"
log_level  = "loud"
`, wantErr: "log_level"},
		{name: "unknown backend", hcl: `
server_url = "http://x"
storage {
  backend = "s3"
}
`, wantErr: "backend"},
		{name: "redis without addr", hcl: `
server_url = "http://x"
storage {
  backend = "redis"
}
`, wantErr: "redis_addr"},
		{name: "syntax error", hcl: `server_url = `, wantErr: "failed to parse configuration file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "boardctl.hcl", tt.hcl)
			_, err := Load(path, emptyDotEnv(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.hcl"), emptyDotEnv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestStorage_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, closeFn, err := (&Storage{Backend: BackendMemory}).Open(ctx)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, s.Set(ctx, "k", `"v"`))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"v"`, got)
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		s, closeFn, err := (&Storage{Backend: BackendFile, Path: dir}).Open(ctx)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, s.Set(ctx, "page", "3"))
		_, err = os.Stat(filepath.Join(dir, "page.json"))
		assert.NoError(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, closeFn, err := (&Storage{Backend: BackendRedis, RedisAddr: mr.Addr()}).Open(ctx)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, s.Set(ctx, "page", "3"))
		got, err := mr.Get(store.DefaultRedisPrefix + "page")
		require.NoError(t, err)
		assert.Equal(t, "3", got)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := (&Storage{Backend: BackendRedis, RedisAddr: addr}).Open(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to redis")
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".boardctl"), expandHome("~/.boardctl"))
	assert.Equal(t, "/var/lib/board", expandHome("/var/lib/board"))
}
