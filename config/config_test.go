package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"geostories.app/core/pubky"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Core.ListenAddr)
	assert.Equal(t, 8, cfg.Core.Workers)
	assert.Equal(t, "homeserver", cfg.Store.Backend)
	assert.Equal(t, 10*time.Second, cfg.Homeserver.Timeout)
	assert.Equal(t, pubky.AppCapability, cfg.Session.Capabilities)
	assert.Equal(t, 10*time.Minute, cfg.ProfileCache.TTL)
	assert.Empty(t, cfg.Redis.Addr)

	_, ok, err := cfg.Identity()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadConfig_Overrides(t *testing.T) {
	key := strings.Repeat("y", 52)
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"GEOSTORIES_WORKERS":            "3",
		"GEOSTORIES_STORE_BACKEND":      "sqlite",
		"GEOSTORIES_HOMESERVER_TIMEOUT": "2s",
		"GEOSTORIES_SESSION_PUBKY":      "pubky://" + key,
		"GEOSTORIES_REDIS_ADDR":         "localhost:6379",
		"GEOSTORIES_REDIS_PASS":         "pw",
		"GEOSTORIES_REDIS_DB":           "2",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Core.Workers)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 2*time.Second, cfg.Homeserver.Timeout)
	assert.Equal(t, "redis://:pw@localhost:6379/2", cfg.Redis.ToURL())

	k, ok, err := cfg.Identity()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pubky.Key(key), k)
}

func TestIdentity_Invalid(t *testing.T) {
	cfg := &Config{Session: SessionConfig{Pubky: "nope"}}
	_, _, err := cfg.Identity()
	assert.ErrorIs(t, err, pubky.ErrInvalidKey)
}
