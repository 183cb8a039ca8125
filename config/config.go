package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"geostories.app/core/pubky"
	"github.com/sethvargo/go-envconfig"
)

type CoreConfig struct {
	ListenAddr string `env:"LISTEN_ADDR, default=0.0.0.0:8080"`
	LogLevel   string `env:"LOG_LEVEL, default=info"`
	Dev        bool   `env:"DEV, default=false"`
	Workers    int    `env:"WORKERS, default=8"`
}

type StoreConfig struct {
	// one of homeserver, sqlite, fs, memory
	Backend string `env:"BACKEND, default=homeserver"`
	DbPath  string `env:"DB_PATH, default=geostories.db"`
	Root    string `env:"ROOT, default=./data"`
}

type HomeserverConfig struct {
	Url     string        `env:"URL, default=https://homeserver.pubky.app"`
	Timeout time.Duration `env:"TIMEOUT, default=10s"`
}

type SessionConfig struct {
	Pubky        string `env:"PUBKY"`
	Secret       string `env:"SECRET"`
	Capabilities string `env:"CAPABILITIES, default=/pub/geostories.app/:rw"`
	AclDbPath    string `env:"ACL_DB_PATH, default=:memory:"`
}

type ProfileCacheConfig struct {
	TTL time.Duration `env:"TTL, default=10m"`
}

type PosthogConfig struct {
	ApiKey   string `env:"API_KEY"`
	Endpoint string `env:"ENDPOINT, default=https://eu.i.posthog.com"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASS"`
	DB       int    `env:"DB, default=0"`
}

func (cfg RedisConfig) ToURL() string {
	u := &url.URL{
		Scheme: "redis",
		Host:   cfg.Addr,
		Path:   fmt.Sprintf("/%d", cfg.DB),
	}

	if cfg.Password != "" {
		u.User = url.UserPassword("", cfg.Password)
	}

	return u.String()
}

type Config struct {
	Core         CoreConfig         `env:",prefix=GEOSTORIES_"`
	Store        StoreConfig        `env:",prefix=GEOSTORIES_STORE_"`
	Homeserver   HomeserverConfig   `env:",prefix=GEOSTORIES_HOMESERVER_"`
	Session      SessionConfig      `env:",prefix=GEOSTORIES_SESSION_"`
	ProfileCache ProfileCacheConfig `env:",prefix=GEOSTORIES_PROFILE_CACHE_"`
	Posthog      PosthogConfig      `env:",prefix=GEOSTORIES_POSTHOG_"`
	Redis        RedisConfig        `env:",prefix=GEOSTORIES_REDIS_"`
}

// Identity parses the configured session key. ok is false when no session
// is configured.
func (c *Config) Identity() (pubky.Key, bool, error) {
	if c.Session.Pubky == "" {
		return "", false, nil
	}
	k, err := pubky.ParseKey(c.Session.Pubky)
	if err != nil {
		return "", false, fmt.Errorf("GEOSTORIES_SESSION_PUBKY: %w", err)
	}
	return k, true, nil
}

func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	err := envconfig.Process(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFrom reads configuration from l instead of the process
// environment.
func LoadConfigFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	})
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
