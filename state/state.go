package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"geostories.app/core/app"
	"geostories.app/core/cache"
	"geostories.app/core/config"
	"geostories.app/core/friends"
	"geostories.app/core/log"
	"geostories.app/core/notify"
	phnotify "geostories.app/core/notify/posthog"
	"geostories.app/core/rbac"
	"geostories.app/core/session"
	"geostories.app/core/store"
	"github.com/posthog/posthog-go"
)

// State wires configuration into a running App and owns the connections
// it needs.
type State struct {
	App      *app.App
	Store    store.Store
	Enforcer *rbac.Enforcer
	Config   *config.Config

	posthog posthog.Client
	cache   *cache.Cache
	logger  *slog.Logger
}

func Make(ctx context.Context, c *config.Config) (*State, error) {
	logger := log.FromContext(ctx)
	s := &State{Config: c, logger: logger}

	st, err := OpenStore(c)
	if err != nil {
		return s, fmt.Errorf("failed to open store: %w", err)
	}
	s.Store = st

	enforcer, err := rbac.NewEnforcer(c.Session.AclDbPath)
	if err != nil {
		return s, fmt.Errorf("failed to create enforcer: %w", err)
	}
	s.Enforcer = enforcer

	var sess *session.Session
	identity, ok, err := c.Identity()
	if err != nil {
		return s, err
	}
	if ok {
		sess, err = session.New(identity, c.Session.Capabilities, st, enforcer)
		if err != nil {
			return s, fmt.Errorf("failed to create session: %w", err)
		}
		logger.Info("session ready", "pubky", identity, "capabilities", c.Session.Capabilities)
	} else {
		logger.Warn("no session configured, marker and friend commands will fail")
	}

	notifiers := []notify.Notifier{notify.NewLogNotifier(log.SubLogger(logger, "notify"))}
	if c.Posthog.ApiKey != "" {
		ph, err := posthog.NewWithConfig(c.Posthog.ApiKey, posthog.Config{Endpoint: c.Posthog.Endpoint})
		if err != nil {
			return s, fmt.Errorf("failed to create posthog client: %w", err)
		}
		s.posthog = ph
		notifiers = append(notifiers, phnotify.NewPosthogNotifier(ph))
	}
	notifier := notify.NewMergedNotifier(notifiers, log.SubLogger(logger, "notify"))

	var profiles friends.ProfileCache
	if c.Redis.Addr != "" {
		rc, err := cache.NewFromURL(c.Redis.ToURL())
		if err != nil {
			return s, fmt.Errorf("failed to create redis client: %w", err)
		}
		s.cache = rc
		profiles = friends.NewRedisProfileCache(rc, c.ProfileCache.TTL)
	} else {
		profiles, err = friends.NewMemoryProfileCache(c.ProfileCache.TTL)
		if err != nil {
			return s, fmt.Errorf("failed to create profile cache: %w", err)
		}
	}

	s.App = app.New(logger, sess,
		app.WithNotifier(notifier),
		app.WithProfileCache(profiles),
		app.WithWorkers(c.Core.Workers),
	)

	return s, nil
}

// OpenStore builds the object store selected by c.Store.Backend.
func OpenStore(c *config.Config) (store.Store, error) {
	switch c.Store.Backend {
	case "homeserver":
		opts := []store.HomeserverOpt{
			store.WithHTTPClient(store.DefaultHTTPClient(c.Homeserver.Timeout)),
		}
		if c.Session.Pubky != "" && c.Session.Secret != "" {
			identity, _, err := c.Identity()
			if err != nil {
				return nil, err
			}
			opts = append(opts, store.WithSessionSecret(identity, c.Session.Secret))
		}
		return store.NewHomeserverStore(c.Homeserver.Url, opts...)
	case "sqlite":
		return store.NewSQLiteStore(c.Store.DbPath)
	case "fs":
		return store.NewFSStore(c.Store.Root)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
}

func (s *State) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.posthog != nil {
		errs = append(errs, s.posthog.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if c, ok := s.Store.(store.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
