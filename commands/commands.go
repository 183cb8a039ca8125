// Package commands holds the command line tools that drive an App without
// the http api.
package commands

import (
	"context"
	"fmt"

	"geostories.app/core/app"
	"geostories.app/core/config"
	"geostories.app/core/log"
	"geostories.app/core/state"
)

// withApp builds an App from the environment, runs fn and tears it down.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	c, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx = log.IntoContext(ctx, log.New("geostories", log.Options{Level: c.Core.LogLevel}))

	s, err := state.Make(ctx, c)
	defer func() {
		if err := s.Close(); err != nil {
			log.FromContext(ctx).Warn("failed to close state", "err", err)
		}
	}()
	if err != nil {
		return err
	}

	return fn(ctx, s.App)
}
