package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"geostories.app/core/config"
	"geostories.app/core/log"
	"geostories.app/core/state"
	"geostories.app/core/web"
	"github.com/urfave/cli/v3"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Usage:  "serve the geostories http api",
		Action: Run,
		Description: `
Environment variables:
	GEOSTORIES_LISTEN_ADDR            (default: 0.0.0.0:8080)
	GEOSTORIES_LOG_LEVEL              (default: info)
	GEOSTORIES_WORKERS                (default: 8)
	GEOSTORIES_STORE_BACKEND          (default: homeserver; sqlite, fs, memory)
	GEOSTORIES_STORE_DB_PATH          (default: geostories.db)
	GEOSTORIES_STORE_ROOT             (default: ./data)
	GEOSTORIES_HOMESERVER_URL         (default: https://homeserver.pubky.app)
	GEOSTORIES_HOMESERVER_TIMEOUT     (default: 10s)
	GEOSTORIES_SESSION_PUBKY
	GEOSTORIES_SESSION_SECRET
	GEOSTORIES_SESSION_CAPABILITIES   (default: /pub/geostories.app/:rw)
	GEOSTORIES_SESSION_ACL_DB_PATH    (default: :memory:)
	GEOSTORIES_PROFILE_CACHE_TTL      (default: 10m)
	GEOSTORIES_REDIS_ADDR
	GEOSTORIES_POSTHOG_API_KEY
`,
	}
}

func Run(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.New("geostories", log.Options{Level: c.Core.LogLevel})
	ctx = log.IntoContext(ctx, logger)

	s, err := state.Make(ctx, c)
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("failed to close state", "err", err)
		}
	}()
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	if s.App.Session() != nil {
		if err := s.App.Connect(ctx); err != nil {
			logger.Warn("failed to load own markers", "err", err)
		}
	}

	srv := &http.Server{
		Addr:              c.Core.ListenAddr,
		Handler:           web.RouterFromState(s, log.SubLogger(logger, "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "address", c.Core.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
