package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	adapthttp "musify/internal/adapter/http"
	"musify/internal/app"
	"musify/internal/auth"
	"musify/internal/config"
	"musify/internal/logging"
	"musify/internal/observability"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Configuration is read from the --config
file, MUSIFY_* environment variables and flags, in increasing precedence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

// runServe serves until ctx is cancelled or a listener fails.
func runServe(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	st, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	hasher, err := auth.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}

	var (
		metrics *observability.Metrics
		obsErrs <-chan error
	)
	if cfg.Metrics.Addr != "" {
		obs := observability.NewServer(cfg.Metrics.Addr, st.ready, logger)
		if obsErrs, err = obs.Start(); err != nil {
			return oops.Code("METRICS_START_FAILED").Wrap(err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				logger.Error("stop observability server", "err", err)
			}
		}()
		metrics = obs.Metrics()
	}

	api, err := adapthttp.New(adapthttp.Services{
		Auth:          app.NewAuthService(st, hasher, codec, cfg.Auth.TokenTTL, logger),
		Authenticator: app.NewRequestAuthenticator(st, codec),
		Accounts:      app.NewAccountService(st, hasher, logger),
		Playlists:     app.NewPlaylistService(st, st, st, logger),
		Tracks:        app.NewTrackService(st),
	}, adapthttp.Options{
		StaticDir: cfg.Server.StaticDir,
		RateLimit: rate.Limit(cfg.Auth.RateLimit),
		RateBurst: cfg.Auth.RateBurst,
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	waitErr := awaitStop(ctx, serveErr, obsErrs, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(waitErr, oops.Code("SHUTDOWN_FAILED").Wrap(err))
	}
	return waitErr
}

// awaitStop blocks until ctx is cancelled or a listener fails. Listener
// failures are returned so the process exits non-zero.
func awaitStop(ctx context.Context, serveErr, obsErrs <-chan error, logger *log.Logger) error {
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-serveErr:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case err, ok := <-obsErrs:
		if ok && err != nil {
			return oops.Code("METRICS_FAILED").Wrap(err)
		}
		return oops.Code("METRICS_FAILED").Errorf("observability server stopped")
	}
}
