// ABOUTME: Serve command running the notes web interface.
// ABOUTME: Starts the HTTP server and shuts it down gracefully on SIGINT or SIGTERM.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/config"
	"github.com/harper/notely/internal/logging"
	"github.com/harper/notely/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Serve the notes web interface over HTTP.

The listen address comes from server.addr unless --addr is given.
auth.secret_key (or NOTELY_AUTH_SECRET_KEY) must be set. When --config is
given, edits to log.level in that file apply without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(func(cfg *config.Config, logger *zap.Logger) auth.Revoker {
			return auth.NewRevoker(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		})
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if err := a.cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if serveAddr != "" {
			a.cfg.Server.Addr = serveAddr
		}

		if configPath != "" {
			err := config.Watch(configPath, func(cfg *config.Config, err error) {
				if err != nil {
					a.logger.Warn("config reload failed", zap.Error(err))
					return
				}
				if err := logging.SetLevel(a.level, cfg.Log.Level); err != nil {
					a.logger.Warn("config reload failed", zap.Error(err))
					return
				}
				a.logger.Info("log level reloaded", zap.String("level", cfg.Log.Level))
			})
			if err != nil {
				return err
			}
		}

		srv, err := web.New(a.notes, a.auth, a.logger, web.Options{
			AllowedOrigins: a.cfg.Server.AllowedOrigins,
		})
		if err != nil {
			return err
		}
		return runHTTP(ctx, a.cfg.Server, srv.Handler(), a.logger)
	},
}

// runHTTP serves h until ctx is cancelled, then drains in-flight requests.
func runHTTP(ctx context.Context, cfg config.ServerConfig, h http.Handler, logger *zap.Logger) error {
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
