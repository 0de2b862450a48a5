package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gameforge/gameforge/internal/handler"
	"github.com/gameforge/gameforge/internal/metrics"
	"github.com/gameforge/gameforge/internal/service"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Addr()
			}

			// Graceful shutdown on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			m := metrics.New()
			auth := newAuthService(cfg, db)

			limiter := service.NewTokenBucket(cfg.LoginRate, cfg.LoginBurst, nil)
			defer limiter.Close()

			reaper := service.NewReaper(auth.Sessions(), cfg.ReapInterval, m)
			reaperDone := make(chan struct{})
			go func() {
				defer close(reaperDone)
				reaper.Run(ctx)
			}()

			mux := http.NewServeMux()
			handler.RegisterRoutes(mux, handler.Deps{
				Auth:         auth,
				DB:           db,
				Metrics:      m,
				Limiter:      limiter,
				CookieSecure: cfg.CookieSecure,
			})

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler.Wrap(mux, m, cfg.CORSOrigin),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       120 * time.Second,
				MaxHeaderBytes:    1 << 20, // 1MB
			}

			serveErr := make(chan error, 1)
			go func() {
				slog.Info("server starting", "addr", srv.Addr, "cookie_secure", cfg.CookieSecure)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					stop()
					<-reaperDone
					return err
				}
			case <-ctx.Done():
			}
			slog.Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err = srv.Shutdown(shutdownCtx)
			<-reaperDone
			if err != nil {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PORT)")
	addDBFlag(cmd)
	return cmd
}
