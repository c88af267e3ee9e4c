package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/alertrelay/server/internal/api"
	"github.com/obsidianstack/alertrelay/server/internal/config"
	"github.com/obsidianstack/alertrelay/server/internal/dispatch"
	"github.com/obsidianstack/alertrelay/server/internal/metrics"
	"github.com/obsidianstack/alertrelay/server/internal/relay"
	"github.com/obsidianstack/alertrelay/server/internal/ws"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 15 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook relay HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, opts.settings)
		},
	}
}

// serve wires the relay and runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, s *config.Settings) error {
	slog.Info("alertrelay starting", "version", version, "listen", s.ListenAddr, "config", s.ConfigPath)

	in := s.Inputs()
	resolved := config.Resolve(in, nil)
	holder := config.NewHolder(resolved)
	logResolved(resolved)

	reg := metrics.New()
	var svc *relay.Service
	hub := ws.New(func() ws.Message {
		return ws.Message{Event: "config", Data: svc.Introspect()}
	})
	svc = newService(s, holder, reg, relay.WithEvents(hub))
	go hub.Run(ctx)

	if s.WatchConfig && s.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, in, nil, resolved, func(next *config.Resolved) {
				holder.Store(next)
				logResolved(next)
			})
			if err != nil {
				slog.Warn("config: reload disabled", "path", s.ConfigPath, "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           api.New(svc, reg, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("alertrelay shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// newService builds the relay service shared by every command.
func newService(s *config.Settings, holder *config.Holder, reg *metrics.Registry, opts ...relay.Option) *relay.Service {
	d := dispatch.New(dispatch.WithConcurrency(s.Concurrency))
	return relay.New(holder, d, append([]relay.Option{relay.WithMetrics(reg)}, opts...)...)
}

func logResolved(r *config.Resolved) {
	slog.Info("config loaded",
		"source", r.Source,
		"servers", r.Names(),
		"topic", r.Topic,
	)
}
