package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// listener is the lifecycle shared by the API and metrics servers.
type listener struct {
	name   string
	server *http.Server
	logger *slog.Logger
}

func newListener(name, host string, port int, logger *slog.Logger) *listener {
	return &listener{
		name:   name,
		logger: logger,
		server: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (l *listener) Addr() string {
	return l.server.Addr
}

// Start serves until Shutdown is called. Request contexts inherit ctx values
// but not its cancellation, so in-flight requests can drain on shutdown.
func (l *listener) Start(ctx context.Context) error {
	base := context.WithoutCancel(ctx)
	l.server.BaseContext = func(net.Listener) context.Context { return base }
	l.logger.Info("starting "+l.name, slog.String("addr", l.server.Addr))

	if err := l.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", l.name, err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (l *listener) Shutdown(ctx context.Context) error {
	l.logger.Info("stopping "+l.name, slog.String("addr", l.server.Addr))
	return l.server.Shutdown(ctx)
}
