package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 // seconds

type serverConfig struct {
	shutdownTimeout time.Duration
}

type Option func(*serverConfig)

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *serverConfig) {
		c.shutdownTimeout = timeout
	}
}

// Start запускает http сервер и блокируется до его остановки.
// Сервер останавливается плавно при получении SIGINT/SIGTERM либо при отмене переданного контекста
func Start(ctx context.Context, server *http.Server, opts ...Option) error {
	cfg := serverConfig{
		shutdownTimeout: time.Second * defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithField("addr", server.Addr).Infof("Server started with settings: %+v", cfg)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to listen and serve")
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		return stopGracefully(server, &cfg)
	})
	return group.Wait()
}

func stopGracefully(server *http.Server, cfg *serverConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	log.Info("Stopping the server...")
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	log.Info("Stopped the server successfully")
	return nil
}
