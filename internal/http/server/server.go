// Package server levanta el http.Server con timeouts y apagado ordenado.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// Config timeouts del servidor.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// New arma el http.Server.
func New(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// Run sirve hasta que ctx se cancela y luego apaga con un plazo de
// ShutdownTimeout para las conexiones en curso.
func Run(ctx context.Context, cfg Config, handler http.Handler) error {
	log := logger.L().With(logger.Component("http.server"))
	srv := New(cfg, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Info("shutting down", logger.String("timeout", timeout.String()))
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
