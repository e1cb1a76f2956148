package service

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"yatube/app/auth"
	"yatube/app/config"
	"yatube/app/log"
	"yatube/app/routes"
	"yatube/app/uploads"
)

// NewServer builds the HTTP server for cfg over an opened backend.
func NewServer(cfg config.Config, b *backend) (*http.Server, error) {
	router, err := routes.SetupRoutes(routes.Options{
		Store:         b.store,
		Cache:         b.cache,
		IndexCacheTTL: cfg.IndexCacheTTL,
		Sessions:      auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL),
		Media:         uploads.New(cfg.MediaRoot, cfg.MaxUploadBytes),
		MediaURL:      cfg.MediaURL,
		StaticDir:     cfg.StaticDir,
		PostsPerPage:  cfg.PostsPerPage,
		TitleTruncate: cfg.TitleTruncate,
	})
	if err != nil {
		return nil, errors.Wrap(err, "setup routes")
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}, nil
}

// RunAppServer serves the blog until SIGINT or SIGTERM, then drains
// in-flight requests for up to cfg.ShutdownTimeout.
func RunAppServer(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	// Pages cached by a previous run may predate a restore or migration.
	if err := b.cache.Clear(ctx); err != nil {
		log.Log.WithError(err).Warn("could not clear page cache")
	}

	srv, err := NewServer(cfg, b)
	if err != nil {
		return err
	}
	return serve(ctx, srv, cfg.ShutdownTimeout)
}

func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		log.Log.WithField("addr", srv.Addr).Info("starting yatube")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	log.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
