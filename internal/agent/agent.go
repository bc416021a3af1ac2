package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"github.com/mwantia/wind/internal/api"
	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/blog"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/feed"
	"github.com/mwantia/wind/pkg/gallery"
	"github.com/mwantia/wind/pkg/log"
)

type WindAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg      *config.BaseServerConfig
	sc       *container.ServiceContainer
	log      log.LoggerService
	services *Services
	server   *http.Server
}

func NewAgent(cfg *config.BaseServerConfig) *WindAgent {
	return &WindAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("wind", cfg.Log),
	}
}

func (wa *WindAgent) setupServices(ctx context.Context) error {
	services, err := NewServices(ctx, wa.cfg, wa.log)
	if err != nil {
		return fmt.Errorf("failed to create services: %w", err)
	}
	wa.services = services

	errs := container.Errors{}

	wa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](wa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(wa.log)))

	wa.log.Debug("Registering 'GalleryStore'...")
	errs.Add(container.Register[store.SQLiteStore](wa.sc,
		container.With[store.GalleryStore](),
		container.WithInstance(services.Store)))

	wa.log.Debug("Registering 'GalleryService'...")
	errs.Add(container.Register[gallery.Service](wa.sc,
		container.WithInstance(services.Gallery)))

	wa.log.Debug("Registering 'BlogService'...")
	errs.Add(container.Register[blog.Service](wa.sc,
		container.WithInstance(services.Blog)))

	wa.log.Debug("Registering 'FeedBuilder'...")
	errs.Add(container.Register[feed.Builder](wa.sc,
		container.WithInstance(services.Feed)))

	return errs.Errors()
}

// resolve looks a registered service up by type.
func resolve[T any](ctx context.Context, sc *container.ServiceContainer) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()

	ok, resolved := sc.ResolveByType(ctx, typ)
	if !ok {
		return zero, fmt.Errorf("no service registered for %s", typ)
	}
	service, ok := resolved.(T)
	if !ok {
		return zero, fmt.Errorf("resolved service is not a %s", typ)
	}
	return service, nil
}

func (wa *WindAgent) setupServer(ctx context.Context) error {
	st, err := resolve[store.GalleryStore](ctx, wa.sc)
	if err != nil {
		return err
	}
	logger, err := resolve[log.LoggerService](ctx, wa.sc)
	if err != nil {
		return err
	}

	handler := api.NewHandler(wa.cfg.HTTP, st, wa.services.Blog, wa.services.Gallery, wa.services.Feed, wa.services.Photos, logger)
	wa.server = &http.Server{
		Addr:              wa.cfg.HTTP.Address,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (wa *WindAgent) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	wa.mutex.Lock()

	if err := wa.setupServices(ctx); err != nil {
		wa.mutex.Unlock()
		return err
	}
	if err := wa.setupServer(ctx); err != nil {
		wa.mutex.Unlock()
		return err
	}

	wa.wait.Add(1)
	go func() {
		defer wa.wait.Done()

		wa.log.Info("Listening on %s", wa.server.Addr)
		if err := wa.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wa.log.Error("HTTP server stopped: %v", err)
			stop()
		}
	}()

	wa.mutex.Unlock()
	<-ctx.Done()

	timeout, err := time.ParseDuration(wa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	wa.log.Info("Shutting down...")
	if err := wa.server.Shutdown(shutdown); err != nil {
		wa.log.Warn("Failed to shut down HTTP server gracefully: %v", err)
	}
	wa.wait.Wait()

	if err := wa.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}
	if err := wa.services.Close(); err != nil {
		wa.log.Warn("Failed to close services: %v", err)
	}
	if c, ok := wa.log.(io.Closer); ok {
		c.Close()
	}

	return nil
}
