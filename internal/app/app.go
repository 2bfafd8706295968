package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/config"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/orders"

	"go.uber.org/zap"
)

// Application holds all the components and manages the application lifecycle
type Application struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container *Container
	server    *http.Server
	consumer  orders.ConsumerService
}

// NewApplication creates and fully initializes a new Application instance
func NewApplication(ctx context.Context) (*Application, error) {
	appCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	app := &Application{
		ctx:    appCtx,
		cancel: cancel,
	}

	// Initialize container (expensive singletons)
	container, err := NewContainer(app.ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	app.container = container

	factory := NewServiceFactory(container)
	publisher := factory.CreatePublisher()
	confirmation := factory.CreateConfirmationService()

	app.server = &http.Server{
		Addr:              container.Config().HTTPAddr,
		Handler:           factory.CreateRouter(publisher, confirmation),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	app.consumer = factory.CreateConsumerService(confirmation)

	app.container.Logger().Info("Application initialized successfully",
		zap.String("reconcile_mode", container.Config().ReconcileMode),
		zap.Bool("events_enabled", container.Config().EventsEnabled()),
	)
	return app, nil
}

// Run serves HTTP, and consumes order events in kafka mode, until the context
// is cancelled or a component fails.
func (app *Application) Run() error {
	errCh := make(chan error, 2)

	go func() {
		app.container.Logger().Info("🚀 HTTP server listening", zap.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if app.consumer != nil {
		go func() {
			if err := app.consumer.Start(app.ctx); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-app.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down all application components
func (app *Application) Shutdown() {
	if app.container != nil {
		app.container.Logger().Info("Starting application shutdown...")
	}

	if app.cancel != nil {
		app.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			app.container.Logger().Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}

	if app.container != nil {
		app.container.Shutdown(ctx)
	}
}
