package conf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xalexb/hjarta-conf/logging"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

var errAppNotInitialized = errors.New("app not initialized")

// App hosts Fx modules, typically built with Module, with a shared logger.
type App struct {
	app *fx.App
}

// NewApp creates a new instance of App with Fx configured. The logger is
// supplied to the container, so every Module logs through it.
func NewApp(opts ...Option) *App {
	return &App{
		app: configure(newOptions(opts)),
	}
}

func configure(options *Options) *fx.App {
	logger := options.logger()
	slog.SetDefault(logger)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Supply(logging.Config{Level: options.LogLevel, Format: logging.FormatJSON, AddSource: false}),
		fx.Supply(logger),
		fx.Options(options.Modules...),
	)
}

// Err returns the error, if any, that occurred while building the
// application, such as a config that failed to load.
func (app *App) Err() error {
	if app == nil || app.app == nil {
		return errAppNotInitialized
	}

	return app.app.Err() //nolint:wrapcheck // fx errors already name the failing constructor
}

// Start starts the Fx application.
func (app *App) Start(ctx context.Context) error {
	if app == nil || app.app == nil {
		return errAppNotInitialized
	}

	err := app.app.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}

	return nil
}

// Run starts the application and blocks until an OS signal is received, then shuts down gracefully.
func (app *App) Run() {
	if app == nil || app.app == nil {
		slog.Error("attempted to run an uninitialized app")

		return
	}

	app.app.Run()
}

// Stop stops the Fx application gracefully.
func (app *App) Stop(ctx context.Context) error {
	if app == nil || app.app == nil {
		return errAppNotInitialized
	}

	err := app.app.Stop(ctx)
	if err != nil {
		return fmt.Errorf("failed to stop app: %w", err)
	}

	return nil
}
