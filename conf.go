// Package conf loads typed configuration from layered sources and provides
// it to Fx applications.
//
//	cfg, err := conf.Load[ServerConfig](ctx,
//	    conf.WithDefaults(),
//	    conf.WithOptionalFile("config.yaml", config.FormatYAML),
//	    conf.WithEnv("MY_APP_"),
//	)
//
// Stages run in order and later stages override earlier ones; see the config
// package for the schema tags and merge rules.
package conf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xalexb/hjarta-conf/config"
	"github.com/0xalexb/hjarta-conf/config/watch"

	"go.uber.org/fx"
)

// ErrEmptyName is returned when a module name is empty.
var ErrEmptyName = errors.New("module name must not be empty")

// Load applies the configured stages to a new loader for T and finishes it.
func Load[T any](ctx context.Context, opts ...Option) (T, error) {
	return load[T](ctx, newOptions(opts))
}

func load[T any](ctx context.Context, options *Options) (T, error) {
	var zero T

	loaderOpts := append([]config.LoaderOption{config.WithLogger(options.logger())}, options.LoaderOptions...)

	loader, err := config.NewLoader[T](loaderOpts...)
	if err != nil {
		return zero, fmt.Errorf("building schema: %w", err)
	}

	for _, stage := range options.Stages {
		err := stage.Apply(ctx, loader)
		if err != nil {
			return zero, fmt.Errorf("loading %s: %w", stage.Name, err)
		}
	}

	result, err := loader.Finish()
	if err != nil {
		return zero, fmt.Errorf("finishing config: %w", err)
	}

	return result, nil
}

type moduleParams struct {
	fx.In

	Logger *slog.Logger `optional:"true"`
}

// Module creates an Fx module named name that provides T loaded from the
// given stages. The logger in the container is used unless WithLogger is set.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Module[T any](name string, opts ...Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	options := newOptions(opts)

	return fx.Module(name,
		fx.Provide(func(params moduleParams) (T, error) {
			local := *options
			if local.Logger == nil {
				local.Logger = params.Logger
			}

			return load[T](context.Background(), &local)
		}),
	)
}

// Watch loads T, reports it to onChange and reloads whenever one of the files
// read by the stages changes. A failed reload is reported with its error; the
// last good value is the caller's to keep. Watch blocks until ctx is done and
// then returns nil.
func Watch[T any](ctx context.Context, onChange func(T, error), opts ...Option) error {
	options := newOptions(opts)
	logger := options.logger()

	watchOpts := append([]watch.Option{watch.WithLogger(logger)}, options.WatchOptions...)

	watcher, err := watch.New(watchOpts...)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	defer func() {
		stopErr := watcher.Stop()
		if stopErr != nil {
			logger.Error("failed to stop config watcher", slog.Any("error", stopErr))
		}
	}()

	for _, file := range options.files() {
		err := watcher.Add(file)
		if err != nil {
			return fmt.Errorf("watching %s: %w", file, err)
		}
	}

	watcher.OnChange(func(path string) {
		logger.Info("config file changed, reloading", slog.String("path", path))
		onChange(load[T](ctx, options))
	})

	onChange(load[T](ctx, options))

	err = watcher.Run(ctx)
	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("watching config: %w", err)
	}

	return nil
}
