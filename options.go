package conf

import (
	"context"
	"log/slog"
	"os"

	"github.com/0xalexb/hjarta-conf/config"
	"github.com/0xalexb/hjarta-conf/config/env"
	"github.com/0xalexb/hjarta-conf/config/watch"
	"github.com/0xalexb/hjarta-conf/logging"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
)

// Options holds the sources and settings used by Load, Module, Watch and NewApp.
type Options struct {
	Modules       []fx.Option
	LogLevel      string
	Logger        *slog.Logger
	Stages        []Stage
	LoaderOptions []config.LoaderOption
	WatchOptions  []watch.Option
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// Target is the loader a Stage is applied to. *config.Loader[T] implements it
// for every T.
type Target interface {
	Defaults() error
	File(path string, format config.Format) error
	FileOptional(path string, format config.Format) error
	Code(code string, format config.Format) error
	URL(ctx context.Context, rawURL string, format config.Format) error
	EnvWithPrefix(prefix string) error
	EnvWithProviderAndPrefix(provider env.Provider, prefix string) error
	BindFlags(fs *pflag.FlagSet)
	Flags(fs *pflag.FlagSet) error
}

// Stage is one configuration source. Stages are applied in the order their
// options were given, later stages overriding earlier ones.
type Stage struct {
	// Name identifies the stage in errors, e.g. "file config.yaml".
	Name string
	// Files lists local files the stage reads; Watch reloads when they change.
	Files []string
	Apply func(ctx context.Context, target Target) error
}

// WithModules adds Fx modules to the application built by NewApp.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithLogLevel sets the log level of the logger built when none is given.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogger sets the logger used by the loader and by NewApp.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithLoaderOptions passes options to the underlying config.Loader.
func WithLoaderOptions(loaderOpts ...config.LoaderOption) Option {
	return func(opts *Options) {
		opts.LoaderOptions = append(opts.LoaderOptions, loaderOpts...)
	}
}

// WithWatchOptions configures the file watcher used by Watch.
func WithWatchOptions(watchOpts ...watch.Option) Option {
	return func(opts *Options) {
		opts.WatchOptions = append(opts.WatchOptions, watchOpts...)
	}
}

// WithStage appends a custom stage.
func WithStage(stage Stage) Option {
	return func(opts *Options) {
		opts.Stages = append(opts.Stages, stage)
	}
}

// WithDefaults applies the defaults declared on the schema.
func WithDefaults() Option {
	return WithStage(Stage{
		Name:  "defaults",
		Files: nil,
		Apply: func(_ context.Context, target Target) error {
			return target.Defaults()
		},
	})
}

// WithFile reads the document at path. A zero format is inferred from the
// file extension.
func WithFile(path string, format config.Format) Option {
	return WithStage(Stage{
		Name:  "file " + path,
		Files: []string{path},
		Apply: func(_ context.Context, target Target) error {
			return target.File(path, format)
		},
	})
}

// WithOptionalFile is like WithFile but skips a missing file.
func WithOptionalFile(path string, format config.Format) Option {
	return WithStage(Stage{
		Name:  "optional file " + path,
		Files: []string{path},
		Apply: func(_ context.Context, target Target) error {
			return target.FileOptional(path, format)
		},
	})
}

// WithURL downloads the document at rawURL.
func WithURL(rawURL string, format config.Format) Option {
	return WithStage(Stage{
		Name:  "url " + rawURL,
		Files: nil,
		Apply: func(ctx context.Context, target Target) error {
			return target.URL(ctx, rawURL, format)
		},
	})
}

// WithCode reads an in-memory document.
func WithCode(code string, format config.Format) Option {
	return WithStage(Stage{
		Name:  "code",
		Files: nil,
		Apply: func(_ context.Context, target Target) error {
			return target.Code(code, format)
		},
	})
}

// WithEnv reads the process environment with every key prefixed.
func WithEnv(prefix string) Option {
	return WithStage(Stage{
		Name:  "env " + prefix,
		Files: nil,
		Apply: func(_ context.Context, target Target) error {
			return target.EnvWithPrefix(prefix)
		},
	})
}

// WithEnvProvider reads variables from provider with every key prefixed.
func WithEnvProvider(provider env.Provider, prefix string) Option {
	return WithStage(Stage{
		Name:  "env " + prefix,
		Files: nil,
		Apply: func(_ context.Context, target Target) error {
			return target.EnvWithProviderAndPrefix(provider, prefix)
		},
	})
}

// WithFlags registers one flag per schema leaf on fs, parses args and applies
// the flags that were set.
func WithFlags(fs *pflag.FlagSet, args []string) Option {
	return WithStage(Stage{
		Name:  "flags",
		Files: nil,
		Apply: func(_ context.Context, target Target) error {
			target.BindFlags(fs)

			err := fs.Parse(args)
			if err != nil {
				return err //nolint:wrapcheck // stage errors are wrapped by load
			}

			return target.Flags(fs)
		},
	})
}

func newOptions(opts []Option) *Options {
	var options Options

	for _, apply := range opts {
		apply(&options)
	}

	return &options
}

// logger returns the configured logger, or a JSON logger on stderr when a
// level was set, or slog.Default().
func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	if o.LogLevel != "" {
		return createLogger(o.LogLevel)
	}

	return slog.Default()
}

func createLogger(level string) *slog.Logger {
	cfg := logging.Config{Level: level, Format: logging.FormatJSON, AddSource: false}

	return logging.NewLogger(cfg, os.Stderr)
}

func (o *Options) files() []string {
	var files []string

	for _, stage := range o.Stages {
		files = append(files, stage.Files...)
	}

	return files
}
