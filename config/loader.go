package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/0xalexb/hjarta-conf/config/env"
	filefetcher "github.com/0xalexb/hjarta-conf/config/fetcher/file"
	urlfetcher "github.com/0xalexb/hjarta-conf/config/fetcher/url"
	jsonparser "github.com/0xalexb/hjarta-conf/config/parser/json"
	jsoncparser "github.com/0xalexb/hjarta-conf/config/parser/jsonc"
	tomlparser "github.com/0xalexb/hjarta-conf/config/parser/toml"
	yamlparser "github.com/0xalexb/hjarta-conf/config/parser/yaml"

	"github.com/spf13/pflag"
)

// Loader accumulates partial configurations from successive sources and
// finishes them into T. Each add method produces a partial from its source
// and merges it over the accumulated state, so later sources override earlier
// ones. A failing add leaves the accumulated state untouched.
//
// A Loader is meant to be driven by a single goroutine. After Finish every
// method returns ErrLoaderFinished.
type Loader[T any] struct {
	schema   *Schema[T]
	state    *Partial[T]
	logger   *slog.Logger
	parsers  map[Format]Parser
	env      env.Provider
	urlOpts  []urlfetcher.Option
	section  string
	finished bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	logger     *slog.Logger
	parsers    map[Format]Parser
	env        env.Provider
	urlOpts    []urlfetcher.Option
	schemaOpts []SchemaOption
	section    string
}

// WithLogger sets the logger used for stage records. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithParser registers parser for format, replacing the built-in one.
func WithParser(format Format, parser Parser) LoaderOption {
	return func(o *loaderOptions) {
		o.parsers[format] = parser
	}
}

// WithEnvProvider sets the provider used by Env and EnvWithPrefix.
// Defaults to env.OS.
func WithEnvProvider(provider env.Provider) LoaderOption {
	return func(o *loaderOptions) {
		if provider != nil {
			o.env = provider
		}
	}
}

// WithURLOptions configures the fetcher used by URL.
func WithURLOptions(opts ...urlfetcher.Option) LoaderOption {
	return func(o *loaderOptions) {
		o.urlOpts = append(o.urlOpts, opts...)
	}
}

// WithSchemaOptions passes opts to the schema built by NewLoader.
// It has no effect on Schema.NewLoader.
func WithSchemaOptions(opts ...SchemaOption) LoaderOption {
	return func(o *loaderOptions) {
		o.schemaOpts = append(o.schemaOpts, opts...)
	}
}

// WithSection makes document sources decode only the colon-separated
// section path of each document, e.g. "services:api".
func WithSection(path string) LoaderOption {
	return func(o *loaderOptions) {
		o.section = path
	}
}

func defaultParsers() map[Format]Parser {
	return map[Format]Parser{
		FormatJSON:  jsonparser.NewParser(),
		FormatJSONC: jsoncparser.NewParser(),
		FormatTOML:  tomlparser.NewParser(),
		FormatYAML:  yamlparser.NewParser(),
	}
}

func buildLoaderOptions(opts []LoaderOption) *loaderOptions {
	options := &loaderOptions{
		logger:     slog.Default(),
		parsers:    defaultParsers(),
		env:        env.OS{},
		urlOpts:    nil,
		schemaOpts: nil,
		section:    "",
	}

	for _, apply := range opts {
		apply(options)
	}

	return options
}

// NewLoader builds the schema of T and returns an empty loader for it.
func NewLoader[T any](opts ...LoaderOption) (*Loader[T], error) {
	options := buildLoaderOptions(opts)

	schema, err := NewSchema[T](options.schemaOpts...)
	if err != nil {
		return nil, err
	}

	return newLoader(schema, options), nil
}

// NewLoader returns an empty loader for the schema.
func (s *Schema[T]) NewLoader(opts ...LoaderOption) *Loader[T] {
	return newLoader(s, buildLoaderOptions(opts))
}

func newLoader[T any](schema *Schema[T], options *loaderOptions) *Loader[T] {
	return &Loader[T]{
		schema:   schema,
		state:    schema.Empty(),
		logger:   options.logger,
		parsers:  options.parsers,
		env:      options.env,
		urlOpts:  options.urlOpts,
		section:  options.section,
		finished: false,
	}
}

// Schema returns the schema the loader finishes into.
func (l *Loader[T]) Schema() *Schema[T] {
	return l.schema
}

// Defaults merges the declared defaults of every field.
func (l *Loader[T]) Defaults() error {
	if l.finished {
		return ErrLoaderFinished
	}

	return l.add(Location{Kind: LocationDefaults, Name: ""}, l.schema.Defaults())
}

// File merges the document at path. A zero format is inferred from the file
// extension.
func (l *Loader[T]) File(path string, format Format) error {
	if l.finished {
		return ErrLoaderFinished
	}

	loc := FileLocation(path)

	format, err := resolveFormat(format, path)
	if err != nil {
		return &SourceError{Location: loc, Format: 0, Err: err}
	}

	fetcher, err := filefetcher.New(path)
	if err != nil {
		return &SourceError{Location: loc, Format: format, Err: err}
	}

	return l.document(context.Background(), fetcher, format, loc)
}

// FileOptional is like File but a missing file is skipped without error.
func (l *Loader[T]) FileOptional(path string, format Format) error {
	if l.finished {
		return ErrLoaderFinished
	}

	exists, err := filefetcher.Exists(path)
	if err != nil {
		return &SourceError{Location: FileLocation(path), Format: format, Err: err}
	}

	if !exists {
		l.logger.Info("optional config file not found, skipping", slog.String("path", path))

		return nil
	}

	err = l.File(path, format)

	var sourceErr *SourceError
	if errors.As(err, &sourceErr) && errors.Is(sourceErr.Err, fs.ErrNotExist) {
		l.logger.Info("optional config file removed before reading, skipping", slog.String("path", path))

		return nil
	}

	return err
}

// Code merges an in-memory document.
func (l *Loader[T]) Code(code string, format Format) error {
	return l.CodeWithLocation(code, format, MemoryLocation())
}

// CodeWithLocation is like Code and reports errors against loc.
func (l *Loader[T]) CodeWithLocation(code string, format Format, loc Location) error {
	if l.finished {
		return ErrLoaderFinished
	}

	return l.document(context.Background(), bytesFetcher(code), format, loc)
}

// URL downloads and merges the document at rawURL. The request is bound to ctx.
func (l *Loader[T]) URL(ctx context.Context, rawURL string, format Format) error {
	if l.finished {
		return ErrLoaderFinished
	}

	return l.document(ctx, urlfetcher.New(rawURL, l.urlOpts...), format, URLLocation(rawURL))
}

// Source merges the document read by fetcher and decoded by parser.
// Fetchers implementing ContextFetcher are bound to ctx.
func (l *Loader[T]) Source(ctx context.Context, fetcher DataFetcher, parser Parser, loc Location) error {
	if l.finished {
		return ErrLoaderFinished
	}

	return l.decode(ctx, fetcher, parser, 0, loc)
}

// Env merges the process environment, or the provider set with WithEnvProvider.
func (l *Loader[T]) Env() error {
	return l.EnvWithProviderAndPrefix(l.env, "")
}

// EnvWithPrefix is like Env with every key prefixed.
func (l *Loader[T]) EnvWithPrefix(prefix string) error {
	return l.EnvWithProviderAndPrefix(l.env, prefix)
}

// EnvWithProvider merges the variables of provider.
func (l *Loader[T]) EnvWithProvider(provider env.Provider) error {
	return l.EnvWithProviderAndPrefix(provider, "")
}

// EnvWithProviderAndPrefix merges the variables of provider with every key prefixed.
func (l *Loader[T]) EnvWithProviderAndPrefix(provider env.Provider, prefix string) error {
	if l.finished {
		return ErrLoaderFinished
	}

	partial, err := l.schema.FromEnv(provider, prefix)
	if err != nil {
		return err
	}

	return l.add(Location{Kind: LocationEnv, Name: prefix}, partial)
}

// BindFlags registers the flags read by Flags on fs.
func (l *Loader[T]) BindFlags(fs *pflag.FlagSet) {
	l.schema.BindFlags(fs)
}

// Flags merges the flags of fs that were set on the command line.
// Bind them first with Schema.BindFlags.
func (l *Loader[T]) Flags(fs *pflag.FlagSet) error {
	if l.finished {
		return ErrLoaderFinished
	}

	partial, err := l.schema.FromFlags(fs)
	if err != nil {
		return err
	}

	return l.add(Location{Kind: LocationFlags, Name: ""}, partial)
}

// Partial merges a caller supplied partial.
func (l *Loader[T]) Partial(p *Partial[T]) error {
	if l.finished {
		return ErrLoaderFinished
	}

	return l.add(MemoryLocation(), p)
}

// State returns a copy of the accumulated partial.
func (l *Loader[T]) State() (*Partial[T], error) {
	if l.finished {
		return nil, ErrLoaderFinished
	}

	return l.state.Clone(), nil
}

// Finish converts the accumulated state into T. The loader cannot be used
// afterwards, whether or not Finish succeeds.
func (l *Loader[T]) Finish() (T, error) {
	if l.finished {
		var zero T

		return zero, ErrLoaderFinished
	}

	l.finished = true
	state := l.state
	l.state = nil

	return l.schema.Finalize(state)
}

func (l *Loader[T]) document(ctx context.Context, fetcher DataFetcher, format Format, loc Location) error {
	parser, found := l.parsers[format]
	if !found || parser == nil {
		return &SourceError{Location: loc, Format: 0, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)}
	}

	return l.decode(ctx, fetcher, parser, format, loc)
}

func (l *Loader[T]) decode(ctx context.Context, fetcher DataFetcher, parser Parser, format Format, loc Location) error {
	data, err := fetch(ctx, fetcher)
	if err != nil {
		return &SourceError{Location: loc, Format: format, Err: err}
	}

	doc, err := parser.Parse(data, l.section)
	if err != nil {
		return &SourceError{Location: loc, Format: format, Err: err}
	}

	partial, err := l.schema.FromDocument(doc)
	if err != nil {
		return &SourceError{Location: loc, Format: format, Err: err}
	}

	return l.add(loc, partial)
}

func (l *Loader[T]) add(loc Location, incoming *Partial[T]) error {
	next := l.state.Clone()

	err := next.Merge(incoming)
	if err != nil {
		return err
	}

	l.state = next

	l.logger.Debug("config stage merged",
		slog.String("source", loc.String()),
		slog.Int("missing", len(next.Missing())),
	)

	return nil
}

func fetch(ctx context.Context, fetcher DataFetcher) ([]byte, error) {
	if withContext, ok := fetcher.(ContextFetcher); ok {
		return withContext.FetchContext(ctx) //nolint:wrapcheck // wrapped by SourceError
	}

	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("fetch cancelled: %w", err)
	}

	return fetcher.Fetch() //nolint:wrapcheck // wrapped by SourceError
}

func resolveFormat(format Format, path string) (Format, error) {
	if format != 0 {
		return format, nil
	}

	return FormatFromPath(path)
}

type bytesFetcher string

func (b bytesFetcher) Fetch() ([]byte, error) {
	return []byte(b), nil
}
