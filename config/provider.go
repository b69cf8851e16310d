package config

import (
	"context"
)

// Provider returns a function that reads data with a DataFetcher, decodes the
// section at path with a Parser over the declared defaults, and finishes and
// validates the result. The returned function fits fx constructors that
// receive the parser and fetcher from the container.
func Provider[T any](path string, opts ...LoaderOption) func(Parser, DataFetcher) (*T, error) {
	options := make([]LoaderOption, 0, len(opts)+1)
	options = append(options, opts...)
	options = append(options, WithSection(path))

	return func(parser Parser, fetcher DataFetcher) (*T, error) {
		loader, err := NewLoader[T](options...)
		if err != nil {
			return nil, err
		}

		err = loader.Defaults()
		if err != nil {
			return nil, err
		}

		loc := MemoryLocation()
		if named, ok := fetcher.(interface{ Path() string }); ok {
			loc = FileLocation(named.Path())
		}

		err = loader.Source(context.Background(), fetcher, parser, loc)
		if err != nil {
			return nil, err
		}

		result, err := loader.Finish()
		if err != nil {
			return nil, err
		}

		return &result, nil
	}
}
