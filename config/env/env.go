// Package env provides environment variable providers for the config package.
//
// A Provider answers lookups by exact variable name. OS reads the process
// environment on every lookup; Map and FromPairs are deterministic in-memory
// providers for tests and for environments captured elsewhere; DotEnv reads a
// .env file.
package env

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// ErrNotUnicode is returned when a variable holds a value that is not valid UTF-8.
var ErrNotUnicode = errors.New("value is not valid UTF-8")

// Provider looks up environment variables by exact name.
// Implementations return ok == false when the variable is not set.
type Provider interface {
	Lookup(key string) (value string, ok bool, err error)
}

// OS is a Provider backed by the process environment.
type OS struct{}

// Lookup implements Provider.
func (OS) Lookup(key string) (string, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false, nil
	}

	if !utf8.ValidString(value) {
		return "", false, fmt.Errorf("variable %s: %w", key, ErrNotUnicode)
	}

	return value, true, nil
}

// Map is a Provider backed by an in-memory map.
type Map map[string]string

// Lookup implements Provider.
func (m Map) Lookup(key string) (string, bool, error) {
	value, ok := m[key]

	return value, ok, nil
}

// FromPairs builds a Map from KEY=VALUE pairs, as returned by os.Environ.
// Entries without '=' are ignored; later duplicates win.
func FromPairs(pairs []string) Map {
	m := make(Map, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			continue
		}

		m[key] = value
	}

	return m
}

// DotEnv reads the .env formatted files at paths into a Map.
// Variables from later files override earlier ones.
func DotEnv(paths ...string) (Map, error) {
	m := Map{}

	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading env file %q: %w", path, err)
		}

		for key, value := range vars {
			m[key] = value
		}
	}

	return m, nil
}

// Chain is a Provider that consults each provider in order and returns the first hit.
type Chain []Provider

// Lookup implements Provider.
func (c Chain) Lookup(key string) (string, bool, error) {
	for _, provider := range c {
		value, ok, err := provider.Lookup(key)
		if err != nil {
			return "", false, err
		}

		if ok {
			return value, true, nil
		}
	}

	return "", false, nil
}
