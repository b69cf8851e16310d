package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Parser defines an interface for decoding configuration data into a document
// mapping.
//
// The path parameter specifies a navigation path within the configuration data
// using colon (:) as the separator for nested keys. For example:
//   - "api:permissions" navigates to config["api"]["permissions"]
//   - "database:connection:timeout" navigates three levels deep
//   - "" (empty path) means decode the entire document
//
// Parser implementations are responsible for path navigation internally.
// See config/parser/yaml for an example using goccy/go-yaml PathString.
type Parser interface {
	Parse(data []byte, path string) (map[string]any, error)
}

// DataFetcher defines an interface for reading configuration data.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// ContextFetcher is a DataFetcher whose reads can be cancelled.
type ContextFetcher interface {
	DataFetcher
	FetchContext(ctx context.Context) ([]byte, error)
}

// Validator defines an interface for validating finalized configuration structures.
// Finalize calls Validate on a pointer to the finished value when it implements Validator.
type Validator interface {
	Validate() error
}

// Format selects the parser applied to raw configuration data.
type Format int

// Known formats. The zero value is not a valid format.
const (
	FormatJSON Format = iota + 1
	FormatJSONC
	FormatTOML
	FormatYAML
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatJSONC:
		return "jsonc"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat returns the Format named by s. Matching is case-insensitive and
// accepts "yml" for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "jsonc":
		return FormatJSONC, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers the Format from the file extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}

	return ParseFormat(ext)
}
