// Package toml provides a TOML parser implementation for the config package
// backed by github.com/pelletier/go-toml/v2.
//
// Dotted keys ("nested.a = 1") and tables ("[nested]") both decode to nested
// mappings, so they address nested configuration sections the same way.
package toml

import (
	"fmt"

	"github.com/0xalexb/hjarta-conf/config/internal/docpath"

	"github.com/pelletier/go-toml/v2"
)

// ErrPathNotFound is returned when the specified path is not found in the TOML document.
var ErrPathNotFound = docpath.ErrPathNotFound

// Parser implements config.Parser interface for TOML data.
type Parser struct{}

// NewParser creates a new TOML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes TOML data into a document mapping and navigates to path.
func (p *Parser) Parse(data []byte, path string) (map[string]any, error) {
	doc := map[string]any{}

	err := toml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	section, err := docpath.Lookup(doc, path)
	if err != nil {
		return nil, fmt.Errorf("reading path %q: %w", path, err)
	}

	return section, nil
}
