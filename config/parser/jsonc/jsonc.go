// Package jsonc provides a JSON-with-comments parser implementation for the
// config package.
//
// Line comments, block comments and trailing commas are stripped with
// github.com/tidwall/jsonc before the data is decoded as plain JSON.
package jsonc

import (
	"fmt"

	"github.com/0xalexb/hjarta-conf/config/internal/docpath"
	jsonparser "github.com/0xalexb/hjarta-conf/config/parser/json"

	"github.com/tidwall/jsonc"
)

// ErrPathNotFound is returned when the specified path is not found in the document.
var ErrPathNotFound = docpath.ErrPathNotFound

// Parser implements config.Parser interface for JSONC data.
type Parser struct{}

// NewParser creates a new JSONC parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse strips comments from data, decodes it and navigates to path.
func (p *Parser) Parse(data []byte, path string) (map[string]any, error) {
	doc, err := jsonparser.Decode(jsonc.ToJSON(data))
	if err != nil {
		return nil, err
	}

	section, err := docpath.Lookup(doc, path)
	if err != nil {
		return nil, fmt.Errorf("reading path %q: %w", path, err)
	}

	return section, nil
}
