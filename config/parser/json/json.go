// Package json provides a JSON parser implementation for the config package.
//
// Numbers are decoded as encoding/json.Number so integer fields keep their
// full precision until they are converted into the target field type.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/0xalexb/hjarta-conf/config/internal/docpath"
)

// ErrPathNotFound is returned when the specified path is not found in the JSON document.
var ErrPathNotFound = docpath.ErrPathNotFound

// ErrTrailingData is returned when the input holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// Parser implements config.Parser interface for JSON data.
type Parser struct{}

// NewParser creates a new JSON parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes JSON data into a document mapping and navigates to path.
func (p *Parser) Parse(data []byte, path string) (map[string]any, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	section, err := docpath.Lookup(doc, path)
	if err != nil {
		return nil, fmt.Errorf("reading path %q: %w", path, err)
	}

	return section, nil
}

// Decode decodes a single JSON object. Empty input yields an empty mapping and
// a top-level null is treated the same way.
func Decode(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc map[string]any

	err := decoder.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	_, err = decoder.Token()
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal error: %w", ErrTrailingData)
	}

	if doc == nil {
		return map[string]any{}, nil
	}

	return doc, nil
}
