package yaml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/0xalexb/hjarta-conf/config/internal/docpath"

	"github.com/goccy/go-yaml"
)

// ErrPathNotFound is returned when the specified path is not found in the YAML document.
var ErrPathNotFound = docpath.ErrPathNotFound

// Parser implements config.Parser interface for YAML data.
// It uses goccy/go-yaml PathString for efficient path navigation.
type Parser struct{}

// NewParser creates a new YAML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes YAML data into a document mapping.
// The path parameter specifies a navigation path using colon (:) as separator.
// Empty path decodes the entire document.
func (p *Parser) Parse(data []byte, path string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var doc map[string]any

	if path == "" {
		err := yaml.Unmarshal(data, &doc)
		if err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}

		return orEmpty(doc), nil
	}

	yamlPath := convertToYAMLPath(path)

	pathObj, err := yaml.PathString(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}

	err = pathObj.Read(bytes.NewReader(data), &doc)
	if err != nil {
		if isKeyNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		return nil, fmt.Errorf("reading path %q: %w", path, err)
	}

	return orEmpty(doc), nil
}

// convertToYAMLPath converts a colon-separated path to goccy/go-yaml PathString format.
// Examples:
//   - "key" -> "$.key"
//   - "api:permissions" -> "$.api.permissions"
func convertToYAMLPath(path string) string {
	parts := strings.Split(path, docpath.Separator)

	return "$." + strings.Join(parts, ".")
}

// isKeyNotFoundError checks if the error indicates a key was not found.
func isKeyNotFoundError(err error) bool {
	return yaml.IsNotFoundNodeError(err)
}

func orEmpty(doc map[string]any) map[string]any {
	if doc == nil {
		return map[string]any{}
	}

	return doc
}
