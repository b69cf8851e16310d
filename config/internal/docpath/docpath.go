// Package docpath navigates decoded configuration documents using the
// colon-separated section paths accepted by every parser.
package docpath

import (
	"errors"
	"fmt"
	"strings"
)

// Separator separates keys in a section path.
const Separator = ":"

// ErrPathNotFound is returned when a section path does not exist in the document.
var ErrPathNotFound = errors.New("path not found")

// ErrNotSection is returned when a section path points at a value that is not a mapping.
var ErrNotSection = errors.New("path does not point to a mapping")

// Lookup returns the mapping found at path inside doc.
// An empty path returns doc itself.
func Lookup(doc map[string]any, path string) (map[string]any, error) {
	if path == "" {
		return doc, nil
	}

	current := doc

	for _, key := range strings.Split(path, Separator) {
		next, found := current[key]
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		section, ok := AsMap(next)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotSection, path)
		}

		current = section
	}

	return current, nil
}

// AsMap converts decoded mappings into map[string]any. Decoders that produce
// map[any]any have their keys formatted with fmt.Sprint.
func AsMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, v := range typed {
			out[fmt.Sprint(key)] = v
		}

		return out, true
	default:
		return nil, false
	}
}
