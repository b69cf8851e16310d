package config

import (
	"fmt"
	"slices"

	"github.com/0xalexb/hjarta-conf/config/internal/docpath"
)

// FromDocument converts a decoded document, as returned by a Parser, into a
// partial. Keys are canonical field names; null values are absent. Keys that
// match no field are an ErrUnknownField error unless the struct declares
// allow_unknown_fields.
func (s *Schema[T]) FromDocument(doc map[string]any) (*Partial[T], error) {
	p := s.Empty()

	err := p.root.fromDocument(doc)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (n *node) fromDocument(doc map[string]any) error {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		idx, found := n.info.byName[key]
		if !found {
			if n.info.allowUnknown {
				continue
			}

			return fmt.Errorf("%w: %s", ErrUnknownField, joinPath(n.info.path, key))
		}

		value := doc[key]
		if value == nil {
			continue
		}

		field := n.info.fields[idx]

		if field.nested != nil {
			section, ok := asDocument(value)
			if !ok {
				return fmt.Errorf("field %s: expected a map, got %T", field.path, value)
			}

			err := n.slots[idx].nested.fromDocument(section)
			if err != nil {
				return err
			}

			continue
		}

		decoded, err := decodeLeaf(field, value)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.path, err)
		}

		n.slots[idx] = slot{present: true, value: decoded, nested: nil}
	}

	return nil
}

func asDocument(value any) (map[string]any, bool) {
	return docpath.AsMap(value)
}
