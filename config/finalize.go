package config

import (
	"fmt"
	"reflect"
)

// Finalize converts a complete partial into T.
//
// Every required leaf that is absent is collected, at full depth, into a
// single *MissingFieldsError. Optional leaves finalize to their zero value and
// wholly absent pointer nested schemas to nil. When the finished value
// implements Validator (on T or *T), Validate runs last.
func (s *Schema[T]) Finalize(p *Partial[T]) (T, error) {
	var result T

	if p == nil {
		p = s.Empty()
	}

	missing := p.Missing()
	if len(missing) > 0 {
		return result, &MissingFieldsError{Paths: missing}
	}

	p.root.fill(reflect.ValueOf(&result).Elem())

	if validator, ok := any(&result).(Validator); ok {
		err := validator.Validate()
		if err != nil {
			return result, fmt.Errorf("validating error: %w", err)
		}
	}

	return result, nil
}

func (n *node) fill(target reflect.Value) {
	for i, field := range n.info.fields {
		s := &n.slots[i]
		dest := target.FieldByIndex(field.index)

		if field.nested != nil {
			if field.pointer {
				if s.nested.isEmpty() {
					continue
				}

				ptr := reflect.New(field.leafType)
				s.nested.fill(ptr.Elem())
				dest.Set(ptr)

				continue
			}

			s.nested.fill(dest)

			continue
		}

		if !s.present {
			continue
		}

		value := cloneValue(s.value)

		if field.pointer {
			ptr := reflect.New(field.leafType)
			ptr.Elem().Set(value)
			dest.Set(ptr)

			continue
		}

		dest.Set(value)
	}
}

// Defaults returns a partial holding every declared default.
func (s *Schema[T]) Defaults() *Partial[T] {
	p := s.Empty()
	p.root.applyDefaults()

	return p
}

func (n *node) applyDefaults() {
	for i, field := range n.info.fields {
		if field.nested != nil {
			n.slots[i].nested.applyDefaults()

			continue
		}

		if field.hasDefault {
			n.slots[i] = slot{present: true, value: cloneValue(field.defaultValue), nested: nil}
		}
	}
}
