package config

import (
	"fmt"
	"reflect"
)

// WithMerge installs a custom merge function for the leaf at path. The
// function receives the accumulated value and the incoming one and must store
// the result in base. V must be the leaf's type (the element type for pointer
// leaves).
//
//	config.WithMerge("hosts", merge.Append[string])
func WithMerge[V any](path string, fn func(base *Optional[V], incoming Optional[V]) error) SchemaOption {
	return func(b *schemaBuilder) error {
		if fn == nil {
			return fmt.Errorf("%w: nil merge function for %s", ErrInvalidSchema, path)
		}

		field, err := b.leaf(path, reflect.TypeFor[V]())
		if err != nil {
			return err
		}

		field.merge = func(base *slot, incoming slot) error {
			acc := slotOptional[V](*base)

			err := fn(&acc, slotOptional[V](incoming))
			if err != nil {
				return err
			}

			if acc.Set {
				*base = slot{present: true, value: cloneValue(valueOf(acc.Value)), nested: nil}
			} else {
				*base = slot{present: false, value: reflect.Value{}, nested: nil}
			}

			return nil
		}

		return nil
	}
}

// WithParseEnv replaces the string parser of the leaf at path. It is used for
// environment variables, flags and SetString.
func WithParseEnv[V any](path string, fn func(raw string) (V, error)) SchemaOption {
	return func(b *schemaBuilder) error {
		if fn == nil {
			return fmt.Errorf("%w: nil parse function for %s", ErrInvalidSchema, path)
		}

		field, err := b.leaf(path, reflect.TypeFor[V]())
		if err != nil {
			return err
		}

		field.customParse = true
		field.parse = func(raw string) (reflect.Value, error) {
			value, err := fn(raw)
			if err != nil {
				return reflect.Value{}, err
			}

			return valueOf(value), nil
		}

		return nil
	}
}

// WithDefault sets the default of the leaf at path, overriding any default tag.
func WithDefault[V any](path string, value V) SchemaOption {
	return func(b *schemaBuilder) error {
		field, err := b.leaf(path, reflect.TypeFor[V]())
		if err != nil {
			return err
		}

		field.hasDefault = true
		field.defaultValue = valueOf(value)

		return nil
	}
}

// WithEnvKey replaces the environment key template of the field at path.
// An empty template skips the field.
func WithEnvKey(path string, template string) SchemaOption {
	return func(b *schemaBuilder) error {
		field, _, err := b.root.lookup(path)
		if err != nil {
			return err
		}

		if template == "" {
			field.skipEnv = true
			field.envKey = ""

			return nil
		}

		field.skipEnv = false
		field.explicitEnv = true
		field.envKey = template

		return nil
	}
}

func slotOptional[V any](s slot) Optional[V] {
	if !s.present {
		return None[V]()
	}

	value, _ := s.value.Interface().(V)

	return Some(value)
}

// valueOf keeps the static type of v, which matters for interface typed leaves.
func valueOf[V any](v V) reflect.Value {
	return reflect.ValueOf(&v).Elem()
}
