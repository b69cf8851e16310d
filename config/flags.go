package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/0xalexb/hjarta-conf/config/parse"

	"github.com/iancoleman/strcase"
	"github.com/spf13/pflag"
)

// FlagName returns the command line flag bound to the field at path:
// every path segment kebab-cased and joined with dots, e.g. "db.max-conns".
func FlagName(path string) string {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		parts[i] = strcase.ToKebab(part)
	}

	return strings.Join(parts, ".")
}

// BindFlags registers one string flag per leaf on fs. Leaves whose type has
// no string parser and no custom parse function are skipped. Boolean leaves
// may be given without a value.
func (s *Schema[T]) BindFlags(fs *pflag.FlagSet) {
	s.root.walkLeaves(func(field *fieldInfo) {
		if !field.customParse && !parse.Supports(field.leafType) {
			return
		}

		name := FlagName(field.path)
		if fs.Lookup(name) != nil {
			return
		}

		usage := fmt.Sprintf("%s (%s)", field.path, field.leafType)
		if field.hasDefault {
			usage = fmt.Sprintf("%s, default %v", usage, field.defaultValue.Interface())
		}

		fs.String(name, "", usage)

		if field.leafType.Kind() == reflect.Bool {
			fs.Lookup(name).NoOptDefVal = "true"
		}
	})
}

// FromFlags turns the flags of fs that were set on the command line into a
// partial. Flags must have been registered with BindFlags.
func (s *Schema[T]) FromFlags(fs *pflag.FlagSet) (*Partial[T], error) {
	p := s.Empty()

	var firstErr error

	s.root.walkLeaves(func(field *fieldInfo) {
		if firstErr != nil {
			return
		}

		name := FlagName(field.path)

		flag := fs.Lookup(name)
		if flag == nil || !flag.Changed {
			return
		}

		raw := flag.Value.String()

		value, err := field.parse(raw)
		if err != nil {
			firstErr = &ParseError{Field: field.path, Key: "--" + name, Value: raw, Err: err}

			return
		}

		_, target, err := p.slot(field.path)
		if err != nil {
			firstErr = err

			return
		}

		*target = slot{present: true, value: value, nested: nil}
	})

	if firstErr != nil {
		return nil, firstErr
	}

	return p, nil
}
