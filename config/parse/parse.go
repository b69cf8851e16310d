// Package parse converts raw strings, such as environment variable values and
// default literals, into typed configuration values.
//
// Value is the default string parser used for every leaf without a custom
// parse function. CommaSeparated and Separated are ready-made parse functions
// for list fields:
//
//	schema, err := config.NewSchema[Config](
//	    config.WithParseEnv("hosts", parse.CommaSeparated[string]),
//	)
package parse

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ListSeparator separates elements of slice values parsed by Value.
const ListSeparator = ","

// ErrUnsupportedType is returned when no string parser exists for the target type.
var ErrUnsupportedType = errors.New("unsupported type")

//nolint:gochecknoglobals // reflect types are immutable.
var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Value parses raw into a value of type typ.
//
// Supported targets are strings, booleans, signed and unsigned integers (with
// range checks for the target width), floats, time.Duration, any type whose
// pointer implements encoding.TextUnmarshaler, pointers to any of those, and
// slices of any of those written as comma separated lists.
func Value(raw string, typ reflect.Type) (reflect.Value, error) {
	if typ == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse duration: %w", err)
		}

		return reflect.ValueOf(d), nil
	}

	if reflect.PointerTo(typ).Implements(textUnmarshalerType) {
		target := reflect.New(typ)

		unmarshaler, _ := target.Interface().(encoding.TextUnmarshaler)

		err := unmarshaler.UnmarshalText([]byte(raw))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("unmarshal text into %s: %w", typ, err)
		}

		return target.Elem(), nil
	}

	switch typ.Kind() { //nolint:exhaustive // unsupported kinds fall through to the error below
	case reflect.String:
		return reflect.ValueOf(raw).Convert(typ), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse bool: %w", err)
		}

		return reflect.ValueOf(b).Convert(typ), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, typ.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s: %w", typ, err)
		}

		return reflect.ValueOf(n).Convert(typ), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(raw, 10, typ.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s: %w", typ, err)
		}

		return reflect.ValueOf(n).Convert(typ), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, typ.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s: %w", typ, err)
		}

		return reflect.ValueOf(f).Convert(typ), nil
	case reflect.Pointer:
		elem, err := Value(raw, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(elem)

		return ptr, nil
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte(raw)).Convert(typ), nil
		}

		return splitValue(raw, ListSeparator, typ)
	}

	return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

// Supports reports whether Value can parse strings into typ.
func Supports(typ reflect.Type) bool {
	if typ == durationType || reflect.PointerTo(typ).Implements(textUnmarshalerType) {
		return true
	}

	switch typ.Kind() { //nolint:exhaustive // everything else is unsupported
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Pointer, reflect.Slice:
		return Supports(typ.Elem())
	default:
		return false
	}
}

// CommaSeparated parses a comma separated list. An empty string yields an
// empty, non-nil slice.
func CommaSeparated[E any](raw string) ([]E, error) {
	return Separated[E](ListSeparator)(raw)
}

// Separated returns a parse function splitting its input on sep.
func Separated[E any](sep string) func(string) ([]E, error) {
	return func(raw string) ([]E, error) {
		value, err := splitValue(raw, sep, reflect.TypeFor[[]E]())
		if err != nil {
			return nil, err
		}

		list, _ := value.Interface().([]E)

		return list, nil
	}
}

func splitValue(raw, sep string, sliceType reflect.Type) (reflect.Value, error) {
	if raw == "" {
		return reflect.MakeSlice(sliceType, 0, 0), nil
	}

	parts := strings.Split(raw, sep)
	out := reflect.MakeSlice(sliceType, 0, len(parts))

	for i, part := range parts {
		elem, err := Value(strings.TrimSpace(part), sliceType.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("item %d: %w", i, err)
		}

		out = reflect.Append(out, elem)
	}

	return out, nil
}
