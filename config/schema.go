package config

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/0xalexb/hjarta-conf/config/parse"

	"github.com/iancoleman/strcase"
)

const (
	tagConfig  = "config"
	tagEnv     = "env"
	tagDefault = "default"

	// prefixPlaceholder is replaced by the inherited prefix in env templates.
	prefixPlaceholder = "{}"
	// markerField is the blank field carrying struct-level options.
	markerField = "_"
)

//nolint:gochecknoglobals // reflect types are immutable.
var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

//nolint:gochecknoglobals // lookup table of supported rename_all conventions.
var inflections = map[string]func(string) string{
	"lowercase":            strings.ToLower,
	"UPPERCASE":            strings.ToUpper,
	"snake_case":           strcase.ToSnake,
	"camelCase":            strcase.ToLowerCamel,
	"PascalCase":           strcase.ToCamel,
	"kebab-case":           strcase.ToKebab,
	"SCREAMING_SNAKE_CASE": strcase.ToScreamingSnake,
	"SCREAMING-KEBAB-CASE": strcase.ToScreamingKebab,
}

// Schema is the field metadata table of the struct type T. It is immutable
// once built and may be shared between loaders and goroutines.
type Schema[T any] struct {
	root *structInfo
}

// structInfo describes one struct type at one position in the schema tree.
// Every occurrence of a nested type gets its own structInfo so paths and hooks
// stay position specific.
type structInfo struct {
	typ          reflect.Type
	path         string
	fields       []*fieldInfo
	byName       map[string]int
	envPrefix    string
	skipEnv      bool
	allowUnknown bool
}

type fieldInfo struct {
	index    []int
	goName   string
	name     string
	path     string
	typ      reflect.Type
	leafType reflect.Type
	pointer  bool
	optional bool
	nested   *structInfo

	envKey      string
	explicitEnv bool
	skipEnv     bool

	hasDefault   bool
	defaultValue reflect.Value

	merge       func(base *slot, incoming slot) error
	parse       func(raw string) (reflect.Value, error)
	customParse bool
	flatten     bool
}

// FieldInfo is the read-only description of a leaf field.
type FieldInfo struct {
	// Path is the canonical dotted path, e.g. "database.port".
	Path string
	// Type is the value type of the leaf; for pointer leaves, the element type.
	Type reflect.Type
	// Optional reports whether the field may stay absent.
	Optional bool
	// Default is the declared default, if any.
	Default any
	// HasDefault reports whether Default is meaningful.
	HasDefault bool
	// EnvKeyTemplate is the declared environment key template; empty when skipped.
	EnvKeyTemplate string
}

// SchemaOption customizes a schema after its metadata has been derived.
type SchemaOption func(*schemaBuilder) error

type schemaBuilder struct {
	root *structInfo
}

// NewSchema derives the metadata table of T and applies opts.
// T must be a struct type.
func NewSchema[T any](opts ...SchemaOption) (*Schema[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidSchema, typ)
	}

	root, err := buildStruct(typ, "", map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}

	builder := &schemaBuilder{root: root}

	for _, apply := range opts {
		err := apply(builder)
		if err != nil {
			return nil, err
		}
	}

	return &Schema[T]{root: root}, nil
}

// MustSchema is like NewSchema but panics on error. It is meant for package
// level schema variables.
func MustSchema[T any](opts ...SchemaOption) *Schema[T] {
	schema, err := NewSchema[T](opts...)
	if err != nil {
		panic(err)
	}

	return schema
}

// Fields lists the leaf fields of the schema, depth first in declaration order.
func (s *Schema[T]) Fields() []FieldInfo {
	var out []FieldInfo

	s.root.walkLeaves(func(field *fieldInfo) {
		info := FieldInfo{
			Path:           field.path,
			Type:           field.leafType,
			Optional:       field.optional,
			Default:        nil,
			HasDefault:     field.hasDefault,
			EnvKeyTemplate: "",
		}

		if field.hasDefault {
			info.Default = field.defaultValue.Interface()
		}

		if !field.skipEnv {
			info.EnvKeyTemplate = field.envKey
		}

		out = append(out, info)
	})

	return out
}

func (s *structInfo) walkLeaves(visit func(*fieldInfo)) {
	for _, field := range s.fields {
		if field.nested != nil {
			field.nested.walkLeaves(visit)

			continue
		}

		visit(field)
	}
}

// lookup resolves a canonical dotted path to its field.
func (s *structInfo) lookup(path string) (*fieldInfo, []int, error) {
	current := s
	indexes := make([]int, 0, strings.Count(path, ".")+1)
	parts := strings.Split(path, ".")

	for i, part := range parts {
		idx, found := current.byName[part]
		if !found {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}

		field := current.fields[idx]
		indexes = append(indexes, idx)

		if i == len(parts)-1 {
			return field, indexes, nil
		}

		if field.nested == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}

		current = field.nested
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownField, path)
}

func (b *schemaBuilder) leaf(path string, valueType reflect.Type) (*fieldInfo, error) {
	field, _, err := b.root.lookup(path)
	if err != nil {
		return nil, err
	}

	if field.nested != nil {
		return nil, fmt.Errorf("%w: %s is a nested schema, hooks apply to leaf fields", ErrInvalidSchema, path)
	}

	if field.leafType != valueType {
		return nil, fmt.Errorf("%w: %s has type %s, hook expects %s", ErrInvalidSchema, path, field.leafType, valueType)
	}

	return field, nil
}

type structOptions struct {
	renameAll    func(string) string
	envPrefix    string
	hasEnvPrefix bool
	skipEnv      bool
	allowUnknown bool
}

func parseStructOptions(typ reflect.Type) (structOptions, error) {
	opts := structOptions{
		renameAll:    strcase.ToSnake,
		envPrefix:    prefixPlaceholder,
		hasEnvPrefix: false,
		skipEnv:      false,
		allowUnknown: false,
	}

	var tag string

	for i := range typ.NumField() {
		if typ.Field(i).Name == markerField {
			tag = typ.Field(i).Tag.Get(tagConfig)

			break
		}
	}

	for _, item := range splitTag(tag) {
		key, value, _ := strings.Cut(item, "=")

		switch key {
		case "rename_all":
			inflect, ok := inflections[value]
			if !ok {
				return opts, fmt.Errorf("%w: %s: unknown rename_all value %q", ErrInvalidSchema, typ, value)
			}

			opts.renameAll = inflect
		case "env_prefix":
			opts.envPrefix = value
			opts.hasEnvPrefix = true
		case "skip_env":
			opts.skipEnv = true
		case "allow_unknown_fields":
			opts.allowUnknown = true
		default:
			return opts, fmt.Errorf("%w: %s: unknown struct option %q", ErrInvalidSchema, typ, key)
		}
	}

	if opts.skipEnv && opts.hasEnvPrefix {
		return opts, fmt.Errorf("%w: %s: cannot use both env_prefix and skip_env", ErrInvalidSchema, typ)
	}

	return opts, nil
}

func buildStruct(typ reflect.Type, prefix string, visiting map[reflect.Type]bool) (*structInfo, error) {
	if visiting[typ] {
		return nil, fmt.Errorf("%w: %s contains itself", ErrInvalidSchema, typ)
	}

	visiting[typ] = true
	defer delete(visiting, typ)

	opts, err := parseStructOptions(typ)
	if err != nil {
		return nil, err
	}

	info := &structInfo{
		typ:          typ,
		path:         prefix,
		fields:       nil,
		byName:       map[string]int{},
		envPrefix:    opts.envPrefix,
		skipEnv:      opts.skipEnv,
		allowUnknown: opts.allowUnknown,
	}

	for i := range typ.NumField() {
		structField := typ.Field(i)
		if structField.Name == markerField || !structField.IsExported() {
			continue
		}

		field, err := buildField(structField, opts, prefix, visiting)
		if err != nil {
			return nil, err
		}

		if field == nil {
			continue
		}

		fields := []*fieldInfo{field}
		if field.flatten {
			fields = field.promoted()
		}

		for _, field := range fields {
			if _, dup := info.byName[field.name]; dup {
				return nil, fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, field.path)
			}

			info.byName[field.name] = len(info.fields)
			info.fields = append(info.fields, field)
		}
	}

	return info, nil
}

// promoted returns the fields of a flattened struct as fields of its parent.
// Their env keys keep the flattened struct's own env_prefix and resolve
// against the parent's container prefix.
func (f *fieldInfo) promoted() []*fieldInfo {
	out := make([]*fieldInfo, 0, len(f.nested.fields))

	for _, child := range f.nested.fields {
		child.index = slices.Concat(f.index, child.index)
		child.envKey = expandPrefix(child.envKey, f.nested.envPrefix)

		if f.skipEnv && !child.explicitEnv {
			child.skipEnv = true
		}

		out = append(out, child)
	}

	return out
}

//nolint:cyclop,funlen // one pass over every field option.
func buildField(
	structField reflect.StructField,
	opts structOptions,
	prefix string,
	visiting map[reflect.Type]bool,
) (*fieldInfo, error) {
	tag := structField.Tag.Get(tagConfig)
	if tag == "-" {
		return nil, nil //nolint:nilnil // excluded field
	}

	items := splitTag(tag)
	rename := ""

	if len(items) > 0 {
		rename = items[0]
		items = items[1:]
	}

	field := &fieldInfo{
		index:        slices.Clone(structField.Index),
		goName:       structField.Name,
		name:         rename,
		path:         "",
		typ:          structField.Type,
		leafType:     structField.Type,
		pointer:      structField.Type.Kind() == reflect.Pointer,
		optional:     false,
		nested:       nil,
		envKey:       "",
		explicitEnv:  false,
		skipEnv:      false,
		hasDefault:   false,
		defaultValue: reflect.Value{},
		merge:        nil,
		parse:        nil,
		customParse:  false,
		flatten:      false,
	}

	if field.name == "" {
		field.name = opts.renameAll(structField.Name)
	}

	field.path = joinPath(prefix, field.name)

	if field.pointer {
		field.leafType = structField.Type.Elem()
	}

	wantNested := false
	wantFlatten := false

	for _, flag := range items {
		switch flag {
		case "nested":
			wantNested = true
		case "flatten":
			wantFlatten = true
		case "optional":
			field.optional = true
		case "skip_env":
			field.skipEnv = true
		default:
			return nil, fmt.Errorf("%w: field %s: unknown option %q", ErrInvalidSchema, field.path, flag)
		}
	}

	err := checkKind(field.path, field.leafType)
	if err != nil {
		return nil, err
	}

	if field.pointer {
		field.optional = true
	}

	field.flatten, err = shouldFlatten(structField, field, rename, wantNested, wantFlatten)
	if err != nil {
		return nil, err
	}

	if isNestedType(field.leafType) {
		nestedPrefix := field.path
		if field.flatten {
			nestedPrefix = prefix
		}

		field.nested, err = buildStruct(field.leafType, nestedPrefix, visiting)
		if err != nil {
			return nil, err
		}
	} else if wantNested {
		return nil, fmt.Errorf("%w: field %s is marked nested but %s is not a struct", ErrInvalidSchema, field.path, field.typ)
	}

	err = field.resolveEnv(structField, opts, rename)
	if err != nil {
		return nil, err
	}

	if literal, ok := structField.Tag.Lookup(tagDefault); ok {
		if field.nested != nil || field.flatten {
			return nil, fmt.Errorf("%w: field %s: nested schemas cannot declare a default", ErrInvalidSchema, field.path)
		}

		value, err := parse.Value(literal, field.leafType)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: invalid default %q: %w", ErrInvalidSchema, field.path, literal, err)
		}

		field.hasDefault = true
		field.defaultValue = value
	}

	leafType := field.leafType
	field.parse = func(raw string) (reflect.Value, error) {
		return parse.Value(raw, leafType)
	}

	return field, nil
}

// shouldFlatten reports whether the fields of a struct field belong to its
// parent. Embedded structs are flattened unless renamed or marked nested;
// other struct fields opt in with the flatten option.
func shouldFlatten(structField reflect.StructField, field *fieldInfo, rename string, wantNested, wantFlatten bool) (bool, error) {
	if wantFlatten {
		switch {
		case wantNested:
			return false, fmt.Errorf("%w: field %s: cannot use both nested and flatten", ErrInvalidSchema, field.path)
		case field.pointer:
			return false, fmt.Errorf("%w: field %s: cannot flatten a pointer", ErrInvalidSchema, field.path)
		case field.optional:
			return false, fmt.Errorf("%w: field %s: cannot flatten an optional field", ErrInvalidSchema, field.path)
		case !isNestedType(field.leafType):
			return false, fmt.Errorf("%w: field %s is marked flatten but %s is not a struct", ErrInvalidSchema, field.path, field.typ)
		}

		return true, nil
	}

	return structField.Anonymous && rename == "" && !wantNested && !field.pointer && !field.optional &&
		isNestedType(field.leafType), nil
}

func (f *fieldInfo) resolveEnv(structField reflect.StructField, opts structOptions, rename string) error {
	envTag, hasEnvTag := structField.Tag.Lookup(tagEnv)

	switch {
	case envTag == "-":
		f.skipEnv = true
	case hasEnvTag && f.skipEnv:
		return fmt.Errorf("%w: field %s: cannot use both env and skip_env", ErrInvalidSchema, f.path)
	case hasEnvTag:
		f.envKey = envTag
		f.explicitEnv = true
	default:
		base := rename
		if base == "" {
			base = structField.Name
		}

		f.envKey = prefixPlaceholder + strcase.ToScreamingSnake(base)
	}

	if opts.skipEnv && !f.explicitEnv {
		f.skipEnv = true
	}

	return nil
}

func checkKind(path string, typ reflect.Type) error {
	switch typ.Kind() { //nolint:exhaustive // only a few kinds are rejected
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return fmt.Errorf("%w: field %s has unsupported type %s", ErrInvalidSchema, path, typ)
	default:
		return nil
	}
}

// isNestedType reports whether typ is treated as a nested schema: any struct
// that does not unmarshal itself from text (time.Time, netip.Addr, ...).
func isNestedType(typ reflect.Type) bool {
	if typ.Kind() != reflect.Struct {
		return false
	}

	return !typ.Implements(textUnmarshalerType) && !reflect.PointerTo(typ).Implements(textUnmarshalerType)
}

func splitTag(tag string) []string {
	if tag == "" {
		return nil
	}

	parts := strings.Split(tag, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}
