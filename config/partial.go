package config

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Partial is the deep-partial counterpart of T: every leaf is either present
// or absent, and nested schemas hold nested partials rather than optional
// values, so fragments of a nested struct can come from different sources.
//
// The zero Partial is not usable; create one with Schema.Empty or one of the
// Schema.From* adapters. A Partial is not safe for concurrent mutation.
type Partial[T any] struct {
	schema *Schema[T]
	root   *node
}

type node struct {
	info  *structInfo
	slots []slot
}

type slot struct {
	present bool
	value   reflect.Value
	nested  *node
}

func newNode(info *structInfo) *node {
	n := &node{info: info, slots: make([]slot, len(info.fields))}

	for i, field := range info.fields {
		if field.nested != nil {
			n.slots[i].nested = newNode(field.nested)
		}
	}

	return n
}

// Empty returns a partial with every field absent. It is the identity of Merge.
func (s *Schema[T]) Empty() *Partial[T] {
	return &Partial[T]{schema: s, root: newNode(s.root)}
}

// Schema returns the schema the partial belongs to.
func (p *Partial[T]) Schema() *Schema[T] {
	return p.schema
}

// IsEmpty reports whether no leaf is present.
func (p *Partial[T]) IsEmpty() bool {
	return p.root.isEmpty()
}

func (n *node) isEmpty() bool {
	for i := range n.slots {
		s := &n.slots[i]
		if s.present || (s.nested != nil && !s.nested.isEmpty()) {
			return false
		}
	}

	return true
}

// Clone returns a copy of p that shares no mutable state with it.
func (p *Partial[T]) Clone() *Partial[T] {
	return &Partial[T]{schema: p.schema, root: p.root.clone()}
}

func (n *node) clone() *node {
	out := &node{info: n.info, slots: make([]slot, len(n.slots))}

	for i, s := range n.slots {
		if s.nested != nil {
			out.slots[i].nested = s.nested.clone()

			continue
		}

		if s.present {
			out.slots[i] = slot{present: true, value: cloneValue(s.value), nested: nil}
		}
	}

	return out
}

// cloneValue copies slices and maps one level deep.
func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() { //nolint:exhaustive // other kinds are copied by value
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)

		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(v.Type(), v.Len())

		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}

		return out
	default:
		return v
	}
}

func (p *Partial[T]) slot(path string) (*fieldInfo, *slot, error) {
	field, indexes, err := p.schema.root.lookup(path)
	if err != nil {
		return nil, nil, err
	}

	current := p.root
	for _, idx := range indexes[:len(indexes)-1] {
		current = current.slots[idx].nested
	}

	return field, &current.slots[indexes[len(indexes)-1]], nil
}

// Set stores value at the dotted path. Leaf values are decoded into the leaf
// type with the same rules as documents, so Set("port", 3000) works for any
// integer field. For a nested path, value must be a map and is decoded like a
// document section. A nil value unsets the field.
func (p *Partial[T]) Set(path string, value any) error {
	field, target, err := p.slot(path)
	if err != nil {
		return err
	}

	if value == nil {
		target.clear()

		return nil
	}

	if field.nested != nil {
		section, ok := asDocument(value)
		if !ok {
			return fmt.Errorf("field %s: expected a map, got %T", path, value)
		}

		fresh := newNode(field.nested)

		err := fresh.fromDocument(section)
		if err != nil {
			return err
		}

		target.nested = fresh

		return nil
	}

	decoded, err := decodeLeaf(field, value)
	if err != nil {
		return fmt.Errorf("field %s: %w", path, err)
	}

	*target = slot{present: true, value: decoded, nested: nil}

	return nil
}

// SetString parses raw with the field's string parser and stores it at path.
func (p *Partial[T]) SetString(path, raw string) error {
	field, target, err := p.slot(path)
	if err != nil {
		return err
	}

	if field.nested != nil {
		return fmt.Errorf("%w: %s is a nested schema", ErrUnknownField, path)
	}

	value, err := field.parse(raw)
	if err != nil {
		return &ParseError{Field: path, Key: "", Value: raw, Err: err}
	}

	*target = slot{present: true, value: value, nested: nil}

	return nil
}

// Unset marks the field at path absent. Unsetting a nested path clears the
// whole subtree.
func (p *Partial[T]) Unset(path string) error {
	_, target, err := p.slot(path)
	if err != nil {
		return err
	}

	target.clear()

	return nil
}

func (s *slot) clear() {
	if s.nested != nil {
		s.nested = newNode(s.nested.info)

		return
	}

	*s = slot{present: false, value: reflect.Value{}, nested: nil}
}

// Get returns a copy of the value at path and whether it is present. For a nested path
// the value is the map form of the nested partial.
func (p *Partial[T]) Get(path string) (any, bool) {
	_, target, err := p.slot(path)
	if err != nil {
		return nil, false
	}

	if target.nested != nil {
		if target.nested.isEmpty() {
			return nil, false
		}

		return target.nested.toMap(), true
	}

	if !target.present {
		return nil, false
	}

	return cloneValue(target.value).Interface(), true
}

// Missing lists the dotted paths of required leaves that are absent, in
// declaration order, depth first.
func (p *Partial[T]) Missing() []string {
	return p.root.missing(nil)
}

func (n *node) missing(out []string) []string {
	for i, field := range n.info.fields {
		s := &n.slots[i]

		switch {
		case field.nested != nil:
			if field.optional && s.nested.isEmpty() {
				continue
			}

			out = s.nested.missing(out)
		case !s.present && !field.optional:
			out = append(out, field.path)
		}
	}

	return out
}

// Map returns the present fields keyed by canonical name. Nested partials
// with no present leaf are omitted.
func (p *Partial[T]) Map() map[string]any {
	return p.root.toMap()
}

func (n *node) toMap() map[string]any {
	out := map[string]any{}

	for i, field := range n.info.fields {
		s := &n.slots[i]

		switch {
		case s.nested != nil:
			if !s.nested.isEmpty() {
				out[field.name] = s.nested.toMap()
			}
		case s.present:
			out[field.name] = cloneValue(s.value).Interface()
		}
	}

	return out
}

// MarshalJSON encodes the present fields of p.
func (p *Partial[T]) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(p.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal partial: %w", err)
	}

	return data, nil
}

// String renders the present fields as JSON, for logs and test failures.
func (p *Partial[T]) String() string {
	data, err := p.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", p.Map())
	}

	return string(data)
}

// decodeLeaf converts a document or caller supplied value into the leaf type.
// Typing is strict: "3001" does not decode into an int, and numbers must fit
// the leaf type.
func decodeLeaf(field *fieldInfo, input any) (reflect.Value, error) {
	inputType := reflect.TypeOf(input)
	if inputType.AssignableTo(field.leafType) {
		out := reflect.New(field.leafType).Elem()
		out.Set(cloneValue(reflect.ValueOf(input)))

		return out, nil
	}

	// Checked here as well as in the hook so scalar errors keep their chain.
	_, err := checkNumberRange(inputType, field.leafType, input)
	if err != nil {
		return reflect.Value{}, err
	}

	target := reflect.New(field.leafType)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{ //nolint:exhaustruct // library defaults
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(checkNumberRange),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:  target.Interface(),
		TagName: tagConfig,
	})
	if err != nil {
		return reflect.Value{}, fmt.Errorf("create decoder: %w", err)
	}

	err = decoder.Decode(input)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("decode %T into %s: %w", input, field.leafType, err)
	}

	return target.Elem(), nil
}
