package config

// Optional is a leaf value that may be absent. Custom merge functions receive
// the accumulated and incoming leaves as Optional values.
type Optional[V any] struct {
	Value V
	Set   bool
}

// Some returns a present Optional holding v.
func Some[V any](v V) Optional[V] {
	return Optional[V]{Value: v, Set: true}
}

// None returns an absent Optional.
func None[V any]() Optional[V] {
	return Optional[V]{} //nolint:exhaustruct // zero value is the absent state
}

// Get returns the value and whether it is present.
func (o Optional[V]) Get() (V, bool) {
	return o.Value, o.Set
}

// OrElse returns the value when present and fallback otherwise.
func (o Optional[V]) OrElse(fallback V) V {
	if o.Set {
		return o.Value
	}

	return fallback
}
