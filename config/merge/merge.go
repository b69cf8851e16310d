// Package merge provides ready-made merge functions for config.WithMerge.
//
// Each function receives the accumulated value and the value of the stage
// being merged, and stores the result in the accumulated value:
//
//	schema, err := config.NewSchema[Config](
//	    config.WithMerge("plugins", merge.Append[string]),
//	    config.WithMerge("labels", merge.Union[string, string]),
//	)
package merge

import (
	"maps"
	"slices"

	"github.com/0xalexb/hjarta-conf/config"
)

// Replace is the default rule: a present incoming value replaces the accumulated one.
func Replace[V any](base *config.Optional[V], incoming config.Optional[V]) error {
	if incoming.Set {
		*base = incoming
	}

	return nil
}

// KeepFirst keeps the first value ever set and ignores later stages.
func KeepFirst[V any](base *config.Optional[V], incoming config.Optional[V]) error {
	if !base.Set {
		*base = incoming
	}

	return nil
}

// Append appends incoming elements after the accumulated ones.
func Append[E any](base *config.Optional[[]E], incoming config.Optional[[]E]) error {
	if !incoming.Set {
		return nil
	}

	*base = config.Some(slices.Concat(base.Value, incoming.Value))

	return nil
}

// Prepend puts incoming elements before the accumulated ones.
func Prepend[E any](base *config.Optional[[]E], incoming config.Optional[[]E]) error {
	if !incoming.Set {
		return nil
	}

	*base = config.Some(slices.Concat(incoming.Value, base.Value))

	return nil
}

// Union merges maps key by key; incoming keys win.
func Union[K comparable, V any](base *config.Optional[map[K]V], incoming config.Optional[map[K]V]) error {
	if !incoming.Set {
		return nil
	}

	merged := make(map[K]V, len(base.Value)+len(incoming.Value))
	maps.Copy(merged, base.Value)
	maps.Copy(merged, incoming.Value)

	*base = config.Some(merged)

	return nil
}
