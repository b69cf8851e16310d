package config

// Merge folds incoming into p, field by field. A present incoming leaf
// replaces the accumulated value unless the field has a custom merge
// function, which then decides the result. Nested partials merge
// recursively. Merging stops at the first failing merge function and the
// error is a *MergeError naming the field; p may then be partially merged, so
// callers that need atomicity merge into a Clone.
//
// Merge is not commutative: later stages win.
func (p *Partial[T]) Merge(incoming *Partial[T]) error {
	if incoming == nil {
		return nil
	}

	return p.root.merge(incoming.root)
}

func (n *node) merge(incoming *node) error {
	for i, field := range n.info.fields {
		base := &n.slots[i]
		next := incoming.slots[i]

		if field.nested != nil {
			err := base.nested.merge(next.nested)
			if err != nil {
				return err
			}

			continue
		}

		if field.merge != nil {
			err := field.merge(base, next)
			if err != nil {
				return &MergeError{Field: field.path, Err: err}
			}

			continue
		}

		if next.present {
			*base = slot{present: true, value: cloneValue(next.value), nested: nil}
		}
	}

	return nil
}
