package schema

// MultiEnumEntry pairs a canonical-order tag with the toggle expression
// that gates its presence in a multi_enum field. Multi-enum fields carry
// no in-band discriminator: which tagged values are present, and in
// what order, is determined entirely by evaluating each entry's Toggle
// against the record's Config, in the pinned order the entries are
// given here.
type MultiEnumEntry[T any] struct {
	Toggle string
	Value  T
}

// SelectMultiEnum returns the subset of entries whose Toggle evaluates
// true against cfg, preserving the caller-supplied canonical order.
func SelectMultiEnum[T any](cfg *Config, entries []MultiEnumEntry[T]) ([]T, error) {
	var out []T
	for _, e := range entries {
		ok, err := cfg.ToggledBy(e.Toggle)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e.Value)
		}
	}
	return out, nil
}
