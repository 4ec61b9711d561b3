package config

// Merge combines two document nodes, with override winning on every
// conflict:
//
//   - a non-mapping override replaces the base node outright, including
//     replacing a whole mapping with a scalar or sequence (sequences are
//     replaced, never appended)
//   - when both sides are mappings the result keeps base's keys in their
//     original order followed by override-only keys in theirs, merging
//     shared keys recursively
//
// Both inputs are left untouched; the result shares no structure with
// either. Merge is idempotent and associative across an extends chain.
func Merge(base, override Value) Value {
	o, overrideIsMap := override.(*Mapping)
	if !overrideIsMap {
		return CloneValue(override)
	}
	b, baseIsMap := base.(*Mapping)
	if !baseIsMap {
		return o.Clone()
	}

	out := NewMapping()
	for _, k := range b.keys {
		if ov, ok := o.values[k]; ok {
			out.Set(k, Merge(b.values[k], ov))
		} else {
			out.Set(k, CloneValue(b.values[k]))
		}
	}
	for _, k := range o.keys {
		if _, ok := b.values[k]; !ok {
			out.Set(k, CloneValue(o.values[k]))
		}
	}
	return out
}
