package config

// Merge deep-extends dst with src and returns the result as a new Map;
// neither input is modified.
//
//   - keys only in dst keep their position
//   - keys only in src are appended in src order
//   - when both values are objects the merge recurses
//   - otherwise src wins; arrays are replaced, not concatenated
//   - a nil value in src (JSON null, YAML ~) replaces the dst value
func Merge(dst, src *Map) *Map {
	out := dst.Clone()
	if out == nil {
		out = NewMap()
	}
	src.Range(func(k string, sv any) bool {
		if sm, ok := sv.(*Map); ok {
			if dv, ok := out.Get(k); ok {
				if dm, ok := dv.(*Map); ok {
					out.Set(k, Merge(dm, sm))
					return true
				}
			}
			out.Set(k, sm.Clone())
			return true
		}
		out.Set(k, cloneValue(sv))
		return true
	})
	return out
}
