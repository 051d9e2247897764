package xdm

// MergeOverwrite deep-merges overlay into base and returns the result.
//
// Wherever both sides hold a map the merge recurses; any other collision
// takes the overlay's value, arrays included (no element-wise union).
// Neither input is mutated and the result shares no mutable structure with
// either. Nil inputs read as empty; the result is never nil.
func MergeOverwrite(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range overlay {
		baseMap, baseOK := out[k].(map[string]any)
		overlayMap, overlayOK := v.(map[string]any)
		if baseOK && overlayOK {
			out[k] = MergeOverwrite(baseMap, overlayMap)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
