// FILE: ziplog/src/internal/normalize/merge.go
package normalize

// cloneMap copies m, recursing into nested map[string]any values
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// deepMerge merges src into dst and returns dst. Nested objects present on
// both sides are merged recursively; any other value in src replaces dst's.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = deepMerge(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[k] = cloneMap(srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}
