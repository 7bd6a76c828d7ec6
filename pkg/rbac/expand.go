package rbac

import "strings"

// FeatureKeys lists the feature ids of one module, in declaration order.
type FeatureKeys struct {
	ModuleID   string
	FeatureIDs []string
}

// AllKeys builds "module.feature" keys for every module, skipping empty
// feature ids.
func AllKeys(modules []FeatureKeys) []string {
	var keys []string
	for _, m := range modules {
		for _, f := range m.FeatureIDs {
			if f == "" {
				continue
			}
			keys = append(keys, m.ModuleID+"."+f)
		}
	}
	return keys
}

// Expand turns permission tokens into a concrete grant map over allKeys.
//
// A "*" anywhere in tokens yields every key in allKeys. "<module>.*" yields
// every key prefixed with "<module>.". Any other token is granted verbatim.
func Expand(tokens []string, allKeys []string) Grants {
	out := Grants{}
	for _, t := range tokens {
		if t == WildcardAll {
			for _, k := range allKeys {
				out[k] = true
			}
			return out
		}
	}

	for _, t := range tokens {
		if t == "" {
			continue
		}
		if strings.HasSuffix(t, moduleWildcard) {
			prefix := strings.TrimSuffix(t, moduleWildcard) + "."
			for _, k := range allKeys {
				if strings.HasPrefix(k, prefix) {
					out[k] = true
				}
			}
			continue
		}
		out[t] = true
	}
	return out
}
