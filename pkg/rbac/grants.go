// Package rbac holds the permission evaluation rules shared by the API
// (enforcement) and its clients (UI gating). Keys are dotted strings of the
// form "module.feature[.subfeature]".
package rbac

import "sort"

// Wildcard tokens
const (
	WildcardAll    = "*"
	WildcardAllAlt = "all"
	moduleWildcard = ".*"
)

// Grants maps a permission key to whether it is granted. Absent keys are not
// granted; only true entries are meaningful.
type Grants map[string]bool

// HasWildcard reports whether g carries a global wildcard grant.
func (g Grants) HasWildcard() bool {
	return g[WildcardAll] || g[WildcardAllAlt]
}

// Clone returns a shallow copy of g. A nil map clones to an empty one.
func (g Grants) Clone() Grants {
	out := make(Grants, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Normalize returns the grant map in its wire form: a global wildcard is
// replaced by every key in allKeys, and the wildcard tokens themselves are
// dropped. Module wildcards ("tasks.*") are kept as-is.
func Normalize(g Grants, allKeys []string) Grants {
	if g == nil {
		return Grants{}
	}
	var out Grants
	if g.HasWildcard() {
		out = Expand([]string{WildcardAll}, allKeys)
	} else {
		out = g.Clone()
	}
	delete(out, WildcardAll)
	delete(out, WildcardAllAlt)
	return out
}

// ActiveKeys returns the sorted keys whose value is true.
func ActiveKeys(g Grants) []string {
	keys := make([]string, 0, len(g))
	for k, v := range g {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
