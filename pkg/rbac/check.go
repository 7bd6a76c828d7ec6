package rbac

import "strings"

// Check decides whether grants authorize the required key. The rule is
// order independent:
//
//  1. nil grants or an empty key never pass
//  2. "*" or "all" grants everything
//  3. "<module>.*" grants every key of that module
//  4. an exact grant passes
//  5. for keys with three or more segments, a grant on the parent key
//     (all segments but the last) passes
func Check(grants Grants, required string) bool {
	if grants == nil || required == "" {
		return false
	}
	if grants.HasWildcard() {
		return true
	}

	parts := strings.Split(required, ".")
	if grants[parts[0]+moduleWildcard] {
		return true
	}
	if grants[required] {
		return true
	}
	if len(parts) >= 3 {
		parent := strings.Join(parts[:len(parts)-1], ".")
		if grants[parent] {
			return true
		}
	}
	return false
}

// CheckAny reports whether at least one key passes. An empty list is false.
func CheckAny(grants Grants, keys []string) bool {
	for _, k := range keys {
		if Check(grants, k) {
			return true
		}
	}
	return false
}

// CheckAll reports whether every key passes. An empty list is never
// satisfiable and returns false.
func CheckAll(grants Grants, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if !Check(grants, k) {
			return false
		}
	}
	return true
}
