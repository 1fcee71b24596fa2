package provenance

import "strings"

// LocationsCompatible reports whether a user-declared location is
// consistent with the registry's allocated location. Comparison is
// case-insensitive, whitespace-normalized, and accepts containment in
// either direction: the registry and user input often differ in
// administrative granularity ("Mumbai" vs "Mumbai, Maharashtra"), and
// strict equality would flood the pipeline with false positives.
func LocationsCompatible(allocated, reported string) bool {
	a := canonLocation(allocated)
	b := canonLocation(reported)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func canonLocation(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
