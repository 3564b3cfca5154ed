package verifier

// Hierarchy answers class-relationship questions for reference merges.
// The pipeline has no view of the host class path, so the default treats
// every pair of distinct classes as meeting at java/lang/Object.
type Hierarchy interface {
	CommonSuperclass(a, b string) string
}

// ObjectHierarchy is the default Hierarchy.
type ObjectHierarchy struct{}

func (ObjectHierarchy) CommonSuperclass(a, b string) string {
	if a == b {
		return a
	}
	return objectClass
}

// MapHierarchy resolves superclasses from a child -> parent table, falling
// back to java/lang/Object for anything it does not know.
type MapHierarchy map[string]string

func (h MapHierarchy) CommonSuperclass(a, b string) string {
	if a == b {
		return a
	}
	seen := make(map[string]bool)
	for c := a; c != "" && !seen[c]; c = h[c] {
		seen[c] = true
	}
	walked := make(map[string]bool)
	for c := b; c != "" && !walked[c]; c = h[c] {
		if seen[c] {
			return c
		}
		walked[c] = true
	}
	return objectClass
}
