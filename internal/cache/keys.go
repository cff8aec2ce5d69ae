package cache

import "strings"

// Key derives a deterministic feed cache key from a shape name and its
// parameters. Identical inputs always produce identical keys; any parameter
// difference (viewer, page, query, ...) produces a different key, so results
// never bleed across viewers or filters.
func Key(shape string, parts ...string) string {
	elems := make([]string, 0, len(parts)+2)
	elems = append(elems, "feed", shape)
	elems = append(elems, parts...)
	return strings.Join(elems, ":")
}

// PostKey is the single-entity key for one post. It carries no viewer
// because the payload is viewer-independent; authorization is re-evaluated
// per request. These keys are invalidated eagerly on every write.
func PostKey(id string) string {
	return "post:" + id
}
