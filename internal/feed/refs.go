package feed

import (
	"github.com/cineconnect/cinefeed/internal/content"
)

// CollectRefs returns the distinct external catalog references across both
// content collections in first-seen order. Inputs are never mutated; zero
// items yield an empty set. The catalog is rate limited, so a duplicate
// lookup is a bug, not a slowdown.
func CollectRefs(reviews []content.Review, posts []content.Post) []string {
	seen := make(map[string]struct{}, len(reviews)+len(posts))
	refs := make([]string, 0, len(reviews)+len(posts))

	add := func(ref string) {
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	for _, r := range reviews {
		add(r.MovieID)
	}
	for _, p := range posts {
		add(p.MovieID)
	}
	return refs
}

// MergeRefs unions pre-collected reference sets, dropping duplicates and
// empty strings. Used where refs arrive from heterogeneous sources, e.g. a
// profile's bookmarks combined with its review refs.
func MergeRefs(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var refs []string
	for _, set := range sets {
		for _, ref := range set {
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}
