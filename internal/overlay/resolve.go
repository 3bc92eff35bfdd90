// SPDX-License-Identifier: MIT

package overlay

import "strconv"

// Resolve returns the effective real path for the given virtual path.
//
// The tree is walked along the longest existing prefix of the path. The
// deepest redirect found on the walk wins, with a create target taking
// precedence over a plain redirect on the same node. Any unmatched suffix
// is appended verbatim to the winning redirect target. A path below a
// masked node, or with no redirect on its walk at all, resolves to itself.
func (t *Tree) Resolve(path string) string {
	key := t.cacheKey(path)

	if t.cache != nil {
		if resolved, found := t.cache.Get(key); found {
			return resolved
		}
	}

	resolved := t.resolve(path)

	if t.cache != nil {
		t.cache.Set(key, resolved, 1)
	}

	return resolved
}

func (t *Tree) resolve(path string) string {
	segments := SplitVirtual(path)

	var (
		target string
		depth  int
	)

	node := t.root
	if node.target != "" {
		target = node.target
	}

	for idx, segment := range segments {
		child, found := node.child(segment)
		if !found {
			break
		}

		if child.masked {
			return path
		}

		if child.target != "" {
			target = child.target
			depth = idx + 1
		}

		if child.createTarget != "" {
			// Inner-most create target wins.
			target = child.createTarget
			depth = idx + 1
		}

		node = child
	}

	if target == "" {
		return path
	}

	return joinTarget(target, segments[depth:])
}

// cacheKey scopes the raw input path to the current generation, so every
// mutation implicitly invalidates all cached resolutions. The tree walk is
// case-insensitive, but the resolved output echoes the input spelling of
// any unmatched suffix, so case variants must not share a cache entry.
func (t *Tree) cacheKey(path string) string {
	return strconv.FormatUint(t.generation, 10) + "|" + path
}
