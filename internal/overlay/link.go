// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"
	"path"

	"github.com/spf13/afero"
)

// pending is one directory entry found while scanning a link source.
type pending struct {
	rel    string
	dir    bool
	masked bool
}

// Insert links source to the virtual destination. Intermediate virtual
// directories are created implicitly. With [FlagFailIfExists], linking
// fails if a direct redirect already exists at the exact destination, or if
// an ancestor segment exists neither virtually nor physically. Directory
// links with [FlagRecursive] populate the subtree from the source,
// consulting rules for every entry. A nil rules filters nothing.
func (t *Tree) Insert(source, destination string, flags LinkFlags, dir bool, rules Ruleset) error {
	if rules == nil {
		rules = nilRules{}
	}

	segments := SplitVirtual(destination)
	if len(segments) == 0 && !dir {
		return &LinkError{Destination: destination, Err: ErrInvalidDestination}
	}

	// Scan before mutating, so a rejected skip leaves the tree unchanged.
	var entries []pending

	if dir && flags.Has(FlagRecursive) {
		scanned, skipped, err := t.scanRecursive(source, rules)
		if err != nil {
			return &LinkError{Destination: destination, Err: err}
		}

		if flags.Has(FlagFailIfSkipped) && len(skipped) > 0 {
			return &LinkError{
				Destination: destination,
				Entry:       skipped[0],
				Err:         ErrSkippedEntryRejected,
			}
		}

		entries = scanned
	}

	node, err := t.walkDestination(destination, segments, flags, dir)
	if err != nil {
		return err
	}

	node.masked = false
	node.monitor = flags.Has(FlagMonitorChanges)

	if flags.Has(FlagCreateTarget) {
		// A new create target replaces the previous one for this
		// destination.
		node.createTarget = source
		node.dynamic = true
	} else {
		node.target = source
	}

	t.applyEntries(node, source, entries)

	t.records = append(t.records, Record{
		Source:      source,
		Destination: destination,
		Flags:       flags,
		Directory:   dir,
		Order:       len(t.records),
	})
	t.bump()

	return nil
}

// walkDestination descends to the destination node, creating implicit
// virtual directories, and enforces the strictness rules of
// [FlagFailIfExists].
func (t *Tree) walkDestination(destination string, segments []string, flags LinkFlags, dir bool) (*Node, error) {
	strict := flags.Has(FlagFailIfExists)
	node := t.root

	for idx, segment := range segments[:max(len(segments)-1, 0)] {
		child, found := node.child(segment)
		if !found {
			if strict && !t.existsPhysically(segments[:idx+1]) {
				return nil, &LinkError{
					Destination: destination,
					Entry:       segment,
					Err:         ErrMissingVirtualAncestor,
				}
			}

			child = node.ensureChild(segment, true)
		}

		child.dir = true
		node = child
	}

	if len(segments) == 0 {
		return node, nil
	}

	last := segments[len(segments)-1]

	if child, found := node.child(last); found {
		if strict && child.target != "" {
			return nil, &LinkError{Destination: destination, Err: ErrAlreadyLinked}
		}
	}

	return node.ensureChild(last, dir), nil
}

// existsPhysically checks whether the resolved real location of the given
// virtual prefix exists as a directory.
func (t *Tree) existsPhysically(segments []string) bool {
	real := t.Resolve("/" + path.Join(segments...))

	info, err := t.fsys.Stat(real)

	return err == nil && info.IsDir()
}

// applyEntries places the scanned source entries below the destination
// node. Every entry keeps a redirect to its source-side location, omitted
// entries become masked nodes that hide their subtree from resolution.
func (t *Tree) applyEntries(root *Node, source string, entries []pending) {
	for _, entry := range entries {
		segments := SplitVirtual(entry.rel)
		node := root

		for _, segment := range segments[:len(segments)-1] {
			node = node.ensureChild(segment, true)
		}

		child := node.ensureChild(segments[len(segments)-1], entry.dir)
		child.masked = entry.masked

		if !entry.masked {
			child.target = joinTarget(source, segments)
		}
	}
}

// scanRecursive walks the source directory depth-first in lexicographic
// order and returns the flattened entry list plus the relative paths of all
// entries omitted by the rules. Omitted directories are not descended into.
func (t *Tree) scanRecursive(source string, rules Ruleset) ([]pending, []string, error) {
	var (
		entries []pending
		skipped []string
	)

	var scan func(dir, rel string) error

	scan = func(dir, rel string) error {
		infos, err := afero.ReadDir(t.fsys, dir)
		if err != nil {
			return fmt.Errorf("scan %s: %w", dir, err)
		}

		for _, info := range infos {
			name := info.Name()
			childRel := path.Join(rel, name)

			if rules.SkipEntry(name, info.IsDir()) {
				skipped = append(skipped, childRel)
				entries = append(entries, pending{rel: childRel, dir: info.IsDir(), masked: true})

				continue
			}

			entries = append(entries, pending{rel: childRel, dir: info.IsDir()})

			if info.IsDir() {
				if err := scan(joinTarget(dir, []string{name}), childRel); err != nil {
					return err
				}
			}
		}

		return nil
	}

	if err := scan(source, ""); err != nil {
		return nil, nil, err
	}

	return entries, skipped, nil
}
