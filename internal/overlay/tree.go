// SPDX-License-Identifier: MIT

// Package overlay implements the virtual-to-real path mapping store and the
// link resolver of a VFS instance. The tree is the shared foundation every
// hooked process queries; it is not safe for concurrent mutation and relies
// on the per-instance mutual-exclusion domain of its owner.
package overlay

import (
	"path"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/spf13/afero"
)

const (
	cacheNumCounters = 10_000
	cacheMaxCost     = 1 << 20
	cacheBufferItems = 64
)

// Ruleset filters directory entries during recursive linking.
type Ruleset interface {
	// SkipEntry reports whether the entry with the given base name must be
	// omitted.
	SkipEntry(name string, dir bool) bool
}

type nilRules struct{}

func (nilRules) SkipEntry(string, bool) bool { return false }

// Tree is the overlay mapping store. Sources are scanned through the given
// filesystem, which also backs the physical-ancestor checks of strict
// linking.
type Tree struct {
	fsys       afero.Fs
	root       *Node
	generation uint64
	records    []Record
	cache      *ristretto.Cache[string, string]
}

// New creates an empty [Tree] on top of fsys.
func New(fsys afero.Fs) *Tree {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		// Static configuration, cannot actually fail. Resolution works
		// without the cache.
		cache = nil
	}

	return &Tree{
		fsys:  fsys,
		root:  newNode("", true),
		cache: cache,
	}
}

// Clear resets the tree to empty, dropping all mappings and records.
func (t *Tree) Clear() {
	t.root = newNode("", true)
	t.records = nil
	t.bump()
}

// Empty reports whether the tree holds no mappings.
func (t *Tree) Empty() bool {
	return t.root.children.Size() == 0 && len(t.records) == 0
}

// Generation returns the mutation counter. It changes on every mutating
// operation.
func (t *Tree) Generation() uint64 {
	return t.generation
}

// Records returns a copy of all link records in creation order.
func (t *Tree) Records() []Record {
	records := make([]Record, len(t.records))
	copy(records, t.records)

	return records
}

// WalkFunc is called with the virtual path of the node.
type WalkFunc func(path string, node *Node) error

// Walk traverses the tree depth-first in deterministic lexicographic order,
// not including the root. If fn returns an error the traversal terminates
// immediately and the error is returned.
func (t *Tree) Walk(fn WalkFunc) error {
	return walkNode(t.root, "/", fn)
}

func walkNode(node *Node, base string, fn WalkFunc) error {
	return node.eachChild(func(child *Node) error {
		childPath := path.Join(base, child.name)
		if err := fn(childPath, child); err != nil {
			return err
		}

		return walkNode(child, childPath, fn)
	})
}

func (t *Tree) bump() {
	t.generation++
}
