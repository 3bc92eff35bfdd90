// SPDX-License-Identifier: MIT

package overlay

import "github.com/emirpasic/gods/maps/treemap"

// Node is a single node of the overlay tree. Children are keyed by folded
// segment, so lookups are case-insensitive while the display name keeps its
// original case. The ordered map guarantees deterministic lexicographic
// iteration for dumps and re-scan diffs.
type Node struct {
	name         string
	dir          bool
	target       string
	createTarget string
	monitor      bool
	dynamic      bool
	masked       bool
	children     *treemap.Map
}

func newNode(name string, dir bool) *Node {
	return &Node{
		name:     name,
		dir:      dir,
		children: treemap.NewWithStringComparator(),
	}
}

// Name returns the case-preserving display name of the segment.
func (n *Node) Name() string {
	return n.name
}

// Dir reports whether the node represents a directory.
func (n *Node) Dir() bool {
	return n.dir
}

// Target returns the direct redirect target, or empty if none.
func (n *Node) Target() string {
	return n.target
}

// CreateTarget returns the create-target redirect, or empty if none.
func (n *Node) CreateTarget() string {
	return n.createTarget
}

// Monitor reports whether the node's link asked for change monitoring.
func (n *Node) Monitor() bool {
	return n.monitor
}

// Dynamic reports whether the redirect stems from a create-target link
// rather than a static one.
func (n *Node) Dynamic() bool {
	return n.dynamic
}

// Masked reports whether the node hides its subtree from resolution. Masked
// nodes are produced for entries omitted by skip rules.
func (n *Node) Masked() bool {
	return n.masked
}

func (n *Node) child(name string) (*Node, bool) {
	value, found := n.children.Get(fold(name))
	if !found {
		return nil, false
	}

	return value.(*Node), true
}

func (n *Node) ensureChild(name string, dir bool) *Node {
	if child, found := n.child(name); found {
		if dir {
			child.dir = true
		}

		return child
	}

	child := newNode(name, dir)
	n.children.Put(fold(name), child)

	return child
}

// eachChild runs fn for every child in folded lexicographic order.
func (n *Node) eachChild(fn func(*Node) error) error {
	iter := n.children.Iterator()
	for iter.Next() {
		if err := fn(iter.Value().(*Node)); err != nil {
			return err
		}
	}

	return nil
}
