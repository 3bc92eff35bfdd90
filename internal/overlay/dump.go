// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable rendering of the tree. The output is
// deterministic: children appear in folded lexicographic order and records
// in creation order, so two dumps of equal trees compare equal.
func (t *Tree) Dump(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "/"); err != nil {
		return err
	}

	if err := dumpNode(w, t.root, 1); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%d link operations\n", len(t.records)); err != nil {
		return err
	}

	for _, record := range t.records {
		_, err := fmt.Fprintf(w, "[%d] %s -> %s (%s)\n",
			record.Order, record.Destination, record.Source, record.Flags)
		if err != nil {
			return err
		}
	}

	return nil
}

func dumpNode(w io.Writer, node *Node, depth int) error {
	return node.eachChild(func(child *Node) error {
		line := strings.Repeat("  ", depth) + child.name

		if child.dir {
			line += "/"
		}

		switch {
		case child.masked:
			line += " (masked)"
		case child.createTarget != "":
			line += " => " + child.createTarget
		}

		if child.target != "" && !child.masked {
			line += " -> " + child.target
		}

		if child.monitor {
			line += " [monitored]"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		return dumpNode(w, child, depth+1)
	})
}
