// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Rescan rebuilds the tree from its records, with fresh directory scans for
// every recursive link. This is how monitor-changes links pick up source
// modifications: best-effort, on demand, never during resolution.
//
// The scans run concurrently, the rebuild itself is serial. Strictness
// flags are not re-applied on replay, a link that succeeded once stays
// linked.
func (t *Tree) Rescan(rules Ruleset) error {
	if rules == nil {
		rules = nilRules{}
	}

	records := t.records

	scans := make([][]pending, len(records))
	group := new(errgroup.Group)

	for idx, record := range records {
		if !record.Directory || !record.Flags.Has(FlagRecursive) {
			continue
		}

		idx, record := idx, record

		group.Go(func() error {
			entries, _, err := t.scanRecursive(record.Source, rules)
			if err != nil {
				return fmt.Errorf("rescan %s: %w", record.Destination, err)
			}

			scans[idx] = entries

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	t.root = newNode("", true)

	for idx, record := range records {
		segments := SplitVirtual(record.Destination)

		node, err := t.walkDestination(record.Destination, segments, 0, record.Directory)
		if err != nil {
			return err
		}

		node.monitor = record.Flags.Has(FlagMonitorChanges)

		if record.Flags.Has(FlagCreateTarget) {
			node.createTarget = record.Source
			node.dynamic = true
		} else {
			node.target = record.Source
		}

		t.applyEntries(node, record.Source, scans[idx])
	}

	t.bump()

	return nil
}
