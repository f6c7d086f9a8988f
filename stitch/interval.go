// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

// ChangeInterval describes one contiguous region of the committed
// drawable order touched by a structural edit: the drawables strictly
// between before (exclusive) and after (exclusive) have changed. A nil
// before means the region starts at the head of the list; a nil after
// means it ends at the tail.
//
// Intervals form a singly linked chain on the owning tree, kept in
// old-order position because the recording pass walks the instance tree
// in pre-order. Merging therefore only ever needs to look at consecutive
// chain entries.
type ChangeInterval struct {
	before *Drawable
	after  *Drawable

	// empty marks a pure insertion: the old region between the
	// boundaries contains no drawables.
	empty bool

	// anchor is the instance whose subtree covers the changed region.
	// After merging it is the lowest common ancestor of the merged
	// anchors; the stitcher re-traverses only this subtree.
	anchor *Instance

	next *ChangeInterval

	// oldBlocks collects the distinct blocks of the old-region drawables,
	// captured during stitching so the block pass can dispose the ones
	// that end up with no members.
	oldBlocks []*Block
}

// reset returns the interval to its zero state for pool reuse.
func (iv *ChangeInterval) reset() {
	*iv = ChangeInterval{oldBlocks: iv.oldBlocks[:0]}
}

// recordInterval appends a change interval covering the committed subtree
// span of inst to the per-frame chain. The old-region drawables are
// stamped with the current frame so later merges can recognize boundaries
// that this edit swallowed.
//
// Must be called before any instance-tree mutation is applied, while the
// committed structure and span caches are still intact, and in pre-order
// so the chain stays sorted.
func (t *Tree) recordInterval(inst *Instance) {
	iv := t.acquireInterval()
	iv.anchor = inst
	iv.empty = inst.firstDraw == nil

	if inst.firstDraw != nil {
		iv.before = inst.firstDraw.prev
		iv.after = inst.lastDraw.next
		for d := inst.firstDraw; d != nil; d = d.next {
			d.changedFrame = t.frame
			if d == inst.lastDraw {
				break
			}
		}
	} else {
		iv.before = inst.prevPreorderDrawable()
		iv.after = inst.nextPreorderDrawable()
	}

	if t.lastInterval != nil {
		t.lastInterval.next = iv
	} else {
		t.firstInterval = iv
	}
	t.lastInterval = iv
	t.intervalCount++
}

// mergeIntervals collapses the per-frame chain into maximal disjoint
// intervals and returns its head. Two consecutive intervals merge when
// they are contiguous (shared boundary), when either boundary was
// swallowed by the other edit (changed-frame stamp), when an unchanged
// gap between them belongs to a single block (so the block pass would
// scan overlapping regions), or when either reaches past the end the
// other starts from.
func (t *Tree) mergeIntervals() *ChangeInterval {
	head := t.firstInterval
	if head == nil {
		return nil
	}

	m := head
	for iv := m.next; iv != nil; iv = iv.next {
		if !t.canMerge(m, iv) {
			m = iv
			continue
		}
		m.after = t.mergedAfter(m, iv)
		m.empty = m.empty && iv.empty
		m.anchor = lowestCommonAncestor(m.anchor, iv.anchor)
		m.next = iv.next
		t.releaseInterval(iv)
		t.intervalCount--
		iv = m
	}
	return head
}

func (t *Tree) canMerge(m, iv *ChangeInterval) bool {
	if m.after == nil || iv.before == nil {
		return true
	}
	if m.after == iv.before || m.before == iv.before {
		return true
	}
	if m.after.changedFrame == t.frame || iv.before.changedFrame == t.frame {
		return true
	}
	// Unchanged gap sharing one block: the block pass for each interval
	// would extend into the same block, so treat them as one region.
	if m.after.block != nil && m.after.block == iv.before.block {
		return true
	}
	return false
}

// mergedAfter picks the outer right boundary of two merging intervals.
// A boundary stamped as changed this frame lies inside the other
// interval's region and cannot survive as a boundary.
func (t *Tree) mergedAfter(m, iv *ChangeInterval) *Drawable {
	switch {
	case m.after == nil || iv.after == nil:
		return nil
	case iv.after.changedFrame == t.frame:
		return m.after
	default:
		return iv.after
	}
}

// lowestCommonAncestor returns the deepest instance containing both a and b.
func lowestCommonAncestor(a, b *Instance) *Instance {
	for a.depth > b.depth {
		a = a.parent
	}
	for b.depth > a.depth {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}
