// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import (
	"log/slog"

	"github.com/gogpu/sg"
)

// errInconsistent reports that an interval boundary no longer resolves to
// a valid committed list position. Under WithValidation this panics (the
// debug-build behavior); otherwise the frame escalates to a full rebuild
// of the drawable list instead of crashing.
type errInconsistent struct{ reason string }

func (e errInconsistent) Error() string { return "stitch: inconsistent interval: " + e.reason }

// stitchInterval repairs one merged interval: it collects the sequence of
// drawables that should now occupy the region, attempts the greedy
// classification, falls back to rebuild on ambiguity, and splices the new
// sequence into the pending link order. The committed order is not
// touched; commitInterval performs the swap after every interval has been
// stitched.
//
// Returns whether the greedy strategy succeeded.
func (t *Tree) stitchInterval(iv *ChangeInterval) (greedy bool, err error) {
	old, err := t.collectOldSpan(iv)
	if err != nil {
		return false, err
	}
	seq := t.collectNewSpan(iv)

	greedy = t.classify(old, seq)
	if !greedy {
		// Rebuild: no prior clean state relative to neighbors can be
		// assumed for anything in the span.
		for _, d := range seq {
			t.markDrawableDirty(d, sg.DirtyVisual)
		}
	}

	t.splicePending(iv, seq)
	return greedy, nil
}

// collectOldSpan walks the committed links strictly between the interval
// boundaries, capturing the member drawables and their distinct blocks.
func (t *Tree) collectOldSpan(iv *ChangeInterval) ([]*Drawable, error) {
	var old []*Drawable
	start := t.head
	if iv.before != nil {
		if iv.before.state != stateAttached {
			return nil, errInconsistent{"before boundary not attached"}
		}
		start = iv.before.next
	}
	for d := start; d != iv.after; d = d.next {
		if d == nil {
			if iv.after == nil {
				break
			}
			return nil, errInconsistent{"after boundary unreachable"}
		}
		old = append(old, d)
		if d.block != nil {
			if n := len(iv.oldBlocks); n == 0 || iv.oldBlocks[n-1] != d.block {
				iv.oldBlocks = append(iv.oldBlocks, d.block)
			}
		}
	}
	return old, nil
}

// collectNewSpan re-traverses the anchor's instance subtree (only) in
// pre-order and returns the drawables that should occupy the interval,
// trimmed to the interval boundaries. The anchor subtree always covers
// the region; it may additionally cover unchanged drawables on either
// side, which the trim removes.
func (t *Tree) collectNewSpan(iv *ChangeInterval) []*Drawable {
	seq := appendSubtreeDrawables(nil, iv.anchor)

	lo, hi := 0, len(seq)
	if iv.before != nil {
		for idx, d := range seq {
			if d == iv.before {
				lo = idx + 1
				break
			}
		}
	}
	if iv.after != nil {
		for idx := len(seq) - 1; idx >= lo; idx-- {
			if seq[idx] == iv.after {
				hi = idx
				break
			}
		}
	}
	return seq[lo:hi]
}

// appendSubtreeDrawables collects the subtree's drawables in pre-order:
// the instance's own drawable first, then each child subtree in order.
func appendSubtreeDrawables(seq []*Drawable, i *Instance) []*Drawable {
	if i.drawable != nil {
		seq = append(seq, i.drawable)
	}
	for _, c := range i.children {
		seq = appendSubtreeDrawables(seq, c)
	}
	return seq
}

// classify is the greedy strategy: walk the old and new spans in lockstep
// and account each divergence as a pure insertion (new drawable absent
// from the old span) or a pure removal (old drawable absent from the new
// span). Any drawable present in both spans but encountered out of
// relative order is a reorder the greedy walk cannot express with
// insertions and removals alone, so it bails out and reports failure.
//
// The walk only inspects span members; drawables outside the interval
// boundaries are never touched.
func (t *Tree) classify(old, seq []*Drawable) bool {
	if len(old) == 0 || len(seq) == 0 {
		// Pure insertion or pure removal of the whole span.
		return true
	}

	oldSet := make(map[*Drawable]struct{}, len(old))
	for _, d := range old {
		oldSet[d] = struct{}{}
	}
	newSet := make(map[*Drawable]struct{}, len(seq))
	for _, d := range seq {
		newSet[d] = struct{}{}
	}

	i, j := 0, 0
	for i < len(old) && j < len(seq) {
		o, n := old[i], seq[j]
		if o == n {
			i++
			j++
			continue
		}
		if _, stays := newSet[o]; !stays {
			// Pure removal: o is unlinked and disposed elsewhere.
			i++
			continue
		}
		if _, existed := oldSet[n]; !existed {
			// Pure insertion: n joins in dirty state.
			j++
			continue
		}
		// Both survive but meet out of order: a reorder.
		return false
	}
	for ; i < len(old); i++ {
		if _, stays := newSet[old[i]]; stays {
			return false
		}
	}
	for ; j < len(seq); j++ {
		if _, existed := oldSet[seq[j]]; existed {
			return false
		}
	}
	return true
}

// splicePending links the new sequence between the interval boundaries in
// the pending order. The committed order stays fully walkable.
func (t *Tree) splicePending(iv *ChangeInterval, seq []*Drawable) {
	left := iv.before
	for _, d := range seq {
		d.pendingPrev = left
		if left != nil {
			left.pendingNext = d
		} else {
			t.pendingHead = d
		}
		left = d
	}
	if left != nil {
		left.pendingNext = iv.after
	} else {
		t.pendingHead = iv.after
	}
	if iv.after != nil {
		iv.after.pendingPrev = left
	} else {
		t.pendingTail = left
	}
}

// commitInterval swaps the pending links of one stitched interval into
// the committed order. Called for every interval after the whole merged
// set has been stitched, so no partially stitched state is ever visible
// to the block manager or painters.
func (t *Tree) commitInterval(iv *ChangeInterval) {
	var first *Drawable
	if iv.before != nil {
		first = iv.before.pendingNext
	} else {
		first = t.pendingHead
	}

	prev := iv.before
	for d := first; d != iv.after && d != nil; {
		next := d.pendingNext
		d.prev = prev
		if prev != nil {
			prev.next = d
		} else {
			t.head = d
		}
		if d.state == stateUnattached {
			d.state = stateAttached
		}
		d.pendingPrev = nil
		d.pendingNext = nil
		prev = d
		d = next
	}

	if prev != nil {
		prev.next = iv.after
	} else {
		t.head = iv.after
	}
	if iv.after != nil {
		iv.after.prev = prev
		iv.after.pendingPrev = nil
		iv.after.pendingNext = nil
	} else {
		t.tail = prev
	}
	if iv.before != nil {
		iv.before.pendingPrev = nil
		iv.before.pendingNext = nil
	}
}

// fullRebuild discards every interval and rebuilds the entire drawable
// list from a root traversal. It is the escalation path for consistency
// violations: never wrong, only more expensive.
func (t *Tree) fullRebuild() *ChangeInterval {
	sg.Logger().Warn("sg: escalating to full drawable list rebuild",
		slog.Uint64("frame", t.frame))

	for iv := t.firstInterval; iv != nil; {
		next := iv.next
		t.releaseInterval(iv)
		iv = next
	}
	t.firstInterval = nil
	t.lastInterval = nil
	t.intervalCount = 0

	iv := t.acquireInterval()
	iv.anchor = t.root
	iv.empty = t.head == nil
	t.firstInterval = iv
	t.lastInterval = iv
	t.intervalCount = 1

	seq := t.collectNewSpan(iv)
	for _, d := range seq {
		t.markDrawableDirty(d, sg.DirtyVisual)
	}
	// Every existing block must be re-derived.
	for d := t.head; d != nil; d = d.next {
		if d.block != nil {
			if n := len(iv.oldBlocks); n == 0 || iv.oldBlocks[n-1] != d.block {
				iv.oldBlocks = append(iv.oldBlocks, d.block)
			}
		}
	}
	t.splicePending(iv, seq)
	return iv
}
