// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import (
	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend"
)

// Block is a maximal contiguous run of committed drawables sharing a
// renderer kind and fit mode. Blocks hold non-owning references into the
// drawable list; their boundaries are re-derived around every stitched
// interval and never persist across one on their own.
//
// Block implements backend.Block.
type Block struct {
	id    uint64
	kind  sg.RendererKind
	fit   sg.FitMode
	first *Drawable
	last  *Drawable
	count int

	// claimedFrame guards against double reuse within one frame's
	// repartition pass.
	claimedFrame uint64
}

// ID returns a stable identifier, unique within the owning tree.
func (b *Block) ID() uint64 { return b.id }

// Kind returns the single renderer kind all members share.
func (b *Block) Kind() sg.RendererKind { return b.kind }

// Fit returns the fitting mode all members share.
func (b *Block) Fit() sg.FitMode { return b.fit }

// Len returns the number of member drawables.
func (b *Block) Len() int { return b.count }

// First returns the first member in committed paint order.
func (b *Block) First() *Drawable { return b.first }

// Last returns the last member in committed paint order.
func (b *Block) Last() *Drawable { return b.last }

// Members calls yield for each member handle in paint order.
func (b *Block) Members(yield func(sg.DrawableHandle) bool) {
	for d := b.first; d != nil; d = d.next {
		if !yield(d.handle) {
			return
		}
		if d == b.last {
			return
		}
	}
}

func (b *Block) rng() backend.Range {
	if b.count == 0 {
		return backend.Range{}
	}
	return backend.Range{First: b.first.handle, Last: b.last.handle, Len: b.count}
}

// repartition re-derives block boundaries around one stitched interval
// after the commit. The scan covers the interval region extended to the
// full extent of the blocks its boundaries belong to (so boundary blocks
// can shrink, grow, or merge), never the whole list. Emits created,
// range-changed, and disposed events to the painters.
//
// Returns the number of block changes (created + disposed + resized).
func (t *Tree) repartition(iv *ChangeInterval) int {
	start := t.head
	if iv.before != nil {
		start = iv.before
		if start.block != nil {
			start = start.block.first
		}
	}
	end := t.tail
	if iv.after != nil {
		end = iv.after
		if end.block != nil {
			end = end.block.last
		}
	}

	changed := 0
	var run []*Drawable
	flush := func() {
		if len(run) != 0 {
			changed += t.assignRun(run)
			run = run[:0]
		}
	}

	for d := start; d != nil; d = d.next {
		if len(run) != 0 && !run[len(run)-1].sameGroup(d) {
			flush()
		}
		if d.block != nil {
			if n := len(iv.oldBlocks); n == 0 || iv.oldBlocks[n-1] != d.block {
				iv.oldBlocks = append(iv.oldBlocks, d.block)
			}
		}
		run = append(run, d)
		if d == end {
			break
		}
	}
	flush()

	// Blocks whose every member left the scanned region or the list are
	// disposed. A block that would end up empty never survives.
	for _, b := range iv.oldBlocks {
		if b.claimedFrame != t.frame {
			t.disposeBlock(b)
			changed++
		}
	}
	return changed
}

// assignRun maps one maximal same-key run onto a block: the first member
// whose previous block matches the key and is unclaimed this frame is
// reused (emitting a range change if its extent moved); otherwise a new
// block is created. Returns 1 if a block change event was emitted.
func (t *Tree) assignRun(run []*Drawable) int {
	key := run[0]
	var blk *Block
	for _, d := range run {
		b := d.block
		if b != nil && b.claimedFrame != t.frame && b.kind == key.kind && b.fit == key.fit {
			blk = b
			break
		}
	}

	if blk == nil {
		t.nextBlockID++
		blk = &Block{id: t.nextBlockID, kind: key.kind, fit: key.fit}
		blk.claimedFrame = t.frame
		setRun(blk, run)
		t.blockCount++
		if p := t.painterFor(blk.kind); p != nil {
			p.BlockCreated(blk)
		}
		return 1
	}

	blk.claimedFrame = t.frame
	oldRange := blk.rng()
	oldFirst, oldLast, oldCount := blk.first, blk.last, blk.count
	setRun(blk, run)
	if blk.first != oldFirst || blk.last != oldLast || blk.count != oldCount {
		if p := t.painterFor(blk.kind); p != nil {
			p.BlockRangeChanged(blk, oldRange, blk.rng())
		}
		return 1
	}
	return 0
}

func setRun(blk *Block, run []*Drawable) {
	blk.first = run[0]
	blk.last = run[len(run)-1]
	blk.count = len(run)
	for _, d := range run {
		d.block = blk
	}
}

// disposeBlock emits the disposal event and forgets the block. Marking
// the block claimed keeps a later interval's pass from disposing it again.
func (t *Tree) disposeBlock(b *Block) {
	b.claimedFrame = t.frame
	t.blockCount--
	if p := t.painterFor(b.kind); p != nil {
		p.BlockDisposed(b)
	}
	b.first = nil
	b.last = nil
	b.count = 0
}
