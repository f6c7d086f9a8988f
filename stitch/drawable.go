// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import "github.com/gogpu/sg"

// drawableState tracks the lifecycle of a drawable.
//
// Transitions: creation enters unattached; the commit that links the
// drawable into the visible order moves it to attached (dirty); a painter
// update consumes the dirty flags back to attached (clean); removal moves
// to disposed from any state, severing links first.
type drawableState uint8

const (
	stateUnattached drawableState = iota
	stateAttached
	stateDisposed
)

// Drawable is one renderable unit backing a painted instance. It is a
// member of two doubly linked orders over the same drawables:
//
//   - prev/next is the committed order, visible to the block manager and
//     painters, always equivalent to a pre-order traversal of painted
//     instances as of the last commit.
//   - pendingPrev/pendingNext is the in-progress order assembled during a
//     stitch pass. Both orders are traversable concurrently within one
//     frame; the pending links are swapped into the committed links in a
//     single commit step.
//
// Drawables do not own their neighbors; the owning instance controls the
// drawable's lifetime.
type Drawable struct {
	handle sg.DrawableHandle
	inst   *Instance

	kind sg.RendererKind // resolved single kind
	caps sg.RendererKind // capability set of the owning node
	fit  sg.FitMode

	dirty sg.DirtyFlags
	state drawableState
	block *Block

	prev, next               *Drawable
	pendingPrev, pendingNext *Drawable

	// changedFrame stamps the last frame in which this drawable's old
	// position was inside a recorded change interval. Interval merging
	// uses it to detect boundaries swallowed by a neighboring edit.
	changedFrame uint64
}

// Handle returns the backend payload of the drawable.
func (d *Drawable) Handle() sg.DrawableHandle { return d.handle }

// Kind returns the resolved single renderer kind.
func (d *Drawable) Kind() sg.RendererKind { return d.kind }

// Fit returns the block fitting mode the drawable requests.
func (d *Drawable) Fit() sg.FitMode { return d.fit }

// Block returns the block the drawable currently belongs to, or nil
// before the first commit.
func (d *Drawable) Block() *Block { return d.block }

// Next returns the following drawable in committed paint order.
func (d *Drawable) Next() *Drawable { return d.next }

// Prev returns the preceding drawable in committed paint order.
func (d *Drawable) Prev() *Drawable { return d.prev }

// sameGroup reports whether two drawables may share a block.
func (d *Drawable) sameGroup(o *Drawable) bool {
	return d.kind == o.kind && d.fit == o.fit
}

// sever detaches the drawable from both link orders. Called on disposal,
// after the committed order has been relinked around it.
func (d *Drawable) sever() {
	d.prev = nil
	d.next = nil
	d.pendingPrev = nil
	d.pendingNext = nil
	d.block = nil
}

// reset returns the drawable to its zero state for pool reuse.
func (d *Drawable) reset() {
	*d = Drawable{}
}
