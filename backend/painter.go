// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"

	"github.com/gogpu/sg"
)

// Common backend errors.
var (
	// ErrPainterNotAvailable is returned when no painter is registered
	// for a requested renderer kind.
	ErrPainterNotAvailable = errors.New("backend: painter not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Block is the read-only view of a block handed to painters. A block is a
// maximal contiguous run of drawables in the committed paint order that
// share a renderer kind and fit mode.
//
// The members of a block are only valid for the duration of the
// notification that delivered it; painters that need the membership later
// must copy it.
type Block interface {
	// ID returns a stable identifier, unique within the owning tree.
	ID() uint64

	// Kind returns the single renderer kind all members share.
	Kind() sg.RendererKind

	// Fit returns the fitting mode all members share.
	Fit() sg.FitMode

	// Len returns the number of member drawables.
	Len() int

	// Members calls yield for each member handle in paint order,
	// stopping early if yield returns false.
	Members(yield func(sg.DrawableHandle) bool)
}

// Range describes the extent of a block before or after a boundary change.
type Range struct {
	// First and Last are the boundary member handles; nil for an empty range.
	First, Last sg.DrawableHandle

	// Len is the number of members in the range.
	Len int
}

// Painter is the backend collaborator for one renderer kind. The
// synchronization core calls it after each frame's commit with the block
// partition changes and the per-drawable dirty state; the painter is
// responsible for translating those into element, attribute, or draw-call
// updates. The core never touches backend-specific APIs itself.
//
// All methods are invoked on the frame-driving goroutine only.
type Painter interface {
	// Name returns the painter identifier (e.g., "markup-svg", "raster").
	Name() string

	// Kind returns the single renderer kind this painter serves.
	Kind() sg.RendererKind

	// Init initializes the painter.
	// This is called once before any notification is delivered.
	Init() error

	// Close releases all painter resources.
	// The painter should not be used after Close is called.
	Close()

	// BlockCreated notifies that a new block exists. The block's member
	// handles are delivered in paint order.
	BlockCreated(b Block)

	// BlockDisposed notifies that a block was removed. Its members have
	// either been disposed or migrated to other blocks.
	BlockDisposed(b Block)

	// BlockRangeChanged notifies that an existing block's boundaries
	// moved (members were added, removed, or taken over from a merged
	// neighbor).
	BlockRangeChanged(b Block, old, new Range)

	// DrawableDirty notifies that a member needs repainting. Only the
	// visual subset of DirtyFlags is ever delivered.
	DrawableDirty(h sg.DrawableHandle, flags sg.DirtyFlags)
}
