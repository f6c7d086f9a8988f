// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sg

// DirtyFlags is a bitmask describing which aspects of a node (or the
// drawable backing it) have been invalidated since the last frame.
//
// The visual flags (paint, transform, bounds) are forwarded to backend
// painters through Painter.DrawableDirty. The structural flags (children,
// renderer) only drive the next tree synchronization and are never seen
// by painters.
type DirtyFlags uint8

const (
	// DirtyPaint marks a change to fill/stroke/content that requires a
	// repaint but no structural work.
	DirtyPaint DirtyFlags = 1 << iota
	// DirtyTransform marks a change to the node's relative transform.
	DirtyTransform
	// DirtyBounds marks a change to the node's geometry extents.
	DirtyBounds
	// DirtyChildren marks a change to the node's child list
	// (insertion, removal, or reorder).
	DirtyChildren
	// DirtyRenderer marks a change to the node's paintability or
	// supported renderer capabilities.
	DirtyRenderer
)

// DirtyVisual is the subset of flags forwarded to backend painters.
const DirtyVisual = DirtyPaint | DirtyTransform | DirtyBounds

// DirtyAll sets every flag.
const DirtyAll = DirtyVisual | DirtyChildren | DirtyRenderer

// Has reports whether every bit of other is present in d.
func (d DirtyFlags) Has(other DirtyFlags) bool {
	return d&other == other
}

// Any reports whether at least one bit of other is present in d.
func (d DirtyFlags) Any(other DirtyFlags) bool {
	return d&other != 0
}

// Visual returns only the painter-facing bits of d.
func (d DirtyFlags) Visual() DirtyFlags {
	return d & DirtyVisual
}
