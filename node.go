// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sg

// DrawableHandle is the backend-facing payload of one painted node at one
// tree position. The synchronization core treats handles as opaque: it
// creates them through Node.NewDrawable, passes them to the painter of the
// drawable's renderer kind, and disposes them when the owning instance
// leaves the tree.
//
// Painters define richer contracts (for example markup.Element or
// webgl.Batchable) that their handles must additionally satisfy.
type DrawableHandle interface {
	// Dispose releases backend resources held by the handle.
	// It is called exactly once, after the handle has left every block.
	Dispose()
}

// Node is the abstract scene node supplied by the application. The engine
// mirrors the node tree with instances and keeps the mirror current across
// mutations; all mutation signaling flows through the Watch callback.
//
// Contract: node mutations must happen strictly between frames. A node
// that changes its child list, paintability, or transform must notify
// every watcher before the next SyncAndStitch call; unsignaled structural
// changes are a contract violation.
type Node interface {
	// Painted reports whether the node paints itself (owns a drawable)
	// or is purely structural.
	Painted() bool

	// Renderers returns the capability set of backends this node can be
	// drawn with. Only meaningful when Painted is true.
	Renderers() RendererKind

	// Fit returns the block fitting mode the node's drawable requests.
	Fit() FitMode

	// NewDrawable creates the backend payload for the given single
	// renderer kind. Returning an error is a capability-negotiation
	// failure: the engine degrades the node to a skipped drawable.
	NewDrawable(kind RendererKind) (DrawableHandle, error)

	// Children returns the node's children in paint order. The returned
	// slice must not be retained or mutated by the caller.
	Children() []Node

	// Transform returns the node's transform relative to its parent.
	Transform() Affine

	// Watch registers an invalidation callback and returns a function
	// that unregisters it. The callback runs synchronously on the
	// mutating goroutine.
	Watch(fn func(DirtyFlags)) (unwatch func())
}
