// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package visual provides concrete scene nodes. Group structures the
// tree without painting; Box is a filled rectangle whose drawable
// handles satisfy every painter contract (markup.Element, raster.Shape,
// webgl.Batchable).
//
// Nodes follow the engine's mutation contract: every setter signals the
// watchers synchronously, and all mutation must happen between frames.
package visual

import "github.com/gogpu/sg"

// base carries the tree structure and watcher plumbing shared by all
// node types.
type base struct {
	children  []sg.Node
	transform sg.Affine

	watchers  map[int]func(sg.DirtyFlags)
	nextWatch int
}

func newBase() base {
	return base{transform: sg.IdentityAffine()}
}

// Children returns the node's children in paint order.
func (b *base) Children() []sg.Node { return b.children }

// Transform returns the node's transform relative to its parent.
func (b *base) Transform() sg.Affine { return b.transform }

// SetTransform replaces the relative transform.
func (b *base) SetTransform(a sg.Affine) {
	b.transform = a
	b.notify(sg.DirtyTransform)
}

// Append adds child at the end of the child list.
func (b *base) Append(child sg.Node) {
	b.children = append(b.children, child)
	b.notify(sg.DirtyChildren)
}

// Insert adds child at index i.
func (b *base) Insert(i int, child sg.Node) {
	b.children = append(b.children, nil)
	copy(b.children[i+1:], b.children[i:])
	b.children[i] = child
	b.notify(sg.DirtyChildren)
}

// Remove removes the child at index i.
func (b *base) Remove(i int) {
	b.children = append(b.children[:i], b.children[i+1:]...)
	b.notify(sg.DirtyChildren)
}

// SetChildren replaces the whole child list.
func (b *base) SetChildren(kids []sg.Node) {
	b.children = kids
	b.notify(sg.DirtyChildren)
}

// Watch registers an invalidation callback.
func (b *base) Watch(fn func(sg.DirtyFlags)) (unwatch func()) {
	if b.watchers == nil {
		b.watchers = make(map[int]func(sg.DirtyFlags))
	}
	id := b.nextWatch
	b.nextWatch++
	b.watchers[id] = fn
	return func() { delete(b.watchers, id) }
}

func (b *base) notify(flags sg.DirtyFlags) {
	for _, fn := range b.watchers {
		fn(flags)
	}
}

// Group is a purely structural node.
type Group struct {
	base
}

// NewGroup creates an empty group.
func NewGroup(children ...sg.Node) *Group {
	g := &Group{base: newBase()}
	g.children = children
	return g
}

// Painted reports false; groups never paint.
func (*Group) Painted() bool { return false }

// Renderers returns the empty capability set.
func (*Group) Renderers() sg.RendererKind { return sg.KindNone }

// Fit returns FitDisplay.
func (*Group) Fit() sg.FitMode { return sg.FitDisplay }

// NewDrawable always fails; groups own no drawable.
func (*Group) NewDrawable(sg.RendererKind) (sg.DrawableHandle, error) {
	return nil, sg.ErrUnsupportedRenderer
}
