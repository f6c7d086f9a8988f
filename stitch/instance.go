// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import (
	"log/slog"

	"github.com/gogpu/sg"
)

// Instance mirrors one node at one tree position. A node may appear at
// several positions through sharing, so the instance, not the node, is
// the identity key for everything the engine tracks: the owned drawable,
// the cached transforms, and the committed subtree drawable span.
type Instance struct {
	tree *Tree
	node sg.Node

	parent     *Instance
	childIndex int
	depth      int
	children   []*Instance

	// drawable is owned: created when the node is painted at this
	// position, disposed alongside the instance or when paintability
	// changes.
	drawable *Drawable

	// firstDraw/lastDraw cache the committed paint-order span of this
	// subtree (own drawable first, then descendants). Nil when the
	// subtree paints nothing. Updated at commit, so during a frame they
	// describe the old order.
	firstDraw, lastDraw *Drawable

	// Cached transforms, validated lazily on read. The world cache is
	// stamped with the tree's transform epoch; any transform invalidation
	// anywhere bumps the epoch and stales every cached world, so sibling
	// caches can never survive an ancestor move.
	rel        sg.Affine
	world      sg.Affine
	relValid   bool
	worldEpoch uint64

	// dirty accumulates watch-callback invalidations since the last sync.
	dirty sg.DirtyFlags
	// subtreeDirty marks that some descendant has pending invalidations.
	subtreeDirty bool

	degraded bool
	disposed bool
	unwatch  func()
}

// Node returns the mirrored node.
func (i *Instance) Node() sg.Node { return i.node }

// Parent returns the parent instance, or nil for the root.
func (i *Instance) Parent() *Instance { return i.parent }

// Children returns the child instances in paint order.
// The returned slice must not be mutated.
func (i *Instance) Children() []*Instance { return i.children }

// Drawable returns the owned drawable, or nil when the node is purely
// structural or degraded.
func (i *Instance) Drawable() *Drawable { return i.drawable }

// Degraded reports whether the node was skipped because no painter
// supports any of its renderer capabilities.
func (i *Instance) Degraded() bool { return i.degraded }

// Trail returns the child-index path from the root to this instance.
// It identifies the tree position independent of node sharing and orders
// instances by pre-order when compared lexicographically.
func (i *Instance) Trail() []int {
	trail := make([]int, i.depth)
	for at := i; at.parent != nil; at = at.parent {
		trail[at.depth-1] = at.childIndex
	}
	return trail
}

// createInstance builds the instance subtree for node under parent,
// creating drawables for painted nodes. New drawables stay unattached
// until the commit that links them into the visible order.
func (t *Tree) createInstance(node sg.Node, parent *Instance, childIndex int) *Instance {
	i := &Instance{
		tree:       t,
		node:       node,
		parent:     parent,
		childIndex: childIndex,
	}
	if parent != nil {
		i.depth = parent.depth + 1
	}

	i.unwatch = node.Watch(func(flags sg.DirtyFlags) {
		i.invalidate(flags)
	})

	if node.Painted() {
		t.attachDrawable(i)
	}

	kids := node.Children()
	if len(kids) > 0 {
		i.children = make([]*Instance, len(kids))
		for idx, kid := range kids {
			i.children[idx] = t.createInstance(kid, i, idx)
		}
	}
	t.instanceCount++
	return i
}

// attachDrawable resolves the renderer kind for a painted node and
// creates its drawable. A node whose capability set cannot be served by
// any painter is degraded to a skipped drawable: the frame proceeds, the
// failure is surfaced through the degrade callback and the log.
func (t *Tree) attachDrawable(i *Instance) {
	caps := i.node.Renderers()
	kind := t.policy(caps)
	if kind == sg.KindNone || !kind.IsSingle() || !caps.Has(kind) {
		t.degrade(i, kind)
		return
	}

	handle, err := i.node.NewDrawable(kind)
	if err != nil {
		sg.Logger().Warn("sg: drawable creation failed, node skipped",
			slog.String("kind", kind.String()), slog.Any("err", err))
		t.degrade(i, kind)
		return
	}

	d := t.acquireDrawable()
	d.handle = handle
	d.inst = i
	d.kind = kind
	d.caps = caps
	d.fit = i.node.Fit()
	d.state = stateUnattached
	i.drawable = d
	i.degraded = false
	t.markDrawableDirty(d, sg.DirtyVisual)
}

// degrade records a capability-negotiation failure for the instance.
func (t *Tree) degrade(i *Instance, kind sg.RendererKind) {
	i.degraded = true
	i.drawable = nil
	sg.Logger().Warn("sg: no painter for node capabilities, node skipped",
		slog.String("caps", i.node.Renderers().String()),
		slog.String("resolved", kind.String()))
	if t.degradeFn != nil {
		t.degradeFn(i.node, i.node.Renderers())
	}
}

// invalidate is the watch-callback entry point. It accumulates flags for
// the next sync and propagates reachability marks up the ancestor chain.
func (i *Instance) invalidate(flags sg.DirtyFlags) {
	if i.disposed {
		// Signal after detachment: the node bypassed the mutation
		// contract. Fatal for the next frame's commit.
		i.tree.violation = sg.ErrDanglingInstance
		return
	}
	if flags == 0 {
		return
	}
	i.dirty |= flags
	if flags.Has(sg.DirtyTransform) {
		i.relValid = false
		i.tree.transformEpoch++
	}
	for p := i.parent; p != nil && !p.subtreeDirty; p = p.parent {
		p.subtreeDirty = true
	}
}

// relTransform returns the node's transform relative to its parent,
// refreshing the cache if invalidated.
func (i *Instance) relTransform() sg.Affine {
	if !i.relValid {
		i.rel = i.node.Transform()
		i.relValid = true
	}
	return i.rel
}

// WorldTransform returns the composed transform from the root to this
// instance. Validation is lazy: a stale stamp recomputes the root path,
// stopping at the nearest ancestor whose cache is already current.
func (i *Instance) WorldTransform() sg.Affine {
	if i.worldEpoch != i.tree.transformEpoch {
		i.validateTransform()
	}
	return i.world
}

// validateTransform recomputes world transforms along the root path.
func (i *Instance) validateTransform() {
	if i.parent == nil {
		i.world = i.relTransform()
	} else {
		if i.parent.worldEpoch != i.tree.transformEpoch {
			i.parent.validateTransform()
		}
		i.world = i.parent.world.Multiply(i.relTransform())
	}
	i.worldEpoch = i.tree.transformEpoch
}

// prevPreorderDrawable finds the committed drawable immediately preceding
// this instance's (possibly empty) subtree span in global paint order:
// the nearest preceding sibling subtree with a drawable, else the parent's
// own drawable, recursing upward. Returns nil at the head of the list.
func (i *Instance) prevPreorderDrawable() *Drawable {
	for at := i; at.parent != nil; at = at.parent {
		sibs := at.parent.children
		for idx := at.childIndex - 1; idx >= 0; idx-- {
			if sibs[idx].lastDraw != nil {
				return sibs[idx].lastDraw
			}
		}
		if at.parent.drawable != nil && at.parent.drawable.state == stateAttached {
			return at.parent.drawable
		}
	}
	return nil
}

// nextPreorderDrawable finds the committed drawable immediately following
// this instance's subtree span: the nearest following sibling subtree
// with a drawable, recursing upward. Returns nil at the tail of the list.
func (i *Instance) nextPreorderDrawable() *Drawable {
	for at := i; at.parent != nil; at = at.parent {
		sibs := at.parent.children
		for idx := at.childIndex + 1; idx < len(sibs); idx++ {
			if sibs[idx].firstDraw != nil {
				return sibs[idx].firstDraw
			}
		}
	}
	return nil
}

// disposeInstance detaches the instance subtree: watchers are removed
// and drawables are queued for disposal (their links stay intact until
// the commit relinks the order around them). The instance itself stays
// marked disposed so a contract-breaking late signal is detectable.
func (t *Tree) disposeInstance(i *Instance) {
	if i.disposed {
		return
	}
	i.disposed = true
	if i.unwatch != nil {
		i.unwatch()
		i.unwatch = nil
	}
	if i.drawable != nil {
		t.queueDisposal(i.drawable)
		i.drawable = nil
	}
	for _, c := range i.children {
		t.disposeInstance(c)
	}
	t.instanceCount--
}

// syncChildren reconciles the instance's children against the node's
// current child list. Instances are reused when the same node identity
// is still present (matched in order for shared nodes); new positions get
// fresh instance subtrees; leftovers are disposed.
func (t *Tree) syncChildren(i *Instance) {
	kids := i.node.Children()

	if len(i.children) == 0 && len(kids) == 0 {
		return
	}

	used := make([]bool, len(i.children))
	next := make([]*Instance, len(kids))

	for idx, kid := range kids {
		reused := false
		for j, old := range i.children {
			if !used[j] && old.node == kid {
				used[j] = true
				old.childIndex = idx
				next[idx] = old
				reused = true
				break
			}
		}
		if !reused {
			next[idx] = t.createInstance(kid, i, idx)
		}
	}
	for j, old := range i.children {
		if !used[j] {
			t.disposeInstance(old)
		}
	}
	i.children = next
}

// refreshDrawable re-evaluates paintability and renderer choice after a
// DirtyRenderer invalidation. A kind change replaces the drawable; the
// old one is queued for disposal and the new one enters unattached.
func (t *Tree) refreshDrawable(i *Instance) {
	if !i.node.Painted() {
		if i.drawable != nil {
			t.queueDisposal(i.drawable)
			i.drawable = nil
		}
		i.degraded = false
		return
	}

	caps := i.node.Renderers()
	kind := t.policy(caps)
	if i.drawable != nil && i.drawable.kind == kind && i.drawable.fit == i.node.Fit() {
		i.drawable.caps = caps
		return
	}
	if i.drawable != nil {
		t.queueDisposal(i.drawable)
		i.drawable = nil
	}
	t.attachDrawable(i)
}

// updateSpans recomputes the committed span caches for the subtree after
// a commit. Returns the subtree's first and last drawables.
func updateSpans(i *Instance) (first, last *Drawable) {
	if i.drawable != nil && i.drawable.state == stateAttached {
		first, last = i.drawable, i.drawable
	}
	for _, c := range i.children {
		cf, cl := updateSpans(c)
		if cf == nil {
			continue
		}
		if first == nil {
			first = cf
		}
		last = cl
	}
	i.firstDraw, i.lastDraw = first, last
	return first, last
}

// updateAncestorSpans refreshes span caches from the instance's parent up
// to the root using the children's already-correct caches.
func updateAncestorSpans(i *Instance) {
	for p := i.parent; p != nil; p = p.parent {
		var first, last *Drawable
		if p.drawable != nil && p.drawable.state == stateAttached {
			first, last = p.drawable, p.drawable
		}
		for _, c := range p.children {
			if c.firstDraw == nil {
				continue
			}
			if first == nil {
				first = c.firstDraw
			}
			last = c.lastDraw
		}
		p.firstDraw, p.lastDraw = first, last
	}
}
