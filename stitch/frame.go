// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import (
	"log/slog"
	"sync"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend"
)

// Tree is the synchronization engine for one scene. It mirrors a node
// tree as an instance tree, maintains the globally ordered drawable list,
// and partitions the list into backend-homogeneous blocks delivered to
// the attached painters.
//
// A Tree is driven by one goroutine: nodes are mutated (signaling through
// their watch callbacks), then SyncAndStitch folds the accumulated edits
// into the committed order. Stats is the only method safe to call
// concurrently with the frame driver.
type Tree struct {
	rootNode sg.Node
	root     *Instance

	// Committed paint order and the in-progress pending order.
	head, tail               *Drawable
	pendingHead, pendingTail *Drawable

	frame uint64

	// transformEpoch advances on every transform invalidation; cached
	// world transforms stamped with an older epoch are stale.
	transformEpoch uint64

	// Per-frame change interval chain, sorted by old-order position.
	firstInterval, lastInterval *ChangeInterval
	intervalCount               int

	instanceCount int
	drawableCount int
	blockCount    int
	nextBlockID   uint64

	// Per-frame work queues, cleared at frame end.
	toDispose      []*Drawable
	dirtyDrawables []*Drawable

	// violation latches a mutation-contract breach (a signal from a node
	// whose instance was already detached). Every later frame fails with
	// it rather than committing a corrupt order.
	violation error

	policy    backend.Policy
	degradeFn func(sg.Node, sg.RendererKind)
	painters  map[sg.RendererKind]backend.Painter

	validate bool
	closed   bool

	statsMu sync.Mutex
	stats   TreeStats
}

// Option configures a Tree.
type Option func(*Tree)

// WithPainter attaches a painter instance for its renderer kind. When no
// painter is attached explicitly, NewTree instantiates every kind the
// backend registry has a factory for.
func WithPainter(p backend.Painter) Option {
	return func(t *Tree) { t.painters[p.Kind()] = p }
}

// WithPolicy overrides the renderer-kind selection policy. The default
// picks the highest-priority kind served by an attached painter.
func WithPolicy(p backend.Policy) Option {
	return func(t *Tree) { t.policy = p }
}

// WithDegradeFunc installs a callback invoked when a painted node is
// skipped because no attached painter serves any of its capabilities.
func WithDegradeFunc(fn func(node sg.Node, caps sg.RendererKind)) Option {
	return func(t *Tree) { t.degradeFn = fn }
}

// WithValidation makes consistency violations panic instead of escalating
// to a full rebuild. Intended for tests and debugging.
func WithValidation(on bool) Option {
	return func(t *Tree) { t.validate = on }
}

// WithPoolWarmup pre-populates the object pools with n entries each.
func WithPoolWarmup(n int) Option {
	return func(*Tree) { Warmup(n) }
}

// NewTree builds the instance tree mirroring root and prepares the first
// frame. No painter notification is delivered until the first
// SyncAndStitch commits the initial drawable order.
func NewTree(root sg.Node, opts ...Option) (*Tree, error) {
	if root == nil {
		return nil, sg.ErrNilRoot
	}
	t := &Tree{
		rootNode: root,
		painters: make(map[sg.RendererKind]backend.Painter),
		// Epoch 1 so freshly created instances (stamp zero) start stale.
		transformEpoch: 1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if len(t.painters) == 0 {
		for _, kind := range []sg.RendererKind{sg.KindWebGL, sg.KindCanvas, sg.KindSVG, sg.KindDOM} {
			if p := backend.Get(kind); p != nil {
				t.painters[kind] = p
			}
		}
	}
	if t.policy == nil {
		var avail sg.RendererKind
		for kind := range t.painters {
			avail |= kind
		}
		t.policy = backend.PolicyFor(avail)
	}

	inited := make([]backend.Painter, 0, len(t.painters))
	for _, p := range t.painters {
		if err := p.Init(); err != nil {
			for _, q := range inited {
				q.Close()
			}
			return nil, err
		}
		inited = append(inited, p)
	}

	t.root = t.createInstance(root, nil, 0)

	// The whole tree is one pure insertion for the first frame.
	iv := t.acquireInterval()
	iv.anchor = t.root
	iv.empty = true
	t.firstInterval = iv
	t.lastInterval = iv
	t.intervalCount = 1
	return t, nil
}

// FrameReport summarizes what one SyncAndStitch call did.
type FrameReport struct {
	// Intervals is the number of merged change intervals processed.
	Intervals int

	// Greedy and Rebuilds count intervals repaired by each strategy.
	// A consistency escalation reports as a single rebuild.
	Greedy   int
	Rebuilds int

	// BlocksChanged counts block events emitted (created, disposed, and
	// range changes).
	BlocksChanged int

	// DrawablesDirty counts repaint notifications delivered.
	DrawablesDirty int

	// DrawablesDisposed counts drawables removed and disposed.
	DrawablesDisposed int
}

// TreeStats is a snapshot of cumulative and live engine counters.
type TreeStats struct {
	Frames         uint64
	Intervals      uint64
	GreedyStitches uint64
	Rebuilds       uint64
	BlocksChanged  uint64

	Instances int
	Drawables int
	Blocks    int
}

// Stats returns a snapshot of the engine counters.
func (t *Tree) Stats() TreeStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

// Root returns the instance mirroring the root node.
func (t *Tree) Root() *Instance { return t.root }

// Frame returns the number of committed frames.
func (t *Tree) Frame() uint64 { return t.frame }

// Drawables calls yield for each drawable in committed paint order.
func (t *Tree) Drawables(yield func(*Drawable) bool) {
	for d := t.head; d != nil; d = d.next {
		if !yield(d) {
			return
		}
	}
}

// Blocks calls yield for each block in committed paint order.
func (t *Tree) Blocks(yield func(*Block) bool) {
	var prev *Block
	for d := t.head; d != nil; d = d.next {
		if d.block != prev && d.block != nil {
			if !yield(d.block) {
				return
			}
		}
		prev = d.block
	}
}

// SyncAndStitch folds all node edits signaled since the previous call
// into the committed drawable order and notifies the painters.
//
// The frame proceeds in phases: record change intervals against the old
// order, apply the structural edits to the instance tree, merge
// overlapping intervals, stitch each one in the pending order, commit all
// pending links at once, re-derive block boundaries around each interval,
// and finally deliver dirty notifications. With no pending edits it is a
// no-op returning a zero report.
func (t *Tree) SyncAndStitch() (FrameReport, error) {
	var rep FrameReport
	if t.closed {
		return rep, sg.ErrTreeClosed
	}
	if t.violation != nil {
		return rep, t.violation
	}
	if t.root.dirty == 0 && !t.root.subtreeDirty && t.firstInterval == nil &&
		len(t.dirtyDrawables) == 0 && len(t.toDispose) == 0 {
		return rep, nil
	}
	t.frame++

	t.recordPass(t.root, false)
	t.applyPass(t.root)
	if t.violation != nil {
		return rep, t.violation
	}

	merged := t.mergeIntervals()

	for iv := merged; iv != nil; iv = iv.next {
		greedy, err := t.stitchInterval(iv)
		if err != nil {
			if t.validate {
				panic(err)
			}
			merged = t.fullRebuild()
			rep.Intervals = 1
			rep.Greedy = 0
			rep.Rebuilds = 1
			break
		}
		rep.Intervals++
		if greedy {
			rep.Greedy++
		} else {
			rep.Rebuilds++
		}
	}

	for iv := merged; iv != nil; iv = iv.next {
		t.commitInterval(iv)
	}
	for iv := merged; iv != nil; iv = iv.next {
		updateSpans(iv.anchor)
		updateAncestorSpans(iv.anchor)
	}

	// Dispose removed drawables before the block pass so the new
	// partition never sees their stale block links.
	rep.DrawablesDisposed = len(t.toDispose)
	for _, d := range t.toDispose {
		d.sever()
		if d.handle != nil {
			d.handle.Dispose()
		}
		d.state = stateDisposed
	}

	for iv := merged; iv != nil; iv = iv.next {
		rep.BlocksChanged += t.repartition(iv)
	}

	for _, d := range t.dirtyDrawables {
		flags := d.dirty & sg.DirtyVisual
		d.dirty = 0
		if d.state != stateAttached || flags == 0 {
			continue
		}
		if p := t.painterFor(d.kind); p != nil {
			p.DrawableDirty(d.handle, flags)
			rep.DrawablesDirty++
		}
	}

	t.releaseFrame(merged)

	t.statsMu.Lock()
	t.stats.Frames++
	t.stats.Intervals += uint64(rep.Intervals)
	t.stats.GreedyStitches += uint64(rep.Greedy)
	t.stats.Rebuilds += uint64(rep.Rebuilds)
	t.stats.BlocksChanged += uint64(rep.BlocksChanged)
	t.stats.Instances = t.instanceCount
	t.stats.Drawables = t.drawableCount
	t.stats.Blocks = t.blockCount
	t.statsMu.Unlock()

	sg.Logger().Debug("sg: frame synchronized",
		slog.Uint64("frame", t.frame),
		slog.Int("intervals", rep.Intervals),
		slog.Int("greedy", rep.Greedy),
		slog.Int("rebuilds", rep.Rebuilds),
		slog.Int("blocksChanged", rep.BlocksChanged),
		slog.Int("drawablesDirty", rep.DrawablesDirty))
	return rep, nil
}

// recordPass walks the instance tree in pre-order and records a change
// interval for every instance with a pending structural edit, before any
// mutation is applied. An interval covers the instance's whole committed
// span, so descendants inside an already covered subtree record nothing.
func (t *Tree) recordPass(i *Instance, covered bool) {
	if !covered && (i.dirty.Has(sg.DirtyChildren) || i.dirty.Has(sg.DirtyRenderer)) {
		t.recordInterval(i)
		covered = true
	}
	if i.subtreeDirty {
		for _, c := range i.children {
			t.recordPass(c, covered)
		}
	}
}

// applyPass applies the accumulated edits to the instance tree:
// renderer re-resolution, child reconciliation, and dirty propagation to
// the owned drawables.
func (t *Tree) applyPass(i *Instance) {
	if i.dirty != 0 {
		if i.dirty.Has(sg.DirtyRenderer) {
			t.refreshDrawable(i)
		}
		if i.dirty.Has(sg.DirtyChildren) {
			t.syncChildren(i)
		}
		if i.dirty.Has(sg.DirtyTransform) {
			// A moved subtree repaints whole: every descendant's world
			// transform changed.
			t.markSubtreeTransformDirty(i)
		}
		if v := i.dirty & (sg.DirtyPaint | sg.DirtyBounds); v != 0 && i.drawable != nil {
			t.markDrawableDirty(i.drawable, v)
		}
		i.dirty = 0
	}
	if i.subtreeDirty {
		i.subtreeDirty = false
		for _, c := range i.children {
			t.applyPass(c)
		}
	}
}

func (t *Tree) markSubtreeTransformDirty(i *Instance) {
	if i.drawable != nil {
		t.markDrawableDirty(i.drawable, sg.DirtyTransform)
	}
	for _, c := range i.children {
		t.markSubtreeTransformDirty(c)
	}
}

// markDrawableDirty accumulates repaint flags and enqueues the drawable
// for end-of-frame notification exactly once.
func (t *Tree) markDrawableDirty(d *Drawable, flags sg.DirtyFlags) {
	if d.state == stateDisposed {
		return
	}
	if d.dirty == 0 {
		t.dirtyDrawables = append(t.dirtyDrawables, d)
	}
	d.dirty |= flags
}

// queueDisposal defers a drawable's disposal to the end of the frame.
// Its committed links stay walkable until the commit relinks around it.
func (t *Tree) queueDisposal(d *Drawable) {
	t.toDispose = append(t.toDispose, d)
}

func (t *Tree) painterFor(kind sg.RendererKind) backend.Painter {
	return t.painters[kind]
}

// releaseFrame returns the frame's transient objects to the pools and
// clears the work queues.
func (t *Tree) releaseFrame(merged *ChangeInterval) {
	for _, d := range t.toDispose {
		t.releaseDrawable(d)
	}
	t.toDispose = t.toDispose[:0]
	t.dirtyDrawables = t.dirtyDrawables[:0]
	for iv := merged; iv != nil; {
		next := iv.next
		t.releaseInterval(iv)
		iv = next
	}
	t.firstInterval = nil
	t.lastInterval = nil
	t.intervalCount = 0
}

// Close detaches every instance, disposes all drawable handles, and
// closes the attached painters. The tree is unusable afterwards.
func (t *Tree) Close() {
	if t.closed {
		return
	}
	t.closed = true

	t.disposeInstance(t.root)
	for _, d := range t.toDispose {
		d.sever()
		if d.handle != nil {
			d.handle.Dispose()
		}
		d.state = stateDisposed
		t.releaseDrawable(d)
	}
	t.toDispose = t.toDispose[:0]
	t.dirtyDrawables = t.dirtyDrawables[:0]
	for iv := t.firstInterval; iv != nil; {
		next := iv.next
		t.releaseInterval(iv)
		iv = next
	}
	t.firstInterval = nil
	t.lastInterval = nil
	t.intervalCount = 0
	t.head = nil
	t.tail = nil
	t.pendingHead = nil
	t.pendingTail = nil

	for _, p := range t.painters {
		p.Close()
	}
}
