// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend"
)

// testHandle is the drawable payload used throughout the package tests.
type testHandle struct {
	id       string
	disposed bool
}

func (h *testHandle) Dispose() { h.disposed = true }

// testNode is a minimal sg.Node with explicit mutators that signal
// watchers the way a real retained-mode node would.
type testNode struct {
	name    string
	painted bool
	caps    sg.RendererKind
	fit     sg.FitMode
	kids    []*testNode
	tf      sg.Affine

	failDrawable bool
	skipUnwatch  bool

	watchers map[int]func(sg.DirtyFlags)
	nextID   int

	handles []*testHandle
}

func leaf(name string, caps sg.RendererKind) *testNode {
	return &testNode{name: name, painted: true, caps: caps, tf: sg.IdentityAffine()}
}

func group(name string, kids ...*testNode) *testNode {
	return &testNode{name: name, kids: kids, tf: sg.IdentityAffine()}
}

func (n *testNode) Painted() bool              { return n.painted }
func (n *testNode) Renderers() sg.RendererKind { return n.caps }
func (n *testNode) Fit() sg.FitMode            { return n.fit }
func (n *testNode) Transform() sg.Affine       { return n.tf }

func (n *testNode) Children() []sg.Node {
	out := make([]sg.Node, len(n.kids))
	for i, k := range n.kids {
		out[i] = k
	}
	return out
}

func (n *testNode) NewDrawable(kind sg.RendererKind) (sg.DrawableHandle, error) {
	if n.failDrawable {
		return nil, errors.New("test: drawable refused")
	}
	h := &testHandle{id: n.name}
	n.handles = append(n.handles, h)
	return h, nil
}

func (n *testNode) Watch(fn func(sg.DirtyFlags)) func() {
	if n.watchers == nil {
		n.watchers = make(map[int]func(sg.DirtyFlags))
	}
	id := n.nextID
	n.nextID++
	n.watchers[id] = fn
	if n.skipUnwatch {
		return func() {}
	}
	return func() { delete(n.watchers, id) }
}

func (n *testNode) notify(flags sg.DirtyFlags) {
	for _, fn := range n.watchers {
		fn(flags)
	}
}

func (n *testNode) setKids(kids ...*testNode) {
	n.kids = kids
	n.notify(sg.DirtyChildren)
}

func (n *testNode) insertKid(i int, k *testNode) {
	n.kids = append(n.kids, nil)
	copy(n.kids[i+1:], n.kids[i:])
	n.kids[i] = k
	n.notify(sg.DirtyChildren)
}

func (n *testNode) removeKid(i int) {
	n.kids = append(n.kids[:i], n.kids[i+1:]...)
	n.notify(sg.DirtyChildren)
}

func (n *testNode) setCaps(caps sg.RendererKind) {
	n.caps = caps
	n.notify(sg.DirtyRenderer)
}

func (n *testNode) setPainted(on bool) {
	n.painted = on
	n.notify(sg.DirtyRenderer)
}

func (n *testNode) touch() { n.notify(sg.DirtyPaint) }

func (n *testNode) move(tf sg.Affine) {
	n.tf = tf
	n.notify(sg.DirtyTransform)
}

// recorder is a painter that records every notification it receives.
type recorder struct {
	kind sg.RendererKind

	created  []uint64
	disposed []uint64
	ranged   []uint64
	dirty    []string

	// membership holds the latest member names per live block.
	membership map[uint64][]string
}

func newRecorder(kind sg.RendererKind) *recorder {
	return &recorder{kind: kind}
}

func (r *recorder) Name() string          { return "recorder-" + r.kind.String() }
func (r *recorder) Kind() sg.RendererKind { return r.kind }

func (r *recorder) Init() error {
	r.membership = make(map[uint64][]string)
	return nil
}

func (r *recorder) Close() { r.membership = nil }

func (r *recorder) BlockCreated(b backend.Block) {
	r.created = append(r.created, b.ID())
	r.membership[b.ID()] = memberNames(b)
}

func (r *recorder) BlockDisposed(b backend.Block) {
	r.disposed = append(r.disposed, b.ID())
	delete(r.membership, b.ID())
}

func (r *recorder) BlockRangeChanged(b backend.Block, _, _ backend.Range) {
	r.ranged = append(r.ranged, b.ID())
	r.membership[b.ID()] = memberNames(b)
}

func (r *recorder) DrawableDirty(h sg.DrawableHandle, _ sg.DirtyFlags) {
	r.dirty = append(r.dirty, h.(*testHandle).id)
}

func (r *recorder) resetEvents() {
	r.created = nil
	r.disposed = nil
	r.ranged = nil
	r.dirty = nil
}

func memberNames(b backend.Block) []string {
	var names []string
	b.Members(func(h sg.DrawableHandle) bool {
		names = append(names, h.(*testHandle).id)
		return true
	})
	return names
}

// newTestTree builds a tree with one recorder per requested kind and
// runs the initial frame.
func newTestTree(t *testing.T, root *testNode, kinds ...sg.RendererKind) (*Tree, map[sg.RendererKind]*recorder) {
	t.Helper()
	recs := make(map[sg.RendererKind]*recorder, len(kinds))
	opts := []Option{WithValidation(true)}
	for _, k := range kinds {
		recs[k] = newRecorder(k)
		opts = append(opts, WithPainter(recs[k]))
	}
	tr, err := NewTree(root, opts...)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	t.Cleanup(tr.Close)
	if _, err := tr.SyncAndStitch(); err != nil {
		t.Fatalf("initial SyncAndStitch: %v", err)
	}
	return tr, recs
}

func syncOK(t *testing.T, tr *Tree) FrameReport {
	t.Helper()
	rep, err := tr.SyncAndStitch()
	if err != nil {
		t.Fatalf("SyncAndStitch: %v", err)
	}
	assertConsistent(t, tr)
	return rep
}

// listNames returns the committed order as handle names.
func listNames(tr *Tree) []string {
	var names []string
	tr.Drawables(func(d *Drawable) bool {
		names = append(names, d.Handle().(*testHandle).id)
		return true
	})
	return names
}

// paintedNames returns the node tree's pre-order of painted, non-degraded
// nodes as the model the committed list must match.
func paintedNames(n *testNode, servable func(*testNode) bool) []string {
	var names []string
	var walk func(*testNode)
	walk = func(n *testNode) {
		if n.painted && servable(n) {
			names = append(names, n.name)
		}
		for _, k := range n.kids {
			walk(k)
		}
	}
	walk(n)
	return names
}

func servedBy(kinds ...sg.RendererKind) func(*testNode) bool {
	var mask sg.RendererKind
	for _, k := range kinds {
		mask |= k
	}
	return func(n *testNode) bool { return n.caps&mask != 0 }
}

// assertConsistent checks the structural-equivalence invariant and the
// block partition properties after a frame:
//
//   - committed links form a consistent doubly linked list
//   - pending links are fully cleared
//   - every instance subtree span cache matches the committed list
//   - blocks partition the list into maximal homogeneous runs
func assertConsistent(t *testing.T, tr *Tree) {
	t.Helper()

	var prev *Drawable
	count := 0
	for d := tr.head; d != nil; d = d.next {
		if d.prev != prev {
			t.Fatalf("broken back link at %q", d.Handle().(*testHandle).id)
		}
		if d.pendingPrev != nil || d.pendingNext != nil {
			t.Fatalf("pending links not cleared at %q", d.Handle().(*testHandle).id)
		}
		if d.state != stateAttached {
			t.Fatalf("drawable %q in list with state %d", d.Handle().(*testHandle).id, d.state)
		}
		prev = d
		count++
	}
	if tr.tail != prev {
		t.Fatalf("tail mismatch")
	}

	// Block partition: maximal runs of same kind+fit, each drawable
	// pointing at a block whose extent matches.
	for d := tr.head; d != nil; d = d.next {
		b := d.block
		if b == nil {
			t.Fatalf("drawable %q has no block", d.Handle().(*testHandle).id)
		}
		if b.kind != d.kind || b.fit != d.fit {
			t.Fatalf("drawable %q grouped into foreign block", d.Handle().(*testHandle).id)
		}
		if d.prev == nil || !d.prev.sameGroup(d) {
			// Run start: block extent must begin here.
			if b.first != d {
				t.Fatalf("block %d does not start at run start %q", b.id, d.Handle().(*testHandle).id)
			}
			n, last := 0, d
			for x := d; x != nil && x.block == b; x = x.next {
				n++
				last = x
			}
			if b.count != n || b.last != last {
				t.Fatalf("block %d extent mismatch: count %d want %d", b.id, b.count, n)
			}
			if last.next != nil && last.next.sameGroup(last) {
				t.Fatalf("block %d not maximal", b.id)
			}
		} else if d.prev.block != b {
			t.Fatalf("same-group neighbors %q/%q in different blocks",
				d.prev.Handle().(*testHandle).id, d.Handle().(*testHandle).id)
		}
	}
}

func assertOrder(t *testing.T, tr *Tree, want []string) {
	t.Helper()
	got := listNames(tr)
	if !slices.Equal(got, want) {
		t.Fatalf("committed order = %v, want %v", got, want)
	}
}

func blockRuns(tr *Tree) []string {
	var runs []string
	tr.Blocks(func(b *Block) bool {
		runs = append(runs, fmt.Sprintf("%s:%d", b.Kind(), b.Len()))
		return true
	})
	return runs
}
