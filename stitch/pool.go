// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stitch

import "sync"

// Object pools for the high-churn types. Drawables are released when
// disposed, intervals at the end of every frame. Instances are never
// pooled: a node that breaks the mutation contract can signal a watcher
// that still points at a disposed instance, and detecting that requires
// the disposed flag to stay observable rather than being recycled.
var (
	drawablePool = sync.Pool{New: func() any { return &Drawable{} }}
	intervalPool = sync.Pool{New: func() any { return &ChangeInterval{} }}
)

// Warmup pre-populates the pools with n objects of each type. Call before
// building large trees to avoid allocation spikes on the first frames.
func Warmup(n int) {
	for range n {
		drawablePool.Put(&Drawable{})
		intervalPool.Put(&ChangeInterval{})
	}
}

func (t *Tree) acquireDrawable() *Drawable {
	t.drawableCount++
	return drawablePool.Get().(*Drawable)
}

func (t *Tree) releaseDrawable(d *Drawable) {
	t.drawableCount--
	d.reset()
	drawablePool.Put(d)
}

func (t *Tree) acquireInterval() *ChangeInterval {
	return intervalPool.Get().(*ChangeInterval)
}

func (t *Tree) releaseInterval(iv *ChangeInterval) {
	iv.reset()
	intervalPool.Put(iv)
}
