// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package stitch implements the incremental synchronization core of sg.
//
// The package maintains three coupled structures:
//
//   - An Instance tree mirroring the application's node tree 1:1, where
//     each instance owns at most one drawable and a cached transform.
//   - A doubly linked, globally ordered drawable list equivalent to a
//     depth-first pre-order traversal of the painted instances.
//   - A partition of that list into blocks: maximal contiguous runs of
//     drawables sharing a renderer kind and fit mode, the unit handed to
//     backend painters.
//
// Mutations are signaled through node watch callbacks between frames.
// Tree.SyncAndStitch then repairs all three structures with work
// proportional to the changed regions: every structural edit records a
// change interval describing the touched span of the old drawable order,
// adjacent intervals are merged, and each merged interval is stitched
// with a cheap greedy diff that falls back to a span rebuild whenever the
// edit is too entangled to classify.
//
// During a stitch pass the new order is assembled on a second pair of
// link fields (pendingPrev/pendingNext) so the old order stays walkable
// for diffing; the pending order is swapped into the visible order in one
// commit step per frame, after which block boundaries are re-derived
// around each interval and painters are notified.
package stitch
