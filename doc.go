// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sg provides the collaborator-facing types for the sg retained
// scene-graph synchronization engine.
//
// The engine maintains a 1:1 Instance mirror of an application node tree,
// a globally ordered list of drawables backing the painted nodes, and a
// partition of that list into backend-homogeneous blocks. After node
// mutations, a single frame entry point (stitch.Tree.SyncAndStitch)
// repairs the list and the block partition incrementally instead of
// rebuilding them.
//
// This package defines the contracts shared between the engine and its
// collaborators:
//
//   - Node: the abstract scene node supplied by the application.
//   - DrawableHandle: the opaque per-backend payload created by a node.
//   - RendererKind, FitMode, DirtyFlags: enums describing backends,
//     block fitting and invalidation kinds.
//   - Affine: the 2D transform carried by nodes and cached per instance.
//
// The synchronization core lives in the stitch package; backend painters
// live under backend/.
package sg
