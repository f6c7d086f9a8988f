// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sg

import "errors"

// Errors shared between the synchronization core and its collaborators.
var (
	// ErrUnsupportedRenderer is returned when a node requires a renderer
	// kind that no registered painter supports.
	ErrUnsupportedRenderer = errors.New("sg: unsupported renderer kind")

	// ErrDanglingInstance is returned when a node was detached from the
	// tree without going through the mutation contract. This is a
	// programming error in the collaborator; the frame commit is aborted.
	ErrDanglingInstance = errors.New("sg: dangling instance reference")

	// ErrTreeClosed is returned when operations are attempted on a
	// disposed tree.
	ErrTreeClosed = errors.New("sg: tree is closed")

	// ErrNilRoot is returned when a tree is created without a root node.
	ErrNilRoot = errors.New("sg: nil root node")
)
