// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"sync"

	"github.com/gogpu/sg"
)

// PainterFactory creates a new painter instance.
type PainterFactory func() Painter

// registry holds registered painter factories, one per renderer kind.
var (
	registryMu sync.RWMutex
	painters   = make(map[sg.RendererKind]PainterFactory)
	// Priority order for kind selection (first supported wins).
	// WebGL > Canvas > SVG > DOM (GPU batching is fastest, plain DOM
	// elements are the fallback).
	kindPriority = []sg.RendererKind{sg.KindWebGL, sg.KindCanvas, sg.KindSVG, sg.KindDOM}
)

// Register registers a painter factory for the given renderer kind.
// This is typically called from init() functions in painter packages.
// If a painter for the same kind is already registered, it is replaced.
func Register(kind sg.RendererKind, factory PainterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	painters[kind] = factory
}

// Unregister removes a painter from the registry.
// This is useful for testing.
func Unregister(kind sg.RendererKind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(painters, kind)
}

// Available returns the set of kinds with a registered painter.
func Available() sg.RendererKind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var kinds sg.RendererKind
	for kind := range painters {
		kinds |= kind
	}
	return kinds
}

// IsRegistered checks if a painter for the given kind is registered.
func IsRegistered(kind sg.RendererKind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := painters[kind]
	return ok
}

// Get returns a painter instance for the given kind.
// Returns nil if no painter is registered for it.
func Get(kind sg.RendererKind) Painter {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := painters[kind]
	if !ok {
		return nil
	}
	return factory()
}

// Policy chooses the single renderer kind a drawable should use out of
// the capability set its node supports. Returning KindNone degrades the
// node to a skipped drawable.
type Policy func(caps sg.RendererKind) sg.RendererKind

// DefaultPolicy selects the highest-priority kind that is both supported
// by the node and backed by a registered painter.
func DefaultPolicy(caps sg.RendererKind) sg.RendererKind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, kind := range kindPriority {
		if !caps.Has(kind) {
			continue
		}
		if _, ok := painters[kind]; ok {
			return kind
		}
	}
	return sg.KindNone
}

// PolicyFor returns a policy that selects the highest-priority kind out
// of a fixed set of available kinds, ignoring the registry. Trees built
// with explicit painter instances use this.
func PolicyFor(available sg.RendererKind) Policy {
	return func(caps sg.RendererKind) sg.RendererKind {
		for _, kind := range kindPriority {
			if caps.Has(kind) && available.Has(kind) {
				return kind
			}
		}
		return sg.KindNone
	}
}
