// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import "github.com/gogpu/sg"

// NoopPainter is a painter that accepts every notification and does
// nothing. It is useful in tests and as a stand-in while a real backend
// is unavailable.
type NoopPainter struct {
	kind        sg.RendererKind
	initialized bool
}

// NewNoopPainter creates a no-op painter for the given kind.
func NewNoopPainter(kind sg.RendererKind) *NoopPainter {
	return &NoopPainter{kind: kind}
}

// Name returns the painter identifier.
func (p *NoopPainter) Name() string { return "noop" }

// Kind returns the renderer kind this painter serves.
func (p *NoopPainter) Kind() sg.RendererKind { return p.kind }

// Init initializes the painter.
func (p *NoopPainter) Init() error {
	p.initialized = true
	return nil
}

// Close releases painter resources.
func (p *NoopPainter) Close() { p.initialized = false }

// BlockCreated ignores the notification.
func (p *NoopPainter) BlockCreated(Block) {}

// BlockDisposed ignores the notification.
func (p *NoopPainter) BlockDisposed(Block) {}

// BlockRangeChanged ignores the notification.
func (p *NoopPainter) BlockRangeChanged(Block, Range, Range) {}

// DrawableDirty ignores the notification.
func (p *NoopPainter) DrawableDirty(sg.DrawableHandle, sg.DirtyFlags) {}
