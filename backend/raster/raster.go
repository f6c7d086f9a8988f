// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster provides the Canvas painter. Each block owns an RGBA
// surface; member drawables rasterize themselves into it through a
// shared srwiley/rasterx filler. Repaints are lazy: dirty notifications
// only mark the owning block, and surfaces are redrawn on demand.
package raster

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend"
)

// Shape is the handle contract for the Canvas painter. A drawable handle
// delivered to it must implement Rasterize, adding its filled paths to
// the filler. The painter drives Draw and Clear around each member.
type Shape interface {
	sg.DrawableHandle

	// Rasterize adds the shape's paths to the filler in surface
	// coordinates. The implementation should set the scanner color via
	// f.Scanner.SetColor before emitting paths.
	Rasterize(f *rasterx.Filler)
}

type blockSurface struct {
	img     *image.RGBA
	members []Shape
	dirty   bool
}

// Painter rasterizes block members into per-block RGBA surfaces.
type Painter struct {
	width, height int

	blocks map[uint64]*blockSurface
	inited bool
}

// New creates a Canvas painter whose surfaces are width by height pixels.
func New(width, height int) *Painter {
	return &Painter{width: width, height: height}
}

func init() {
	backend.Register(sg.KindCanvas, func() backend.Painter { return New(256, 256) })
}

// Name returns the painter identifier.
func (p *Painter) Name() string { return "raster" }

// Kind returns sg.KindCanvas.
func (p *Painter) Kind() sg.RendererKind { return sg.KindCanvas }

// Init initializes the painter.
func (p *Painter) Init() error {
	p.blocks = make(map[uint64]*blockSurface)
	p.inited = true
	return nil
}

// Close drops all surfaces.
func (p *Painter) Close() {
	p.blocks = nil
	p.inited = false
}

// BlockCreated allocates the block's surface and copies its membership.
func (p *Painter) BlockCreated(b backend.Block) {
	s := &blockSurface{
		img:   image.NewRGBA(image.Rect(0, 0, p.width, p.height)),
		dirty: true,
	}
	p.copyMembers(s, b)
	p.blocks[b.ID()] = s
}

// BlockRangeChanged re-copies the membership and marks the surface dirty.
func (p *Painter) BlockRangeChanged(b backend.Block, _, _ backend.Range) {
	s, ok := p.blocks[b.ID()]
	if !ok {
		return
	}
	p.copyMembers(s, b)
	s.dirty = true
}

// BlockDisposed releases the block's surface.
func (p *Painter) BlockDisposed(b backend.Block) {
	delete(p.blocks, b.ID())
}

// DrawableDirty marks every block holding the handle for repaint.
func (p *Painter) DrawableDirty(h sg.DrawableHandle, _ sg.DirtyFlags) {
	for _, s := range p.blocks {
		for _, m := range s.members {
			if sg.DrawableHandle(m) == h {
				s.dirty = true
				break
			}
		}
	}
}

func (p *Painter) copyMembers(s *blockSurface, b backend.Block) {
	s.members = s.members[:0]
	b.Members(func(h sg.DrawableHandle) bool {
		if sh, ok := h.(Shape); ok {
			s.members = append(s.members, sh)
		}
		return true
	})
}

// repaint redraws one surface from scratch in member paint order.
func (p *Painter) repaint(s *blockSurface) {
	clear(s.img.Pix)
	scanner := rasterx.NewScannerGV(p.width, p.height, s.img, s.img.Bounds())
	filler := rasterx.NewFiller(p.width, p.height, scanner)
	for _, m := range s.members {
		filler.Clear()
		filler.SetWinding(true)
		filler.Scanner.SetColor(color.RGBA{A: 0xff})
		m.Rasterize(filler)
		filler.Draw()
	}
	s.dirty = false
}

// Image returns the block's surface, repainting it first if dirty.
// Returns nil for an unknown block.
func (p *Painter) Image(blockID uint64) *image.RGBA {
	s, ok := p.blocks[blockID]
	if !ok {
		return nil
	}
	if s.dirty {
		p.repaint(s)
	}
	return s.img
}

// Composite draws the block surfaces over dst in the given paint order
// (block IDs; unknown IDs are skipped). A nil order composites in
// unspecified order and is only useful for single-block scenes.
func (p *Painter) Composite(dst xdraw.Image, order []uint64) {
	if order == nil {
		for id := range p.blocks {
			order = append(order, id)
		}
	}
	for _, id := range order {
		s, ok := p.blocks[id]
		if !ok {
			continue
		}
		if s.dirty {
			p.repaint(s)
		}
		xdraw.Draw(dst, dst.Bounds(), s.img, image.Point{}, xdraw.Over)
	}
}

// BlockLen returns the member count the painter holds for a block, or -1
// if the block is unknown.
func (p *Painter) BlockLen(blockID uint64) int {
	s, ok := p.blocks[blockID]
	if !ok {
		return -1
	}
	return len(s.members)
}
