// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"image/color"
	"strconv"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gogpu/sg"
)

// Box is a filled axis-aligned rectangle. It can be drawn by every
// backend; narrow the capability set with SetRenderers to steer the
// policy.
type Box struct {
	base

	x, y, w, h float32
	fill       color.RGBA

	caps    sg.RendererKind
	fit     sg.FitMode
	painted bool
}

// NewBox creates a box at (x, y) sized w by h with the given fill.
func NewBox(x, y, w, h float32, fill color.RGBA) *Box {
	return &Box{
		base:    newBase(),
		x:       x,
		y:       y,
		w:       w,
		h:       h,
		fill:    fill,
		caps:    sg.KindAll,
		painted: true,
	}
}

// Painted reports whether the box currently paints itself.
func (b *Box) Painted() bool { return b.painted }

// SetPainted toggles paintability.
func (b *Box) SetPainted(on bool) {
	if b.painted == on {
		return
	}
	b.painted = on
	b.notify(sg.DirtyRenderer)
}

// Renderers returns the capability set.
func (b *Box) Renderers() sg.RendererKind { return b.caps }

// SetRenderers replaces the capability set.
func (b *Box) SetRenderers(caps sg.RendererKind) {
	b.caps = caps
	b.notify(sg.DirtyRenderer)
}

// Fit returns the block fitting mode.
func (b *Box) Fit() sg.FitMode { return b.fit }

// SetFit replaces the fitting mode. Fit participates in block grouping,
// so this is a renderer-level change.
func (b *Box) SetFit(fit sg.FitMode) {
	b.fit = fit
	b.notify(sg.DirtyRenderer)
}

// SetBounds moves and resizes the box.
func (b *Box) SetBounds(x, y, w, h float32) {
	b.x, b.y, b.w, b.h = x, y, w, h
	b.notify(sg.DirtyBounds)
}

// SetFill replaces the fill color.
func (b *Box) SetFill(fill color.RGBA) {
	b.fill = fill
	b.notify(sg.DirtyPaint)
}

// NewDrawable creates the backend payload for kind.
func (b *Box) NewDrawable(kind sg.RendererKind) (sg.DrawableHandle, error) {
	switch kind {
	case sg.KindDOM, sg.KindSVG:
		return &boxElement{box: b, kind: kind}, nil
	case sg.KindCanvas:
		return &boxShape{box: b}, nil
	case sg.KindWebGL:
		return &boxBatch{box: b}, nil
	default:
		return nil, sg.ErrUnsupportedRenderer
	}
}

// boxElement satisfies markup.Element for both markup kinds.
type boxElement struct {
	box  *Box
	kind sg.RendererKind
	node *html.Node
}

func (e *boxElement) Dispose() {
	if e.node != nil && e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
	e.node = nil
	e.box = nil
}

func (e *boxElement) MarkupNode() *html.Node {
	if e.node == nil {
		if e.kind == sg.KindSVG {
			e.node = &html.Node{Type: html.ElementNode, Data: "rect"}
		} else {
			e.node = &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
		}
		e.Refresh(sg.DirtyVisual)
	}
	return e.node
}

func (e *boxElement) Refresh(sg.DirtyFlags) {
	if e.node == nil || e.box == nil {
		return
	}
	b := e.box
	if e.kind == sg.KindSVG {
		e.node.Attr = []html.Attribute{
			{Key: "x", Val: ftoa(b.x)},
			{Key: "y", Val: ftoa(b.y)},
			{Key: "width", Val: ftoa(b.w)},
			{Key: "height", Val: ftoa(b.h)},
			{Key: "fill", Val: cssColor(b.fill)},
		}
		return
	}
	e.node.Attr = []html.Attribute{{
		Key: "style",
		Val: "position:absolute;left:" + ftoa(b.x) + "px;top:" + ftoa(b.y) +
			"px;width:" + ftoa(b.w) + "px;height:" + ftoa(b.h) +
			"px;background:" + cssColor(b.fill),
	}}
}

// boxShape satisfies raster.Shape.
type boxShape struct {
	box *Box
}

func (s *boxShape) Dispose() { s.box = nil }

func (s *boxShape) Rasterize(f *rasterx.Filler) {
	if s.box == nil {
		return
	}
	b := s.box
	f.Scanner.SetColor(b.fill)
	f.Start(fixp(b.x, b.y))
	f.Line(fixp(b.x+b.w, b.y))
	f.Line(fixp(b.x+b.w, b.y+b.h))
	f.Line(fixp(b.x, b.y+b.h))
	f.Stop(true)
}

// boxBatch satisfies webgl.Batchable.
type boxBatch struct {
	box *Box
}

func (s *boxBatch) Dispose() { s.box = nil }

func (s *boxBatch) AppendVertices(dst []float32) []float32 {
	if s.box == nil {
		return dst
	}
	b := s.box
	r := float32(b.fill.R) / 255
	g := float32(b.fill.G) / 255
	bl := float32(b.fill.B) / 255
	a := float32(b.fill.A) / 255
	x0, y0 := b.x, b.y
	x1, y1 := b.x+b.w, b.y+b.h
	return append(dst,
		x0, y0, r, g, bl, a,
		x1, y0, r, g, bl, a,
		x1, y1, r, g, bl, a,
		x0, y0, r, g, bl, a,
		x1, y1, r, g, bl, a,
		x0, y1, r, g, bl, a,
	)
}

func fixp(x, y float32) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func ftoa(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func cssColor(c color.RGBA) string {
	if c.A == 0xff {
		return "#" + hex2(c.R) + hex2(c.G) + hex2(c.B)
	}
	return "rgba(" + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," +
		strconv.Itoa(int(c.B)) + "," + strconv.FormatFloat(float64(c.A)/255, 'g', 3, 64) + ")"
}

func hex2(v uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[v>>4], digits[v&0xf]})
}
