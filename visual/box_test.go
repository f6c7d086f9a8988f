// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/srwiley/rasterx"
	"golang.org/x/net/html"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend/markup"
	"github.com/gogpu/sg/backend/raster"
	"github.com/gogpu/sg/backend/webgl"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestBoxHandleContracts(t *testing.T) {
	b := NewBox(0, 0, 10, 10, red)

	for kind, check := range map[sg.RendererKind]func(sg.DrawableHandle) bool{
		sg.KindDOM:    func(h sg.DrawableHandle) bool { _, ok := h.(markup.Element); return ok },
		sg.KindSVG:    func(h sg.DrawableHandle) bool { _, ok := h.(markup.Element); return ok },
		sg.KindCanvas: func(h sg.DrawableHandle) bool { _, ok := h.(raster.Shape); return ok },
		sg.KindWebGL:  func(h sg.DrawableHandle) bool { _, ok := h.(webgl.Batchable); return ok },
	} {
		h, err := b.NewDrawable(kind)
		if err != nil {
			t.Fatalf("NewDrawable(%v): %v", kind, err)
		}
		if !check(h) {
			t.Errorf("%v handle does not satisfy its painter contract", kind)
		}
		h.Dispose()
	}

	if _, err := b.NewDrawable(sg.KindNone); err != sg.ErrUnsupportedRenderer {
		t.Errorf("NewDrawable(none) = %v, want ErrUnsupportedRenderer", err)
	}
}

func TestBoxSVGElement(t *testing.T) {
	b := NewBox(2, 4, 8, 16, red)
	h, _ := b.NewDrawable(sg.KindSVG)
	n := h.(markup.Element).MarkupNode()

	if n.Data != "rect" {
		t.Fatalf("element = %q, want rect", n.Data)
	}
	for key, want := range map[string]string{
		"x": "2", "y": "4", "width": "8", "height": "16", "fill": "#ff0000",
	} {
		if got := attrVal(n, key); got != want {
			t.Errorf("attr %s = %q, want %q", key, got, want)
		}
	}

	b.SetFill(color.RGBA{G: 0x80, A: 0xff})
	h.(markup.Element).Refresh(sg.DirtyPaint)
	if got := attrVal(n, "fill"); got != "#008000" {
		t.Errorf("fill after refresh = %q, want #008000", got)
	}
}

func TestBoxDOMElement(t *testing.T) {
	b := NewBox(1, 2, 3, 4, color.RGBA{R: 0xff, A: 0x80})
	h, _ := b.NewDrawable(sg.KindDOM)
	n := h.(markup.Element).MarkupNode()

	if n.Data != "div" {
		t.Fatalf("element = %q, want div", n.Data)
	}
	style := attrVal(n, "style")
	for _, want := range []string{"left:1px", "top:2px", "width:3px", "height:4px", "rgba(255,0,0,"} {
		if !strings.Contains(style, want) {
			t.Errorf("style %q missing %q", style, want)
		}
	}
}

func TestBoxRasterize(t *testing.T) {
	b := NewBox(2, 2, 8, 8, red)
	h, _ := b.NewDrawable(sg.KindCanvas)

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	scanner := rasterx.NewScannerGV(16, 16, img, img.Bounds())
	filler := rasterx.NewFiller(16, 16, scanner)
	h.(raster.Shape).Rasterize(filler)
	filler.Draw()

	if c := img.RGBAAt(5, 5); c.R < 200 || c.A < 200 {
		t.Errorf("interior pixel = %+v, want red", c)
	}
	if c := img.RGBAAt(14, 14); c.A != 0 {
		t.Errorf("exterior pixel = %+v, want transparent", c)
	}
}

func TestBoxAppendVertices(t *testing.T) {
	b := NewBox(0, 0, 2, 2, red)
	h, _ := b.NewDrawable(sg.KindWebGL)

	verts := h.(webgl.Batchable).AppendVertices(nil)
	if len(verts) != 36 {
		t.Fatalf("len(verts) = %d, want 36 (two triangles)", len(verts))
	}
	// First vertex: top-left corner, full red.
	if verts[0] != 0 || verts[1] != 0 || verts[2] != 1 || verts[5] != 1 {
		t.Errorf("first vertex = %v", verts[:6])
	}
	// Disposed handles append nothing.
	h.Dispose()
	if got := h.(webgl.Batchable).AppendVertices(nil); len(got) != 0 {
		t.Errorf("disposed handle appended %d floats", len(got))
	}
}

func TestBoxWatcherFlags(t *testing.T) {
	b := NewBox(0, 0, 1, 1, red)
	var got sg.DirtyFlags
	unwatch := b.Watch(func(f sg.DirtyFlags) { got |= f })

	b.SetFill(color.RGBA{A: 0xff})
	b.SetBounds(1, 1, 2, 2)
	b.SetTransform(sg.TranslateAffine(5, 0))
	b.SetRenderers(sg.KindCanvas)
	b.Append(NewGroup())

	want := sg.DirtyPaint | sg.DirtyBounds | sg.DirtyTransform | sg.DirtyRenderer | sg.DirtyChildren
	if got != want {
		t.Errorf("accumulated flags = %v, want %v", got, want)
	}

	unwatch()
	got = 0
	b.SetFill(red)
	if got != 0 {
		t.Error("watcher fired after unwatch")
	}
}

func TestBoxSetPaintedNoopWhenUnchanged(t *testing.T) {
	b := NewBox(0, 0, 1, 1, red)
	fired := 0
	b.Watch(func(sg.DirtyFlags) { fired++ })

	b.SetPainted(true) // already painted
	if fired != 0 {
		t.Error("SetPainted(true) on a painted box should not notify")
	}
	b.SetPainted(false)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestGroupIsStructural(t *testing.T) {
	g := NewGroup(NewBox(0, 0, 1, 1, red))
	if g.Painted() {
		t.Error("groups must not paint")
	}
	if g.Renderers() != sg.KindNone {
		t.Errorf("Renderers = %v, want none", g.Renderers())
	}
	if _, err := g.NewDrawable(sg.KindSVG); err != sg.ErrUnsupportedRenderer {
		t.Errorf("NewDrawable = %v, want ErrUnsupportedRenderer", err)
	}
	if len(g.Children()) != 1 {
		t.Errorf("children = %d, want 1", len(g.Children()))
	}
}

func TestGroupChildMutators(t *testing.T) {
	a, b, c := NewGroup(), NewGroup(), NewGroup()
	g := NewGroup(a, c)

	g.Insert(1, b)
	if kids := g.Children(); kids[0] != sg.Node(a) || kids[1] != sg.Node(b) || kids[2] != sg.Node(c) {
		t.Fatal("Insert placed child at wrong index")
	}
	g.Remove(0)
	if kids := g.Children(); len(kids) != 2 || kids[0] != sg.Node(b) {
		t.Fatal("Remove dropped wrong child")
	}
	g.SetChildren(nil)
	if len(g.Children()) != 0 {
		t.Fatal("SetChildren(nil) left children behind")
	}
}
