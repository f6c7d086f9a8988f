// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package markup provides the DOM and SVG painters. Each block is
// mirrored by one container element; member drawables contribute their
// own element subtrees, which the painter keeps attached in paint order.
// Documents are assembled with golang.org/x/net/html nodes and can be
// serialized at any point between frames.
package markup

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend"
)

// Element is the handle contract for markup painters. A drawable handle
// delivered to a DOM or SVG painter must implement it.
type Element interface {
	sg.DrawableHandle

	// MarkupNode returns the element subtree representing the drawable.
	// The painter owns its position in the document; the handle owns its
	// attributes and children.
	MarkupNode() *html.Node

	// Refresh updates the element's attributes after a repaint
	// notification. Only visual flags are ever delivered.
	Refresh(flags sg.DirtyFlags)
}

// Painter maintains one container element per block. It serves either
// KindDOM (div containers) or KindSVG (g containers inside an svg root).
type Painter struct {
	kind sg.RendererKind

	containers map[uint64]*html.Node
	created    []uint64 // block IDs in creation order
	inited     bool
}

// NewDOM creates the painter for KindDOM.
func NewDOM() *Painter { return &Painter{kind: sg.KindDOM} }

// NewSVG creates the painter for KindSVG.
func NewSVG() *Painter { return &Painter{kind: sg.KindSVG} }

func init() {
	backend.Register(sg.KindDOM, func() backend.Painter { return NewDOM() })
	backend.Register(sg.KindSVG, func() backend.Painter { return NewSVG() })
}

// Name returns "markup-dom" or "markup-svg".
func (p *Painter) Name() string {
	if p.kind == sg.KindSVG {
		return "markup-svg"
	}
	return "markup-dom"
}

// Kind returns the renderer kind this painter serves.
func (p *Painter) Kind() sg.RendererKind { return p.kind }

// Init initializes the painter.
func (p *Painter) Init() error {
	p.containers = make(map[uint64]*html.Node)
	p.created = p.created[:0]
	p.inited = true
	return nil
}

// Close releases the document.
func (p *Painter) Close() {
	p.containers = nil
	p.created = nil
	p.inited = false
}

// BlockCreated builds the block's container element and attaches the
// member elements in paint order.
func (p *Painter) BlockCreated(b backend.Block) {
	c := p.newContainer(b.ID())
	p.containers[b.ID()] = c
	p.created = append(p.created, b.ID())
	p.populate(c, b)
}

// BlockRangeChanged re-attaches the container's children from the block's
// current membership. Elements that migrated to another block have
// already left the container or will be claimed by the other block's own
// notification; detach-before-append keeps either order safe.
func (p *Painter) BlockRangeChanged(b backend.Block, _, _ backend.Range) {
	c, ok := p.containers[b.ID()]
	if !ok {
		return
	}
	p.populate(c, b)
}

// BlockDisposed detaches the container. Surviving member elements have
// migrated to another container by the end of the frame.
func (p *Painter) BlockDisposed(b backend.Block) {
	c, ok := p.containers[b.ID()]
	if !ok {
		return
	}
	clearChildren(c)
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	delete(p.containers, b.ID())
	for i, id := range p.created {
		if id == b.ID() {
			p.created = append(p.created[:i], p.created[i+1:]...)
			break
		}
	}
}

// DrawableDirty forwards the repaint to the element.
func (p *Painter) DrawableDirty(h sg.DrawableHandle, flags sg.DirtyFlags) {
	if el, ok := h.(Element); ok {
		el.Refresh(flags)
	}
}

// Render serializes the document to w: the root element, the block
// containers in the given paint order (every ID must name a live block),
// and each container's member elements. A nil order renders containers
// in block creation order.
func (p *Painter) Render(w io.Writer, order []uint64) error {
	if !p.inited {
		return backend.ErrNotInitialized
	}
	if order == nil {
		order = p.created
	}
	root := p.newRoot()
	for _, id := range order {
		c, ok := p.containers[id]
		if !ok {
			return fmt.Errorf("markup: render order names unknown block %d", id)
		}
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		root.AppendChild(c)
	}
	return html.Render(w, root)
}

// ContainerLen returns the number of child elements of a block's
// container, or -1 if the block is unknown.
func (p *Painter) ContainerLen(blockID uint64) int {
	c, ok := p.containers[blockID]
	if !ok {
		return -1
	}
	n := 0
	for k := c.FirstChild; k != nil; k = k.NextSibling {
		n++
	}
	return n
}

func (p *Painter) newRoot() *html.Node {
	if p.kind == sg.KindSVG {
		return &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Svg,
			Data:     "svg",
			Attr:     []html.Attribute{{Key: "xmlns", Val: "http://www.w3.org/2000/svg"}},
		}
	}
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr:     []html.Attribute{{Key: "class", Val: "sg-root"}},
	}
}

func (p *Painter) newContainer(id uint64) *html.Node {
	a, name := atom.Div, "div"
	if p.kind == sg.KindSVG {
		a, name = 0, "g"
	}
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     name,
		Attr:     []html.Attribute{{Key: "data-block", Val: strconv.FormatUint(id, 10)}},
	}
}

func (p *Painter) populate(c *html.Node, b backend.Block) {
	clearChildren(c)
	b.Members(func(h sg.DrawableHandle) bool {
		el, ok := h.(Element)
		if !ok {
			return true
		}
		n := el.MarkupNode()
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		c.AppendChild(n)
		return true
	})
}

func clearChildren(c *html.Node) {
	for c.FirstChild != nil {
		c.RemoveChild(c.FirstChild)
	}
}
