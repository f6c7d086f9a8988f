// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sg

import "strings"

// RendererKind is a bitmask of rendering backends. A single bit names one
// backend; a mask with several bits set describes a capability set
// (the backends a node can be drawn with).
type RendererKind uint8

// Renderer kind bits, ordered from lowest to highest selection priority.
const (
	// KindDOM renders through a tree of HTML elements.
	KindDOM RendererKind = 1 << iota
	// KindSVG renders through a tree of SVG elements.
	KindSVG
	// KindCanvas renders through rasterized 2D paint operations.
	KindCanvas
	// KindWebGL renders through batched GPU vertex data.
	KindWebGL
)

// KindNone is the empty capability set.
const KindNone RendererKind = 0

// KindAll is the capability set containing every backend.
const KindAll = KindDOM | KindSVG | KindCanvas | KindWebGL

// kindPriority lists single kinds from most to least preferred.
// GPU batching beats rasterization beats retained vector markup
// beats plain elements.
var kindPriority = [...]RendererKind{KindWebGL, KindCanvas, KindSVG, KindDOM}

// Has reports whether every bit of other is present in k.
func (k RendererKind) Has(other RendererKind) bool {
	return k&other == other
}

// IsSingle reports whether exactly one backend bit is set.
func (k RendererKind) IsSingle() bool {
	return k != 0 && k&(k-1) == 0
}

// Primary returns the most preferred single kind contained in k,
// or KindNone if k is empty.
func (k RendererKind) Primary() RendererKind {
	for _, p := range kindPriority {
		if k.Has(p) {
			return p
		}
	}
	return KindNone
}

// String returns a readable name such as "svg" or "canvas|webgl".
func (k RendererKind) String() string {
	if k == KindNone {
		return "none"
	}
	var parts []string
	if k.Has(KindDOM) {
		parts = append(parts, "dom")
	}
	if k.Has(KindSVG) {
		parts = append(parts, "svg")
	}
	if k.Has(KindCanvas) {
		parts = append(parts, "canvas")
	}
	if k.Has(KindWebGL) {
		parts = append(parts, "webgl")
	}
	return strings.Join(parts, "|")
}

// FitMode describes how a block sizes its backend container.
type FitMode uint8

const (
	// FitDisplay sizes the block to the whole display surface.
	FitDisplay FitMode = iota
	// FitContent sizes the block to the union bounds of its members.
	FitContent
)

// String returns "display" or "content".
func (f FitMode) String() string {
	if f == FitContent {
		return "content"
	}
	return "display"
}
