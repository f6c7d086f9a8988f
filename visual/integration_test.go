// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend/markup"
	"github.com/gogpu/sg/stitch"
)

// Full path from node mutation to serialized markup.
func TestTreeRendersToSVG(t *testing.T) {
	left := NewBox(0, 0, 10, 10, color.RGBA{R: 0xff, A: 0xff})
	right := NewBox(20, 0, 10, 10, color.RGBA{B: 0xff, A: 0xff})
	root := NewGroup(left, right)

	painter := markup.NewSVG()
	tree, err := stitch.NewTree(root, stitch.WithPainter(painter), stitch.WithValidation(true))
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	defer tree.Close()

	if _, err := tree.SyncAndStitch(); err != nil {
		t.Fatalf("SyncAndStitch: %v", err)
	}

	render := func() string {
		var order []uint64
		tree.Blocks(func(b *stitch.Block) bool {
			order = append(order, b.ID())
			return true
		})
		var buf bytes.Buffer
		if err := painter.Render(&buf, order); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return buf.String()
	}

	out := render()
	if strings.Count(out, "<rect") != 2 {
		t.Fatalf("want 2 rects, got:\n%s", out)
	}
	if !strings.Contains(out, `fill="#ff0000"`) || !strings.Contains(out, `fill="#0000ff"`) {
		t.Errorf("fills missing:\n%s", out)
	}

	// Mutate and resync. Paint changes flow through without restitching,
	// structural changes grow the output.
	left.SetFill(color.RGBA{G: 0xff, A: 0xff})
	root.Insert(1, NewBox(10, 0, 10, 10, color.RGBA{A: 0xff}))
	rep, err := tree.SyncAndStitch()
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if rep.Rebuilds != 0 {
		t.Errorf("insert should stitch greedily, got %d rebuilds", rep.Rebuilds)
	}

	out = render()
	if strings.Count(out, "<rect") != 3 {
		t.Fatalf("want 3 rects after insert, got:\n%s", out)
	}
	if !strings.Contains(out, `fill="#00ff00"`) {
		t.Errorf("updated fill missing:\n%s", out)
	}
	if strings.Contains(out, `fill="#ff0000"`) {
		t.Errorf("stale fill still present:\n%s", out)
	}
}

// A mixed-capability tree splits into per-backend blocks served by the
// registry's painters.
func TestTreeSplitsAcrossBackends(t *testing.T) {
	svgOnly := NewBox(0, 0, 5, 5, color.RGBA{R: 0xff, A: 0xff})
	svgOnly.SetRenderers(sg.KindSVG)
	canvasOnly := NewBox(5, 0, 5, 5, color.RGBA{B: 0xff, A: 0xff})
	canvasOnly.SetRenderers(sg.KindCanvas)

	tree, err := stitch.NewTree(NewGroup(svgOnly, canvasOnly), stitch.WithValidation(true))
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	defer tree.Close()
	if _, err := tree.SyncAndStitch(); err != nil {
		t.Fatalf("SyncAndStitch: %v", err)
	}

	var kinds []sg.RendererKind
	tree.Blocks(func(b *stitch.Block) bool {
		kinds = append(kinds, b.Kind())
		return true
	})
	if len(kinds) != 2 || kinds[0] != sg.KindSVG || kinds[1] != sg.KindCanvas {
		t.Errorf("block kinds = %v, want [svg canvas]", kinds)
	}
}
