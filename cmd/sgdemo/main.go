// Command sgdemo demonstrates the sg scene-graph engine. It builds a
// small scene of boxes, mutates it across several frames, and writes
// the final frame as SVG and PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend/markup"
	"github.com/gogpu/sg/backend/raster"
	"github.com/gogpu/sg/stitch"
	"github.com/gogpu/sg/visual"
)

func main() {
	var (
		width   = flag.Int("width", 256, "canvas width")
		height  = flag.Int("height", 256, "canvas height")
		frames  = flag.Int("frames", 8, "frames to run")
		svgOut  = flag.String("svg", "demo.svg", "SVG output file")
		pngOut  = flag.String("png", "demo.png", "PNG output file")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		sg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	scene, bars := buildScene(*width, *height)

	svgPainter := markup.NewSVG()
	rasterPainter := raster.New(*width, *height)

	tree, err := stitch.NewTree(scene,
		stitch.WithPainter(svgPainter),
		stitch.WithPainter(rasterPainter),
	)
	if err != nil {
		log.Fatalf("Failed to build tree: %v", err)
	}
	defer tree.Close()

	for frame := 0; frame < *frames; frame++ {
		mutate(scene, bars, frame, *width, *height)

		rep, err := tree.SyncAndStitch()
		if err != nil {
			log.Fatalf("Frame %d failed: %v", frame, err)
		}
		log.Printf("frame %d: intervals=%d greedy=%d rebuilds=%d blocks=%d dirty=%d disposed=%d",
			frame, rep.Intervals, rep.Greedy, rep.Rebuilds,
			rep.BlocksChanged, rep.DrawablesDirty, rep.DrawablesDisposed)
	}

	order := blockOrder(tree)
	if err := writeSVG(svgPainter, order, *svgOut); err != nil {
		log.Fatalf("Failed to write SVG: %v", err)
	}
	if err := writePNG(rasterPainter, order, *width, *height, *pngOut); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}

	st := tree.Stats()
	log.Printf("done: %d frames, %d intervals, %d greedy, %d rebuilds, %d instances, %d drawables, %d blocks",
		st.Frames, st.Intervals, st.GreedyStitches, st.Rebuilds,
		st.Instances, st.Drawables, st.Blocks)
	log.Printf("Demo saved to %s and %s", *svgOut, *pngOut)
}

// buildScene returns a backdrop with a row of colored bars. The bars
// alternate between markup-only and raster-only capabilities so the
// engine has to split them into separate blocks.
func buildScene(w, h int) (*visual.Group, []*visual.Box) {
	backdrop := visual.NewBox(0, 0, float32(w), float32(h), color.RGBA{R: 0x20, G: 0x20, B: 0x30, A: 0xff})

	palette := []color.RGBA{
		{R: 0xe0, G: 0x40, B: 0x40, A: 0xff},
		{R: 0x40, G: 0xe0, B: 0x40, A: 0xff},
		{R: 0x40, G: 0x40, B: 0xe0, A: 0xff},
		{R: 0xe0, G: 0xe0, B: 0x40, A: 0xff},
	}

	bars := make([]*visual.Box, 0, len(palette))
	row := visual.NewGroup()
	barW := float32(w) / float32(len(palette)+1)
	for i, c := range palette {
		bar := visual.NewBox(barW/2+float32(i)*barW, float32(h)/4, barW*3/4, float32(h)/2, c)
		if i%2 == 0 {
			bar.SetRenderers(sg.KindSVG | sg.KindDOM)
		} else {
			bar.SetRenderers(sg.KindCanvas)
		}
		bars = append(bars, bar)
		row.Append(bar)
	}

	return visual.NewGroup(backdrop, row), bars
}

// mutate applies a different edit each frame: paint-only recolors,
// structural inserts and removals, and a capability flip.
func mutate(scene *visual.Group, bars []*visual.Box, frame, w, h int) {
	switch frame % 4 {
	case 0:
		if frame > 0 {
			shade := uint8(0x30 + frame*0x10)
			bars[0].SetFill(color.RGBA{R: shade, G: 0xff - shade, B: 0x80, A: 0xff})
		}
	case 1:
		extra := visual.NewBox(float32(frame*10), float32(h-20), 16, 16, color.RGBA{R: 0xff, G: 0x80, A: 0xff})
		scene.Append(extra)
	case 2:
		if kids := scene.Children(); len(kids) > 2 {
			scene.Remove(len(kids) - 1)
		}
	case 3:
		bars[frame%len(bars)].SetRenderers(sg.KindCanvas)
	}
}

func blockOrder(tree *stitch.Tree) []uint64 {
	var order []uint64
	tree.Blocks(func(b *stitch.Block) bool {
		order = append(order, b.ID())
		return true
	})
	return order
}

func writeSVG(p *markup.Painter, order []uint64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	// The markup painter only holds its own blocks.
	own := order[:0:0]
	for _, id := range order {
		if p.ContainerLen(id) >= 0 {
			own = append(own, id)
		}
	}
	if err := p.Render(f, own); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePNG(p *raster.Painter, order []uint64, w, h int, path string) error {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	p.Composite(dst, order)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
