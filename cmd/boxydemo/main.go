// Command boxydemo renders a sample frame with the boxy sprite renderer
// and dumps the resulting atlas layers as PNG files.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/idakandrew/boxy"
	"github.com/idakandrew/boxy/gpu"
	_ "github.com/idakandrew/boxy/gpu/memdev"
	_ "github.com/idakandrew/boxy/gpu/wgpudev"
)

func main() {
	var (
		width    = flag.Int("width", 800, "frame width")
		height   = flag.Int("height", 600, "frame height")
		tileSize = flag.Int("tile", 64, "atlas tile size")
		outDir   = flag.String("out", ".", "directory for atlas layer PNGs")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		boxy.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	dev, err := gpu.Default()
	if err != nil {
		log.Fatalf("no gpu device: %v", err)
	}
	defer dev.Close()

	r, err := boxy.New(dev, boxy.Config{TileSize: *tileSize})
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	defer r.Close()

	if err := r.AddImage("gradient", gradientPixmap(200, 120)); err != nil {
		log.Fatalf("add image: %v", err)
	}
	if err := r.AddImage("badge", badgePixmap(96)); err != nil {
		log.Fatalf("add image: %v", err)
	}

	if err := drawFrame(r, *width, *height); err != nil {
		log.Fatalf("render: %v", err)
	}

	stats := r.Stats()
	log.Printf("rendered %dx%d frame: %d flushes, %d images, atlas %d/%d tiles",
		*width, *height, stats.FrameFlushes, stats.Images, stats.AtlasTaken, stats.AtlasCapacity)

	layers, err := r.ReadAtlas()
	if err != nil {
		log.Fatalf("read atlas: %v", err)
	}
	for i, layer := range layers {
		path := filepath.Join(*outDir, fmt.Sprintf("atlas-%02d.png", i))
		if err := savePNG(path, layer); err != nil {
			log.Fatalf("save %s: %v", path, err)
		}
	}
	log.Printf("wrote %d atlas layers to %s", len(layers), *outDir)
}

func drawFrame(r *boxy.Renderer, w, h int) error {
	if err := r.BeginFrame(w, h, nil); err != nil {
		return err
	}

	// Background.
	if err := r.DrawRect(boxy.R(0, 0, float64(w), float64(h)), boxy.RGBA{R: 0.1, G: 0.12, B: 0.18, A: 1}); err != nil {
		return err
	}

	// A ring of rotated badges.
	cx, cy := float64(w)/2, float64(h)/2
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		pos := boxy.Pt(cx+180*math.Cos(angle), cy+180*math.Sin(angle))
		if err := r.DrawImageRotated("badge", pos, angle, boxy.White); err != nil {
			return err
		}
	}

	// The gradient, masked to a centered window.
	if err := r.BeginMask(); err != nil {
		return err
	}
	if err := r.DrawRect(boxy.R(cx-150, cy-90, 300, 180), boxy.White); err != nil {
		return err
	}
	if err := r.EndMask(); err != nil {
		return err
	}
	if err := r.DrawImageRect("gradient", boxy.R(cx-200, cy-120, 400, 240), boxy.White); err != nil {
		return err
	}
	if err := r.PopMask(); err != nil {
		return err
	}

	return r.EndFrame()
}

// gradientPixmap builds a horizontal blue-to-orange gradient.
func gradientPixmap(w, h int) *boxy.Pixmap {
	p := boxy.NewPixmap(w, h)
	for x := 0; x < w; x++ {
		t := float64(x) / float64(w-1)
		c := boxy.RGBA{R: 0.2 + 0.8*t, G: 0.3 + 0.3*t, B: 0.9 - 0.7*t, A: 1}
		for y := 0; y < h; y++ {
			p.SetPixel(x, y, c)
		}
	}
	return p
}

// badgePixmap builds a filled circle on a transparent square.
func badgePixmap(size int) *boxy.Pixmap {
	p := boxy.NewPixmap(size, size)
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-r+0.5, float64(y)-r+0.5
			if dx*dx+dy*dy <= (r-1)*(r-1) {
				p.SetPixel(x, y, boxy.RGBA{R: 1, G: 0.7, B: 0.1, A: 1})
			}
		}
	}
	return p
}

func savePNG(path string, p *boxy.Pixmap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, p.ToImage())
}
