package boxy

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	// Register decoders for DecodePixmap.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Pixmap is a CPU-side pixel buffer in straight (non-premultiplied) RGBA8,
// row-major from the top-left corner.
type Pixmap struct {
	width  int
	height int
	data   []byte
}

// NewPixmap creates a transparent pixmap of the given size.
func NewPixmap(width, height int) *Pixmap {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]byte, width*height*4),
	}
}

// NewUniformPixmap creates a pixmap filled with a single color.
func NewUniformPixmap(width, height int, c RGBA) *Pixmap {
	p := NewPixmap(width, height)
	if p != nil {
		p.Fill(c)
	}
	return p
}

// FromImage converts a standard image.Image to a Pixmap.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	p := NewPixmap(w, h)
	if p == nil {
		return nil
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	for y := 0; y < h; y++ {
		copy(p.data[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return p
}

// DecodePixmap decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF, WebP)
// from memory.
func DecodePixmap(data []byte) (*Pixmap, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("boxy: decode image: %w", err)
	}
	p := FromImage(img)
	if p == nil {
		return nil, fmt.Errorf("boxy: decode image: empty %s image", format)
	}
	return p, nil
}

// Width returns the pixmap width in pixels.
func (p *Pixmap) Width() int { return p.width }

// Height returns the pixmap height in pixels.
func (p *Pixmap) Height() int { return p.height }

// Data returns the underlying pixel buffer. The slice is live, not a copy.
func (p *Pixmap) Data() []byte { return p.data }

// SetPixel sets the color at (x, y). Out-of-bounds coordinates are ignored.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	b := rgba8(c)
	copy(p.data[i:i+4], b[:])
}

// GetPixel returns the color at (x, y). Out-of-bounds coordinates return
// transparent black.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return RGBA{}
	}
	i := (y*p.width + x) * 4
	return RGBA{
		R: float64(p.data[i]) / 255,
		G: float64(p.data[i+1]) / 255,
		B: float64(p.data[i+2]) / 255,
		A: float64(p.data[i+3]) / 255,
	}
}

// Fill sets every pixel to c.
func (p *Pixmap) Fill(c RGBA) {
	b := rgba8(c)
	for i := 0; i < len(p.data); i += 4 {
		copy(p.data[i:i+4], b[:])
	}
}

// Clear sets every pixel to transparent black.
func (p *Pixmap) Clear() {
	for i := range p.data {
		p.data[i] = 0
	}
}

// Crop returns a copy of the w x h region at (x, y). The region is clamped
// to the pixmap bounds; a region fully outside returns nil.
func (p *Pixmap) Crop(x, y, w, h int) *Pixmap {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > p.width {
		w = p.width - x
	}
	if y+h > p.height {
		h = p.height - y
	}
	if w <= 0 || h <= 0 {
		return nil
	}

	out := NewPixmap(w, h)
	for row := 0; row < h; row++ {
		srcOff := ((y+row)*p.width + x) * 4
		copy(out.data[row*w*4:(row+1)*w*4], p.data[srcOff:srcOff+w*4])
	}
	return out
}

// UniformColor reports whether every pixel has the same color, and returns
// that color when so. An all-transparent pixmap is uniform.
func (p *Pixmap) UniformColor() (RGBA, bool) {
	if len(p.data) < 4 {
		return RGBA{}, false
	}
	first := p.data[0:4]
	for i := 4; i < len(p.data); i += 4 {
		if p.data[i] != first[0] || p.data[i+1] != first[1] ||
			p.data[i+2] != first[2] || p.data[i+3] != first[3] {
			return RGBA{}, false
		}
	}
	return p.GetPixel(0, 0), true
}

// ToImage converts the pixmap to a standard *image.NRGBA.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+p.width*4], p.data[y*p.width*4:(y+1)*p.width*4])
	}
	return img
}

// rgba8 converts a straight-alpha color to its 8-bit form without
// premultiplying. Pixmap storage stays straight alpha.
func rgba8(c RGBA) [4]byte {
	return [4]byte{
		uint8(clamp255(c.R * 255)),
		uint8(clamp255(c.G * 255)),
		uint8(clamp255(c.B * 255)),
		uint8(clamp255(c.A * 255)),
	}
}
