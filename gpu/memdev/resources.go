package memdev

import (
	"fmt"

	"github.com/idakandrew/boxy/gpu"
)

// TextureArray is a layered tile texture with CPU pixel storage.
type TextureArray struct {
	dev      *Device
	tileSize int
	pix      [][]byte // one tileSize*tileSize*4 slice per layer
	label    string
	released bool
}

// TileSize returns the pixel edge length of each layer.
func (t *TextureArray) TileSize() int { return t.tileSize }

// Layers returns the number of layers.
func (t *TextureArray) Layers() int { return len(t.pix) }

// UploadRegion writes a w x h RGBA8 block into one layer at (x, y).
func (t *TextureArray) UploadRegion(layer, x, y, w, h int, pix []byte) error {
	if t.released {
		return fmt.Errorf("memdev: texture array %q already released", t.label)
	}
	if layer < 0 || layer >= len(t.pix) {
		return fmt.Errorf("%w: layer %d of %d", gpu.ErrLayerOutOfRange, layer, len(t.pix))
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", gpu.ErrInvalidDimensions, w, h)
	}
	if x < 0 || y < 0 || x+w > t.tileSize || y+h > t.tileSize {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %d tile", gpu.ErrRegionOutOfBounds, w, h, x, y, t.tileSize)
	}
	if len(pix) != w*h*4 {
		return fmt.Errorf("%w: %d pixel bytes for %dx%d region", gpu.ErrInvalidDimensions, len(pix), w, h)
	}

	dst := t.pix[layer]
	for row := 0; row < h; row++ {
		srcOff := row * w * 4
		dstOff := ((y+row)*t.tileSize + x) * 4
		copy(dst[dstOff:dstOff+w*4], pix[srcOff:srcOff+w*4])
	}
	return nil
}

// CopyFrom copies the first n layers of src into this array.
func (t *TextureArray) CopyFrom(src gpu.TextureArray, n int) error {
	if t.released {
		return fmt.Errorf("memdev: texture array %q already released", t.label)
	}
	ms, ok := src.(*TextureArray)
	if !ok {
		return fmt.Errorf("memdev: foreign texture array %T", src)
	}
	if ms.tileSize != t.tileSize {
		return fmt.Errorf("%w: tile size %d vs %d", gpu.ErrInvalidDimensions, ms.tileSize, t.tileSize)
	}
	if n > len(ms.pix) || n > len(t.pix) {
		return fmt.Errorf("%w: copy of %d layers", gpu.ErrLayerOutOfRange, n)
	}
	for i := 0; i < n; i++ {
		copy(t.pix[i], ms.pix[i])
	}
	return nil
}

// ReadLayer returns a copy of one layer's pixels.
func (t *TextureArray) ReadLayer(layer int) ([]byte, error) {
	if t.released {
		return nil, fmt.Errorf("memdev: texture array %q already released", t.label)
	}
	if layer < 0 || layer >= len(t.pix) {
		return nil, fmt.Errorf("%w: layer %d of %d", gpu.ErrLayerOutOfRange, layer, len(t.pix))
	}
	out := make([]byte, len(t.pix[layer]))
	copy(out, t.pix[layer])
	return out, nil
}

// Release frees the array. Idempotent.
func (t *TextureArray) Release() {
	t.released = true
	t.pix = nil
}

// Texture is a render-target texture. memdev does not rasterize; it tracks
// the size and the last full clear so mask lifecycle tests can observe it.
type Texture struct {
	dev      *Device
	width    int
	height   int
	label    string
	fill     [4]float32
	cleared  bool
	released bool
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Fill returns the color of the last Clear against this texture and
// whether one happened since creation or the last Resize.
func (t *Texture) Fill() ([4]float32, bool) { return t.fill, t.cleared }

// Resize reallocates the texture storage.
func (t *Texture) Resize(width, height int) error {
	if t.released {
		return fmt.Errorf("memdev: texture %q already released", t.label)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", gpu.ErrInvalidDimensions, width, height)
	}
	t.width, t.height = width, height
	t.cleared = false
	return nil
}

// Release frees the texture. Idempotent.
func (t *Texture) Release() { t.released = true }

// Buffer is a byte-backed GPU buffer.
type Buffer struct {
	dev      *Device
	kind     gpu.BufferKind
	data     []byte
	label    string
	released bool
}

// Upload writes data at the given byte offset.
func (b *Buffer) Upload(offset int, data []byte) error {
	if b.released {
		return fmt.Errorf("memdev: buffer %q already released", b.label)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("%w: %d bytes at offset %d in %d-byte buffer", gpu.ErrRegionOutOfBounds, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

// Release frees the buffer. Idempotent.
func (b *Buffer) Release() {
	b.released = true
	b.data = nil
}

// Program is a recorded shader program.
type Program struct {
	source   string
	label    string
	released bool
}

// HasUniform reports whether the WGSL source declares the given name.
func (p *Program) HasUniform(name string) bool {
	return !p.released && containsIdent(p.source, name)
}

// Release frees the program. Idempotent.
func (p *Program) Release() { p.released = true }

// containsIdent reports whether s contains name as a whole identifier.
func containsIdent(s, name string) bool {
	for i := 0; i+len(name) <= len(s); i++ {
		if s[i:i+len(name)] != name {
			continue
		}
		if i > 0 && isIdentByte(s[i-1]) {
			continue
		}
		if j := i + len(name); j < len(s) && isIdentByte(s[j]) {
			continue
		}
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
