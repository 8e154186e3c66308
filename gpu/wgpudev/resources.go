package wgpudev

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/idakandrew/boxy/gpu"
)

// CreateTextureArray creates a layered RGBA8 texture array. A CPU mirror of
// every layer is kept alongside the HAL texture: HAL texture readback is not
// exposed upstream yet, so ReadLayer and cross-array copies are served from
// the mirror while uploads go to both.
func (d *Device) CreateTextureArray(tileSize, layers int, label string) (gpu.TextureArray, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if tileSize <= 0 || layers <= 0 {
		return nil, fmt.Errorf("%w: %dx%d tiles, %d layers", gpu.ErrInvalidDimensions, tileSize, tileSize, layers)
	}

	desc := &hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(tileSize),
			Height:             uint32(tileSize),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageTextureBinding,
	}
	texture, err := d.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpudev: create texture array %q: %w", label, err)
	}

	mirror := make([][]byte, layers)
	for i := range mirror {
		mirror[i] = make([]byte, tileSize*tileSize*4)
	}

	return &TextureArray{
		dev:      d,
		raw:      texture,
		tileSize: tileSize,
		mirror:   mirror,
		label:    label,
	}, nil
}

// TextureArray is a layered tile texture on the HAL device.
type TextureArray struct {
	dev      *Device
	raw      hal.Texture
	tileSize int
	mirror   [][]byte
	label    string
	released bool
}

// TileSize returns the pixel edge length of each layer.
func (t *TextureArray) TileSize() int { return t.tileSize }

// Layers returns the number of layers.
func (t *TextureArray) Layers() int { return len(t.mirror) }

// UploadRegion writes a w x h RGBA8 block into one layer at (x, y).
func (t *TextureArray) UploadRegion(layer, x, y, w, h int, pix []byte) error {
	if t.released {
		return fmt.Errorf("wgpudev: texture array %q already released", t.label)
	}
	if layer < 0 || layer >= len(t.mirror) {
		return fmt.Errorf("%w: layer %d of %d", gpu.ErrLayerOutOfRange, layer, len(t.mirror))
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

	dst := &hal.ImageCopyTexture{
		Texture:  t.raw,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(layer)},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w * 4),
		RowsPerImage: uint32(h),
	}
	size := &hal.Extent3D{
		Width:              uint32(w),
		Height:             uint32(h),
		DepthOrArrayLayers: 1,
	}
	t.dev.queue.WriteTexture(dst, pix, layout, size)

	m := t.mirror[layer]
	for row := 0; row < h; row++ {
		srcOff := row * w * 4
		dstOff := ((y+row)*t.tileSize + x) * 4
		copy(m[dstOff:dstOff+w*4], pix[srcOff:srcOff+w*4])
	}
	return nil
}

// CopyFrom copies the first n layers of src into this array. The copy goes
// through the CPU mirror and re-uploads each layer whole.
func (t *TextureArray) CopyFrom(src gpu.TextureArray, n int) error {
	if t.released {
		return fmt.Errorf("wgpudev: texture array %q already released", t.label)
	}
	ws, ok := src.(*TextureArray)
	if !ok {
		return fmt.Errorf("wgpudev: foreign texture array %T", src)
	}
	if ws.tileSize != t.tileSize {
		return fmt.Errorf("%w: tile size %d vs %d", gpu.ErrInvalidDimensions, ws.tileSize, t.tileSize)
	}
	if n > len(ws.mirror) || n > len(t.mirror) {
		return fmt.Errorf("%w: copy of %d layers", gpu.ErrLayerOutOfRange, n)
	}
	for i := 0; i < n; i++ {
		if err := t.UploadRegion(i, 0, 0, t.tileSize, t.tileSize, ws.mirror[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadLayer returns one layer's pixels from the CPU mirror.
func (t *TextureArray) ReadLayer(layer int) ([]byte, error) {
	if t.released {
		return nil, fmt.Errorf("wgpudev: texture array %q already released", t.label)
	}
	if layer < 0 || layer >= len(t.mirror) {
		return nil, fmt.Errorf("%w: layer %d of %d", gpu.ErrLayerOutOfRange, layer, len(t.mirror))
	}
	out := make([]byte, len(t.mirror[layer]))
	copy(out, t.mirror[layer])
	return out, nil
}

// Release frees the HAL texture. Idempotent.
func (t *TextureArray) Release() {
	if t.released {
		return
	}
	t.released = true
	t.dev.device.DestroyTexture(t.raw)
	t.mirror = nil
}

// CreateRenderTexture creates an RGBA8 texture usable as a render target
// and sampled input.
func (d *Device) CreateRenderTexture(width, height int, label string) (gpu.Texture, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", gpu.ErrInvalidDimensions, width, height)
	}
	raw, err := d.createRenderTarget(width, height, label)
	if err != nil {
		return nil, err
	}
	return &Texture{dev: d, raw: raw, width: width, height: height, label: label}, nil
}

func (d *Device) createRenderTarget(width, height int, label string) (hal.Texture, error) {
	desc := &hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageRenderAttachment | types.TextureUsageTextureBinding | types.TextureUsageCopySrc,
	}
	raw, err := d.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpudev: create render texture %q: %w", label, err)
	}
	return raw, nil
}

// Texture is a render-target texture on the HAL device.
type Texture struct {
	dev    *Device
	raw    hal.Texture
	width  int
	height int
	label  string

	// pendingClear is applied as the load op of the next pass on this target.
	pendingClear *[4]float32

	released bool
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Resize reallocates the texture storage. Contents are undefined after.
func (t *Texture) Resize(width, height int) error {
	if t.released {
		return fmt.Errorf("wgpudev: texture %q already released", t.label)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", gpu.ErrInvalidDimensions, width, height)
	}
	if width == t.width && height == t.height {
		return nil
	}
	raw, err := t.dev.createRenderTarget(width, height, t.label)
	if err != nil {
		return err
	}
	t.dev.device.DestroyTexture(t.raw)
	t.raw = raw
	t.width, t.height = width, height
	t.pendingClear = nil
	return nil
}

// Release frees the HAL texture. Idempotent.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.dev.device.DestroyTexture(t.raw)
}

// CreateBuffer creates a HAL buffer for vertex or index data.
func (d *Device) CreateBuffer(kind gpu.BufferKind, size int, label string) (gpu.Buffer, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: buffer size %d", gpu.ErrInvalidDimensions, size)
	}

	usage := types.BufferUsageCopyDst
	switch kind {
	case gpu.BufferVertex:
		usage |= types.BufferUsageVertex
	case gpu.BufferIndex:
		usage |= types.BufferUsageIndex
	default:
		return nil, fmt.Errorf("wgpudev: unknown buffer kind %v", kind)
	}

	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpudev: create %s buffer %q: %w", kind, label, err)
	}
	return &Buffer{dev: d, raw: raw, size: size, label: label}, nil
}

// Buffer is a HAL buffer.
type Buffer struct {
	dev      *Device
	raw      hal.Buffer
	size     int
	label    string
	released bool
}

// Upload writes data at the given byte offset through the queue.
func (b *Buffer) Upload(offset int, data []byte) error {
	if b.released {
		return fmt.Errorf("wgpudev: buffer %q already released", b.label)
	}
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("%w: %d bytes at offset %d in %d-byte buffer", gpu.ErrRegionOutOfBounds, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	b.dev.queue.WriteBuffer(b.raw, uint64(offset), data)
	return nil
}

// Release frees the HAL buffer. Idempotent.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dev.device.DestroyBuffer(b.raw)
}
