// Package memdev provides an in-memory gpu.Device for headless use and
// tests. Resources carry full CPU-side semantics: texture arrays hold real
// pixel storage, uploads and layer copies move bytes, and readback returns
// them. Draw calls are not rasterized; each one is recorded with its
// decoded vertex data so tests can assert on what was submitted.
package memdev

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/idakandrew/boxy/gpu"
)

func init() {
	gpu.Register(gpu.DeviceMem, func() (gpu.Device, error) {
		return New(), nil
	})
}

// Device is an in-memory gpu.Device.
type Device struct {
	closed bool

	target    *Texture // nil means the default framebuffer
	viewportW int
	viewportH int

	// FrameClears counts Clear calls against the default framebuffer.
	FrameClears int
	// LastClear is the color of the most recent Clear, any target.
	LastClear [4]float32

	// Draws records every DrawIndexed call in submission order.
	Draws []DrawRecord
}

// DrawRecord is one recorded DrawIndexed call with its vertex data decoded
// from the bound buffers at submission time.
type DrawRecord struct {
	ProgramLabel string
	Projection   [16]float32
	HasMask      bool
	MaskW, MaskH int
	ToScreen     bool // true when the draw targeted the default framebuffer
	IndexCount   int
	VertexCount  int

	Positions []float32 // 2 per vertex
	UVs       []float32 // 3 per vertex: u, v, layer
	Colors    []byte    // 4 per vertex, premultiplied
	Indices   []uint16
}

// New creates an in-memory device.
func New() *Device {
	return &Device{}
}

// Quads returns the total number of quads across all recorded draws,
// assuming the fixed 6-indices-per-quad layout.
func (d *Device) Quads() int {
	n := 0
	for _, r := range d.Draws {
		n += r.IndexCount / 6
	}
	return n
}

// Reset clears the recorded draw log and counters.
func (d *Device) Reset() {
	d.Draws = nil
	d.FrameClears = 0
}

// CreateTextureArray creates a layered tile texture with real pixel storage.
func (d *Device) CreateTextureArray(tileSize, layers int, label string) (gpu.TextureArray, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if tileSize <= 0 || layers <= 0 {
		return nil, fmt.Errorf("%w: %dx%d tiles, %d layers", gpu.ErrInvalidDimensions, tileSize, tileSize, layers)
	}
	pix := make([][]byte, layers)
	for i := range pix {
		pix[i] = make([]byte, tileSize*tileSize*4)
	}
	return &TextureArray{dev: d, tileSize: tileSize, pix: pix, label: label}, nil
}

// CreateRenderTexture creates a render-target texture.
func (d *Device) CreateRenderTexture(width, height int, label string) (gpu.Texture, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", gpu.ErrInvalidDimensions, width, height)
	}
	return &Texture{dev: d, width: width, height: height, label: label}, nil
}

// CreateBuffer creates a byte-backed buffer.
func (d *Device) CreateBuffer(kind gpu.BufferKind, size int, label string) (gpu.Buffer, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: buffer size %d", gpu.ErrInvalidDimensions, size)
	}
	return &Buffer{dev: d, kind: kind, data: make([]byte, size), label: label}, nil
}

// CreateProgram records the WGSL source. HasUniform answers by scanning the
// source for the binding name.
func (d *Device) CreateProgram(wgslSource, label string) (gpu.Program, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if strings.TrimSpace(wgslSource) == "" {
		return nil, fmt.Errorf("%w: empty source for %q", gpu.ErrShaderCompile, label)
	}
	return &Program{source: wgslSource, label: label}, nil
}

// SetRenderTarget selects the texture subsequent Clear/DrawIndexed calls hit.
func (d *Device) SetRenderTarget(t gpu.Texture) error {
	if d.closed {
		return gpu.ErrDeviceClosed
	}
	if t == nil {
		d.target = nil
		return nil
	}
	mt, ok := t.(*Texture)
	if !ok {
		return fmt.Errorf("memdev: foreign texture %T", t)
	}
	if mt.released {
		return fmt.Errorf("memdev: render target %q already released", mt.label)
	}
	d.target = mt
	return nil
}

// SetViewport sets the pixel viewport.
func (d *Device) SetViewport(width, height int) {
	d.viewportW = width
	d.viewportH = height
}

// Clear fills the current render target with the given color.
func (d *Device) Clear(r, g, b, a float32) {
	if d.closed {
		return
	}
	d.LastClear = [4]float32{r, g, b, a}
	if d.target == nil {
		d.FrameClears++
		return
	}
	d.target.fill = [4]float32{r, g, b, a}
	d.target.cleared = true
}

// DrawIndexed validates the call and records it with decoded vertex data.
func (d *Device) DrawIndexed(call *gpu.DrawCall) error {
	if d.closed {
		return gpu.ErrDeviceClosed
	}
	if call == nil || call.Program == nil {
		return fmt.Errorf("%w: missing program", gpu.ErrInvalidDrawCall)
	}
	if call.Atlas == nil {
		return fmt.Errorf("%w: missing atlas binding", gpu.ErrInvalidDrawCall)
	}
	if call.IndexCount <= 0 || call.VertexCount <= 0 {
		return fmt.Errorf("%w: index count %d, vertex count %d", gpu.ErrInvalidDrawCall, call.IndexCount, call.VertexCount)
	}

	prog, ok := call.Program.(*Program)
	if !ok {
		return fmt.Errorf("%w: foreign program %T", gpu.ErrInvalidDrawCall, call.Program)
	}
	rec := DrawRecord{
		ProgramLabel: prog.label,
		Projection:   call.Projection,
		HasMask:      call.Mask != nil,
		ToScreen:     d.target == nil,
		IndexCount:   call.IndexCount,
		VertexCount:  call.VertexCount,
	}
	if mt, ok := call.Mask.(*Texture); ok {
		rec.MaskW, rec.MaskH = mt.width, mt.height
	}

	var err error
	if rec.Positions, err = readFloats(call.Positions, call.VertexCount*2); err != nil {
		return fmt.Errorf("%w: positions: %v", gpu.ErrInvalidDrawCall, err)
	}
	if rec.UVs, err = readFloats(call.UVs, call.VertexCount*3); err != nil {
		return fmt.Errorf("%w: uvs: %v", gpu.ErrInvalidDrawCall, err)
	}
	if rec.Colors, err = readBytes(call.Colors, call.VertexCount*4); err != nil {
		return fmt.Errorf("%w: colors: %v", gpu.ErrInvalidDrawCall, err)
	}
	if rec.Indices, err = readIndices(call.Indices, call.IndexCount); err != nil {
		return fmt.Errorf("%w: indices: %v", gpu.ErrInvalidDrawCall, err)
	}
	for _, idx := range rec.Indices {
		if int(idx) >= call.VertexCount {
			return fmt.Errorf("%w: index %d past vertex count %d", gpu.ErrInvalidDrawCall, idx, call.VertexCount)
		}
	}

	d.Draws = append(d.Draws, rec)
	return nil
}

// Close releases the device. Idempotent.
func (d *Device) Close() {
	d.closed = true
	d.target = nil
}

func readBytes(b gpu.Buffer, n int) ([]byte, error) {
	mb, ok := b.(*Buffer)
	if !ok || mb == nil {
		return nil, fmt.Errorf("missing buffer")
	}
	if n > len(mb.data) {
		return nil, fmt.Errorf("need %d bytes, buffer holds %d", n, len(mb.data))
	}
	out := make([]byte, n)
	copy(out, mb.data[:n])
	return out, nil
}

func readFloats(b gpu.Buffer, n int) ([]float32, error) {
	raw, err := readBytes(b, n*4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func readIndices(b gpu.Buffer, n int) ([]uint16, error) {
	raw, err := readBytes(b, n*2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return out, nil
}
