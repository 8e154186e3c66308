package gpu

import "errors"

// Errors returned by Device implementations.
var (
	// ErrDeviceClosed is returned when using a device after Close.
	ErrDeviceClosed = errors.New("gpu: device is closed")

	// ErrInvalidDimensions is returned for non-positive sizes.
	ErrInvalidDimensions = errors.New("gpu: invalid dimensions")

	// ErrRegionOutOfBounds is returned when an upload region falls outside
	// the target texture.
	ErrRegionOutOfBounds = errors.New("gpu: region out of texture bounds")

	// ErrLayerOutOfRange is returned for a layer index past the array depth.
	ErrLayerOutOfRange = errors.New("gpu: layer index out of range")

	// ErrShaderCompile is returned when shader source fails to compile.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")

	// ErrReadbackUnsupported is returned when a device cannot read pixels
	// back to the CPU.
	ErrReadbackUnsupported = errors.New("gpu: pixel readback not supported")

	// ErrInvalidDrawCall is returned when a draw call is missing required
	// resources or exceeds buffer contents.
	ErrInvalidDrawCall = errors.New("gpu: invalid draw call")
)

// BufferKind selects how a buffer is bound during draws.
type BufferKind int

const (
	// BufferVertex holds per-vertex attribute data.
	BufferVertex BufferKind = iota
	// BufferIndex holds 16-bit triangle indices.
	BufferIndex
)

// String returns the buffer kind name.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Device is the graphics capability the renderer draws through.
//
// A Device owns a drawing context. All calls must come from the goroutine
// that created the device. Close releases every resource the device still
// tracks; using any resource afterwards returns ErrDeviceClosed.
type Device interface {
	// CreateTextureArray creates a square-tiled 2D texture array with the
	// given number of layers. Each layer is tileSize x tileSize RGBA8.
	CreateTextureArray(tileSize, layers int, label string) (TextureArray, error)

	// CreateRenderTexture creates an RGBA8 texture that can be bound as a
	// render target and sampled afterwards.
	CreateRenderTexture(width, height int, label string) (Texture, error)

	// CreateBuffer creates a GPU buffer of the given byte size.
	CreateBuffer(kind BufferKind, size int, label string) (Buffer, error)

	// CreateProgram compiles a WGSL source into a drawable program.
	CreateProgram(wgslSource, label string) (Program, error)

	// SetRenderTarget directs subsequent Clear and DrawIndexed calls at t.
	// A nil target selects the default framebuffer.
	SetRenderTarget(t Texture) error

	// SetViewport sets the pixel viewport for subsequent draws.
	SetViewport(width, height int)

	// Clear fills the current render target with the given color.
	Clear(r, g, b, a float32)

	// DrawIndexed executes one indexed triangle-list draw.
	DrawIndexed(call *DrawCall) error

	// Close releases the device and everything it created. Idempotent.
	Close()
}

// TextureArray is a layered square-tile texture. Layer contents survive
// for the lifetime of the array; growing is done by creating a larger
// array and copying layers across with CopyFrom.
type TextureArray interface {
	// TileSize returns the pixel edge length of each layer.
	TileSize() int

	// Layers returns the number of layers.
	Layers() int

	// UploadRegion writes a w x h block of RGBA8 pixels into one layer at
	// (x, y). len(pix) must be w*h*4.
	UploadRegion(layer, x, y, w, h int, pix []byte) error

	// CopyFrom copies the first n layers of src into this array on the
	// device, without a CPU round trip.
	CopyFrom(src TextureArray, n int) error

	// ReadLayer reads one layer back as tightly packed RGBA8 bytes.
	ReadLayer(layer int) ([]byte, error)

	// Release frees the array. Idempotent.
	Release()
}

// Texture is a single 2D texture usable as a render target and, once
// rendered to, as a sampled mask input.
type Texture interface {
	// Size returns the texture dimensions in pixels.
	Size() (width, height int)

	// Resize reallocates the texture storage. Contents are undefined after.
	Resize(width, height int) error

	// Release frees the texture. Idempotent.
	Release()
}

// Buffer is a GPU buffer for vertex attributes or indices.
type Buffer interface {
	// Upload writes data into the buffer starting at the given byte offset.
	Upload(offset int, data []byte) error

	// Release frees the buffer. Idempotent.
	Release()
}

// Program is a compiled shader program.
type Program interface {
	// HasUniform reports whether the program declares a binding with the
	// given name. Used to decide which optional inputs a draw must supply.
	HasUniform(name string) bool

	// Release frees the program. Idempotent.
	Release()
}

// DrawCall describes one indexed triangle-list draw over the fixed quad
// vertex layout. Positions are 2 x f32 per vertex, UVs 3 x f32 per vertex
// (u, v, array layer), colors 4 x u8 premultiplied per vertex, indices u16.
type DrawCall struct {
	Program    Program
	Projection [16]float32

	// Atlas binds at sampler unit 0.
	Atlas TextureArray
	// Mask binds at sampler unit 1. Nil when the program samples no mask.
	Mask Texture

	Positions Buffer
	UVs       Buffer
	Colors    Buffer
	Indices   Buffer

	// IndexCount indices are consumed, covering VertexCount vertices.
	IndexCount  int
	VertexCount int
}
