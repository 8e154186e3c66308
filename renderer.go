package boxy

import (
	"fmt"

	"github.com/idakandrew/boxy/gpu"
)

// frameState is the renderer's position in the frame lifecycle.
type frameState uint8

const (
	// stateIdle means no frame is open.
	stateIdle frameState = iota
	// stateFrameOpen means a frame is open and draws target the screen.
	stateFrameOpen
	// stateMaskOpen means a frame is open and draws record mask coverage.
	stateMaskOpen
)

// String returns the state name.
func (s frameState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFrameOpen:
		return "frame-open"
	case stateMaskOpen:
		return "mask-open"
	default:
		return "unknown"
	}
}

// Stats holds per-renderer counters. FrameFlushes resets on BeginFrame.
type Stats struct {
	// Flushes is the total number of non-empty batch flushes.
	Flushes int
	// FrameFlushes is the number of flushes in the current frame.
	FrameFlushes int
	// Images is the number of registered images.
	Images int
	// AtlasCapacity is the atlas size in tiles.
	AtlasCapacity int
	// AtlasTaken is the number of taken tiles, including the white tile.
	AtlasTaken int
}

// Renderer is a 2D sprite renderer over a tiled texture atlas. It is not
// safe for concurrent use; all calls must come from the goroutine owning
// the device context.
type Renderer struct {
	dev gpu.Device
	cfg Config

	atlas  *atlas
	images *imageRegistry
	batch  *quadBatch

	screenProg gpu.Program
	maskProg   gpu.Program

	transform Matrix
	saved     []Matrix

	projection Matrix
	frameW     int
	frameH     int
	state      frameState

	// masks[0] is the reserved always-white sentinel bound while no mask
	// level is active. Targets above it are created lazily per level.
	masks      []gpu.Texture
	writeIndex int
	readIndex  int

	flushesAtFrameStart int

	closed bool
}

// New creates a renderer on the given device. The device stays owned by
// the caller; Close releases only what the renderer created.
func New(dev gpu.Device, cfg Config) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		dev:       dev,
		cfg:       cfg,
		transform: Identity(),
	}

	var err error
	if r.atlas, err = newAtlas(dev, cfg.TileSize, cfg.AtlasLayers); err != nil {
		return nil, err
	}
	r.images = newImageRegistry(r.atlas)

	if r.batch, err = newQuadBatch(dev, cfg.QuadsPerBatch); err != nil {
		r.atlas.close()
		return nil, err
	}
	r.atlas.beforeGrow = func() error {
		return r.batch.flush(r.curState())
	}

	if r.screenProg, err = dev.CreateProgram(atlasShaderWGSL, "atlas"); err != nil {
		r.teardown()
		return nil, fmt.Errorf("boxy: compile atlas program: %w", err)
	}
	if r.maskProg, err = dev.CreateProgram(maskShaderWGSL, "mask"); err != nil {
		r.teardown()
		return nil, fmt.Errorf("boxy: compile mask program: %w", err)
	}

	if err := r.createMaskSentinel(); err != nil {
		r.teardown()
		return nil, err
	}

	slogger().Debug("renderer created",
		"tileSize", cfg.TileSize,
		"atlasLayers", cfg.AtlasLayers,
		"quadsPerBatch", cfg.QuadsPerBatch)
	return r, nil
}

// createMaskSentinel builds the 1x1 opaque-white texture at mask index 0.
// With it bound, masked sampling is a no-op for unmasked draws.
func (r *Renderer) createMaskSentinel() error {
	sentinel, err := r.dev.CreateRenderTexture(1, 1, "mask-sentinel")
	if err != nil {
		return fmt.Errorf("boxy: create mask sentinel: %w", err)
	}
	if err := r.dev.SetRenderTarget(sentinel); err != nil {
		sentinel.Release()
		return fmt.Errorf("boxy: clear mask sentinel: %w", err)
	}
	r.dev.SetViewport(1, 1)
	r.dev.Clear(1, 1, 1, 1)
	if err := r.dev.SetRenderTarget(nil); err != nil {
		sentinel.Release()
		return fmt.Errorf("boxy: restore render target: %w", err)
	}
	r.masks = []gpu.Texture{sentinel}
	return nil
}

// curState returns the batch state for the renderer's current mode: the
// mask program while recording a mask, otherwise the screen program with
// the current mask level bound for reading.
func (r *Renderer) curState() *drawState {
	st := &drawState{
		atlas:      r.atlas.tex,
		projection: r.projection.float32s(),
	}
	if r.state == stateMaskOpen {
		st.program = r.maskProg
		return st
	}
	st.program = r.screenProg
	if st.program.HasUniform(maskUniformName) {
		st.mask = r.masks[r.readIndex]
	}
	return st
}

// Close releases everything the renderer created. Idempotent.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.teardown()
}

func (r *Renderer) teardown() {
	for _, m := range r.masks {
		if m != nil {
			m.Release()
		}
	}
	r.masks = nil
	if r.maskProg != nil {
		r.maskProg.Release()
		r.maskProg = nil
	}
	if r.screenProg != nil {
		r.screenProg.Release()
		r.screenProg = nil
	}
	if r.batch != nil {
		r.batch.close()
		r.batch = nil
	}
	if r.atlas != nil {
		r.atlas.close()
		r.atlas = nil
	}
}

// AddImage decomposes pix into atlas tiles and registers it under key.
// Registering an existing key replaces it. Uniform-color regions consume
// no atlas storage.
func (r *Renderer) AddImage(key string, pix *Pixmap) error {
	if r.closed {
		return ErrRendererClosed
	}
	if pix == nil || pix.Width() <= 0 || pix.Height() <= 0 {
		return ErrNilPixmap
	}
	return r.images.add(key, pix)
}

// RemoveImage unregisters key and frees its tiles. Unknown keys are a no-op.
func (r *Renderer) RemoveImage(key string) {
	if r.closed {
		return
	}
	r.images.remove(key)
}

// HasImage reports whether key is registered.
func (r *Renderer) HasImage(key string) bool {
	return !r.closed && r.images.contains(key)
}

// ImageInfo returns the registered decomposition for key.
func (r *Renderer) ImageInfo(key string) (ImageInfo, bool) {
	if r.closed {
		return ImageInfo{}, false
	}
	return r.images.get(key)
}

// ClearAtlas unregisters every image and resets the atlas to just the
// white tile. Fails while a frame is open: queued quads reference tiles.
func (r *Renderer) ClearAtlas() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state != stateIdle {
		return ErrFrameOpen
	}
	return r.images.clear()
}

// ReadAtlas reads every atlas layer back as a pixmap, for diagnostics.
func (r *Renderer) ReadAtlas() ([]*Pixmap, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	return r.atlas.readAll()
}

// Stats returns current renderer counters.
func (r *Renderer) Stats() Stats {
	if r.closed {
		return Stats{}
	}
	return Stats{
		Flushes:       r.batch.flushCount,
		FrameFlushes:  r.batch.flushCount - r.flushesAtFrameStart,
		Images:        r.images.len(),
		AtlasCapacity: r.atlas.capacity(),
		AtlasTaken:    r.atlas.takenCount(),
	}
}
