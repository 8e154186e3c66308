package boxy

import "fmt"

// BeginFrame opens a frame of the given pixel size. The viewport is
// cleared, mask cursors reset, and per-frame counters restart. A nil
// projection selects the standard top-left-origin orthographic mapping.
//
// Fails while a frame is already open.
func (r *Renderer) BeginFrame(width, height int, projection *Matrix) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state != stateIdle {
		return ErrFrameOpen
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("boxy: frame size %dx%d must be positive", width, height)
	}

	if projection != nil {
		r.projection = *projection
	} else {
		r.projection = Ortho2D(float64(width), float64(height))
	}

	// Mask targets above the sentinel track the frame size. The sentinel
	// stays 1x1.
	if width != r.frameW || height != r.frameH {
		for _, m := range r.masks[1:] {
			if err := m.Resize(width, height); err != nil {
				return fmt.Errorf("boxy: resize mask target: %w", err)
			}
		}
		r.frameW, r.frameH = width, height
	}

	if err := r.dev.SetRenderTarget(nil); err != nil {
		return fmt.Errorf("boxy: bind screen target: %w", err)
	}
	r.dev.SetViewport(width, height)
	r.dev.Clear(0, 0, 0, 0)

	r.writeIndex = 0
	r.readIndex = 0
	r.flushesAtFrameStart = r.batch.flushCount
	r.state = stateFrameOpen
	return nil
}

// EndFrame flushes remaining quads and closes the frame.
//
// Fails while a mask is still being recorded and when mask pushes were not
// matched by pops; the frame stays open so the caller's imbalance is
// visible at its source.
func (r *Renderer) EndFrame() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	if r.state == stateMaskOpen {
		return ErrMaskOpen
	}
	if r.writeIndex != 0 || r.readIndex != 0 {
		return fmt.Errorf("%w: write %d, read %d", ErrUnbalancedMasks, r.writeIndex, r.readIndex)
	}

	if err := r.batch.flush(r.curState()); err != nil {
		return err
	}
	r.state = stateIdle
	return nil
}
