package boxy

import (
	"fmt"

	"github.com/idakandrew/boxy/gpu"
)

// The mask stack expresses nested clip regions. Each level is a full-frame
// coverage texture: BeginMask redirects drawing into the next level,
// EndMask returns drawing to the screen with that level bound as the read
// mask, and PopMask steps back out to the enclosing level. Level 0 is the
// reserved always-white sentinel, so depth 0 means "unclipped".

// BeginMask flushes pending quads and redirects subsequent draws into a
// fresh mask level. Draws record coverage there until EndMask.
//
// Fails without an open frame or while another mask is being recorded.
func (r *Renderer) BeginMask() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	if r.state == stateMaskOpen {
		return ErrMaskOpen
	}

	if err := r.batch.flush(r.curState()); err != nil {
		return err
	}

	r.writeIndex++
	if r.writeIndex == len(r.masks) {
		tex, err := r.dev.CreateRenderTexture(r.frameW, r.frameH, fmt.Sprintf("mask-%d", r.writeIndex))
		if err != nil {
			r.writeIndex--
			return fmt.Errorf("boxy: create mask target: %w", err)
		}
		r.masks = append(r.masks, tex)
	}

	if err := r.dev.SetRenderTarget(r.masks[r.writeIndex]); err != nil {
		r.writeIndex--
		return fmt.Errorf("boxy: bind mask target: %w", err)
	}
	r.dev.SetViewport(r.frameW, r.frameH)
	r.dev.Clear(0, 0, 0, 0)

	r.state = stateMaskOpen
	return nil
}

// EndMask finishes recording the current mask level and returns drawing to
// the screen. Subsequent draws are clipped by the recorded coverage.
//
// Fails when no mask is being recorded.
func (r *Renderer) EndMask() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state != stateMaskOpen {
		return ErrNoMask
	}

	if err := r.batch.flush(r.curState()); err != nil {
		return err
	}

	if err := r.dev.SetRenderTarget(nil); err != nil {
		return fmt.Errorf("boxy: bind screen target: %w", err)
	}
	r.dev.SetViewport(r.frameW, r.frameH)

	r.readIndex = r.writeIndex
	r.state = stateFrameOpen
	return nil
}

// PopMask flushes pending quads and steps out to the enclosing mask level.
//
// Fails without an open frame, while a mask is being recorded, and when
// there is no level to pop.
func (r *Renderer) PopMask() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	if r.state == stateMaskOpen {
		return ErrMaskOpen
	}
	if r.writeIndex == 0 {
		return ErrMaskStackEmpty
	}

	if err := r.batch.flush(r.curState()); err != nil {
		return err
	}

	r.writeIndex--
	r.readIndex = r.writeIndex
	return nil
}

// ClearMask resets the current mask level to fully opaque, removing its
// clipping without popping it.
//
// Fails without an open frame.
func (r *Renderer) ClearMask() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	if r.writeIndex == 0 && r.state != stateMaskOpen {
		return ErrMaskStackEmpty
	}

	if err := r.batch.flush(r.curState()); err != nil {
		return err
	}

	target := r.masks[r.writeIndex]
	if err := r.fillTarget(target, 1, 1, 1, 1); err != nil {
		return err
	}

	// Recording continues into the cleared target; otherwise restore the
	// screen target.
	if r.state == stateMaskOpen {
		if err := r.dev.SetRenderTarget(target); err != nil {
			return fmt.Errorf("boxy: bind mask target: %w", err)
		}
		r.dev.SetViewport(r.frameW, r.frameH)
	}
	return nil
}

// fillTarget clears a texture to a constant color and restores the screen
// target.
func (r *Renderer) fillTarget(t gpu.Texture, cr, cg, cb, ca float32) error {
	if err := r.dev.SetRenderTarget(t); err != nil {
		return fmt.Errorf("boxy: bind mask target: %w", err)
	}
	w, h := t.Size()
	r.dev.SetViewport(w, h)
	r.dev.Clear(cr, cg, cb, ca)
	if err := r.dev.SetRenderTarget(nil); err != nil {
		return fmt.Errorf("boxy: bind screen target: %w", err)
	}
	r.dev.SetViewport(r.frameW, r.frameH)
	return nil
}

// MaskDepth returns the number of active mask levels.
func (r *Renderer) MaskDepth() int {
	return r.writeIndex
}
