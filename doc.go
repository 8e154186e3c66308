// Package boxy is a 2D sprite renderer built around a tiled texture atlas.
//
// Images are registered once under a string key. Registration slices the
// image into fixed-size tiles, uploads non-uniform tiles into a growable
// GPU texture array, and collapses uniform-color tiles into color references
// that consume no texture storage. Draw calls accumulate into a quad batch
// that flushes to the device when full, when render state changes, and at
// frame end.
//
// A frame is bracketed by BeginFrame and EndFrame. Within a frame, nested
// clip regions are expressed through the mask stack (BeginMask, EndMask,
// PopMask), and geometry is positioned through the transform stack
// (SaveTransform, Translate, Rotate, ScaleBy, RestoreTransform).
//
// Basic usage:
//
//	dev, err := gpu.Default()
//	if err != nil {
//		return err
//	}
//	r, err := boxy.New(dev, boxy.Config{})
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	if err := r.AddImage("hero", pixmap); err != nil {
//		return err
//	}
//
//	r.BeginFrame(800, 600, nil)
//	r.DrawImage("hero", boxy.Pt(100, 100), boxy.White)
//	r.EndFrame()
//
// A Renderer is single-threaded: all calls must come from the goroutine
// that owns the device context.
package boxy
