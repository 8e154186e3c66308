package boxy

import "errors"

// Protocol and lifecycle errors. State violations never repair themselves;
// they are reported so the caller's sequencing bug stays visible.
var (
	// ErrRendererClosed is returned when using a renderer after Close.
	ErrRendererClosed = errors.New("boxy: renderer is closed")

	// ErrNilDevice is returned by New when the device is nil.
	ErrNilDevice = errors.New("boxy: device is nil")

	// ErrNilPixmap is returned when registering a nil or empty pixmap.
	ErrNilPixmap = errors.New("boxy: pixmap is nil or empty")

	// ErrBatchTooLarge is returned when the configured batch capacity would
	// overflow 16-bit vertex indices.
	ErrBatchTooLarge = errors.New("boxy: quads per batch exceeds 16-bit index capacity")

	// ErrFrameOpen is returned by BeginFrame while a frame is already open.
	ErrFrameOpen = errors.New("boxy: a frame is already open")

	// ErrNoFrame is returned by operations that require an open frame.
	ErrNoFrame = errors.New("boxy: no frame is open")

	// ErrMaskOpen is returned when an operation is illegal while a mask is
	// being recorded.
	ErrMaskOpen = errors.New("boxy: a mask is being recorded")

	// ErrNoMask is returned by EndMask when no mask is being recorded.
	ErrNoMask = errors.New("boxy: no mask is being recorded")

	// ErrMaskStackEmpty is returned by PopMask with no active mask levels.
	ErrMaskStackEmpty = errors.New("boxy: mask stack is empty")

	// ErrUnbalancedMasks is returned by EndFrame when mask pushes were not
	// matched by pops before the frame closed.
	ErrUnbalancedMasks = errors.New("boxy: mask stack not balanced at frame end")

	// ErrTransformStackEmpty is returned by RestoreTransform without a
	// matching SaveTransform.
	ErrTransformStackEmpty = errors.New("boxy: transform stack is empty")

	// ErrImageNotFound is returned when drawing an unregistered image key.
	ErrImageNotFound = errors.New("boxy: image key is not registered")
)
