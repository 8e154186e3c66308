package boxy

// SaveTransform pushes the current transform onto the stack.
func (r *Renderer) SaveTransform() {
	if r.closed {
		return
	}
	r.saved = append(r.saved, r.transform)
}

// RestoreTransform pops the most recently saved transform.
//
// Fails when no transform was saved.
func (r *Renderer) RestoreTransform() error {
	if r.closed {
		return ErrRendererClosed
	}
	if len(r.saved) == 0 {
		return ErrTransformStackEmpty
	}
	r.transform = r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
	return nil
}

// ResetTransform sets the current transform to identity. Saved transforms
// are untouched.
func (r *Renderer) ResetTransform() {
	if r.closed {
		return
	}
	r.transform = Identity()
}

// Transform returns the current transform.
func (r *Renderer) Transform() Matrix {
	return r.transform
}

// Translate moves subsequent drawing by (x, y).
func (r *Renderer) Translate(x, y float64) {
	if r.closed {
		return
	}
	r.transform = r.transform.Translate(x, y)
}

// Rotate rotates subsequent drawing by angle radians.
func (r *Renderer) Rotate(angle float64) {
	if r.closed {
		return
	}
	r.transform = r.transform.Rotate(angle)
}

// ScaleBy scales subsequent drawing by (x, y).
func (r *Renderer) ScaleBy(x, y float64) {
	if r.closed {
		return
	}
	r.transform = r.transform.Scale(x, y)
}

// LocalToScreen maps a point through the current transform.
func (r *Renderer) LocalToScreen(p Point) Point {
	return r.transform.TransformPoint(p)
}

// ScreenToLocal maps a screen point back into the current local space.
func (r *Renderer) ScreenToLocal(p Point) Point {
	return r.transform.Invert().TransformPoint(p)
}
