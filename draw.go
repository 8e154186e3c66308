package boxy

import "fmt"

// DrawRect queues a solid-color rectangle. The quad samples the center
// pixel of the reserved white tile, so solid fills batch together with
// textured quads. Fully transparent colors queue nothing.
func (r *Renderer) DrawRect(rect Rect, c RGBA) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	if c.A == 0 || rect.Empty() {
		return nil
	}

	// One texel in the middle of the white tile. Sampling a single
	// interior pixel avoids bleeding from neighboring texel rows at the
	// tile edge.
	half := float64(r.cfg.TileSize) / 2
	src := Rect{X: half - 0.5, Y: half - 0.5, W: 1, H: 1}
	return r.queueQuad(rect, src, whiteTileIndex, c)
}

// DrawImage queues an image with its top-left corner at pos. Cells of
// uniform color draw as solid rects; fully transparent cells are skipped.
func (r *Renderer) DrawImage(key string, pos Point, tint RGBA) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	info, ok := r.images.get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrImageNotFound, key)
	}
	return r.drawCells(info, pos, tint)
}

// DrawImageRect queues an image scaled into dst.
func (r *Renderer) DrawImageRect(key string, dst Rect, tint RGBA) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	info, ok := r.images.get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrImageNotFound, key)
	}
	if dst.Empty() || info.Width == 0 || info.Height == 0 {
		return nil
	}

	r.SaveTransform()
	r.Translate(dst.X, dst.Y)
	r.ScaleBy(dst.W/float64(info.Width), dst.H/float64(info.Height))
	err := r.drawCells(info, Point{}, tint)
	if rerr := r.RestoreTransform(); err == nil {
		err = rerr
	}
	return err
}

// DrawImageRotated queues an image rotated by angle radians around center,
// with the image centered on that point.
func (r *Renderer) DrawImageRotated(key string, center Point, angle float64, tint RGBA) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state == stateIdle {
		return ErrNoFrame
	}
	info, ok := r.images.get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrImageNotFound, key)
	}

	r.SaveTransform()
	r.Translate(center.X, center.Y)
	r.Rotate(angle)
	r.Translate(-float64(info.Width)/2, -float64(info.Height)/2)
	err := r.drawCells(info, Point{}, tint)
	if rerr := r.RestoreTransform(); err == nil {
		err = rerr
	}
	return err
}

// drawCells queues every cell of a decomposed image at pos in local space.
func (r *Renderer) drawCells(info ImageInfo, pos Point, tint RGBA) error {
	if len(info.Tiles) == 0 {
		// Whole image is one color.
		c := info.OneColor.Modulate(tint)
		return r.DrawRect(Rect{X: pos.X, Y: pos.Y, W: float64(info.Width), H: float64(info.Height)}, c)
	}

	ts := r.cfg.TileSize
	cols, rows := info.grid(ts)
	i := 0
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			ref := info.Tiles[i]
			i++

			// Edge cells cover only the image remainder.
			cw := min(ts, info.Width-tx*ts)
			ch := min(ts, info.Height-ty*ts)
			dst := Rect{
				X: pos.X + float64(tx*ts),
				Y: pos.Y + float64(ty*ts),
				W: float64(cw),
				H: float64(ch),
			}

			switch ref.Kind {
			case TileIndex:
				src := Rect{W: float64(cw), H: float64(ch)}
				if err := r.queueQuad(dst, src, ref.Index, tint); err != nil {
					return err
				}
			case TileColor:
				if ref.Color.A == 0 {
					continue
				}
				if err := r.DrawRect(dst, ref.Color.Modulate(tint)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// queueQuad transforms dst's corners, normalizes src into the tile's UV
// space, and queues one quad sampling the given atlas layer.
func (r *Renderer) queueQuad(dst Rect, src Rect, layer int, tint RGBA) error {
	tl := r.transform.TransformPoint(Point{X: dst.X, Y: dst.Y})
	tr := r.transform.TransformPoint(Point{X: dst.X + dst.W, Y: dst.Y})
	br := r.transform.TransformPoint(Point{X: dst.X + dst.W, Y: dst.Y + dst.H})
	bl := r.transform.TransformPoint(Point{X: dst.X, Y: dst.Y + dst.H})

	pos := [8]float32{
		float32(tl.X), float32(tl.Y),
		float32(tr.X), float32(tr.Y),
		float32(br.X), float32(br.Y),
		float32(bl.X), float32(bl.Y),
	}

	ts := float64(r.cfg.TileSize)
	u0 := float32(src.X / ts)
	v0 := float32(src.Y / ts)
	u1 := float32((src.X + src.W) / ts)
	v1 := float32((src.Y + src.H) / ts)
	l := float32(layer)

	uv := [12]float32{
		u0, v0, l,
		u1, v0, l,
		u1, v1, l,
		u0, v1, l,
	}

	b := tint.bytes()
	col := [16]byte{
		b[0], b[1], b[2], b[3],
		b[0], b[1], b[2], b[3],
		b[0], b[1], b[2], b[3],
		b[0], b[1], b[2], b[3],
	}

	return r.batch.queue(pos, uv, col, r.curState())
}
