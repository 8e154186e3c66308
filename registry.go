package boxy

import "fmt"

// TileKind discriminates how an image cell is stored.
type TileKind uint8

const (
	// TileIndex means the cell's pixels live in an atlas tile.
	TileIndex TileKind = iota
	// TileColor means the cell is one uniform color and holds no pixels.
	TileColor
)

// String returns the tile kind name.
func (k TileKind) String() string {
	switch k {
	case TileIndex:
		return "index"
	case TileColor:
		return "color"
	default:
		return "unknown"
	}
}

// TileRef is one cell of a registered image's tile grid.
type TileRef struct {
	Kind TileKind

	// Index is the atlas tile holding the cell. Valid when Kind is TileIndex.
	Index int

	// Color is the cell's uniform color. Valid when Kind is TileColor.
	Color RGBA
}

// ImageInfo describes a registered image. Tiles is the row-major cell grid,
// ceil(W/tileSize) columns by ceil(H/tileSize) rows. An image whose every
// pixel is one color stores no cells at all; OneColor holds that color and
// Tiles is empty.
type ImageInfo struct {
	Width  int
	Height int

	Tiles    []TileRef
	OneColor RGBA
}

// grid returns the cell grid dimensions for the given tile size.
func (info ImageInfo) grid(tileSize int) (cols, rows int) {
	return (info.Width + tileSize - 1) / tileSize, (info.Height + tileSize - 1) / tileSize
}

// imageRegistry maps keys to decomposed images over a shared atlas.
type imageRegistry struct {
	atlas  *atlas
	images map[string]ImageInfo
}

func newImageRegistry(a *atlas) *imageRegistry {
	return &imageRegistry{
		atlas:  a,
		images: make(map[string]ImageInfo),
	}
}

// add decomposes pix into tile cells and registers it under key. A key
// already in use is replaced; its old tiles are released first.
func (r *imageRegistry) add(key string, pix *Pixmap) error {
	if prev, ok := r.images[key]; ok {
		r.releaseTiles(prev)
		delete(r.images, key)
	}

	info := ImageInfo{Width: pix.Width(), Height: pix.Height()}

	if c, ok := pix.UniformColor(); ok {
		info.OneColor = c
		r.images[key] = info
		return nil
	}

	ts := r.atlas.tileSize
	cols, rows := info.grid(ts)
	info.Tiles = make([]TileRef, 0, cols*rows)

	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			cell := pix.Crop(tx*ts, ty*ts, ts, ts)
			if c, ok := cell.UniformColor(); ok {
				info.Tiles = append(info.Tiles, TileRef{Kind: TileColor, Color: c})
				continue
			}

			index, err := r.atlas.allocate()
			if err != nil {
				r.releaseTiles(info)
				return fmt.Errorf("boxy: register %q: %w", key, err)
			}
			if err := r.atlas.upload(index, cell); err != nil {
				r.atlas.release(index)
				r.releaseTiles(info)
				return fmt.Errorf("boxy: register %q: %w", key, err)
			}
			info.Tiles = append(info.Tiles, TileRef{Kind: TileIndex, Index: index})
		}
	}

	r.images[key] = info
	return nil
}

// remove unregisters key and releases its tiles. Unknown keys are a no-op.
func (r *imageRegistry) remove(key string) {
	info, ok := r.images[key]
	if !ok {
		return
	}
	r.releaseTiles(info)
	delete(r.images, key)
}

// get returns the registered info for key.
func (r *imageRegistry) get(key string) (ImageInfo, bool) {
	info, ok := r.images[key]
	return info, ok
}

// contains reports whether key is registered.
func (r *imageRegistry) contains(key string) bool {
	_, ok := r.images[key]
	return ok
}

// len returns the number of registered images.
func (r *imageRegistry) len() int { return len(r.images) }

// clear unregisters everything and resets the atlas.
func (r *imageRegistry) clear() error {
	r.images = make(map[string]ImageInfo)
	return r.atlas.clear()
}

func (r *imageRegistry) releaseTiles(info ImageInfo) {
	for _, ref := range info.Tiles {
		if ref.Kind == TileIndex {
			r.atlas.release(ref.Index)
		}
	}
}
