package boxy

import (
	"fmt"

	"github.com/idakandrew/boxy/gpu"
)

// whiteTileIndex is the permanently reserved solid-white tile. Solid-color
// quads sample it so they batch together with textured quads.
const whiteTileIndex = 0

// tileSet tracks which atlas tiles are taken, one bit per tile.
type tileSet struct {
	words []uint64
	size  int
	taken int
}

func newTileSet(size int) *tileSet {
	return &tileSet{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

func (s *tileSet) take(i int) {
	if s.isTaken(i) {
		return
	}
	s.words[i/64] |= 1 << (uint(i) % 64)
	s.taken++
}

func (s *tileSet) release(i int) {
	if !s.isTaken(i) {
		return
	}
	s.words[i/64] &^= 1 << (uint(i) % 64)
	s.taken--
}

func (s *tileSet) isTaken(i int) bool {
	if i < 0 || i >= s.size {
		return false
	}
	return s.words[i/64]&(1<<(uint(i)%64)) != 0
}

func (s *tileSet) count() int { return s.taken }

// firstFree returns the lowest free index, or -1 when the set is full.
func (s *tileSet) firstFree() int {
	for w, word := range s.words {
		if word == ^uint64(0) {
			continue
		}
		for b := 0; b < 64; b++ {
			i := w*64 + b
			if i >= s.size {
				return -1
			}
			if word&(1<<uint(b)) == 0 {
				return i
			}
		}
	}
	return -1
}

// grow extends the set to newSize tiles, preserving taken bits.
func (s *tileSet) grow(newSize int) {
	if newSize <= s.size {
		return
	}
	words := make([]uint64, (newSize+63)/64)
	copy(words, s.words)
	s.words = words
	s.size = newSize
}

// reset releases every tile.
func (s *tileSet) reset() {
	for i := range s.words {
		s.words[i] = 0
	}
	s.taken = 0
}

// atlas owns the tile allocator and the GPU texture array behind it.
// Tile 0 is reserved at construction and holds solid white for the
// lifetime of the atlas, including across growth and Clear.
type atlas struct {
	dev      gpu.Device
	tex      gpu.TextureArray
	tiles    *tileSet
	tileSize int

	// beforeGrow runs before the texture array is swapped. The renderer
	// installs its batch flush here: in-flight quads hold layer indices
	// against the old array.
	beforeGrow func() error
}

func newAtlas(dev gpu.Device, tileSize, layers int) (*atlas, error) {
	tex, err := dev.CreateTextureArray(tileSize, layers, "atlas")
	if err != nil {
		return nil, fmt.Errorf("boxy: create atlas: %w", err)
	}

	a := &atlas{
		dev:      dev,
		tex:      tex,
		tiles:    newTileSet(layers),
		tileSize: tileSize,
	}
	a.tiles.take(whiteTileIndex)
	if err := a.seedWhiteTile(); err != nil {
		tex.Release()
		return nil, err
	}
	return a, nil
}

// seedWhiteTile fills the reserved tile with opaque white.
func (a *atlas) seedWhiteTile() error {
	pix := make([]byte, a.tileSize*a.tileSize*4)
	for i := range pix {
		pix[i] = 0xFF
	}
	if err := a.tex.UploadRegion(whiteTileIndex, 0, 0, a.tileSize, a.tileSize, pix); err != nil {
		return fmt.Errorf("boxy: seed white tile: %w", err)
	}
	return nil
}

// allocate returns the lowest free tile index, growing the atlas when full.
func (a *atlas) allocate() (int, error) {
	if i := a.tiles.firstFree(); i >= 0 {
		a.tiles.take(i)
		return i, nil
	}
	if err := a.grow(); err != nil {
		return 0, err
	}
	i := a.tiles.firstFree()
	if i < 0 {
		return 0, fmt.Errorf("boxy: atlas full after grow")
	}
	a.tiles.take(i)
	return i, nil
}

// release frees a tile. The reserved white tile is never released.
func (a *atlas) release(i int) {
	if i == whiteTileIndex {
		return
	}
	a.tiles.release(i)
}

// grow doubles the atlas capacity, migrating every layer's contents to the
// new texture array. Existing tile indices stay valid.
func (a *atlas) grow() error {
	if a.beforeGrow != nil {
		if err := a.beforeGrow(); err != nil {
			return fmt.Errorf("boxy: flush before atlas grow: %w", err)
		}
	}

	oldLayers := a.tex.Layers()
	newLayers := oldLayers * 2

	tex, err := a.dev.CreateTextureArray(a.tileSize, newLayers, "atlas")
	if err != nil {
		return fmt.Errorf("boxy: grow atlas to %d layers: %w", newLayers, err)
	}
	if err := tex.CopyFrom(a.tex, oldLayers); err != nil {
		tex.Release()
		return fmt.Errorf("boxy: migrate atlas contents: %w", err)
	}

	a.tex.Release()
	a.tex = tex
	a.tiles.grow(newLayers)

	if err := a.seedWhiteTile(); err != nil {
		return err
	}

	slogger().Debug("atlas grown", "from", oldLayers, "to", newLayers)
	return nil
}

// clear releases every tile except the reserved white tile and re-seeds it.
func (a *atlas) clear() error {
	a.tiles.reset()
	a.tiles.take(whiteTileIndex)
	return a.seedWhiteTile()
}

// upload writes a pixmap into a tile's top-left corner. The pixmap must
// fit inside one tile.
func (a *atlas) upload(index int, pix *Pixmap) error {
	return a.tex.UploadRegion(index, 0, 0, pix.Width(), pix.Height(), pix.Data())
}

// capacity returns the total number of tiles.
func (a *atlas) capacity() int { return a.tiles.size }

// takenCount returns the number of taken tiles, including the white tile.
func (a *atlas) takenCount() int { return a.tiles.count() }

// readAll reads every layer back as a pixmap, for diagnostics.
func (a *atlas) readAll() ([]*Pixmap, error) {
	out := make([]*Pixmap, a.tex.Layers())
	for i := range out {
		data, err := a.tex.ReadLayer(i)
		if err != nil {
			return nil, fmt.Errorf("boxy: read atlas layer %d: %w", i, err)
		}
		p := NewPixmap(a.tileSize, a.tileSize)
		copy(p.data, data)
		out[i] = p
	}
	return out, nil
}

func (a *atlas) close() {
	if a.tex != nil {
		a.tex.Release()
		a.tex = nil
	}
}
