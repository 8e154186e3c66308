package boxy

import (
	"testing"

	"github.com/idakandrew/boxy/gpu/memdev"
)

func TestTileSet(t *testing.T) {
	t.Run("take and release round trip", func(t *testing.T) {
		s := newTileSet(130)
		for i := 0; i < 130; i++ {
			s.take(i)
		}
		if s.count() != 130 {
			t.Fatalf("count after taking all = %d, want 130", s.count())
		}
		if s.firstFree() != -1 {
			t.Fatalf("firstFree on full set = %d, want -1", s.firstFree())
		}
		for i := 0; i < 130; i++ {
			s.release(i)
		}
		if s.count() != 0 {
			t.Errorf("count after releasing all = %d, want 0", s.count())
		}
	})

	t.Run("lowest free index wins", func(t *testing.T) {
		s := newTileSet(8)
		s.take(0)
		s.take(1)
		s.take(2)
		s.release(1)
		if got := s.firstFree(); got != 1 {
			t.Errorf("firstFree() = %d, want 1", got)
		}
	})

	t.Run("double take is idempotent", func(t *testing.T) {
		s := newTileSet(4)
		s.take(2)
		s.take(2)
		if s.count() != 1 {
			t.Errorf("count after double take = %d, want 1", s.count())
		}
		s.release(2)
		s.release(2)
		if s.count() != 0 {
			t.Errorf("count after double release = %d, want 0", s.count())
		}
	})

	t.Run("grow preserves taken bits", func(t *testing.T) {
		s := newTileSet(3)
		s.take(0)
		s.take(2)
		s.grow(64)
		if !s.isTaken(0) || !s.isTaken(2) || s.isTaken(1) {
			t.Error("grow changed taken bits")
		}
		if got := s.firstFree(); got != 1 {
			t.Errorf("firstFree after grow = %d, want 1", got)
		}
	})
}

func whiteBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xFF
	}
	return b
}

func TestAtlasWhiteTileReserved(t *testing.T) {
	dev := memdev.New()
	a, err := newAtlas(dev, 16, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()

	if a.takenCount() != 1 {
		t.Fatalf("fresh atlas taken = %d, want 1 (white tile)", a.takenCount())
	}

	data, err := a.tex.ReadLayer(whiteTileIndex)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range data {
		if b != 0xFF {
			t.Fatalf("white tile byte %d = %#x, want 0xFF", i, b)
		}
	}

	// Releasing the white tile must be refused.
	a.release(whiteTileIndex)
	if a.takenCount() != 1 {
		t.Error("white tile was released")
	}

	idx, err := a.allocate()
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("first allocation = %d, want 1", idx)
	}
}

func TestAtlasGrowPreservesContent(t *testing.T) {
	dev := memdev.New()
	a, err := newAtlas(dev, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()

	idx, err := a.allocate()
	if err != nil {
		t.Fatal(err)
	}
	pix := NewUniformPixmap(4, 4, Blue)
	if err := a.upload(idx, pix); err != nil {
		t.Fatal(err)
	}
	before, err := a.tex.ReadLayer(idx)
	if err != nil {
		t.Fatal(err)
	}

	// Atlas is full (white + idx): next allocation grows it.
	grown, err := a.allocate()
	if err != nil {
		t.Fatal(err)
	}
	if grown != 2 {
		t.Errorf("post-grow allocation = %d, want 2", grown)
	}
	if a.capacity() != 4 {
		t.Errorf("capacity after grow = %d, want 4", a.capacity())
	}

	after, err := a.tex.ReadLayer(idx)
	if err != nil {
		t.Fatal(err)
	}
	if !equalBytes(before, after) {
		t.Error("grow did not preserve layer contents")
	}

	white, err := a.tex.ReadLayer(whiteTileIndex)
	if err != nil {
		t.Fatal(err)
	}
	if !equalBytes(white, whiteBytes(4*4*4)) {
		t.Error("white tile not re-seeded after grow")
	}
}

func TestAtlasGrowFlushesFirst(t *testing.T) {
	dev := memdev.New()
	a, err := newAtlas(dev, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()

	flushed := 0
	a.beforeGrow = func() error {
		flushed++
		return nil
	}

	if _, err := a.allocate(); err != nil {
		t.Fatal(err)
	}
	if flushed != 1 {
		t.Errorf("beforeGrow ran %d times, want 1", flushed)
	}
}

func TestAtlasClear(t *testing.T) {
	dev := memdev.New()
	a, err := newAtlas(dev, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()

	for i := 0; i < 3; i++ {
		if _, err := a.allocate(); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.clear(); err != nil {
		t.Fatal(err)
	}
	if a.takenCount() != 1 {
		t.Errorf("taken after clear = %d, want 1", a.takenCount())
	}
	white, err := a.tex.ReadLayer(whiteTileIndex)
	if err != nil {
		t.Fatal(err)
	}
	if !equalBytes(white, whiteBytes(4*4*4)) {
		t.Error("white tile not re-seeded after clear")
	}
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
