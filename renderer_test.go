package boxy

import (
	"errors"
	"testing"

	"github.com/idakandrew/boxy/gpu/memdev"
)

func newTestRenderer(t *testing.T, cfg Config) (*Renderer, *memdev.Device) {
	t.Helper()
	dev := memdev.New()
	r, err := New(dev, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)
	return r, dev
}

func TestNewValidation(t *testing.T) {
	t.Run("nil device", func(t *testing.T) {
		if _, err := New(nil, Config{}); !errors.Is(err, ErrNilDevice) {
			t.Errorf("New(nil) error = %v, want ErrNilDevice", err)
		}
	})

	t.Run("batch capacity over index space", func(t *testing.T) {
		_, err := New(memdev.New(), Config{QuadsPerBatch: MaxQuadsPerBatch + 1})
		if !errors.Is(err, ErrBatchTooLarge) {
			t.Errorf("error = %v, want ErrBatchTooLarge", err)
		}
	})

	t.Run("max batch capacity is accepted", func(t *testing.T) {
		r, err := New(memdev.New(), Config{QuadsPerBatch: MaxQuadsPerBatch})
		if err != nil {
			t.Fatal(err)
		}
		r.Close()
	})

	t.Run("defaults", func(t *testing.T) {
		r, _ := newTestRenderer(t, Config{})
		if r.cfg.TileSize != DefaultTileSize {
			t.Errorf("tile size = %d, want %d", r.cfg.TileSize, DefaultTileSize)
		}
		if r.cfg.AtlasLayers != DefaultAtlasLayers {
			t.Errorf("atlas layers = %d, want %d", r.cfg.AtlasLayers, DefaultAtlasLayers)
		}
		if r.cfg.QuadsPerBatch != DefaultQuadsPerBatch {
			t.Errorf("quads per batch = %d, want %d", r.cfg.QuadsPerBatch, DefaultQuadsPerBatch)
		}
	})
}

func TestFrameLifecycle(t *testing.T) {
	t.Run("plain frame", func(t *testing.T) {
		r, dev := newTestRenderer(t, Config{TileSize: 8, AtlasLayers: 2})
		if err := r.BeginFrame(320, 200, nil); err != nil {
			t.Fatal(err)
		}
		if err := r.EndFrame(); err != nil {
			t.Fatal(err)
		}
		if dev.FrameClears != 1 {
			t.Errorf("frame clears = %d, want 1", dev.FrameClears)
		}
	})

	t.Run("nested begin fails", func(t *testing.T) {
		r, _ := newTestRenderer(t, Config{TileSize: 8})
		if err := r.BeginFrame(100, 100, nil); err != nil {
			t.Fatal(err)
		}
		if err := r.BeginFrame(100, 100, nil); !errors.Is(err, ErrFrameOpen) {
			t.Errorf("nested BeginFrame error = %v, want ErrFrameOpen", err)
		}
	})

	t.Run("end without begin fails", func(t *testing.T) {
		r, _ := newTestRenderer(t, Config{TileSize: 8})
		if err := r.EndFrame(); !errors.Is(err, ErrNoFrame) {
			t.Errorf("EndFrame error = %v, want ErrNoFrame", err)
		}
	})

	t.Run("draw without frame fails", func(t *testing.T) {
		r, _ := newTestRenderer(t, Config{TileSize: 8})
		if err := r.DrawRect(R(0, 0, 10, 10), Red); !errors.Is(err, ErrNoFrame) {
			t.Errorf("DrawRect error = %v, want ErrNoFrame", err)
		}
	})

	t.Run("closed renderer refuses calls", func(t *testing.T) {
		r, _ := newTestRenderer(t, Config{TileSize: 8})
		r.Close()
		if err := r.BeginFrame(10, 10, nil); !errors.Is(err, ErrRendererClosed) {
			t.Errorf("BeginFrame after Close error = %v, want ErrRendererClosed", err)
		}
		r.Close() // idempotent
	})
}

func TestTransformStack(t *testing.T) {
	r, _ := newTestRenderer(t, Config{TileSize: 8})

	t.Run("save restore round trip", func(t *testing.T) {
		r.Translate(5, 7)
		before := r.Transform()
		r.SaveTransform()
		r.Rotate(1.3)
		r.ScaleBy(2, 2)
		if err := r.RestoreTransform(); err != nil {
			t.Fatal(err)
		}
		if r.Transform() != before {
			t.Error("restore did not recover saved transform")
		}
	})

	t.Run("restore on empty stack fails", func(t *testing.T) {
		if err := r.RestoreTransform(); !errors.Is(err, ErrTransformStackEmpty) {
			t.Errorf("error = %v, want ErrTransformStackEmpty", err)
		}
	})

	t.Run("reset leaves stack alone", func(t *testing.T) {
		r.SaveTransform()
		r.Translate(1, 1)
		r.ResetTransform()
		if !r.Transform().IsIdentity() {
			t.Error("reset did not produce identity")
		}
		if err := r.RestoreTransform(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("point conversion round trip", func(t *testing.T) {
		r.ResetTransform()
		r.Translate(10, 20)
		r.ScaleBy(2, 2)
		p := Pt(33, -4)
		back := r.ScreenToLocal(r.LocalToScreen(p))
		if !pointsClose(back, p) {
			t.Errorf("round trip moved %+v to %+v", p, back)
		}
	})
}

func TestClearAtlasProtocol(t *testing.T) {
	r, _ := newTestRenderer(t, Config{TileSize: 8, AtlasLayers: 2})
	if err := r.AddImage("x", NewUniformPixmap(4, 4, Red)); err != nil {
		t.Fatal(err)
	}

	if err := r.BeginFrame(100, 100, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.ClearAtlas(); !errors.Is(err, ErrFrameOpen) {
		t.Errorf("ClearAtlas during frame error = %v, want ErrFrameOpen", err)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}

	if err := r.ClearAtlas(); err != nil {
		t.Fatal(err)
	}
	if r.HasImage("x") {
		t.Error("image survived ClearAtlas")
	}
}

func TestStats(t *testing.T) {
	r, _ := newTestRenderer(t, Config{TileSize: 8, AtlasLayers: 2, QuadsPerBatch: 16})

	if err := r.BeginFrame(100, 100, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawRect(R(0, 0, 10, 10), Red); err != nil {
		t.Fatal(err)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}

	s := r.Stats()
	if s.Flushes != 1 {
		t.Errorf("Flushes = %d, want 1", s.Flushes)
	}
	if s.AtlasTaken != 1 {
		t.Errorf("AtlasTaken = %d, want 1", s.AtlasTaken)
	}

	// FrameFlushes resets on the next BeginFrame.
	if err := r.BeginFrame(100, 100, nil); err != nil {
		t.Fatal(err)
	}
	if got := r.Stats().FrameFlushes; got != 0 {
		t.Errorf("FrameFlushes at frame start = %d, want 0", got)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}
}
