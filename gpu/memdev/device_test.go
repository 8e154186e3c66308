package memdev

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/idakandrew/boxy/gpu"
)

func TestTextureArrayUpload(t *testing.T) {
	d := New()
	arr, err := d.CreateTextureArray(4, 2, "atlas")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("region lands at offset", func(t *testing.T) {
		block := []byte{
			1, 2, 3, 4, 5, 6, 7, 8,
			9, 10, 11, 12, 13, 14, 15, 16,
		}
		if err := arr.UploadRegion(1, 2, 1, 2, 2, block); err != nil {
			t.Fatal(err)
		}
		pix, err := arr.ReadLayer(1)
		if err != nil {
			t.Fatal(err)
		}
		// Row 1 starts at byte 16; x=2 adds 8 more.
		if pix[24] != 1 || pix[31] != 8 {
			t.Errorf("row 1 bytes = %v, want block row 0 at offset 24", pix[24:32])
		}
		if pix[40] != 9 || pix[47] != 16 {
			t.Errorf("row 2 bytes = %v, want block row 1 at offset 40", pix[40:48])
		}
	})

	t.Run("bounds violations", func(t *testing.T) {
		block := make([]byte, 2*2*4)
		if err := arr.UploadRegion(5, 0, 0, 2, 2, block); !errors.Is(err, gpu.ErrLayerOutOfRange) {
			t.Errorf("bad layer error = %v, want ErrLayerOutOfRange", err)
		}
		if err := arr.UploadRegion(0, 3, 3, 2, 2, block); !errors.Is(err, gpu.ErrRegionOutOfBounds) {
			t.Errorf("overflow error = %v, want ErrRegionOutOfBounds", err)
		}
		if err := arr.UploadRegion(0, 0, 0, 2, 2, block[:4]); !errors.Is(err, gpu.ErrInvalidDimensions) {
			t.Errorf("short pixel slice error = %v, want ErrInvalidDimensions", err)
		}
	})

	t.Run("copy preserves layer bytes", func(t *testing.T) {
		dst, err := d.CreateTextureArray(4, 4, "atlas-grown")
		if err != nil {
			t.Fatal(err)
		}
		if err := dst.CopyFrom(arr, 2); err != nil {
			t.Fatal(err)
		}
		src, _ := arr.ReadLayer(1)
		got, _ := dst.ReadLayer(1)
		for i := range src {
			if got[i] != src[i] {
				t.Fatalf("layer 1 byte %d = %d, want %d", i, got[i], src[i])
			}
		}
	})

	t.Run("copy rejects mismatched tile size", func(t *testing.T) {
		other, err := d.CreateTextureArray(8, 2, "other")
		if err != nil {
			t.Fatal(err)
		}
		if err := other.CopyFrom(arr, 2); !errors.Is(err, gpu.ErrInvalidDimensions) {
			t.Errorf("error = %v, want ErrInvalidDimensions", err)
		}
	})
}

func TestRenderTargetClear(t *testing.T) {
	d := New()
	tex, err := d.CreateRenderTexture(16, 16, "mask")
	if err != nil {
		t.Fatal(err)
	}
	mt := tex.(*Texture)

	if _, ok := mt.Fill(); ok {
		t.Fatal("fresh texture reports a clear")
	}

	if err := d.SetRenderTarget(tex); err != nil {
		t.Fatal(err)
	}
	d.Clear(1, 1, 1, 1)
	if fill, ok := mt.Fill(); !ok || fill != [4]float32{1, 1, 1, 1} {
		t.Errorf("fill = %v, %v, want white clear", fill, ok)
	}
	if d.FrameClears != 0 {
		t.Errorf("texture clear bumped FrameClears to %d", d.FrameClears)
	}

	if err := d.SetRenderTarget(nil); err != nil {
		t.Fatal(err)
	}
	d.Clear(0, 0, 0, 0)
	if d.FrameClears != 1 {
		t.Errorf("FrameClears = %d, want 1", d.FrameClears)
	}

	if err := tex.Resize(32, 32); err != nil {
		t.Fatal(err)
	}
	if _, ok := mt.Fill(); ok {
		t.Error("resize kept the stale clear")
	}
	if w, h := tex.Size(); w != 32 || h != 32 {
		t.Errorf("size after resize = %dx%d, want 32x32", w, h)
	}
}

func TestDrawValidation(t *testing.T) {
	d := New()
	prog, err := d.CreateProgram("fn vs_main() {} fn fs_main() {}", "p")
	if err != nil {
		t.Fatal(err)
	}
	atlas, err := d.CreateTextureArray(4, 1, "a")
	if err != nil {
		t.Fatal(err)
	}

	newBuf := func(kind gpu.BufferKind, data []byte) gpu.Buffer {
		b, err := d.CreateBuffer(kind, len(data), "b")
		if err != nil {
			t.Fatal(err)
		}
		if err := b.Upload(0, data); err != nil {
			t.Fatal(err)
		}
		return b
	}

	floats := func(vals ...float32) []byte {
		out := make([]byte, len(vals)*4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
		return out
	}

	call := func() *gpu.DrawCall {
		return &gpu.DrawCall{
			Program:     prog,
			Atlas:       atlas,
			Positions:   newBuf(gpu.BufferVertex, floats(0, 0, 1, 0, 1, 1, 0, 1)),
			UVs:         newBuf(gpu.BufferVertex, floats(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0)),
			Colors:      newBuf(gpu.BufferVertex, make([]byte, 16)),
			Indices:     newBuf(gpu.BufferIndex, []byte{3, 0, 0, 0, 1, 0, 2, 0, 3, 0, 1, 0}),
			IndexCount:  6,
			VertexCount: 4,
		}
	}

	t.Run("valid call is recorded", func(t *testing.T) {
		if err := d.DrawIndexed(call()); err != nil {
			t.Fatal(err)
		}
		if len(d.Draws) != 1 {
			t.Fatalf("draws = %d, want 1", len(d.Draws))
		}
		rec := d.Draws[0]
		if rec.Positions[2] != 1 || rec.Indices[0] != 3 {
			t.Errorf("decoded data mismatch: pos=%v idx=%v", rec.Positions, rec.Indices)
		}
		d.Reset()
	})

	t.Run("missing bindings", func(t *testing.T) {
		c := call()
		c.Program = nil
		if err := d.DrawIndexed(c); !errors.Is(err, gpu.ErrInvalidDrawCall) {
			t.Errorf("nil program error = %v, want ErrInvalidDrawCall", err)
		}

		c = call()
		c.Atlas = nil
		if err := d.DrawIndexed(c); !errors.Is(err, gpu.ErrInvalidDrawCall) {
			t.Errorf("nil atlas error = %v, want ErrInvalidDrawCall", err)
		}
	})

	t.Run("index past vertex count", func(t *testing.T) {
		c := call()
		c.Indices = newBuf(gpu.BufferIndex, []byte{9, 0, 0, 0, 1, 0, 2, 0, 3, 0, 1, 0})
		if err := d.DrawIndexed(c); !errors.Is(err, gpu.ErrInvalidDrawCall) {
			t.Errorf("out-of-range index error = %v, want ErrInvalidDrawCall", err)
		}
	})

	t.Run("undersized buffer", func(t *testing.T) {
		c := call()
		c.Positions = newBuf(gpu.BufferVertex, floats(0, 0))
		if err := d.DrawIndexed(c); !errors.Is(err, gpu.ErrInvalidDrawCall) {
			t.Errorf("short buffer error = %v, want ErrInvalidDrawCall", err)
		}
	})
}

func TestProgramHasUniform(t *testing.T) {
	d := New()
	prog, err := d.CreateProgram("@group(0) @binding(2) var maskTex: texture_2d<f32>;", "p")
	if err != nil {
		t.Fatal(err)
	}

	if !prog.HasUniform("maskTex") {
		t.Error("declared binding not found")
	}
	if prog.HasUniform("mask") {
		t.Error("partial identifier matched")
	}
	if prog.HasUniform("maskTexture") {
		t.Error("longer identifier matched")
	}

	if _, err := d.CreateProgram("   ", "empty"); !errors.Is(err, gpu.ErrShaderCompile) {
		t.Errorf("empty source error = %v, want ErrShaderCompile", err)
	}
}

func TestDeviceClosed(t *testing.T) {
	d := New()
	d.Close()

	if _, err := d.CreateTextureArray(4, 1, "a"); !errors.Is(err, gpu.ErrDeviceClosed) {
		t.Errorf("CreateTextureArray error = %v, want ErrDeviceClosed", err)
	}
	if _, err := d.CreateBuffer(gpu.BufferVertex, 4, "b"); !errors.Is(err, gpu.ErrDeviceClosed) {
		t.Errorf("CreateBuffer error = %v, want ErrDeviceClosed", err)
	}
	if err := d.DrawIndexed(&gpu.DrawCall{}); !errors.Is(err, gpu.ErrDeviceClosed) {
		t.Errorf("DrawIndexed error = %v, want ErrDeviceClosed", err)
	}
	d.Close() // idempotent
}
