package boxy

import (
	"testing"

	"github.com/idakandrew/boxy/gpu/memdev"
)

func newTestBatch(t *testing.T, dev *memdev.Device, capacity int) (*quadBatch, *drawState) {
	t.Helper()
	b, err := newQuadBatch(dev, capacity)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.close)

	prog, err := dev.CreateProgram(atlasShaderWGSL, "atlas")
	if err != nil {
		t.Fatal(err)
	}
	tex, err := dev.CreateTextureArray(4, 1, "atlas")
	if err != nil {
		t.Fatal(err)
	}
	st := &drawState{
		program:    prog,
		atlas:      tex,
		projection: Identity().float32s(),
	}
	return b, st
}

func testQuad(x float32) ([8]float32, [12]float32, [16]byte) {
	pos := [8]float32{x, 0, x + 1, 0, x + 1, 1, x, 1}
	uv := [12]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	var col [16]byte
	for i := range col {
		col[i] = 0xFF
	}
	return pos, uv, col
}

func TestBatchFlushEmpty(t *testing.T) {
	dev := memdev.New()
	b, st := newTestBatch(t, dev, 4)

	if err := b.flush(st); err != nil {
		t.Fatal(err)
	}
	if len(dev.Draws) != 0 {
		t.Errorf("empty flush produced %d draws, want 0", len(dev.Draws))
	}
	if b.flushCount != 0 {
		t.Errorf("flushCount = %d, want 0", b.flushCount)
	}
}

func TestBatchCapacityFlush(t *testing.T) {
	dev := memdev.New()
	b, st := newTestBatch(t, dev, 4)

	// Queue capacity+1 quads: the fifth must trigger exactly one flush and
	// land as the first quad of the next batch.
	for i := 0; i < 5; i++ {
		pos, uv, col := testQuad(float32(i))
		if err := b.queue(pos, uv, col, st); err != nil {
			t.Fatal(err)
		}
	}

	if len(dev.Draws) != 1 {
		t.Fatalf("draws after capacity overflow = %d, want 1", len(dev.Draws))
	}
	if got := dev.Draws[0].IndexCount; got != 4*6 {
		t.Errorf("flushed index count = %d, want %d", got, 4*6)
	}
	if b.quadCount != 1 {
		t.Errorf("quadCount after capacity flush = %d, want 1", b.quadCount)
	}

	if err := b.flush(st); err != nil {
		t.Fatal(err)
	}
	if len(dev.Draws) != 2 {
		t.Fatalf("draws after final flush = %d, want 2", len(dev.Draws))
	}
	if got := dev.Draws[1].IndexCount; got != 6 {
		t.Errorf("final flush index count = %d, want 6", got)
	}
	if got := dev.Draws[1].Positions[0]; got != 4 {
		t.Errorf("first vertex x of carried quad = %v, want 4", got)
	}
}

func TestBatchIndexPattern(t *testing.T) {
	dev := memdev.New()
	b, st := newTestBatch(t, dev, 4)

	for i := 0; i < 2; i++ {
		pos, uv, col := testQuad(float32(i))
		if err := b.queue(pos, uv, col, st); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.flush(st); err != nil {
		t.Fatal(err)
	}

	want := []uint16{3, 0, 1, 2, 3, 1, 7, 4, 5, 6, 7, 5}
	got := dev.Draws[0].Indices
	if len(got) != len(want) {
		t.Fatalf("index count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indices = %v, want %v", got, want)
		}
	}
}

func TestBatchVertexData(t *testing.T) {
	dev := memdev.New()
	b, st := newTestBatch(t, dev, 4)

	pos, uv, col := testQuad(10)
	if err := b.queue(pos, uv, col, st); err != nil {
		t.Fatal(err)
	}
	if err := b.flush(st); err != nil {
		t.Fatal(err)
	}

	rec := dev.Draws[0]
	if rec.VertexCount != 4 {
		t.Fatalf("vertex count = %d, want 4", rec.VertexCount)
	}
	for i := range pos {
		if rec.Positions[i] != pos[i] {
			t.Fatalf("positions = %v, want %v", rec.Positions, pos)
		}
	}
	for i := range uv {
		if rec.UVs[i] != uv[i] {
			t.Fatalf("uvs = %v, want %v", rec.UVs, uv)
		}
	}
	for i := range col {
		if rec.Colors[i] != col[i] {
			t.Fatalf("colors = %v, want %v", rec.Colors, col)
		}
	}
}
