package boxy

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/idakandrew/boxy/gpu"
)

// quadBatch accumulates quads into four parallel vertex streams and flushes
// them as one indexed draw. The index buffer is precomputed at construction
// and never changes: quad q occupies vertices q*4..q*4+3, triangulated as
// [3,0,1, 2,3,1] relative to the quad base.
type quadBatch struct {
	dev      gpu.Device
	capacity int

	quadCount int

	positions []float32 // 2 per vertex
	uvs       []float32 // 3 per vertex: u, v, layer
	colors    []byte    // 4 per vertex, premultiplied

	posBuf   gpu.Buffer
	uvBuf    gpu.Buffer
	colorBuf gpu.Buffer
	indexBuf gpu.Buffer

	scratch []byte

	// flushCount is the number of non-empty flushes since creation.
	flushCount int
}

// drawState is the render state a flush binds: which program, which atlas
// array, which mask, and the frame projection. Any change of state must
// flush before the next quad is queued.
type drawState struct {
	program    gpu.Program
	atlas      gpu.TextureArray
	mask       gpu.Texture
	projection [16]float32
}

func newQuadBatch(dev gpu.Device, capacity int) (*quadBatch, error) {
	b := &quadBatch{
		dev:       dev,
		capacity:  capacity,
		positions: make([]float32, capacity*4*2),
		uvs:       make([]float32, capacity*4*3),
		colors:    make([]byte, capacity*4*4),
		scratch:   make([]byte, capacity*4*3*4),
	}

	var err error
	if b.posBuf, err = dev.CreateBuffer(gpu.BufferVertex, capacity*4*2*4, "batch-positions"); err != nil {
		return nil, fmt.Errorf("boxy: create batch buffers: %w", err)
	}
	if b.uvBuf, err = dev.CreateBuffer(gpu.BufferVertex, capacity*4*3*4, "batch-uvs"); err != nil {
		b.close()
		return nil, fmt.Errorf("boxy: create batch buffers: %w", err)
	}
	if b.colorBuf, err = dev.CreateBuffer(gpu.BufferVertex, capacity*4*4, "batch-colors"); err != nil {
		b.close()
		return nil, fmt.Errorf("boxy: create batch buffers: %w", err)
	}
	if b.indexBuf, err = dev.CreateBuffer(gpu.BufferIndex, capacity*6*2, "batch-indices"); err != nil {
		b.close()
		return nil, fmt.Errorf("boxy: create batch buffers: %w", err)
	}

	if err := b.uploadIndices(); err != nil {
		b.close()
		return nil, err
	}
	return b, nil
}

// uploadIndices fills the index buffer once with the per-quad fan pattern.
func (b *quadBatch) uploadIndices() error {
	indices := make([]byte, b.capacity*6*2)
	for q := 0; q < b.capacity; q++ {
		base := uint16(q * 4)
		fan := [6]uint16{base + 3, base, base + 1, base + 2, base + 3, base + 1}
		for i, v := range fan {
			binary.LittleEndian.PutUint16(indices[(q*6+i)*2:], v)
		}
	}
	if err := b.indexBuf.Upload(0, indices); err != nil {
		return fmt.Errorf("boxy: upload quad indices: %w", err)
	}
	return nil
}

// queue adds one quad. Corners are ordered top-left, top-right,
// bottom-right, bottom-left. A full batch flushes first, so after a
// capacity-triggered flush the new quad is the batch's first.
func (b *quadBatch) queue(pos [8]float32, uv [12]float32, col [16]byte, st *drawState) error {
	if b.quadCount == b.capacity {
		if err := b.flush(st); err != nil {
			return err
		}
	}

	v := b.quadCount * 4
	copy(b.positions[v*2:], pos[:])
	copy(b.uvs[v*3:], uv[:])
	copy(b.colors[v*4:], col[:])
	b.quadCount++
	return nil
}

// flush uploads the live vertex ranges and issues one indexed draw.
// An empty batch is a no-op.
func (b *quadBatch) flush(st *drawState) error {
	if b.quadCount == 0 {
		return nil
	}

	vertexCount := b.quadCount * 4

	if err := b.posBuf.Upload(0, b.floatBytes(b.positions[:vertexCount*2])); err != nil {
		return fmt.Errorf("boxy: upload positions: %w", err)
	}
	if err := b.uvBuf.Upload(0, b.floatBytes(b.uvs[:vertexCount*3])); err != nil {
		return fmt.Errorf("boxy: upload uvs: %w", err)
	}
	if err := b.colorBuf.Upload(0, b.colors[:vertexCount*4]); err != nil {
		return fmt.Errorf("boxy: upload colors: %w", err)
	}

	call := &gpu.DrawCall{
		Program:     st.program,
		Projection:  st.projection,
		Atlas:       st.atlas,
		Mask:        st.mask,
		Positions:   b.posBuf,
		UVs:         b.uvBuf,
		Colors:      b.colorBuf,
		Indices:     b.indexBuf,
		IndexCount:  b.quadCount * 6,
		VertexCount: vertexCount,
	}
	if err := b.dev.DrawIndexed(call); err != nil {
		return fmt.Errorf("boxy: draw batch: %w", err)
	}

	b.quadCount = 0
	b.flushCount++
	return nil
}

// floatBytes encodes floats into the reusable scratch buffer, little endian.
func (b *quadBatch) floatBytes(src []float32) []byte {
	out := b.scratch[:len(src)*4]
	for i, f := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func (b *quadBatch) close() {
	for _, buf := range []gpu.Buffer{b.posBuf, b.uvBuf, b.colorBuf, b.indexBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	b.posBuf, b.uvBuf, b.colorBuf, b.indexBuf = nil, nil, nil, nil
}
