// Package gpu defines the graphics device capability the renderer draws
// through, plus a registry of named device implementations.
//
// The renderer consumes the Device interface and never talks to a graphics
// API directly. Two implementations ship with this module:
//
//   - gpu/wgpudev: a WebGPU-backed device using gogpu/wgpu
//   - gpu/memdev: a headless in-memory device for tests and tools
//
// Implementations register themselves on import:
//
//	import _ "github.com/idakandrew/boxy/gpu/wgpudev"
//	dev, err := gpu.Default()
package gpu
