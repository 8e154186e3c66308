package wgpudev

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/idakandrew/boxy/gpu"
)

// CreateProgram compiles WGSL to SPIR-V with naga and wraps the resulting
// HAL shader module.
func (d *Device) CreateProgram(wgslSource, label string) (gpu.Program, error) {
	if d.closed {
		return nil, gpu.ErrDeviceClosed
	}
	if strings.TrimSpace(wgslSource) == "" {
		return nil, fmt.Errorf("%w: empty source for %q", gpu.ErrShaderCompile, label)
	}

	spirv, err := compileToSPIRV(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", gpu.ErrShaderCompile, label, err)
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpudev: create shader module %q: %w", label, err)
	}

	return &Program{dev: d, module: module, source: wgslSource, label: label}, nil
}

// compileToSPIRV compiles WGSL source to SPIR-V words.
// SPIR-V is little-endian 32-bit words.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, err
	}
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// Program is a compiled WGSL program.
type Program struct {
	dev      *Device
	module   hal.ShaderModule
	source   string
	label    string
	released bool
}

// HasUniform reports whether the WGSL source declares the given binding
// name as a whole identifier.
func (p *Program) HasUniform(name string) bool {
	return !p.released && containsIdent(p.source, name)
}

// Release destroys the shader module. Idempotent.
func (p *Program) Release() {
	if p.released {
		return
	}
	p.released = true
	p.dev.device.DestroyShaderModule(p.module)
}

func containsIdent(s, name string) bool {
	for i := 0; i+len(name) <= len(s); i++ {
		if s[i:i+len(name)] != name {
			continue
		}
		if i > 0 && isIdentByte(s[i-1]) {
			continue
		}
		if j := i + len(name); j < len(s) && isIdentByte(s[j]) {
			continue
		}
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
