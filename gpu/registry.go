package gpu

import (
	"errors"
	"sync"
)

// Well-known device names.
const (
	// DeviceWGPU is the WebGPU-backed device (gpu/wgpudev).
	DeviceWGPU = "wgpu"
	// DeviceMem is the in-memory device (gpu/memdev).
	DeviceMem = "mem"
)

// ErrNoDevice is returned when no device implementation is registered.
var ErrNoDevice = errors.New("gpu: no device registered")

// DeviceFactory creates a new device instance.
type DeviceFactory func() (Device, error)

var (
	registryMu sync.RWMutex
	devices    = make(map[string]DeviceFactory)
	// Priority order for default selection (first available wins).
	devicePriority = []string{DeviceWGPU, DeviceMem}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in device packages.
// Registering the same name again replaces the previous factory.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	devices[name] = factory
}

// Unregister removes a device from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(devices, name)
}

// Available returns the registered device names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := devices[name]
	return ok
}

// Get creates a device instance by name.
func Get(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := devices[name]
	registryMu.RUnlock()

	if !ok {
		return nil, ErrNoDevice
	}
	return factory()
}

// Default creates the best available device based on priority.
// Priority order: wgpu > mem.
func Default() (Device, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var lastErr error
	for _, name := range devicePriority {
		factory, ok := devices[name]
		if !ok {
			continue
		}
		dev, err := factory()
		if err != nil {
			lastErr = err
			continue
		}
		return dev, nil
	}

	// Fallback: first registered factory that succeeds.
	for _, factory := range devices {
		dev, err := factory()
		if err != nil {
			lastErr = err
			continue
		}
		return dev, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoDevice
}
