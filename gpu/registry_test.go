package gpu

import (
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	fake := func() (Device, error) { return nil, errors.New("fake device") }

	t.Run("register and get", func(t *testing.T) {
		Register("test-a", fake)
		defer Unregister("test-a")

		if !IsRegistered("test-a") {
			t.Error("registered device not found")
		}
		if _, err := Get("test-a"); err == nil || err.Error() != "fake device" {
			t.Errorf("Get error = %v, want factory error", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, err := Get("nope"); !errors.Is(err, ErrNoDevice) {
			t.Errorf("Get(unknown) error = %v, want ErrNoDevice", err)
		}
	})

	t.Run("unregister", func(t *testing.T) {
		Register("test-b", fake)
		Unregister("test-b")
		if IsRegistered("test-b") {
			t.Error("device survived Unregister")
		}
	})

	t.Run("available lists names", func(t *testing.T) {
		Register("test-c", fake)
		defer Unregister("test-c")

		found := false
		for _, name := range Available() {
			if name == "test-c" {
				found = true
			}
		}
		if !found {
			t.Errorf("Available() = %v, missing test-c", Available())
		}
	})
}
