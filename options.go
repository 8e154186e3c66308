package boxy

import "fmt"

// Defaults and limits for renderer configuration.
const (
	// DefaultTileSize is the pixel edge length of one atlas tile.
	DefaultTileSize = 256

	// DefaultAtlasLayers is the initial atlas capacity in tiles.
	DefaultAtlasLayers = 8

	// DefaultQuadsPerBatch is the default quad batch capacity.
	DefaultQuadsPerBatch = 2048

	// MaxQuadsPerBatch is the largest allowed batch capacity. Each quad
	// consumes four vertices addressed by 16-bit indices, so the capacity
	// is bounded by the index space.
	MaxQuadsPerBatch = 10921
)

// Config controls renderer construction. The zero value selects defaults.
type Config struct {
	// TileSize is the pixel edge length of one atlas tile.
	TileSize int

	// AtlasLayers is the initial atlas capacity in tiles. The atlas grows
	// by doubling when full.
	AtlasLayers int

	// QuadsPerBatch is the quad batch capacity. Values above
	// MaxQuadsPerBatch are a construction error.
	QuadsPerBatch int
}

// withDefaults returns the config with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.TileSize == 0 {
		c.TileSize = DefaultTileSize
	}
	if c.AtlasLayers == 0 {
		c.AtlasLayers = DefaultAtlasLayers
	}
	if c.QuadsPerBatch == 0 {
		c.QuadsPerBatch = DefaultQuadsPerBatch
	}
	return c
}

// validate reports configuration errors after defaulting.
func (c Config) validate() error {
	if c.TileSize < 1 {
		return fmt.Errorf("boxy: tile size %d must be positive", c.TileSize)
	}
	if c.AtlasLayers < 1 {
		return fmt.Errorf("boxy: atlas layers %d must be positive", c.AtlasLayers)
	}
	if c.QuadsPerBatch < 1 {
		return fmt.Errorf("boxy: quads per batch %d must be positive", c.QuadsPerBatch)
	}
	if c.QuadsPerBatch > MaxQuadsPerBatch {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, c.QuadsPerBatch, MaxQuadsPerBatch)
	}
	return nil
}
