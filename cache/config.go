package cache

import "fmt"

// Common sizes in bytes.
const (
	KB = 1 << 10
	MB = 1 << 20
)

// Config describes the geometry of a set-associative cache.
type Config struct {
	// CacheSize is the total capacity in bytes.
	CacheSize int `json:"cache_size"`
	// LineSize is the number of bytes per cache line.
	LineSize int `json:"line_size"`
	// Associativity is the number of ways per set.
	Associativity int `json:"associativity"`
	// ElementSize is the number of bytes per matrix element. It is only used
	// to turn matrix coordinates into addresses.
	ElementSize int `json:"element_size"`
}

// DefaultConfig returns a 32KB, 64B-line, 8-way cache of 8-byte elements.
func DefaultConfig() Config {
	return Config{
		CacheSize:     32 * KB,
		LineSize:      64,
		Associativity: 8,
		ElementSize:   8,
	}
}

// ScaledConfig returns a 4-way cache that grows with the matrix size, so that
// small matrices still see some cache pressure.
func ScaledConfig(n int) Config {
	return Config{
		CacheSize:     max(4*KB, n*n*8),
		LineSize:      64,
		Associativity: 4,
		ElementSize:   8,
	}
}

// Validate checks that the geometry divides into whole lines and whole sets.
func (c Config) Validate() error {
	switch {
	case c.CacheSize <= 0:
		return fmt.Errorf("%w: cache size %d must be positive",
			ErrInvalidConfiguration, c.CacheSize)
	case c.LineSize <= 0:
		return fmt.Errorf("%w: line size %d must be positive",
			ErrInvalidConfiguration, c.LineSize)
	case c.Associativity <= 0:
		return fmt.Errorf("%w: associativity %d must be positive",
			ErrInvalidConfiguration, c.Associativity)
	case c.ElementSize <= 0:
		return fmt.Errorf("%w: element size %d must be positive",
			ErrInvalidConfiguration, c.ElementSize)
	case c.CacheSize%c.LineSize != 0:
		return fmt.Errorf("%w: line size %d does not divide cache size %d",
			ErrInvalidConfiguration, c.LineSize, c.CacheSize)
	case c.NumLines()%c.Associativity != 0:
		return fmt.Errorf("%w: associativity %d does not divide %d lines",
			ErrInvalidConfiguration, c.Associativity, c.NumLines())
	}

	return nil
}

// NumLines returns the number of cache lines.
func (c Config) NumLines() int {
	return c.CacheSize / c.LineSize
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return c.NumLines() / c.Associativity
}

// A Location is where an address lands in the cache.
type Location struct {
	Tag         uint64 `json:"tag"`
	SetIndex    int    `json:"set_index"`
	BlockOffset int    `json:"block_offset"`
}

// Decompose splits a byte address into tag, set index, and block offset. Two
// addresses share a cache slot iff they have the same tag and set index.
func (c Config) Decompose(address uint64) Location {
	lineSize := uint64(c.LineSize)
	numSets := uint64(c.NumSets())

	return Location{
		Tag:         address / (lineSize * numSets),
		SetIndex:    int(address / lineSize % numSets),
		BlockOffset: int(address % lineSize),
	}
}
