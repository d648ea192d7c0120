package cache

// Builder can build cache simulators.
type Builder struct {
	cacheSize     int
	lineSize      int
	associativity int
	elementSize   int
}

// MakeBuilder creates a new builder with the default geometry.
func MakeBuilder() Builder {
	c := DefaultConfig()

	return Builder{
		cacheSize:     c.CacheSize,
		lineSize:      c.LineSize,
		associativity: c.Associativity,
		elementSize:   c.ElementSize,
	}
}

// WithConfig sets the whole geometry at once.
func (b Builder) WithConfig(c Config) Builder {
	b.cacheSize = c.CacheSize
	b.lineSize = c.LineSize
	b.associativity = c.Associativity
	b.elementSize = c.ElementSize

	return b
}

// WithCacheSize sets the total capacity in bytes.
func (b Builder) WithCacheSize(cacheSize int) Builder {
	b.cacheSize = cacheSize
	return b
}

// WithLineSize sets the number of bytes per line.
func (b Builder) WithLineSize(lineSize int) Builder {
	b.lineSize = lineSize
	return b
}

// WithAssociativity sets the number of ways per set.
func (b Builder) WithAssociativity(associativity int) Builder {
	b.associativity = associativity
	return b
}

// WithElementSize sets the number of bytes per matrix element.
func (b Builder) WithElementSize(elementSize int) Builder {
	b.elementSize = elementSize
	return b
}

// Build validates the geometry and creates a simulator.
func (b Builder) Build() (*Simulator, error) {
	return NewSimulator(Config{
		CacheSize:     b.cacheSize,
		LineSize:      b.lineSize,
		Associativity: b.associativity,
		ElementSize:   b.elementSize,
	})
}
