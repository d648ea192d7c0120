package cache

// CacheConfig is the geometry reported along with the statistics.
type CacheConfig struct {
	CacheSize     int `json:"cache_size"`
	LineSize      int `json:"line_size"`
	Associativity int `json:"associativity"`
	ElementSize   int `json:"element_size"`
	NumSets       int `json:"num_sets"`
}

func newCacheConfig(c Config) CacheConfig {
	return CacheConfig{
		CacheSize:     c.CacheSize,
		LineSize:      c.LineSize,
		Associativity: c.Associativity,
		ElementSize:   c.ElementSize,
		NumSets:       c.NumSets(),
	}
}

// Statistics summarizes the accesses made since the last reset. Rates are
// percentages and always add up to 100.
type Statistics struct {
	TotalAccesses  uint64      `json:"total_accesses"`
	Hits           uint64      `json:"hits"`
	Misses         uint64      `json:"misses"`
	Evictions      uint64      `json:"evictions"`
	HitRate        float64     `json:"hit_rate"`
	MissRate       float64     `json:"miss_rate"`
	HitRateHistory []float64   `json:"hit_rate_history"`
	CacheConfig    CacheConfig `json:"cache_config"`
}
