package monitoring

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/gemm"
)

// MaxMatrixSize is the largest matrix the server agrees to simulate.
const MaxMatrixSize = 128

// Limits on the cache geometry the server agrees to build. Every line costs a
// tag block, so both the capacity and the number of lines are bounded.
const (
	MaxCacheSize  = 64 * cache.MB
	MaxCacheLines = 1 << 20
)

const defaultTraceLimit = 1000

// SimulationParams describes a GEMM and the cache it runs on.
type SimulationParams struct {
	MatrixSize int            `json:"matrix_size"`
	LoopOrder  gemm.LoopOrder `json:"loop_order"`
	Blocked    bool           `json:"blocked"`
	TileSize   int            `json:"tile_size"`
	Cache      cache.Config   `json:"cache"`
}

// DefaultSimulationParams returns a blocked kji GEMM of 16x16 matrices with
// 4x4 tiles, on a cache scaled to the matrices.
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		MatrixSize: 16,
		LoopOrder:  gemm.KJI,
		Blocked:    true,
		TileSize:   4,
		Cache:      cache.ScaledConfig(16),
	}
}

func intParam(q url.Values, key string, defaultValue int) (int, error) {
	str := q.Get(key)
	if str == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, str)
	}

	return v, nil
}

func boolParam(q url.Values, key string, defaultValue bool) (bool, error) {
	str := q.Get(key)
	if str == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseBool(str)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, str)
	}

	return v, nil
}

func parseSimulationParams(r *http.Request) (SimulationParams, error) {
	q := r.URL.Query()
	p := DefaultSimulationParams()

	var err error

	p.MatrixSize, err = intParam(q, "n", p.MatrixSize)
	if err != nil {
		return p, err
	}

	if p.MatrixSize < 1 || p.MatrixSize > MaxMatrixSize {
		return p, fmt.Errorf("matrix size %d is not in [1, %d]",
			p.MatrixSize, MaxMatrixSize)
	}

	if str := q.Get("order"); str != "" {
		p.LoopOrder, err = gemm.ParseLoopOrder(str)
		if err != nil {
			return p, err
		}
	}

	p.Blocked, err = boolParam(q, "blocked", p.Blocked)
	if err != nil {
		return p, err
	}

	p.TileSize, err = intParam(q, "tile", min(p.TileSize, p.MatrixSize))
	if err != nil {
		return p, err
	}

	p.Cache, err = parseCacheConfig(q, cache.ScaledConfig(p.MatrixSize))
	if err != nil {
		return p, err
	}

	return p, nil
}

func parseCacheConfig(q url.Values, c cache.Config) (cache.Config, error) {
	var err error

	fields := []struct {
		key   string
		value *int
	}{
		{"cache_size", &c.CacheSize},
		{"line_size", &c.LineSize},
		{"associativity", &c.Associativity},
		{"element_size", &c.ElementSize},
	}

	for _, f := range fields {
		*f.value, err = intParam(q, f.key, *f.value)
		if err != nil {
			return c, err
		}
	}

	err = c.Validate()
	if err != nil {
		return c, err
	}

	if c.CacheSize > MaxCacheSize || c.NumLines() > MaxCacheLines {
		return c, fmt.Errorf("cache of %d bytes in %d lines exceeds the "+
			"limit of %d bytes and %d lines",
			c.CacheSize, c.NumLines(), MaxCacheSize, MaxCacheLines)
	}

	return c, nil
}

func parseOrders(q url.Values) ([]gemm.LoopOrder, error) {
	str := q.Get("orders")
	if str == "" {
		return gemm.AllLoopOrders(), nil
	}

	var orders []gemm.LoopOrder

	for _, s := range strings.Split(str, ",") {
		o, err := gemm.ParseLoopOrder(s)
		if err != nil {
			return nil, err
		}

		orders = append(orders, o)
	}

	return orders, nil
}

func parseWindow(q url.Values) (offset, limit int, err error) {
	offset, err = intParam(q, "offset", 0)
	if err != nil {
		return 0, 0, err
	}

	limit, err = intParam(q, "limit", defaultTraceLimit)
	if err != nil {
		return 0, 0, err
	}

	if offset < 0 || limit < 0 {
		return 0, 0, fmt.Errorf("offset %d and limit %d must not be negative",
			offset, limit)
	}

	return offset, limit, nil
}
