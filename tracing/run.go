package tracing

import (
	"github.com/rs/xid"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/datarecording"
	"github.com/sarchlab/gemmcache/gemm"
)

// Tables written by RecordRun.
const (
	RunTable           = "gemm_runs"
	HitRateSampleTable = "hit_rate_samples"
)

// RunParams describes the GEMM that produced a trace.
type RunParams struct {
	MatrixSize int
	LoopOrder  gemm.LoopOrder
	Blocked    bool
	TileSize   int
}

// RunEntry is the summary of one simulation.
type RunEntry struct {
	RunID         string
	MatrixSize    int
	LoopOrder     string
	Blocked       bool
	TileSize      int
	CacheSize     int
	LineSize      int
	Associativity int
	ElementSize   int
	NumSets       int
	TotalAccesses uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	HitRate       float64
	MissRate      float64
}

// HitRateSampleEntry is one point of the hit rate history of a run.
type HitRateSampleEntry struct {
	RunID       string
	SampleIndex int
	AccessCount uint64
	HitRate     float64
}

// NewRunID returns a globally unique run ID.
func NewRunID() string {
	return xid.New().String()
}

// RecordRun writes the statistics of a simulation and its hit rate history.
func RecordRun(
	recorder datarecording.DataRecorder,
	runID string,
	params RunParams,
	stats cache.Statistics,
) {
	ensureTable(recorder, RunTable, RunEntry{})
	ensureTable(recorder, HitRateSampleTable, HitRateSampleEntry{})

	tileSize := 0
	if params.Blocked {
		tileSize = params.TileSize
	}

	cfg := stats.CacheConfig
	recorder.InsertData(RunTable, RunEntry{
		RunID:         runID,
		MatrixSize:    params.MatrixSize,
		LoopOrder:     params.LoopOrder.String(),
		Blocked:       params.Blocked,
		TileSize:      tileSize,
		CacheSize:     cfg.CacheSize,
		LineSize:      cfg.LineSize,
		Associativity: cfg.Associativity,
		ElementSize:   cfg.ElementSize,
		NumSets:       cfg.NumSets,
		TotalAccesses: stats.TotalAccesses,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Evictions:     stats.Evictions,
		HitRate:       stats.HitRate,
		MissRate:      stats.MissRate,
	})

	for i, rate := range stats.HitRateHistory {
		recorder.InsertData(HitRateSampleTable, HitRateSampleEntry{
			RunID:       runID,
			SampleIndex: i,
			AccessCount: uint64(i+1) * cache.HitRateSamplePeriod,
			HitRate:     rate,
		})
	}
}
