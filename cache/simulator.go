// Package cache simulates a set-associative cache with LRU replacement and
// replays GEMM access traces against it.
package cache

import (
	"fmt"

	"github.com/sarchlab/gemmcache/cache/internal/tagging"
	"github.com/sarchlab/gemmcache/gemm"
	"github.com/sarchlab/gemmcache/hooking"
)

// HitRateSamplePeriod is the number of accesses between two hit rate samples.
const HitRateSamplePeriod = 100

// HookPosAccess is invoked after every cache access. The hook item is an
// AccessInfo.
var HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

// AccessKind tells if an access reads or writes the element.
type AccessKind int

// The kinds of access.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	if k == AccessWrite {
		return "write"
	}

	return "read"
}

// AccessInfo describes a single cache access.
type AccessInfo struct {
	Seq     uint64
	Matrix  Matrix
	Kind    AccessKind
	Address uint64
	Location
	Hit        bool
	Evicted    bool
	EvictedTag uint64
}

// A Simulator models a single set-associative cache. It is not safe for
// concurrent use; run one Simulator per goroutine.
type Simulator struct {
	hooking.HookableBase

	config       Config
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder

	hits           uint64
	misses         uint64
	accesses       uint64
	evictions      uint64
	hitRateHistory []float64
}

// NewSimulator creates a simulator with all the sets empty.
func NewSimulator(config Config) (*Simulator, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		config:       config,
		tags:         tagging.NewTagArray(config.NumSets(), config.Associativity),
		victimFinder: tagging.NewLRUVictimFinder(),
	}

	return s, nil
}

// Config returns the geometry of the cache.
func (s *Simulator) Config() Config {
	return s.config
}

// Decompose splits an address according to the geometry of the cache.
func (s *Simulator) Decompose(address uint64) Location {
	return s.config.Decompose(address)
}

// Reset empties every set and clears all the counters.
func (s *Simulator) Reset() {
	s.tags.Reset()
	s.hits = 0
	s.misses = 0
	s.accesses = 0
	s.evictions = 0
	s.hitRateHistory = nil
}

// Access looks up an address, updates the LRU state, and returns true on a
// hit.
func (s *Simulator) Access(address uint64) bool {
	return s.access(address, MatrixNone, AccessRead)
}

func (s *Simulator) access(address uint64, m Matrix, kind AccessKind) bool {
	loc := s.config.Decompose(address)
	info := AccessInfo{
		Matrix:   m,
		Kind:     kind,
		Address:  address,
		Location: loc,
	}

	block, hit := s.tags.Lookup(loc.SetIndex, loc.Tag)
	if hit {
		s.hits++
	} else {
		s.misses++

		block = s.victimFinder.FindVictim(s.tags, loc.SetIndex)
		if block.IsValid {
			s.evictions++
			info.Evicted = true
			info.EvictedTag = block.Tag
		}

		s.tags.Update(block, loc.Tag)
	}

	s.tags.Visit(block)

	s.accesses++
	if s.accesses%HitRateSamplePeriod == 0 {
		s.hitRateHistory = append(s.hitRateHistory, s.HitRate())
	}

	if s.NumHooks() > 0 {
		info.Seq = s.accesses
		info.Hit = hit
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosAccess,
			Item:   info,
		})
	}

	return hit
}

// Simulate resets the cache and replays a trace of n x n matrices placed at
// the given bases. Every event reads A, reads B, then reads and writes C, so
// each event makes four accesses.
func (s *Simulator) Simulate(
	trace gemm.Trace,
	n int,
	bases MatrixBases,
) (Statistics, error) {
	s.Reset()

	layout := MatrixLayout{
		N:           n,
		ElementSize: s.config.ElementSize,
		Bases:       bases,
	}

	for i, e := range trace {
		addrA, errA := layout.Address(MatrixA, e.A)
		addrB, errB := layout.Address(MatrixB, e.B)
		addrC, errC := layout.Address(MatrixC, e.C)

		for _, err := range []error{errA, errB, errC} {
			if err != nil {
				return Statistics{}, fmt.Errorf("event %d: %w", i, err)
			}
		}

		s.access(addrA, MatrixA, AccessRead)
		s.access(addrB, MatrixB, AccessRead)
		s.access(addrC, MatrixC, AccessRead)
		s.access(addrC, MatrixC, AccessWrite)
	}

	return s.Statistics(), nil
}

// HitRate returns the percentage of accesses that hit, or 0 before any
// access.
func (s *Simulator) HitRate() float64 {
	if s.accesses == 0 {
		return 0
	}

	return float64(s.hits) / float64(s.accesses) * 100
}

// Statistics returns a snapshot of the counters.
func (s *Simulator) Statistics() Statistics {
	hitRate := s.HitRate()

	history := make([]float64, len(s.hitRateHistory))
	copy(history, s.hitRateHistory)

	return Statistics{
		TotalAccesses:  s.accesses,
		Hits:           s.hits,
		Misses:         s.misses,
		Evictions:      s.evictions,
		HitRate:        hitRate,
		MissRate:       100 - hitRate,
		HitRateHistory: history,
		CacheConfig:    newCacheConfig(s.config),
	}
}

// SetContents returns the tags held by a set, from the least recently used to
// the most recently used.
func (s *Simulator) SetContents(setIndex int) []uint64 {
	return s.tags.GetSet(setIndex).Tags()
}
