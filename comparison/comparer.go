// Package comparison runs the same GEMM under several loop orders and
// reports which one uses the cache best.
package comparison

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/gemm"
)

// A Mode is one way of walking the iteration space.
type Mode struct {
	Order   gemm.LoopOrder `json:"order"`
	Blocked bool           `json:"blocked"`
}

func (m Mode) String() string {
	if m.Blocked {
		return m.Order.String() + "-blocked"
	}

	return m.Order.String()
}

// ModesOf returns the unblocked and the blocked mode of each order.
func ModesOf(orders ...gemm.LoopOrder) []Mode {
	modes := make([]Mode, 0, 2*len(orders))
	for _, o := range orders {
		modes = append(modes,
			Mode{Order: o},
			Mode{Order: o, Blocked: true},
		)
	}

	return modes
}

// AllModes returns the twelve modes of the six loop orders.
func AllModes() []Mode {
	return ModesOf(gemm.AllLoopOrders()...)
}

// Result is the outcome of simulating one mode.
type Result struct {
	Mode
	Rank       int              `json:"rank"`
	Summary    gemm.Summary     `json:"summary"`
	Statistics cache.Statistics `json:"statistics"`
}

// ProgressTracker is notified when modes start and finish.
type ProgressTracker interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// A Comparer simulates a set of modes concurrently. Each mode gets its own
// trace and its own simulator, so no state is shared between goroutines.
type Comparer struct {
	matrixSize   int
	tileSize     int
	config       cache.Config
	bases        cache.MatrixBases
	modes        []Mode
	progress     ProgressTracker
	maxGoRoutine int
}

// Modes returns the modes that the comparer runs.
func (c *Comparer) Modes() []Mode {
	modes := make([]Mode, len(c.modes))
	copy(modes, c.modes)

	return modes
}

// Run simulates all the modes and returns the results sorted from the highest
// hit rate to the lowest. Ties keep the order in which the modes were given.
func (c *Comparer) Run() ([]Result, error) {
	results := make([]Result, len(c.modes))
	errs := make([]error, len(c.modes))

	var wg sync.WaitGroup
	tokens := make(chan struct{}, c.maxGoRoutine)

	for i, m := range c.modes {
		wg.Add(1)

		go func(i int, m Mode) {
			defer wg.Done()

			tokens <- struct{}{}
			defer func() { <-tokens }()

			if c.progress != nil {
				c.progress.IncrementInProgress(1)
				defer c.progress.MoveInProgressToFinished(1)
			}

			results[i], errs[i] = c.runMode(m)
		}(i, m)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("mode %s: %w", c.modes[i], err)
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Statistics.HitRate > results[b].Statistics.HitRate
	})

	for i := range results {
		results[i].Rank = i + 1
	}

	return results, nil
}

func (c *Comparer) runMode(m Mode) (Result, error) {
	trace, err := gemm.Generate(c.matrixSize, m.Order, m.Blocked, c.tileSize)
	if err != nil {
		return Result{}, err
	}

	sim, err := cache.NewSimulator(c.config)
	if err != nil {
		return Result{}, err
	}

	stats, err := sim.Simulate(trace, c.matrixSize, c.bases)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Mode:       m,
		Summary:    gemm.Summarize(trace, c.matrixSize, m.Blocked, c.tileSize),
		Statistics: stats,
	}, nil
}

// Builder can build comparers.
type Builder struct {
	matrixSize   int
	tileSize     int
	config       cache.Config
	bases        cache.MatrixBases
	modes        []Mode
	progress     ProgressTracker
	maxGoRoutine int
}

// MakeBuilder creates a builder that compares all twelve modes of a 32x32
// GEMM with 8x8 tiles on the default cache.
func MakeBuilder() Builder {
	return Builder{
		matrixSize:   32,
		tileSize:     8,
		config:       cache.DefaultConfig(),
		bases:        cache.DefaultMatrixBases(),
		modes:        AllModes(),
		maxGoRoutine: runtime.GOMAXPROCS(0),
	}
}

// WithMatrixSize sets the dimension of the square matrices.
func (b Builder) WithMatrixSize(n int) Builder {
	b.matrixSize = n
	return b
}

// WithTileSize sets the tile size used by the blocked modes.
func (b Builder) WithTileSize(t int) Builder {
	b.tileSize = t
	return b
}

// WithCacheConfig sets the geometry of the simulated cache.
func (b Builder) WithCacheConfig(config cache.Config) Builder {
	b.config = config
	return b
}

// WithMatrixBases sets where the three matrices are placed in memory.
func (b Builder) WithMatrixBases(bases cache.MatrixBases) Builder {
	b.bases = bases
	return b
}

// WithOrders compares the unblocked and blocked modes of the given orders.
func (b Builder) WithOrders(orders ...gemm.LoopOrder) Builder {
	b.modes = ModesOf(orders...)
	return b
}

// WithModes sets exactly which modes to compare.
func (b Builder) WithModes(modes ...Mode) Builder {
	b.modes = modes
	return b
}

// WithProgressTracker sets the tracker that follows the comparison.
func (b Builder) WithProgressTracker(p ProgressTracker) Builder {
	b.progress = p
	return b
}

// WithMaxGoRoutine limits how many modes are simulated at the same time.
func (b Builder) WithMaxGoRoutine(n int) Builder {
	b.maxGoRoutine = n
	return b
}

// Build creates a comparer.
func (b Builder) Build() (*Comparer, error) {
	if b.matrixSize < 1 {
		return nil, fmt.Errorf("%w: matrix size %d",
			gemm.ErrInvalidArgument, b.matrixSize)
	}

	if len(b.modes) == 0 {
		return nil, fmt.Errorf("%w: no mode to compare",
			gemm.ErrInvalidArgument)
	}

	for _, m := range b.modes {
		if !m.Order.Valid() {
			return nil, fmt.Errorf("%w: loop order %s",
				gemm.ErrInvalidArgument, m.Order)
		}

		if m.Blocked && (b.tileSize < 1 || b.tileSize > b.matrixSize) {
			return nil, fmt.Errorf("%w: tile size %d for matrix size %d",
				gemm.ErrInvalidArgument, b.tileSize, b.matrixSize)
		}
	}

	err := b.config.Validate()
	if err != nil {
		return nil, err
	}

	maxGoRoutine := b.maxGoRoutine
	if maxGoRoutine < 1 {
		maxGoRoutine = 1
	}

	c := &Comparer{
		matrixSize:   b.matrixSize,
		tileSize:     b.tileSize,
		config:       b.config,
		bases:        b.bases,
		progress:     b.progress,
		maxGoRoutine: maxGoRoutine,
	}
	c.modes = make([]Mode, len(b.modes))
	copy(c.modes, b.modes)

	return c, nil
}
