package monitoring

import (
	"sync"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/gemm"
	"github.com/sarchlab/gemmcache/hooking"
)

// A simulationRun is a trace together with the cache behavior it produced.
type simulationRun struct {
	params    SimulationParams
	trace     gemm.Trace
	summary   gemm.Summary
	stats     cache.Statistics
	simulator *cache.Simulator
	hits      []bool
}

// hitCollector remembers whether each access of a run hit.
type hitCollector struct {
	hits []bool
}

func (c *hitCollector) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	info := ctx.Item.(cache.AccessInfo)
	c.hits = append(c.hits, info.Hit)
}

func runSimulation(p SimulationParams, collectHits bool) (*simulationRun, error) {
	trace, err := gemm.Generate(p.MatrixSize, p.LoopOrder, p.Blocked, p.TileSize)
	if err != nil {
		return nil, err
	}

	sim, err := cache.MakeBuilder().WithConfig(p.Cache).Build()
	if err != nil {
		return nil, err
	}

	var collector *hitCollector
	if collectHits {
		collector = &hitCollector{hits: make([]bool, 0, 4*len(trace))}
		sim.AcceptHook(collector)
	}

	stats, err := sim.Simulate(trace, p.MatrixSize, cache.DefaultMatrixBases())
	if err != nil {
		return nil, err
	}

	run := &simulationRun{
		params:    p,
		trace:     trace,
		summary:   gemm.Summarize(trace, p.MatrixSize, p.Blocked, p.TileSize),
		stats:     stats,
		simulator: sim,
	}

	// The simulator stays reachable from the component dump, so it must not
	// keep the collected outcomes alive.
	if collector != nil {
		sim.RemoveHook(collector)
		run.hits = collector.hits
	}

	return run, nil
}

// SessionView is what the dashboard shows about the current simulation.
type SessionView struct {
	Params     SimulationParams `json:"params"`
	Summary    gemm.Summary     `json:"summary"`
	Statistics cache.Statistics `json:"statistics"`
	Heatmaps   gemm.Heatmaps    `json:"heatmaps"`
	NumFrames  int              `json:"num_frames"`
}

// A Frame is one step of the playback. Hits holds the outcome of the A read,
// B read, C read, and C write of the event.
type Frame struct {
	Index     int              `json:"index"`
	NumFrames int              `json:"num_frames"`
	Event     gemm.AccessEvent `json:"event"`
	Hits      [4]bool          `json:"hits"`
}

// A Session holds the simulation that the dashboard is looking at. It is safe
// for concurrent use.
type Session struct {
	lock     sync.RWMutex
	run      *simulationRun
	heatmaps gemm.Heatmaps
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Load runs a simulation and makes it the current one. The current simulation
// is kept if the new one fails.
func (s *Session) Load(p SimulationParams) error {
	run, err := runSimulation(p, true)
	if err != nil {
		return err
	}

	heatmaps := gemm.ComputeHeatmaps(run.trace, p.MatrixSize)

	s.lock.Lock()
	defer s.lock.Unlock()

	s.run = run
	s.heatmaps = heatmaps

	return nil
}

// View returns the current simulation. It returns false if nothing has been
// loaded.
func (s *Session) View() (SessionView, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.run == nil {
		return SessionView{}, false
	}

	return SessionView{
		Params:     s.run.params,
		Summary:    s.run.summary,
		Statistics: s.run.stats,
		Heatmaps:   s.heatmaps,
		NumFrames:  len(s.run.trace),
	}, true
}

// Frame returns a step of the current simulation. Indices past the end are
// clamped to the last frame.
func (s *Session) Frame(index int) (Frame, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.run == nil || len(s.run.trace) == 0 || index < 0 {
		return Frame{}, false
	}

	index = min(index, len(s.run.trace)-1)

	f := Frame{
		Index:     index,
		NumFrames: len(s.run.trace),
		Event:     s.run.trace[index],
	}
	copy(f.Hits[:], s.run.hits[4*index:4*index+4])

	return f, true
}

// Simulator returns the cache of the current simulation, or nil.
func (s *Session) Simulator() *cache.Simulator {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.run == nil {
		return nil
	}

	return s.run.simulator
}
