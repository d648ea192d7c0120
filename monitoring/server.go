// Package monitoring serves the trace generator and the cache simulator over
// HTTP, together with the resource usage of the process.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/comparison"
	"github.com/sarchlab/gemmcache/gemm"
	"github.com/sarchlab/gemmcache/monitoring/web"
)

// Server turns the simulator into a web service.
type Server struct {
	session    *Session
	portNumber int
	router     *mux.Router

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewServer creates a server that shows the given session.
func NewServer(session *Session) *Server {
	s := &Server{session: session}
	s.router = s.newRouter()

	return s
}

// WithPortNumber sets the port number of the server.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/trace", s.trace).Methods(http.MethodGet)
	r.HandleFunc("/api/heatmap", s.heatmap).Methods(http.MethodGet)
	r.HandleFunc("/api/simulate", s.simulate).Methods(http.MethodGet)
	r.HandleFunc("/api/compare", s.compare).Methods(http.MethodGet)
	r.HandleFunc("/api/session", s.showSession).Methods(http.MethodGet)
	r.HandleFunc("/api/session", s.loadSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session/frame/{index}", s.frame).
		Methods(http.MethodGet)
	r.HandleFunc("/api/session/simulator", s.sessionSimulator).
		Methods(http.MethodGet)
	r.HandleFunc("/api/progress", s.listProgressBars)
	r.HandleFunc("/api/resource", s.listResources)
	r.HandleFunc("/api/profile", s.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// CreateProgressBar creates a new progress bar.
func (s *Server) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	s.progressBarsLock.Lock()
	defer s.progressBarsLock.Unlock()

	s.progressBars = append(s.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the progress list.
func (s *Server) CompleteProgressBar(pb *ProgressBar) {
	s.progressBarsLock.Lock()
	defer s.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(s.progressBars))
	for _, b := range s.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	s.progressBars = newBars
}

// StartServer starts listening in the background and returns the URL of the
// server.
func (s *Server) StartServer() string {
	actualPort := ":0"
	if s.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Serving GEMM cache simulation at %s\n", url)

	go func() {
		err := http.Serve(listener, s.router)
		dieOnErr(err)
	}()

	return url
}

func badRequest(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Error: %s", err)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

type traceRsp struct {
	Summary gemm.Summary       `json:"summary"`
	Offset  int                `json:"offset"`
	Events  []gemm.AccessEvent `json:"events"`
}

func (s *Server) trace(w http.ResponseWriter, r *http.Request) {
	p, err := parseSimulationParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	offset, limit, err := parseWindow(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}

	trace, err := gemm.Generate(p.MatrixSize, p.LoopOrder, p.Blocked, p.TileSize)
	if err != nil {
		badRequest(w, err)
		return
	}

	start := min(offset, len(trace))
	end := start + min(limit, len(trace)-start)

	writeJSON(w, traceRsp{
		Summary: gemm.Summarize(trace, p.MatrixSize, p.Blocked, p.TileSize),
		Offset:  start,
		Events:  trace[start:end],
	})
}

func (s *Server) heatmap(w http.ResponseWriter, r *http.Request) {
	p, err := parseSimulationParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	trace, err := gemm.Generate(p.MatrixSize, p.LoopOrder, p.Blocked, p.TileSize)
	if err != nil {
		badRequest(w, err)
		return
	}

	writeJSON(w, gemm.ComputeHeatmaps(trace, p.MatrixSize))
}

type simulateRsp struct {
	Params     SimulationParams `json:"params"`
	Summary    gemm.Summary     `json:"summary"`
	Statistics cache.Statistics `json:"statistics"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	p, err := parseSimulationParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	run, err := runSimulation(p, false)
	if err != nil {
		badRequest(w, err)
		return
	}

	writeJSON(w, simulateRsp{
		Params:     run.params,
		Summary:    run.summary,
		Statistics: run.stats,
	})
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	p, err := parseSimulationParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	orders, err := parseOrders(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}

	modes := comparison.ModesOf(orders...)
	bar := s.CreateProgressBar("Compare loop orders", uint64(len(modes)))
	defer s.CompleteProgressBar(bar)

	c, err := comparison.MakeBuilder().
		WithMatrixSize(p.MatrixSize).
		WithTileSize(p.TileSize).
		WithCacheConfig(p.Cache).
		WithModes(modes...).
		WithProgressTracker(bar).
		Build()
	if err != nil {
		badRequest(w, err)
		return
	}

	results, err := c.Run()
	if err != nil {
		badRequest(w, err)
		return
	}

	writeJSON(w, results)
}

func (s *Server) showSession(w http.ResponseWriter, _ *http.Request) {
	view, ok := s.session.View()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No simulation loaded"))
		dieOnErr(err)

		return
	}

	writeJSON(w, view)
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) {
	p, err := parseSimulationParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	err = s.session.Load(p)
	if err != nil {
		badRequest(w, err)
		return
	}

	s.showSession(w, r)
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) {
	indexStr := mux.Vars(r)["index"]

	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		badRequest(w, fmt.Errorf("invalid frame %q", indexStr))
		return
	}

	f, ok := s.session.Frame(index)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No simulation loaded"))
		dieOnErr(err)

		return
	}

	writeJSON(w, f)
}

func (s *Server) sessionSimulator(w http.ResponseWriter, _ *http.Request) {
	sim := s.session.Simulator()
	if sim == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No simulation loaded"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(sim)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (s *Server) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	s.progressBarsLock.Lock()
	bars := make([]*ProgressBar, 0, len(s.progressBars))
	for _, b := range s.progressBars {
		bars = append(bars, b.Snapshot())
	}
	s.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (s *Server) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
