package cmd

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/datarecording"
	"github.com/sarchlab/gemmcache/tracing"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay the trace of a GEMM on a cache.",
		Long: "`simulate` generates the trace of a GEMM, replays it on an LRU " +
			"set-associative cache, and prints the hit statistics. With " +
			"--record, the run is stored in an SQLite database.",
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}

	addGEMMFlags(cmd)
	addCacheFlags(cmd)
	cmd.Flags().String("record", "",
		"Store the run in PATH.sqlite3. The file must not exist.")
	cmd.Flags().Bool("record-accesses", false,
		"Also store every cache access. Requires --record.")
	cmd.Flags().Bool("log-accesses", false, "Log every cache access.")

	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	p, err := gemmParamsFromFlags(cmd)
	if err != nil {
		return err
	}

	config, err := cacheConfigFromFlags(cmd, p.n)
	if err != nil {
		return err
	}

	recordPath, _ := cmd.Flags().GetString("record")
	recordAccesses, _ := cmd.Flags().GetBool("record-accesses")
	logAccesses, _ := cmd.Flags().GetBool("log-accesses")

	if recordAccesses && recordPath == "" {
		return fmt.Errorf("--record-accesses requires --record")
	}

	trace, err := p.generate()
	if err != nil {
		return err
	}

	sim, err := cache.MakeBuilder().WithConfig(config).Build()
	if err != nil {
		return err
	}

	if logAccesses {
		sim.AcceptHook(tracing.NewLogTracer(
			log.New(cmd.ErrOrStderr(), "", 0)))
	}

	var (
		recorder     datarecording.DataRecorder
		execRecorder *datarecording.ExecRecorder
		runID        = tracing.NewRunID()
	)

	if recordPath != "" {
		recorder = datarecording.New(recordPath)
		defer recorder.Close()

		execRecorder = datarecording.NewExecRecorder(recorder)
		execRecorder.Start()
		execRecorder.Note("Run ID", runID)

		if recordAccesses {
			sim.AcceptHook(tracing.NewDBTracer(recorder, runID))
		}
	}

	stats, err := sim.Simulate(trace, p.n, cache.DefaultMatrixBases())
	if err != nil {
		return err
	}

	if recorder != nil {
		tracing.RecordRun(recorder, runID, p.runParams(), stats)
		execRecorder.Note("Hit Rate", strconv.FormatFloat(stats.HitRate, 'f', 4, 64))
		execRecorder.End()
	}

	printStatistics(cmd.OutOrStdout(), p, stats)

	return nil
}

func (p gemmParams) runParams() tracing.RunParams {
	return tracing.RunParams{
		MatrixSize: p.n,
		LoopOrder:  p.order,
		Blocked:    p.blocked,
		TileSize:   p.tileSize,
	}
}

func (p gemmParams) describe() string {
	if p.blocked {
		return fmt.Sprintf("%s blocked %dx%d, n=%d",
			p.order, p.tileSize, p.tileSize, p.n)
	}

	return fmt.Sprintf("%s unblocked, n=%d", p.order, p.n)
}

func printStatistics(w io.Writer, p gemmParams, s cache.Statistics) {
	c := s.CacheConfig

	fmt.Fprintf(w, "GEMM:        %s\n", p.describe())
	fmt.Fprintf(w, "Cache:       %d bytes, %d-byte lines, %d-way, %d sets\n",
		c.CacheSize, c.LineSize, c.Associativity, c.NumSets)
	fmt.Fprintf(w, "Accesses:    %d\n", s.TotalAccesses)
	fmt.Fprintf(w, "Hits:        %d\n", s.Hits)
	fmt.Fprintf(w, "Misses:      %d\n", s.Misses)
	fmt.Fprintf(w, "Evictions:   %d\n", s.Evictions)
	fmt.Fprintf(w, "Hit rate:    %s\n", hitRateString(s.HitRate))
	fmt.Fprintf(w, "Miss rate:   %6.2f%%\n", s.MissRate)
}
