package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/comparison"
	"github.com/sarchlab/gemmcache/datarecording"
	"github.com/sarchlab/gemmcache/tracing"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank the loop orders of a GEMM by cache hit rate.",
		Long: "`compare` simulates the unblocked and the blocked version of " +
			"each loop order concurrently and ranks them by hit rate.",
		Args: cobra.NoArgs,
		RunE: runCompare,
	}

	cmd.Flags().IntP("size", "n", 32, "Dimension of the square matrices.")
	cmd.Flags().IntP("tile", "t", 8, "Tile size of the blocked modes.")
	cmd.Flags().String("orders", "",
		"Comma separated loop orders to compare. All six by default.")
	cmd.Flags().String("record", "",
		"Store every run in PATH.sqlite3. The file must not exist.")
	addCacheFlags(cmd)

	return cmd
}

func runCompare(cmd *cobra.Command, _ []string) error {
	n, _ := cmd.Flags().GetInt("size")
	tileSize, _ := cmd.Flags().GetInt("tile")
	ordersStr, _ := cmd.Flags().GetString("orders")
	recordPath, _ := cmd.Flags().GetString("record")

	orders, err := parseOrders(ordersStr)
	if err != nil {
		return err
	}

	config, err := cacheConfigFromFlags(cmd, n)
	if err != nil {
		return err
	}

	c, err := comparison.MakeBuilder().
		WithMatrixSize(n).
		WithTileSize(tileSize).
		WithCacheConfig(config).
		WithOrders(orders...).
		Build()
	if err != nil {
		return err
	}

	results, err := c.Run()
	if err != nil {
		return err
	}

	if recordPath != "" {
		recordComparison(recordPath, n, tileSize, results)
	}

	printRanking(cmd.OutOrStdout(), n, config, results)

	return nil
}

func recordComparison(
	path string,
	n, tileSize int,
	results []comparison.Result,
) {
	recorder := datarecording.New(path)
	defer recorder.Close()

	execRecorder := datarecording.NewExecRecorder(recorder)
	execRecorder.Start()

	for _, r := range results {
		tracing.RecordRun(recorder, tracing.NewRunID(), tracing.RunParams{
			MatrixSize: n,
			LoopOrder:  r.Order,
			Blocked:    r.Blocked,
			TileSize:   tileSize,
		}, r.Statistics)
	}

	execRecorder.End()
}

func printRanking(
	w io.Writer,
	n int,
	config cache.Config,
	results []comparison.Result,
) {
	fmt.Fprintf(w, "n=%d, cache %d bytes, %d-byte lines, %d-way\n\n",
		n, config.CacheSize, config.LineSize, config.Associativity)
	fmt.Fprintf(w, "%4s  %-12s %10s %10s %10s %9s\n",
		"rank", "mode", "accesses", "hits", "misses", "hit rate")

	for _, r := range results {
		s := r.Statistics
		fmt.Fprintf(w, "%4d  %-12s %10d %10d %10d %s\n",
			r.Rank, r.Mode, s.TotalAccesses, s.Hits, s.Misses,
			hitRateString(s.HitRate))
	}
}
