package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/datarecording"
	"github.com/sarchlab/gemmcache/tracing"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs PATH",
		Short: "List the runs recorded in PATH.sqlite3.",
		Long: "`runs` reads a database written by `simulate --record` or " +
			"`compare --record` and lists the runs from the best hit rate " +
			"to the worst.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0] + ".sqlite3"

			_, err := os.Stat(filename)
			if err != nil {
				return err
			}

			reader := datarecording.NewReader(args[0])
			defer reader.Close()

			reader.MapTable(tracing.RunTable, tracing.RunEntry{})

			limit, _ := cmd.Flags().GetInt("limit")
			runs, total, err := reader.Query(cmd.Context(), tracing.RunTable,
				datarecording.QueryParams{
					OrderBy: "HitRate DESC",
					Limit:   limit,
				})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %5s %-6s %7s %4s %10s %9s\n",
				"run", "n", "order", "blocked", "tile", "accesses", "hit rate")

			for _, r := range runs {
				e := r.(*tracing.RunEntry)
				fmt.Fprintf(out, "%-20s %5d %-6s %7t %4d %10d %s\n",
					e.RunID, e.MatrixSize, e.LoopOrder, e.Blocked, e.TileSize,
					e.TotalAccesses, hitRateString(e.HitRate))
			}

			fmt.Fprintf(out, "\n%d of %d runs\n", len(runs), total)

			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Number of runs to list, 0 for all.")

	return cmd
}
