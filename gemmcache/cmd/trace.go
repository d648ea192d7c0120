package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/gemm"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the access trace of a GEMM.",
		Long: "`trace` prints the multiply-accumulates of a GEMM in execution " +
			"order, starting from --from, followed by a summary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := gemmParamsFromFlags(cmd)
			if err != nil {
				return err
			}

			trace, err := p.generate()
			if err != nil {
				return err
			}

			from, _ := cmd.Flags().GetInt("from")
			limit, _ := cmd.Flags().GetInt("limit")
			if from < 0 || limit < 0 {
				return fmt.Errorf("%w: --from %d and --limit %d must not be "+
					"negative", gemm.ErrInvalidArgument, from, limit)
			}

			out := cmd.OutOrStdout()
			printEvents(out, trace, from, limit)
			printSummary(out, gemm.Summarize(trace, p.n, p.blocked, p.tileSize))

			return nil
		},
	}

	addGEMMFlags(cmd)
	cmd.Flags().Int("from", 0, "Index of the first event to print.")
	cmd.Flags().Int("limit", 20, "Number of events to print, 0 for all.")

	return cmd
}

func printEvents(w io.Writer, trace gemm.Trace, from, limit int) {
	start := min(from, len(trace))
	end := len(trace)
	if limit > 0 {
		end = start + min(limit, len(trace)-start)
	}

	fmt.Fprintf(w, "%8s  %-10s %-10s %-10s\n", "event", "A", "B", "C")

	for idx := start; idx < end; idx++ {
		e := trace[idx]
		fmt.Fprintf(w, "%8d  %-10s %-10s %-10s\n", idx, e.A, e.B, e.C)
	}
}

func printSummary(w io.Writer, s gemm.Summary) {
	fmt.Fprintf(w, "\nMatrix size:       %d x %d\n", s.MatrixSize, s.MatrixSize)
	fmt.Fprintf(w, "Block size:        %d\n", s.BlockSize)
	fmt.Fprintf(w, "Total operations:  %d\n", s.TotalOperations)
	fmt.Fprintf(w, "Theoretical ops:   %d\n", s.TheoreticalOps)
	fmt.Fprintf(w, "Accesses (A/B/C):  %d / %d / %d\n",
		s.AccessCount.A, s.AccessCount.B, s.AccessCount.C)
}
