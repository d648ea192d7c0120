package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/gemm"
)

func newHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Print how many times each matrix element is accessed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := gemmParamsFromFlags(cmd)
			if err != nil {
				return err
			}

			trace, err := p.generate()
			if err != nil {
				return err
			}

			h := gemm.ComputeHeatmaps(trace, p.n)
			out := cmd.OutOrStdout()
			printGrid(out, "A", h.A)
			printGrid(out, "B", h.B)
			printGrid(out, "C", h.C)

			return nil
		},
	}

	addGEMMFlags(cmd)

	return cmd
}

func printGrid(w io.Writer, name string, g gemm.Grid) {
	width := len(strconv.Itoa(g.Max()))

	fmt.Fprintf(w, "%s (max %d, total %d)\n", name, g.Max(), g.Total())

	for _, row := range g {
		for col, v := range row {
			if col > 0 {
				fmt.Fprint(w, " ")
			}

			fmt.Fprintf(w, "%*d", width, v)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
}
