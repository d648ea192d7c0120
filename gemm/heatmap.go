package gemm

// A Grid counts accesses per element of an n x n matrix, indexed [row][col].
type Grid [][]int

func newGrid(n int) Grid {
	g := make(Grid, n)
	for r := range g {
		g[r] = make([]int, n)
	}

	return g
}

// Max returns the largest count in the grid.
func (g Grid) Max() int {
	m := 0
	for _, row := range g {
		for _, v := range row {
			m = max(m, v)
		}
	}

	return m
}

// Total returns the sum of all the counts in the grid.
func (g Grid) Total() int {
	t := 0
	for _, row := range g {
		for _, v := range row {
			t += v
		}
	}

	return t
}

// Heatmaps holds the access frequency of every element of A, B, and C.
type Heatmaps struct {
	A Grid `json:"a"`
	B Grid `json:"b"`
	C Grid `json:"c"`
}

// ComputeHeatmaps tallies how many times each coordinate appears as the A, B,
// and C position across the trace. All positions must be within [0, n).
func ComputeHeatmaps(trace Trace, n int) Heatmaps {
	h := Heatmaps{
		A: newGrid(n),
		B: newGrid(n),
		C: newGrid(n),
	}

	for _, e := range trace {
		h.A[e.A.Row][e.A.Col]++
		h.B[e.B.Row][e.B.Col]++
		h.C[e.C.Row][e.C.Col]++
	}

	return h
}

// AccessCount is the number of element accesses per matrix.
type AccessCount struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
}

// Summary describes the size of a trace.
type Summary struct {
	TotalOperations int         `json:"total_operations"`
	MatrixSize      int         `json:"matrix_size"`
	BlockSize       int         `json:"block_size"`
	AccessCount     AccessCount `json:"access_count"`
	TheoreticalOps  int         `json:"theoretical_ops"`
}

// Summarize counts the operations in a trace. An unblocked trace reports the
// whole matrix as its block.
func Summarize(trace Trace, n int, blocked bool, tileSize int) Summary {
	blockSize := n
	if blocked {
		blockSize = tileSize
	}

	ops := len(trace)

	return Summary{
		TotalOperations: ops,
		MatrixSize:      n,
		BlockSize:       blockSize,
		AccessCount:     AccessCount{A: ops, B: ops, C: ops},
		TheoreticalOps:  n * n * n,
	}
}
