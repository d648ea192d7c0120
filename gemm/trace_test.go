package gemm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gemmcache/gemm"
)

type ijk struct{ i, j, k int }

func iterationPoints(trace gemm.Trace) map[ijk]int {
	points := make(map[ijk]int)
	for _, e := range trace {
		i, j, k := e.Indices()
		points[ijk{i, j, k}]++
	}

	return points
}

func expectFullIterationSpace(trace gemm.Trace, n int) {
	Expect(trace).To(HaveLen(n * n * n))

	points := iterationPoints(trace)
	Expect(points).To(HaveLen(n * n * n))

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				Expect(points[ijk{i, j, k}]).To(Equal(1))
			}
		}
	}
}

var _ = Describe("Generate", func() {
	It("should start an ijk trace with k innermost", func() {
		trace, err := gemm.Generate(4, gemm.IJK, false, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(trace).To(HaveLen(64))
		Expect(trace[0]).To(Equal(gemm.AccessEvent{
			A: gemm.MatrixAddress{Row: 0, Col: 0},
			B: gemm.MatrixAddress{Row: 0, Col: 0},
			C: gemm.MatrixAddress{Row: 0, Col: 0},
		}))
		Expect(trace[1]).To(Equal(gemm.AccessEvent{
			A: gemm.MatrixAddress{Row: 0, Col: 1},
			B: gemm.MatrixAddress{Row: 1, Col: 0},
			C: gemm.MatrixAddress{Row: 0, Col: 0},
		}))
	})

	It("should move i fastest in kji", func() {
		trace, err := gemm.Generate(3, gemm.KJI, false, 0)

		Expect(err).NotTo(HaveOccurred())

		i, j, k := trace[1].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{1, 0, 0}))

		i, j, k = trace[3].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 1, 0}))

		i, j, k = trace[9].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 0, 1}))
	})

	It("should keep the coordinate relation of every event", func() {
		for _, order := range gemm.AllLoopOrders() {
			trace, err := gemm.Generate(3, order, true, 2)
			Expect(err).NotTo(HaveOccurred())

			for _, e := range trace {
				Expect(e.A.Row).To(Equal(e.C.Row))
				Expect(e.B.Col).To(Equal(e.C.Col))
				Expect(e.A.Col).To(Equal(e.B.Row))
			}
		}
	})

	DescribeTable("iteration space",
		func(n int, blocked bool, tile int) {
			for _, order := range gemm.AllLoopOrders() {
				trace, err := gemm.Generate(n, order, blocked, tile)

				Expect(err).NotTo(HaveOccurred())
				expectFullIterationSpace(trace, n)
			}
		},
		Entry("n=1 unblocked", 1, false, 0),
		Entry("n=4 unblocked", 4, false, 0),
		Entry("n=1 blocked", 1, true, 1),
		Entry("n=4 blocked by 2", 4, true, 2),
		Entry("n=5 blocked by 3, clipped tiles", 5, true, 3),
		Entry("n=6 blocked by 6", 6, true, 6),
		Entry("n=7 blocked by 1", 7, true, 1),
	)

	It("should walk the tiles in loop order and the tile body in ijk", func() {
		trace, err := gemm.Generate(4, gemm.KJI, true, 2)
		Expect(err).NotTo(HaveOccurred())

		// First tile is (i, j, k) = [0,2) x [0,2) x [0,2), visited i, j, k.
		i, j, k := trace[1].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 0, 1}))

		i, j, k = trace[2].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 1, 0}))

		// The second tile advances i, the innermost tile loop of kji.
		i, j, k = trace[8].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{2, 0, 0}))
	})

	It("should clip boundary tiles", func() {
		trace, err := gemm.Generate(5, gemm.IJK, true, 3)
		Expect(err).NotTo(HaveOccurred())

		// The first tile is 3x3x3, the second one is clipped to k in [3, 5).
		i, j, k := trace[27].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 0, 3}))

		i, j, k = trace[28].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 0, 4}))

		i, j, k = trace[29].Indices()
		Expect([]int{i, j, k}).To(Equal([]int{0, 1, 3}))
	})

	It("should give the same order as unblocked when the tile covers the matrix", func() {
		blocked, err := gemm.Generate(4, gemm.KIJ, true, 4)
		Expect(err).NotTo(HaveOccurred())

		unblocked, err := gemm.Generate(4, gemm.IJK, false, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(blocked).To(Equal(unblocked))
	})

	It("should be deterministic", func() {
		t1, err := gemm.Generate(6, gemm.JKI, true, 4)
		Expect(err).NotTo(HaveOccurred())

		t2, err := gemm.Generate(6, gemm.JKI, true, 4)
		Expect(err).NotTo(HaveOccurred())

		Expect(t1).To(Equal(t2))
	})

	It("should ignore the tile size when unblocked", func() {
		trace, err := gemm.Generate(3, gemm.IKJ, false, -5)

		Expect(err).NotTo(HaveOccurred())
		Expect(trace).To(HaveLen(27))
	})

	DescribeTable("invalid arguments",
		func(n int, order gemm.LoopOrder, blocked bool, tile int) {
			trace, err := gemm.Generate(n, order, blocked, tile)

			Expect(err).To(MatchError(gemm.ErrInvalidArgument))
			Expect(trace).To(BeNil())
		},
		Entry("zero size", 0, gemm.IJK, false, 0),
		Entry("unknown order", 4, gemm.LoopOrder(9), false, 0),
		Entry("zero tile", 4, gemm.IJK, true, 0),
		Entry("negative tile", 4, gemm.IJK, true, -1),
		Entry("tile larger than matrix", 4, gemm.IJK, true, 5),
	)
})

var _ = Describe("Walk", func() {
	It("should visit the same sequence as Generate", func() {
		trace, err := gemm.Generate(5, gemm.JIK, true, 2)
		Expect(err).NotTo(HaveOccurred())

		var visited gemm.Trace
		err = gemm.Walk(5, gemm.JIK, true, 2, func(e gemm.AccessEvent) {
			visited = append(visited, e)
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(visited).To(Equal(trace))
	})

	It("should not visit anything on invalid input", func() {
		count := 0
		err := gemm.Walk(3, gemm.IJK, true, 4, func(gemm.AccessEvent) {
			count++
		})

		Expect(err).To(MatchError(gemm.ErrInvalidArgument))
		Expect(count).To(BeZero())
	})
})
