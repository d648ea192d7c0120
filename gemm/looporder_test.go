package gemm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gemmcache/gemm"
)

var _ = Describe("LoopOrder", func() {
	It("should list six orders", func() {
		orders := gemm.AllLoopOrders()

		Expect(orders).To(HaveLen(6))
		Expect(orders[0]).To(Equal(gemm.IJK))
		Expect(orders[5]).To(Equal(gemm.KJI))
	})

	DescribeTable("parsing",
		func(name string, expected gemm.LoopOrder) {
			o, err := gemm.ParseLoopOrder(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(o).To(Equal(expected))
			Expect(o.String()).To(Equal(expected.String()))
		},
		Entry("ijk", "ijk", gemm.IJK),
		Entry("upper case", "KJI", gemm.KJI),
		Entry("with spaces", " jik ", gemm.JIK),
		Entry("ikj", "ikj", gemm.IKJ),
		Entry("jki", "jki", gemm.JKI),
		Entry("kij", "kij", gemm.KIJ),
	)

	It("should reject unknown names", func() {
		_, err := gemm.ParseLoopOrder("ijj")

		Expect(err).To(MatchError(gemm.ErrInvalidArgument))
	})

	It("should map kji to k outermost and i innermost", func() {
		Expect(gemm.KJI.Axes()).To(Equal(
			[3]gemm.Axis{gemm.AxisK, gemm.AxisJ, gemm.AxisI}))
	})

	It("should tell invalid orders", func() {
		Expect(gemm.LoopOrder(6).Valid()).To(BeFalse())
		Expect(gemm.LoopOrder(-1).Valid()).To(BeFalse())
		Expect(gemm.LoopOrder(6).String()).To(Equal("LoopOrder(6)"))
	})

	It("should round trip through JSON as a name", func() {
		data, err := json.Marshal(gemm.JKI)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`"jki"`))

		var o gemm.LoopOrder
		Expect(json.Unmarshal([]byte(`"kij"`), &o)).To(Succeed())
		Expect(o).To(Equal(gemm.KIJ))
	})
})
