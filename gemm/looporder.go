package gemm

import (
	"fmt"
	"strings"
)

// Axis names one of the three GEMM iteration variables.
type Axis int

// The iteration variables of C[i][j] += A[i][k] * B[k][j].
const (
	AxisI Axis = iota
	AxisJ
	AxisK
)

// A LoopOrder is the nesting permutation of the i, j and k loops.
type LoopOrder int

// The six possible loop orders, named outermost to innermost.
const (
	IJK LoopOrder = iota
	IKJ
	JIK
	JKI
	KIJ
	KJI
	numLoopOrders
)

var loopOrderAxes = [numLoopOrders][3]Axis{
	IJK: {AxisI, AxisJ, AxisK},
	IKJ: {AxisI, AxisK, AxisJ},
	JIK: {AxisJ, AxisI, AxisK},
	JKI: {AxisJ, AxisK, AxisI},
	KIJ: {AxisK, AxisI, AxisJ},
	KJI: {AxisK, AxisJ, AxisI},
}

var loopOrderNames = [numLoopOrders]string{
	IJK: "ijk",
	IKJ: "ikj",
	JIK: "jik",
	JKI: "jki",
	KIJ: "kij",
	KJI: "kji",
}

// AllLoopOrders returns the six loop orders in canonical order.
func AllLoopOrders() []LoopOrder {
	orders := make([]LoopOrder, 0, numLoopOrders)
	for o := IJK; o < numLoopOrders; o++ {
		orders = append(orders, o)
	}

	return orders
}

// ParseLoopOrder converts a name such as "kji" or "KJI" to a LoopOrder.
func ParseLoopOrder(s string) (LoopOrder, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for o, n := range loopOrderNames {
		if n == name {
			return LoopOrder(o), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown loop order %q, must be one of %s",
		ErrInvalidArgument, s, strings.Join(loopOrderNames[:], ", "))
}

// Valid tells if the loop order is one of the six permutations.
func (o LoopOrder) Valid() bool {
	return o >= IJK && o < numLoopOrders
}

// Axes returns the iteration variables from the outermost loop to the
// innermost loop.
func (o LoopOrder) Axes() [3]Axis {
	if !o.Valid() {
		panic(fmt.Sprintf("invalid loop order %d", int(o)))
	}

	return loopOrderAxes[o]
}

func (o LoopOrder) String() string {
	if !o.Valid() {
		return fmt.Sprintf("LoopOrder(%d)", int(o))
	}

	return loopOrderNames[o]
}

// MarshalText encodes the loop order with its lower-case name.
func (o LoopOrder) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: loop order %d", ErrInvalidArgument, int(o))
	}

	return []byte(loopOrderNames[o]), nil
}

// UnmarshalText decodes a loop order name.
func (o *LoopOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseLoopOrder(string(text))
	if err != nil {
		return err
	}

	*o = parsed

	return nil
}
