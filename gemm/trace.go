// Package gemm generates the element access traces of naive and blocked dense
// matrix multiplications.
package gemm

import "fmt"

// A MatrixAddress locates an element of an n x n row-major matrix.
type MatrixAddress struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (a MatrixAddress) String() string {
	return fmt.Sprintf("(%d,%d)", a.Row, a.Col)
}

// An AccessEvent is one scalar multiply-accumulate C[i][j] += A[i][k] *
// B[k][j]. A and B are read, C is read and written.
type AccessEvent struct {
	A MatrixAddress `json:"a"`
	B MatrixAddress `json:"b"`
	C MatrixAddress `json:"c"`
}

// Indices returns the (i, j, k) iteration point of the event.
func (e AccessEvent) Indices() (i, j, k int) {
	return e.A.Row, e.B.Col, e.A.Col
}

// A Trace is the ordered list of multiply-accumulates performed by a GEMM.
type Trace []AccessEvent

func eventAt(idx [3]int) AccessEvent {
	i, j, k := idx[AxisI], idx[AxisJ], idx[AxisK]

	return AccessEvent{
		A: MatrixAddress{Row: i, Col: k},
		B: MatrixAddress{Row: k, Col: j},
		C: MatrixAddress{Row: i, Col: j},
	}
}

func validate(n int, order LoopOrder, blocked bool, tileSize int) error {
	if n < 1 {
		return fmt.Errorf("%w: matrix size %d must be positive",
			ErrInvalidArgument, n)
	}

	if !order.Valid() {
		return fmt.Errorf("%w: unknown loop order %d",
			ErrInvalidArgument, int(order))
	}

	if blocked && (tileSize < 1 || tileSize > n) {
		return fmt.Errorf("%w: tile size %d must be in [1, %d]",
			ErrInvalidArgument, tileSize, n)
	}

	return nil
}

// Walk visits the access events of an n x n GEMM in execution order without
// materializing the trace. When blocked is false, tileSize is ignored.
func Walk(
	n int,
	order LoopOrder,
	blocked bool,
	tileSize int,
	visit func(AccessEvent),
) error {
	err := validate(n, order, blocked, tileSize)
	if err != nil {
		return err
	}

	lo := [3]int{0, 0, 0}
	hi := [3]int{n, n, n}

	if !blocked {
		walkNest(order, lo, hi, 1, func(idx [3]int) {
			visit(eventAt(idx))
		})

		return nil
	}

	walkNest(order, lo, hi, tileSize, func(base [3]int) {
		var end [3]int
		for axis := range base {
			end[axis] = min(base[axis]+tileSize, n)
		}

		// The loops inside a tile are always ordered i, j, k.
		walkNest(IJK, base, end, 1, func(idx [3]int) {
			visit(eventAt(idx))
		})
	})

	return nil
}

// walkNest runs a three-level loop nest over [lo, hi) with the given stride,
// nesting the axes as the loop order says.
func walkNest(
	order LoopOrder,
	lo, hi [3]int,
	step int,
	body func(idx [3]int),
) {
	axes := order.Axes()
	outer, middle, inner := axes[0], axes[1], axes[2]

	var idx [3]int
	for idx[outer] = lo[outer]; idx[outer] < hi[outer]; idx[outer] += step {
		for idx[middle] = lo[middle]; idx[middle] < hi[middle]; idx[middle] += step {
			for idx[inner] = lo[inner]; idx[inner] < hi[inner]; idx[inner] += step {
				body(idx)
			}
		}
	}
}

// Generate returns the full trace of an n x n GEMM. The trace always holds
// n^3 events; blocking only changes their order.
func Generate(
	n int,
	order LoopOrder,
	blocked bool,
	tileSize int,
) (Trace, error) {
	err := validate(n, order, blocked, tileSize)
	if err != nil {
		return nil, err
	}

	trace := make(Trace, 0, n*n*n)
	err = Walk(n, order, blocked, tileSize, func(e AccessEvent) {
		trace = append(trace, e)
	})

	return trace, err
}
