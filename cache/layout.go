package cache

import (
	"fmt"

	"github.com/sarchlab/gemmcache/gemm"
)

// Matrix identifies one of the three GEMM operands.
type Matrix int

// The GEMM operands. MatrixNone marks raw addresses that do not come from a
// matrix.
const (
	MatrixNone Matrix = iota
	MatrixA
	MatrixB
	MatrixC
)

func (m Matrix) String() string {
	switch m {
	case MatrixA:
		return "A"
	case MatrixB:
		return "B"
	case MatrixC:
		return "C"
	default:
		return "-"
	}
}

// MatrixBases holds the base byte address of each matrix.
type MatrixBases struct {
	A uint64 `json:"a"`
	B uint64 `json:"b"`
	C uint64 `json:"c"`
}

// DefaultMatrixBases places A, B, and C 64KB apart, starting at 64KB.
func DefaultMatrixBases() MatrixBases {
	return MatrixBases{
		A: 0x10000,
		B: 0x20000,
		C: 0x30000,
	}
}

// A MatrixLayout maps matrix coordinates to byte addresses, assuming n x n
// row-major matrices. Whether the matrices overlap is up to the bases chosen.
type MatrixLayout struct {
	N           int
	ElementSize int
	Bases       MatrixBases
}

func (l MatrixLayout) base(m Matrix) uint64 {
	switch m {
	case MatrixA:
		return l.Bases.A
	case MatrixB:
		return l.Bases.B
	case MatrixC:
		return l.Bases.C
	default:
		panic(fmt.Sprintf("matrix %d has no base address", int(m)))
	}
}

// Address returns the byte address of an element of a matrix.
func (l MatrixLayout) Address(m Matrix, pos gemm.MatrixAddress) (uint64, error) {
	if pos.Row < 0 || pos.Row >= l.N || pos.Col < 0 || pos.Col >= l.N {
		return 0, fmt.Errorf("%w: %s%s in a %dx%d matrix",
			ErrOutOfRange, m, pos, l.N, l.N)
	}

	offset := uint64(pos.Row*l.N+pos.Col) * uint64(l.ElementSize)

	return l.base(m) + offset, nil
}
