package gemm

import "errors"

// ErrInvalidArgument is returned when the trace parameters cannot describe a
// GEMM iteration space.
var ErrInvalidArgument = errors.New("invalid argument")
