// Command gemmcache generates GEMM access traces and simulates how a
// set-associative cache serves them.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/gemmcache/gemmcache/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
