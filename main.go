// Package main provides the entry point for rvpipe.
// rvpipe is a cycle-accurate five-stage RV32I pipeline simulator built on
// Akita.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvpipe - RV32I Five-Stage Pipeline Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] <program.elf|program.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config     Path to core configuration JSON file")
	fmt.Println("  -base       Load address of a raw binary")
	fmt.Println("  -max-cycles Stop after this many cycles")
	fmt.Println("  -halt-pc    Stop when the instruction at this PC retires")
	fmt.Println("  -dump-regs  Print the register file at exit")
	fmt.Println("  -v          Trace register writes and redirects")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
