// Command benchmark runs the rvpipe timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results in JSON format
//	-core       Run only the 3 core benchmarks
//	-no-dcache  Disable data cache simulation
//	-validate   Check each result against the functional emulator
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rvpipe/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	noDCache := flag.Bool("no-dcache", false, "Disable data cache simulation")
	validate := flag.Bool("validate", false, "Check results against the functional emulator")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.EnableDCache = !*noDCache
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	plain := !*csvOutput && !*jsonOutput
	if plain {
		fmt.Println("rvpipe Timing Benchmark Harness")
		fmt.Println("===============================")
		fmt.Printf("D-Cache: %v\n", config.EnableDCache)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *validate {
		if err := validateResults(harness, results, config.MaxCycles); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		failed := 0
		for _, r := range results {
			if !r.Halted {
				failed++
			}
		}

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Benchmarks:   %d (%d hit the cycle limit)\n", summary.TotalBenchmarks, failed)
		fmt.Printf("Cycles:       %d\n", summary.TotalCycles)
		fmt.Printf("Instructions: %d\n", summary.TotalInstructions)
		fmt.Printf("Average CPI:  %.3f\n", summary.AverageCPI)
	}
}

// validateResults reruns each benchmark functionally and compares the
// architectural outcome with its timing result.
func validateResults(h *benchmarks.Harness, results []benchmarks.BenchmarkResult, limit uint64) error {
	for i, bench := range h.Benchmarks() {
		want, err := benchmarks.RunFunctional(bench, limit)
		if err != nil {
			return err
		}

		got := results[i]
		if got.Result != want.Result || got.InstructionsRetired != want.Instructions {
			return fmt.Errorf("%s: timing (x10=%d, %d insts) != functional (x10=%d, %d insts)",
				bench.Name, got.Result, got.InstructionsRetired, want.Result, want.Instructions)
		}
	}
	return nil
}
