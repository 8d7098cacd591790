package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/timing/cache"
	"github.com/sarchlab/rvpipe/timing/config"
	"github.com/sarchlab/rvpipe/timing/core"
)

// ResultReg is the register every benchmark leaves its result in (a0).
const ResultReg = 10

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of load-use stall cycles
	StallCycles uint64 `json:"stall_cycles"`

	// DataHazards is the number of cycles an operand was forwarded
	DataHazards uint64 `json:"data_hazards"`

	// PipelineFlushes is the number of taken branches and jumps
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// Loads and Stores count data memory accesses
	Loads  uint64 `json:"loads"`
	Stores uint64 `json:"stores"`

	// DCacheHits/Misses (if cache enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// Halted is false when the benchmark hit the cycle limit
	Halted bool `json:"halted"`

	// Result is the final value of ResultReg
	Result uint32 `json:"result"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the initial state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, dmem *emu.Memory)

	// Program is the RV32I machine code, loaded at the base address
	Program []uint32

	// ExpectedResult is the expected value of ResultReg (for validation)
	ExpectedResult uint32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableDCache enables data cache simulation
	EnableDCache bool

	// MaxCycles bounds each benchmark run
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableDCache: true,
		MaxCycles:    100000,
		Output:       os.Stdout,
		Verbose:      false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.MaxCycles == 0 {
		config.MaxCycles = DefaultConfig().MaxCycles
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// Benchmarks returns the benchmarks in the order RunAll runs them.
func (h *Harness) Benchmarks() []Benchmark {
	return h.benchmarks
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runBenchmark executes a single benchmark on a fresh core.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	cfg := config.Default()
	if h.config.EnableDCache {
		dcache := cache.DefaultConfig()
		cfg.DCache = &dcache
	}

	c, err := core.NewCore(cfg)
	if err != nil {
		return BenchmarkResult{}, err
	}

	if err := c.IMem().LoadWords(cfg.BaseAddress, bench.Program...); err != nil {
		return BenchmarkResult{}, err
	}

	if bench.Setup != nil {
		bench.Setup(c.RegFile(), c.DMem())
	}

	start := time.Now()
	_, halted := c.Run(h.config.MaxCycles)
	wallTime := time.Since(start)

	stats := c.Stats()
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		StallCycles:         stats.Stalls,
		DataHazards:         stats.DataHazards,
		PipelineFlushes:     stats.Flushes,
		Loads:               stats.Loads,
		Stores:              stats.Stores,
		Halted:              halted,
		Result:              c.RegFile().ReadReg(ResultReg),
		WallTime:            wallTime,
	}

	if stats.DCache != nil {
		result.DCacheHits = stats.DCache.Hits
		result.DCacheMisses = stats.DCache.Misses
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d cycles\n", bench.Name, stats.Cycles)
	}

	return result, nil
}

// FunctionalResult is the architectural outcome of a benchmark run on
// the untimed emulator.
type FunctionalResult struct {
	Result       uint32
	Instructions uint64
}

// RunFunctional executes bench on the functional emulator. A timing run
// of the same benchmark must retire the same instructions and leave the
// same result.
func RunFunctional(bench Benchmark, maxInstructions uint64) (FunctionalResult, error) {
	cfg := config.Default()
	imem := emu.NewMemory(cfg.BaseAddress, cfg.IMemSize)
	dmem := emu.NewMemory(cfg.DMemBase, cfg.DMemSize)

	if err := imem.LoadWords(cfg.BaseAddress, bench.Program...); err != nil {
		return FunctionalResult{}, fmt.Errorf("benchmark %s: %w", bench.Name, err)
	}

	e := emu.NewEmulator(imem, dmem,
		emu.WithHaltWord(core.HaltWord),
		emu.WithMaxInstructions(maxInstructions))
	if bench.Setup != nil {
		bench.Setup(e.RegFile(), dmem)
	}

	n, err := e.Run()
	if err != nil {
		return FunctionalResult{}, fmt.Errorf("benchmark %s: %w", bench.Name, err)
	}

	return FunctionalResult{
		Result:       e.RegFile().ReadReg(ResultReg),
		Instructions: n,
	}, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== rvpipe Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Halted: %v\n", r.Halted)
		_, _ = fmt.Fprintf(h.config.Output, "  Result (x10): %d\n", r.Result)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		_, _ = fmt.Fprintf(h.config.Output, "  Loads/Stores:         %d/%d\n", r.Loads, r.Stores)

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,data_hazards,flushes,loads,stores,dcache_hits,dcache_misses,result")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.DataHazards,
			r.PipelineFlushes,
			r.Loads,
			r.Stores,
			r.DCacheHits,
			r.DCacheMisses,
			r.Result,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// DCacheEnabled records the harness configuration used
	DCacheEnabled bool `json:"dcache_enabled"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			DCacheEnabled: h.config.EnableDCache,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
