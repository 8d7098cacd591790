// Package main provides the entry point for rvsim.
// rvsim runs an RV32I program on the cycle-accurate five-stage pipeline
// model and reports its timing.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvpipe/loader"
	"github.com/sarchlab/rvpipe/timing/config"
	"github.com/sarchlab/rvpipe/timing/core"
	"github.com/sarchlab/rvpipe/timing/pipeline"
)

const (
	exitHalted  = 0
	exitError   = 1
	exitTimeout = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	configPath string
	base       uint64
	maxCycles  uint64
	haltPC     uint64
	dumpRegs   bool
	verbose    bool
	program    string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("rvsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to core configuration JSON file")
	fs.Uint64Var(&opts.base, "base", 0, "Load address of a raw binary (default: config base_address)")
	fs.Uint64Var(&opts.maxCycles, "max-cycles", 1000000, "Stop after this many cycles")
	fs.Uint64Var(&opts.haltPC, "halt-pc", 0, "Stop when the instruction at this PC retires (0 disables)")
	fs.BoolVar(&opts.dumpRegs, "dump-regs", false, "Print the register file at exit")
	fs.BoolVar(&opts.verbose, "v", false, "Trace register writes and redirects")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rvsim [options] <program.elf|program.bin>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return nil, fmt.Errorf("missing program path")
	}
	opts.program = fs.Arg(0)

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitError
	}

	cfg := config.Default()
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return exitError
		}
	}

	base := cfg.BaseAddress
	if opts.base != 0 {
		base = uint32(opts.base)
	}

	prog, err := loader.LoadFile(opts.program, base)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	c, err := core.NewCore(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating core: %v\n", err)
		return exitError
	}

	if err := c.LoadProgram(prog); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	if opts.verbose {
		fmt.Fprintf(stdout, "Loaded: %s\n", opts.program)
		fmt.Fprintf(stdout, "Entry point: 0x%08X\n", prog.EntryPoint)
		fmt.Fprintf(stdout, "Segments: %d\n", len(prog.Segments))
		c.Pipeline.AcceptHook(&traceHook{out: stdout})
	}

	var done bool
	if opts.haltPC != 0 {
		_, done = c.RunUntilPC(uint32(opts.haltPC), opts.maxCycles)
	} else {
		_, done = c.Run(opts.maxCycles)
	}
	c.Flush()

	printReport(stdout, opts.program, c, done)
	if opts.dumpRegs {
		printRegisters(stdout, c)
	}

	if !done {
		return exitTimeout
	}
	return exitHalted
}

func printReport(out io.Writer, programPath string, c *core.Core, done bool) {
	stats := c.Stats()

	status := "halted"
	if !done {
		status = "cycle limit reached"
	}

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Program: %s\n", programPath)
	fmt.Fprintf(out, "Status: %s\n", status)
	fmt.Fprintf(out, "Final PC: 0x%08X\n", c.Pipeline.PC())
	fmt.Fprintf(out, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(out, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(out, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(out, "Simulated time: %.3f us\n", stats.SimulatedTime*1e6)
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Pipeline Events:\n")
	fmt.Fprintf(out, "  Load-use stalls:    %d\n", stats.Stalls)
	fmt.Fprintf(out, "  Flushes:            %d\n", stats.Flushes)
	fmt.Fprintf(out, "  Forwarding cycles:  %d\n", stats.DataHazards)
	fmt.Fprintf(out, "  Loads:              %d\n", stats.Loads)
	fmt.Fprintf(out, "  Stores:             %d\n", stats.Stores)

	if stats.DCache != nil {
		d := stats.DCache
		fmt.Fprintf(out, "\n")
		fmt.Fprintf(out, "Data Cache:\n")
		fmt.Fprintf(out, "  Hits:       %d\n", d.Hits)
		fmt.Fprintf(out, "  Misses:     %d\n", d.Misses)
		fmt.Fprintf(out, "  Hit rate:   %.1f%%\n", 100*d.HitRate())
		fmt.Fprintf(out, "  Evictions:  %d\n", d.Evictions)
		fmt.Fprintf(out, "  Writebacks: %d\n", d.Writebacks)
		fmt.Fprintf(out, "  Bypasses:   %d\n", d.Bypasses)
	}
}

func printRegisters(out io.Writer, c *core.Core) {
	regs := c.Pipeline.Registers()

	fmt.Fprintf(out, "\nRegisters:\n")
	for i := 0; i < len(regs); i += 4 {
		fmt.Fprintf(out, "  x%-2d 0x%08X  x%-2d 0x%08X  x%-2d 0x%08X  x%-2d 0x%08X\n",
			i, regs[i], i+1, regs[i+1], i+2, regs[i+2], i+3, regs[i+3])
	}
}

// traceHook prints every register write and control-flow redirect.
type traceHook struct {
	out io.Writer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	p, ok := ctx.Domain.(*pipeline.Pipeline)
	if !ok {
		return
	}

	switch ctx.Pos {
	case pipeline.HookPosCommit:
		w := ctx.Item.(pipeline.RegWrite)
		fmt.Fprintf(h.out, "[%6d] x%-2d <- 0x%08X\n", p.Stats().Cycles, w.Rd, w.Value)
	case pipeline.HookPosFlush:
		fmt.Fprintf(h.out, "[%6d] redirect -> 0x%08X\n", p.Stats().Cycles, ctx.Item.(uint32))
	}
}
