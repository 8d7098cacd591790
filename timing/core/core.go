// Package core provides the cycle-accurate CPU core model.
// It builds the memories, the optional data cache and the pipeline from a
// config, and adds program loading and run-to-halt on top of the pipeline.
package core

import (
	"fmt"

	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/loader"
	"github.com/sarchlab/rvpipe/timing/cache"
	"github.com/sarchlab/rvpipe/timing/config"
	"github.com/sarchlab/rvpipe/timing/pipeline"
)

// HaltWord is JAL x0, 0, a jump to itself. The core halts when it
// retires one.
const HaltWord uint32 = 0x0000006F

// Stats holds performance statistics for the core.
type Stats struct {
	pipeline.Statistics

	// SimulatedTime is Cycles at the configured clock, in seconds.
	SimulatedTime float64

	// DCache holds data cache statistics when a cache is configured.
	DCache *cache.Statistics
}

// Core represents a cycle-accurate CPU core model.
// It wraps a 5-stage pipeline and provides a simple interface for simulation.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	config *config.Config

	// Shared resources
	regFile *emu.RegFile
	imem    *emu.Memory
	dmem    *emu.Memory
	dcache  *cache.Cache

	halted bool
}

// NewCore creates a Core from the given configuration.
func NewCore(cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid core config: %w", err)
	}

	c := &Core{
		config:  cfg.Clone(),
		regFile: &emu.RegFile{},
		imem:    emu.NewMemory(cfg.BaseAddress, cfg.IMemSize),
		dmem:    emu.NewMemory(cfg.DMemBase, cfg.DMemSize),
	}

	opts := []pipeline.PipelineOption{pipeline.WithBaseAddress(cfg.BaseAddress)}

	if cfg.DCache != nil {
		dcache, err := cache.New(*cfg.DCache, cache.NewMemoryBacking(c.dmem))
		if err != nil {
			return nil, fmt.Errorf("failed to create data cache: %w", err)
		}
		c.dcache = dcache
		opts = append(opts, pipeline.WithDataCache(dcache))
	}

	c.Pipeline = pipeline.NewPipeline(c.regFile, c.imem, c.dmem, opts...)

	return c, nil
}

// Config returns a copy of the core configuration.
func (c *Core) Config() *config.Config {
	return c.config.Clone()
}

// RegFile returns the architectural register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// IMem returns the instruction store.
func (c *Core) IMem() *emu.Memory {
	return c.imem
}

// DMem returns the data store. With a data cache configured it may hold
// stale data until Flush is called; use DataWord for the current value.
func (c *Core) DMem() *emu.Memory {
	return c.dmem
}

// DataWord reads a data word as the pipeline would see it. With a data
// cache the read counts as a cache access.
func (c *Core) DataWord(addr uint32) uint32 {
	if c.dcache != nil {
		return c.dcache.ReadWord(addr)
	}
	return c.dmem.ReadWord(addr)
}

// Flush writes dirty data cache lines back to the data store.
func (c *Core) Flush() {
	if c.dcache != nil {
		c.dcache.Flush()
	}
}

// LoadProgram copies prog into the memories and points fetch at its
// entry point.
func (c *Core) LoadProgram(prog *loader.Program) error {
	if err := prog.LoadInto(c.imem, c.dmem); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	c.Pipeline.SetPC(prog.EntryPoint)
	return nil
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint32) {
	c.Pipeline.SetPC(pc)
}

// SetReset drives the pipeline reset input.
func (c *Core) SetReset(asserted bool) {
	c.Pipeline.SetReset(asserted)
	if asserted {
		c.halted = false
	}
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()

	if retired, ok := c.Pipeline.LastRetired(); ok && retired.Word == HaltWord {
		c.halted = true
	}
}

// Halted returns true once the core has retired a HaltWord.
func (c *Core) Halted() bool {
	return c.halted
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	stats := Stats{
		Statistics:    pipeStats,
		SimulatedTime: float64(pipeStats.Cycles) / float64(c.config.Frequency()),
	}

	if dcacheStats, ok := c.Pipeline.DataCacheStats(); ok {
		stats.DCache = &dcacheStats
	}

	return stats
}

// Run executes the core until it halts or maxCycles cycles have run.
// It returns the cycles run and whether the core halted.
func (c *Core) Run(maxCycles uint64) (uint64, bool) {
	if c.halted {
		return 0, true
	}

	for i := uint64(0); i < maxCycles; i++ {
		c.Tick()
		if c.halted {
			return i + 1, true
		}
	}

	return maxCycles, false
}

// RunUntilPC executes the core until it retires the instruction at pc or
// maxCycles cycles have run. It stops early, reporting false, if the core
// halts first.
func (c *Core) RunUntilPC(pc uint32, maxCycles uint64) (uint64, bool) {
	if c.halted {
		return 0, false
	}

	for i := uint64(0); i < maxCycles; i++ {
		c.Tick()
		if retired, ok := c.Pipeline.LastRetired(); ok && retired.PC == pc {
			return i + 1, true
		}
		if c.halted {
			return i + 1, false
		}
	}

	return maxCycles, false
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !c.halted; i++ {
		c.Tick()
	}
	return !c.halted
}

// Reset returns the pipeline to its reset state and writes back the data
// cache. Registers and memory contents are kept.
func (c *Core) Reset() {
	c.Pipeline.Reset()
	if c.dcache != nil {
		c.dcache.Flush()
		c.dcache.ResetStats()
	}
	c.halted = false
}
