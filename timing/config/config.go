// Package config holds the machine configuration of the simulated core:
// memory layout, clock frequency and the optional data cache.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvpipe/timing/cache"
)

// Config describes one simulated core.
type Config struct {
	// BaseAddress is the reset PC and the first instruction address.
	// Default: 0x1000.
	BaseAddress uint32 `json:"base_address"`

	// IMemSize is the size of the instruction store in bytes, starting
	// at BaseAddress. Default: 64 KiB.
	IMemSize uint32 `json:"imem_size"`

	// DMemBase and DMemSize place the data store. Default: 0, 64 KiB.
	DMemBase uint32 `json:"dmem_base"`
	DMemSize uint32 `json:"dmem_size"`

	// FreqMHz is the core clock. It only converts cycles to simulated
	// time. Default: 1000 MHz.
	FreqMHz float64 `json:"freq_mhz"`

	// DCache enables a data cache in front of the data store when set.
	DCache *cache.Config `json:"dcache,omitempty"`
}

// Default returns the default configuration, without a data cache.
func Default() *Config {
	return &Config{
		BaseAddress: 0x1000,
		IMemSize:    64 * 1024,
		DMemBase:    0,
		DMemSize:    64 * 1024,
		FreqMHz:     1000,
	}
}

// Frequency returns the core clock.
func (c *Config) Frequency() sim.Freq {
	return sim.Freq(c.FreqMHz) * sim.MHz
}

// Load reads a Config from a JSON file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Save writes the Config to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the memory layout, clock and cache geometry.
func (c *Config) Validate() error {
	if c.BaseAddress%4 != 0 {
		return fmt.Errorf("base_address 0x%x is not word aligned", c.BaseAddress)
	}
	if c.IMemSize == 0 || c.IMemSize%4 != 0 {
		return fmt.Errorf("imem_size must be a nonzero multiple of 4")
	}
	if c.DMemSize == 0 || c.DMemSize%4 != 0 {
		return fmt.Errorf("dmem_size must be a nonzero multiple of 4")
	}
	if c.DMemBase%4 != 0 {
		return fmt.Errorf("dmem_base 0x%x is not word aligned", c.DMemBase)
	}
	if uint64(c.BaseAddress)+uint64(c.IMemSize) > 1<<32 {
		return fmt.Errorf("instruction store exceeds the address space")
	}
	if uint64(c.DMemBase)+uint64(c.DMemSize) > 1<<32 {
		return fmt.Errorf("data store exceeds the address space")
	}
	if c.FreqMHz <= 0 {
		return fmt.Errorf("freq_mhz must be > 0")
	}
	if c.DCache != nil {
		if err := c.DCache.Validate(); err != nil {
			return fmt.Errorf("dcache: %w", err)
		}
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.DCache != nil {
		dcache := *c.DCache
		clone.DCache = &dcache
	}
	return &clone
}
