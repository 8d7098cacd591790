// Package cache provides an optional write-back data cache built on the
// Akita cache directory. It sits in front of the data store and exposes
// the same word port, so the pipeline's architectural behavior is
// unchanged while hit/miss statistics are collected.
package cache

import (
	"encoding/binary"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
}

// DefaultConfig returns a small 4KB, 2-way, 32B-line data cache.
func DefaultConfig() Config {
	return Config{
		Size:          4 * 1024,
		Associativity: 2,
		BlockSize:     32,
	}
}

// Validate checks that the geometry describes at least one set of
// power-of-two, word-multiple blocks.
func (c Config) Validate() error {
	if c.BlockSize < 4 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of two >= 4, got %d", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0, got %d", c.Associativity)
	}
	way := c.Associativity * c.BlockSize
	if c.Size < way || c.Size%way != 0 {
		return fmt.Errorf("size %d must be a positive multiple of associativity*block_size (%d)",
			c.Size, way)
	}
	return nil
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
	// Bypasses counts accesses outside the backing store; they are sent
	// straight to it and never allocate a line.
	Bypasses uint64
}

// HitRate returns hits / (hits + misses).
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// BackingStore interface for the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches size bytes starting at addr.
	Read(addr uint32, size int) []byte
	// Write stores data starting at addr.
	Write(addr uint32, data []byte)
	// Contains reports whether [addr, addr+n) is backed.
	Contains(addr, n uint32) bool
	// ReadWord and WriteWord are the uncached word port.
	ReadWord(addr uint32) uint32
	WriteWord(addr, value uint32)
}

// Cache is a write-back, write-allocate data cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats   Statistics
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint32 {
	return addr &^ uint32(c.config.BlockSize-1)
}

// ReadWord reads the word containing addr.
func (c *Cache) ReadWord(addr uint32) uint32 {
	c.stats.Reads++
	addr &^= 3

	if c.bypass(addr) {
		return c.backing.ReadWord(addr)
	}

	data := c.access(addr)
	off := addr - c.blockAddr(addr)
	return binary.LittleEndian.Uint32(data[off : off+4])
}

// WriteWord writes the word containing addr. On a miss the block is
// fetched first, then written.
func (c *Cache) WriteWord(addr, value uint32) {
	c.stats.Writes++
	addr &^= 3

	if c.bypass(addr) {
		c.backing.WriteWord(addr, value)
		return
	}

	data := c.access(addr)
	off := addr - c.blockAddr(addr)
	binary.LittleEndian.PutUint32(data[off:off+4], value)

	block := c.directory.Lookup(0, uint64(c.blockAddr(addr)))
	block.IsDirty = true
}

// bypass reports whether the word at addr lies outside the backing store.
// Such words are never cached, so the store's out-of-range policy holds.
func (c *Cache) bypass(addr uint32) bool {
	if c.backing == nil || c.backing.Contains(addr, 4) {
		return false
	}
	c.stats.Bypasses++
	return true
}

// access returns the resident block data for addr, filling it on a miss.
func (c *Cache) access(addr uint32) []byte {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, uint64(blockAddr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.dataStore[c.blockIndex(block)]
	}

	c.stats.Misses++
	return c.fill(blockAddr)
}

// fill evicts a victim (writing it back if dirty) and loads blockAddr.
func (c *Cache) fill(blockAddr uint32) []byte {
	victim := c.directory.FindVictim(uint64(blockAddr))
	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(uint32(victim.Tag), victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		for i := range victimData {
			victimData[i] = 0
		}
	}

	// Tag stores the block-aligned address.
	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return victimData
}

// Invalidate drops the line holding addr without writing it back.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, uint64(c.blockAddr(addr)))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(uint32(block.Tag), c.dataStore[c.blockIndex(block)])
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
