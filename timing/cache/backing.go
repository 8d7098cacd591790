package cache

import (
	"github.com/sarchlab/rvpipe/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Contains reports whether [addr, addr+n) lies inside the memory.
func (m *MemoryBacking) Contains(addr, n uint32) bool {
	return m.memory.Contains(addr, n)
}

// Read fetches a block from the backing memory. Bytes outside the memory
// read as zero without counting as out-of-range accesses; the cache only
// fills blocks for words the memory holds.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		a := addr + uint32(i)
		if m.memory.Contains(a, 1) {
			data[i] = m.memory.Read8(a)
		}
	}
	return data
}

// Write stores a block to the backing memory. Bytes outside the memory
// are dropped.
func (m *MemoryBacking) Write(addr uint32, data []byte) {
	for i, b := range data {
		a := addr + uint32(i)
		if m.memory.Contains(a, 1) {
			m.memory.Write8(a, b)
		}
	}
}

// ReadWord reads a word without caching it.
func (m *MemoryBacking) ReadWord(addr uint32) uint32 {
	return m.memory.ReadWord(addr)
}

// WriteWord writes a word without caching it.
func (m *MemoryBacking) WriteWord(addr, value uint32) {
	m.memory.WriteWord(addr, value)
}
