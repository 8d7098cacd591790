package emu

import (
	"encoding/binary"
	"fmt"
)

// Memory is a bounded, byte-addressable, little-endian store covering
// [Base, Base+Size). It serves as both the instruction store and the
// data store of the pipeline.
type Memory struct {
	base uint32
	data []byte

	outOfRange uint64
}

// NewMemory creates a zero-filled memory of size bytes starting at base.
func NewMemory(base, size uint32) *Memory {
	return &Memory{
		base: base,
		data: make([]byte, size),
	}
}

// Base returns the first valid address.
func (m *Memory) Base() uint32 { return m.base }

// Size returns the number of bytes in the store.
func (m *Memory) Size() uint32 { return uint32(len(m.data)) }

// Contains reports whether [addr, addr+n) lies inside the store.
func (m *Memory) Contains(addr uint32, n uint32) bool {
	if addr < m.base {
		return false
	}
	off := uint64(addr - m.base)
	return off+uint64(n) <= uint64(len(m.data))
}

// OutOfRange returns how many accesses missed the store. Missed reads
// returned zero and missed writes were dropped.
func (m *Memory) OutOfRange() uint64 { return m.outOfRange }

// Read8 reads a byte. Out-of-range reads return 0.
func (m *Memory) Read8(addr uint32) uint8 {
	if !m.Contains(addr, 1) {
		m.outOfRange++
		return 0
	}
	return m.data[addr-m.base]
}

// Write8 writes a byte. Out-of-range writes are dropped.
func (m *Memory) Write8(addr uint32, value uint8) {
	if !m.Contains(addr, 1) {
		m.outOfRange++
		return
	}
	m.data[addr-m.base] = value
}

// Read32 reads a little-endian word at addr. Out-of-range reads return 0.
func (m *Memory) Read32(addr uint32) uint32 {
	if !m.Contains(addr, 4) {
		m.outOfRange++
		return 0
	}
	off := addr - m.base
	return binary.LittleEndian.Uint32(m.data[off : off+4])
}

// Write32 writes a little-endian word at addr. Out-of-range writes are
// dropped.
func (m *Memory) Write32(addr uint32, value uint32) {
	if !m.Contains(addr, 4) {
		m.outOfRange++
		return
	}
	off := addr - m.base
	binary.LittleEndian.PutUint32(m.data[off:off+4], value)
}

// ReadInstruction returns the four bytes starting at addr. Fetch is not
// aligned, so a halfword-aligned PC reads across two words.
func (m *Memory) ReadInstruction(addr uint32) uint32 {
	return m.Read32(addr)
}

// ReadWord reads the data word containing addr.
func (m *Memory) ReadWord(addr uint32) uint32 {
	return m.Read32(addr &^ 3)
}

// WriteWord writes the data word containing addr.
func (m *Memory) WriteWord(addr, value uint32) {
	m.Write32(addr&^3, value)
}

// LoadBytes copies data into memory starting at addr.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	if !m.Contains(addr, uint32(len(data))) {
		return fmt.Errorf("load of %d bytes at 0x%08X is outside memory [0x%08X, 0x%08X)",
			len(data), addr, m.base, uint64(m.base)+uint64(len(m.data)))
	}
	copy(m.data[addr-m.base:], data)
	return nil
}

// LoadWords stores consecutive words starting at addr.
func (m *Memory) LoadWords(addr uint32, words ...uint32) error {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return m.LoadBytes(addr, buf)
}
