// Package emu provides the functional building blocks of the RV32I core:
// the register file, the backing memory, the ALU, and an untimed
// reference emulator.
package emu

// NumRegs is the number of integer registers.
const NumRegs = 32

// RegFile represents the RV32I integer register file.
// X[0] is hard-wired to zero.
type RegFile struct {
	// X holds general-purpose registers x0-x31.
	X [NumRegs]uint32
}

// ReadReg reads a register value. Register 0 and out-of-range indices
// return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= NumRegs {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register. Writes to register 0 and
// out-of-range indices are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= NumRegs {
		return
	}
	r.X[reg] = value
}

// Snapshot returns a copy of all registers.
func (r *RegFile) Snapshot() [NumRegs]uint32 {
	regs := r.X
	regs[0] = 0
	return regs
}

// Clear zeroes every register.
func (r *RegFile) Clear() {
	r.X = [NumRegs]uint32{}
}
