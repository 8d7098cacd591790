// Package pipeline provides the 5-stage pipeline implementation.
package pipeline

import "github.com/sarchlab/rvpipe/insts"

// IFIDRegister holds state between Fetch and Decode stages.
type IFIDRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	// An invalid register is a bubble.
	Valid bool

	// PC is the program counter of the fetched instruction.
	PC uint32

	// InstructionWord is the raw 32-bit instruction word.
	InstructionWord uint32
}

// Clear resets the IF/ID register to a bubble.
func (r *IFIDRegister) Clear() {
	*r = IFIDRegister{}
}

// IDEXRegister holds state between Decode and Execute stages.
type IDEXRegister struct {
	Valid bool
	PC    uint32

	// Inst is the decoded instruction.
	Inst insts.Fields

	// Ctrl is the control word derived in Decode.
	Ctrl insts.Control

	// Register values read in Decode.
	Rs1Value uint32
	Rs2Value uint32

	// Register numbers for hazard detection and forwarding.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8
}

// Clear resets the ID/EX register to a bubble.
func (r *IDEXRegister) Clear() {
	*r = IDEXRegister{}
}

// MemRead returns true if this is a load instruction.
func (r *IDEXRegister) MemRead() bool { return r.Valid && r.Ctrl.MemRead() }

// EXMEMRegister holds state between Execute and Memory stages.
type EXMEMRegister struct {
	Valid bool
	PC    uint32
	Word  uint32

	Ctrl insts.Control

	// ALU result (address for load/store, result for ALU ops).
	ALUResult uint32

	// Value to store for store instructions.
	StoreValue uint32

	// Destination register number.
	Rd uint8
}

// Clear resets the EX/MEM register to a bubble.
func (r *EXMEMRegister) Clear() {
	*r = EXMEMRegister{}
}

// RegWrite returns true if the instruction will write Rd.
func (r *EXMEMRegister) RegWrite() bool {
	return r.Valid && r.Ctrl.RegWrite() && r.Rd != 0
}

// ForwardValue returns the value this instruction will write back, as
// far as it is known before the memory access.
func (r *EXMEMRegister) ForwardValue() uint32 {
	if r.Ctrl.WBSource() == insts.WBPCPlus4 {
		return r.PC + 4
	}
	return r.ALUResult
}

// MEMWBRegister holds state between Memory and Writeback stages.
type MEMWBRegister struct {
	Valid bool
	PC    uint32
	Word  uint32

	Ctrl insts.Control

	// ALU result (for ALU instructions).
	ALUResult uint32

	// Data read from memory (for load instructions).
	MemData uint32

	// Destination register number.
	Rd uint8
}

// Clear resets the MEM/WB register to a bubble.
func (r *MEMWBRegister) Clear() {
	*r = MEMWBRegister{}
}

// RegWrite returns true if the instruction will write Rd.
func (r *MEMWBRegister) RegWrite() bool {
	return r.Valid && r.Ctrl.RegWrite() && r.Rd != 0
}

// Result selects the writeback value by source.
func (r *MEMWBRegister) Result() uint32 {
	switch r.Ctrl.WBSource() {
	case insts.WBMem:
		return r.MemData
	case insts.WBPCPlus4:
		return r.PC + 4
	default:
		return r.ALUResult
	}
}

// latches is the complete set of pipeline registers. The driver builds
// a new one each cycle from the current one and swaps it in whole.
type latches struct {
	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister
}
