package pipeline

import (
	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/insts"
)

// InstructionMemory is the read-only instruction port. It returns the
// little-endian word at addr, or 0 for addresses it does not cover.
type InstructionMemory interface {
	ReadInstruction(addr uint32) uint32
}

// DataMemory is the data port. ReadWord returns 0 for addresses it does
// not cover; WriteWord drops such writes.
type DataMemory interface {
	ReadWord(addr uint32) uint32
	WriteWord(addr, value uint32)
}

// FetchStage handles instruction fetch from memory.
type FetchStage struct {
	memory InstructionMemory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory InstructionMemory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Fetch reads the instruction at the given PC.
func (s *FetchStage) Fetch(pc uint32) uint32 {
	return s.memory.ReadInstruction(pc)
}

// DecodeStage handles instruction decode and register read.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// DecodeResult holds the result of the decode stage.
type DecodeResult struct {
	Inst     insts.Fields
	Ctrl     insts.Control
	Rs1Value uint32
	Rs2Value uint32
}

// Decode decodes the instruction in IF/ID and reads its source
// registers. A bubble decodes to the zero result.
func (s *DecodeStage) Decode(ifid *IFIDRegister) DecodeResult {
	if !ifid.Valid {
		return DecodeResult{}
	}

	inst := s.decoder.Decode(ifid.InstructionWord)
	ctrl := insts.DecodeControl(inst)
	if ctrl.Kind == insts.KindNone {
		// Unrecognized: no destination, no sources.
		inst = insts.Fields{Word: inst.Word, Opcode: inst.Opcode}
	}

	return DecodeResult{
		Inst:     inst,
		Ctrl:     ctrl,
		Rs1Value: s.regFile.ReadReg(inst.Rs1),
		Rs2Value: s.regFile.ReadReg(inst.Rs2),
	}
}

// ExecuteStage handles ALU operations and branch resolution.
type ExecuteStage struct {
	alu *emu.ALU
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{alu: emu.NewALU()}
}

// ExecuteResult holds the result of the execute stage.
type ExecuteResult struct {
	ALUResult  uint32
	StoreValue uint32

	// Branch result.
	BranchTaken  bool
	BranchTarget uint32
}

// Execute computes the ALU result and resolves control flow for the
// instruction in ID/EX. rs1Val and rs2Val are the forwarded operands.
func (s *ExecuteStage) Execute(idex *IDEXRegister, rs1Val, rs2Val uint32) ExecuteResult {
	result := ExecuteResult{}
	if !idex.Valid {
		return result
	}

	ctrl := idex.Ctrl
	imm := idex.Inst.Imm

	opB := rs2Val
	if ctrl.UseImm() {
		opB = uint32(imm)
	}

	result.ALUResult = s.alu.Compute(ctrl.ALUOp, rs1Val, opB, idex.PC)
	result.StoreValue = rs2Val

	switch ctrl.Kind {
	case insts.KindBranch:
		if emu.EvalBranch(idex.Inst.Funct3, rs1Val, rs2Val) {
			result.BranchTaken = true
			result.BranchTarget = emu.BranchTarget(idex.PC, imm)
		}
	case insts.KindJAL:
		result.BranchTaken = true
		result.BranchTarget = emu.BranchTarget(idex.PC, imm)
	case insts.KindJALR:
		result.BranchTaken = true
		result.BranchTarget = emu.JumpRegisterTarget(rs1Val, imm)
	}

	return result
}

// MemoryStage handles memory load/store operations.
type MemoryStage struct {
	memory DataMemory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory DataMemory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// MemoryResult holds the result of the memory stage.
type MemoryResult struct {
	MemData uint32
}

// Access performs the load for the instruction in EX/MEM. Disabled
// reads return zero. Stores are applied by Commit.
func (s *MemoryStage) Access(exmem *EXMEMRegister) MemoryResult {
	if !exmem.Valid || !exmem.Ctrl.MemRead() {
		return MemoryResult{}
	}
	return MemoryResult{MemData: s.memory.ReadWord(exmem.ALUResult)}
}

// Commit performs the store for the instruction in EX/MEM.
func (s *MemoryStage) Commit(exmem *EXMEMRegister) bool {
	if !exmem.Valid || !exmem.Ctrl.MemWrite() {
		return false
	}
	s.memory.WriteWord(exmem.ALUResult, exmem.StoreValue)
	return true
}

// RegWrite describes one register file write.
type RegWrite struct {
	Rd     uint8
	Value  uint32
	Enable bool
}

// WritebackStage handles register file writeback.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Select chooses the write for the instruction in MEM/WB. A disabled
// write is reported as the zero RegWrite.
func (s *WritebackStage) Select(memwb *MEMWBRegister) RegWrite {
	if !memwb.RegWrite() {
		return RegWrite{}
	}
	return RegWrite{Rd: memwb.Rd, Value: memwb.Result(), Enable: true}
}

// Commit writes the selected value to the register file.
func (s *WritebackStage) Commit(w RegWrite) {
	if !w.Enable || w.Rd == 0 {
		return
	}
	s.regFile.WriteReg(w.Rd, w.Value)
}
