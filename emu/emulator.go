package emu

import (
	"fmt"

	"github.com/sarchlab/rvpipe/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the instruction executed was the halt word.
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes RV32I instructions functionally, one per step, with
// no timing. It shares the decoder, ALU, and branch logic with the
// timing model, so both must agree on architectural state.
type Emulator struct {
	regFile *RegFile
	imem    *Memory
	dmem    *Memory
	decoder *insts.Decoder
	alu     *ALU

	pc uint32

	haltWord    uint32
	haltEnabled bool

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithHaltWord makes Step report Halted after executing word.
func WithHaltWord(word uint32) EmulatorOption {
	return func(e *Emulator) {
		e.haltWord = word
		e.haltEnabled = true
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithRegFile makes the emulator use an existing register file.
func WithRegFile(regFile *RegFile) EmulatorOption {
	return func(e *Emulator) {
		e.regFile = regFile
	}
}

// NewEmulator creates an emulator over separate instruction and data
// memories.
func NewEmulator(imem, dmem *Memory, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		imem:    imem,
		dmem:    dmem,
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
		pc:      imem.Base(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// PC returns the address of the next instruction.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// SetPC sets the address of the next instruction.
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: fmt.Errorf("max instructions reached at pc 0x%08X", e.pc),
		}
	}

	word := e.imem.ReadInstruction(e.pc)
	inst := e.decoder.Decode(word)
	e.execute(inst)
	e.instructionCount++

	return StepResult{Halted: e.haltEnabled && word == e.haltWord}
}

// Run executes instructions until the halt word retires or an error
// occurs. It returns the number of instructions executed.
func (e *Emulator) Run() (uint64, error) {
	for {
		result := e.Step()
		if result.Err != nil {
			return e.instructionCount, result.Err
		}
		if result.Halted {
			return e.instructionCount, nil
		}
	}
}

// execute applies one decoded instruction to the architectural state.
// Unrecognized encodings only advance the PC.
func (e *Emulator) execute(inst insts.Fields) {
	ctrl := insts.DecodeControl(inst)
	next := e.pc + 4

	a := e.regFile.ReadReg(inst.Rs1)
	b := e.regFile.ReadReg(inst.Rs2)
	opB := b
	if ctrl.UseImm() {
		opB = uint32(inst.Imm)
	}
	aluResult := e.alu.Compute(ctrl.ALUOp, a, opB, e.pc)

	var value uint32
	switch ctrl.Kind {
	case insts.KindLoad:
		value = e.dmem.ReadWord(aluResult)
	case insts.KindStore:
		e.dmem.WriteWord(aluResult, b)
	case insts.KindBranch:
		if EvalBranch(inst.Funct3, a, b) {
			next = BranchTarget(e.pc, inst.Imm)
		}
	case insts.KindJAL:
		value = e.pc + 4
		next = BranchTarget(e.pc, inst.Imm)
	case insts.KindJALR:
		value = e.pc + 4
		next = JumpRegisterTarget(a, inst.Imm)
	default:
		value = aluResult
	}

	if ctrl.RegWrite() {
		e.regFile.WriteReg(inst.Rd, value)
	}
	e.pc = next
}
