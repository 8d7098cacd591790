package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/insts"
	"github.com/sarchlab/rvpipe/timing/cache"
)

// HookPosCommit marks a register file write. Item is a RegWrite.
var HookPosCommit = &sim.HookPos{Name: "Commit"}

// HookPosFlush marks a taken branch or jump. Item is the target PC.
var HookPosFlush = &sim.HookPos{Name: "Flush"}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of load-use stall cycles.
	Stalls uint64
	// Flushes is the number of taken branches and jumps.
	Flushes uint64
	// DataHazards is the number of cycles an operand was forwarded.
	DataHazards uint64
	// Loads and Stores count data memory accesses.
	Loads  uint64
	Stores uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// StagePCs is the program counter seen by each stage. Stages holding a
// bubble report 0.
type StagePCs struct {
	Fetch     uint32
	Decode    uint32
	Execute   uint32
	Memory    uint32
	Writeback uint32
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithBaseAddress sets the reset PC.
func WithBaseAddress(addr uint32) PipelineOption {
	return func(p *Pipeline) {
		p.baseAddr = addr
	}
}

// Pipeline implements a 5-stage in-order RV32I pipeline.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	*sim.HookableBase

	// Pipeline registers
	cur latches

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	hazardUnit *HazardUnit

	// Shared resources
	regFile *emu.RegFile
	dcache  *cache.Cache

	// Program counter
	pc       uint32
	baseAddr uint32

	resetAsserted bool

	lastWrite   RegWrite
	lastRetired MEMWBRegister

	stats Statistics
}

// NewPipeline creates a new 5-stage pipeline. The pipeline starts in the
// reset state with the PC at the base address.
func NewPipeline(
	regFile *emu.RegFile,
	imem InstructionMemory,
	dmem DataMemory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		HookableBase:   sim.NewHookableBase(),
		fetchStage:     NewFetchStage(imem),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(),
		memoryStage:    NewMemoryStage(dmem),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		regFile:        regFile,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.dcache != nil {
		p.memoryStage = NewMemoryStage(p.dcache)
	}

	p.pc = p.baseAddr

	return p
}

// PC returns the current fetch program counter.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// SetPC redirects fetch. In-flight instructions are not affected.
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// BaseAddress returns the reset PC.
func (p *Pipeline) BaseAddress() uint32 {
	return p.baseAddr
}

// GetIFID returns a copy of the IF/ID pipeline register.
func (p *Pipeline) GetIFID() IFIDRegister { return p.cur.ifid }

// GetIDEX returns a copy of the ID/EX pipeline register.
func (p *Pipeline) GetIDEX() IDEXRegister { return p.cur.idex }

// GetEXMEM returns a copy of the EX/MEM pipeline register.
func (p *Pipeline) GetEXMEM() EXMEMRegister { return p.cur.exmem }

// GetMEMWB returns a copy of the MEM/WB pipeline register.
func (p *Pipeline) GetMEMWB() MEMWBRegister { return p.cur.memwb }

// StagePCs returns the PC held at each stage.
func (p *Pipeline) StagePCs() StagePCs {
	pcs := StagePCs{Fetch: p.pc}
	if p.cur.ifid.Valid {
		pcs.Decode = p.cur.ifid.PC
	}
	if p.cur.idex.Valid {
		pcs.Execute = p.cur.idex.PC
	}
	if p.cur.exmem.Valid {
		pcs.Memory = p.cur.exmem.PC
	}
	if p.cur.memwb.Valid {
		pcs.Writeback = p.cur.memwb.PC
	}
	return pcs
}

// LastWrite returns the register write committed by the most recent
// cycle. Cycles that committed nothing report the zero RegWrite.
func (p *Pipeline) LastWrite() RegWrite {
	return p.lastWrite
}

// LastRetired returns the instruction that left MEM/WB in the most
// recent cycle, and whether one did.
func (p *Pipeline) LastRetired() (MEMWBRegister, bool) {
	return p.lastRetired, p.lastRetired.Valid
}

// Registers returns a copy of the register file.
func (p *Pipeline) Registers() [emu.NumRegs]uint32 {
	return p.regFile.Snapshot()
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// SetReset drives the reset input. While asserted, Tick holds the PC at
// the base address, keeps every pipeline register a bubble, and commits
// no register or memory write.
func (p *Pipeline) SetReset(asserted bool) {
	p.resetAsserted = asserted
}

// ResetAsserted reports the reset input.
func (p *Pipeline) ResetAsserted() bool {
	return p.resetAsserted
}

// Reset performs a one-shot reset: pipeline registers become bubbles,
// the PC returns to the base address, and statistics are cleared. The
// register file and memories are left alone.
func (p *Pipeline) Reset() {
	p.clearState()
	p.stats = Statistics{}
}

func (p *Pipeline) clearState() {
	p.cur = latches{}
	p.pc = p.baseAddr
	p.lastWrite = RegWrite{}
	p.lastRetired = MEMWBRegister{}
}

// RunCycles executes the pipeline for the specified number of cycles.
func (p *Pipeline) RunCycles(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		p.Tick()
	}
}

// RunUntil ticks until done returns true after a cycle or maxCycles
// cycles have run. It returns the cycles run and whether done was met.
func (p *Pipeline) RunUntil(done func(p *Pipeline) bool, maxCycles uint64) (uint64, bool) {
	for i := uint64(0); i < maxCycles; i++ {
		p.Tick()
		if done(p) {
			return i + 1, true
		}
	}
	return maxCycles, false
}

// Tick executes one pipeline cycle.
//
// Every stage reads only the pipeline registers, PC, and register file
// as they stood at the start of the cycle. The next pipeline registers
// are built in a separate latches value and swapped in together with the
// PC, the register write (from the old MEM/WB) and the store (from the
// old EX/MEM) at the end of the cycle.
//
// Hazard handling:
//   - Forwarding from EX/MEM and MEM/WB into Execute
//   - Decode takes the value MEM/WB commits this cycle
//   - One-cycle load-use stall: hold IF/ID and PC, bubble ID/EX
//   - Taken branches and jumps resolve in Execute and bubble IF/ID and ID/EX
func (p *Pipeline) Tick() {
	if p.resetAsserted {
		p.clearState()
		return
	}

	p.stats.Cycles++
	cur := &p.cur

	// Decode and hazard detection
	dec := p.decodeStage.Decode(&cur.ifid)
	dec.Rs1Value = p.hazardUnit.DecodeBypass(dec.Inst.Rs1, dec.Rs1Value, &cur.memwb)
	dec.Rs2Value = p.hazardUnit.DecodeBypass(dec.Inst.Rs2, dec.Rs2Value, &cur.memwb)

	loadUseHazard := cur.ifid.Valid &&
		p.hazardUnit.DetectLoadUseHazard(&cur.idex, dec.Inst.Rs1, dec.Inst.Rs2)

	// Execute
	forwarding := p.hazardUnit.DetectForwarding(&cur.idex, &cur.exmem, &cur.memwb)
	if forwarding.Any() {
		p.stats.DataHazards++
	}
	rs1Value := p.hazardUnit.GetForwardedValue(
		forwarding.ForwardRs1, cur.idex.Rs1Value, &cur.exmem, &cur.memwb)
	rs2Value := p.hazardUnit.GetForwardedValue(
		forwarding.ForwardRs2, cur.idex.Rs2Value, &cur.exmem, &cur.memwb)
	execResult := p.executeStage.Execute(&cur.idex, rs1Value, rs2Value)

	// Memory and writeback
	memResult := p.memoryStage.Access(&cur.exmem)
	write := p.writebackStage.Select(&cur.memwb)

	stalls := p.hazardUnit.ComputeStalls(loadUseHazard, execResult.BranchTaken)

	var next latches

	// IF/ID and PC
	nextPC := p.pc + 4
	switch {
	case stalls.FlushIF:
		nextPC = execResult.BranchTarget
	case stalls.StallIF:
		next.ifid = cur.ifid
		nextPC = p.pc
	default:
		next.ifid = IFIDRegister{
			Valid:           true,
			PC:              p.pc,
			InstructionWord: p.fetchStage.Fetch(p.pc),
		}
	}

	// ID/EX
	if cur.ifid.Valid && !stalls.FlushID && !stalls.InsertBubbleEX {
		next.idex = IDEXRegister{
			Valid:    true,
			PC:       cur.ifid.PC,
			Inst:     dec.Inst,
			Ctrl:     dec.Ctrl,
			Rs1Value: dec.Rs1Value,
			Rs2Value: dec.Rs2Value,
			Rd:       dec.Inst.Rd,
			Rs1:      dec.Inst.Rs1,
			Rs2:      dec.Inst.Rs2,
		}
	}

	// EX/MEM and MEM/WB always advance.
	if cur.idex.Valid {
		next.exmem = EXMEMRegister{
			Valid:      true,
			PC:         cur.idex.PC,
			Word:       cur.idex.Inst.Word,
			Ctrl:       cur.idex.Ctrl,
			ALUResult:  execResult.ALUResult,
			StoreValue: execResult.StoreValue,
			Rd:         cur.idex.Rd,
		}
	}
	if cur.exmem.Valid {
		next.memwb = MEMWBRegister{
			Valid:     true,
			PC:        cur.exmem.PC,
			Word:      cur.exmem.Word,
			Ctrl:      cur.exmem.Ctrl,
			ALUResult: cur.exmem.ALUResult,
			MemData:   memResult.MemData,
			Rd:        cur.exmem.Rd,
		}
	}

	p.updateStats(stalls, cur)

	// Commit
	p.writebackStage.Commit(write)
	p.memoryStage.Commit(&cur.exmem)
	p.lastWrite = write
	p.lastRetired = cur.memwb
	p.cur = next
	p.pc = nextPC

	p.invokeHooks(write, stalls, execResult)
}

func (p *Pipeline) updateStats(stalls StallResult, cur *latches) {
	if cur.memwb.Valid {
		p.stats.Instructions++
	}
	if stalls.StallIF && !stalls.FlushIF {
		p.stats.Stalls++
	}
	if stalls.FlushIF {
		p.stats.Flushes++
	}
	if cur.exmem.Valid {
		switch cur.exmem.Ctrl.Kind {
		case insts.KindLoad:
			p.stats.Loads++
		case insts.KindStore:
			p.stats.Stores++
		}
	}
}

func (p *Pipeline) invokeHooks(write RegWrite, stalls StallResult, execResult ExecuteResult) {
	if p.NumHooks() == 0 {
		return
	}

	if write.Enable {
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosCommit, Item: write})
	}
	if stalls.FlushIF {
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosFlush, Item: execResult.BranchTarget})
	}
}
