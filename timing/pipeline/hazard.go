package pipeline

// ForwardSource indicates where a forwarded value should come from.
type ForwardSource int

const (
	// ForwardNone means no forwarding needed - use register file value.
	ForwardNone ForwardSource = iota
	// ForwardFromEXMEM means forward from EX/MEM pipeline register.
	ForwardFromEXMEM
	// ForwardFromMEMWB means forward from MEM/WB pipeline register.
	ForwardFromMEMWB
)

func (s ForwardSource) String() string {
	switch s {
	case ForwardFromEXMEM:
		return "EX/MEM"
	case ForwardFromMEMWB:
		return "MEM/WB"
	default:
		return "RegFile"
	}
}

// ForwardingResult contains forwarding decisions for both source operands.
type ForwardingResult struct {
	// ForwardRs1 specifies the forwarding source for the rs1 operand.
	ForwardRs1 ForwardSource
	// ForwardRs2 specifies the forwarding source for the rs2 operand.
	// Store data is rs2, so it shares this selector.
	ForwardRs2 ForwardSource
}

// Any reports whether either operand is forwarded.
func (r ForwardingResult) Any() bool {
	return r.ForwardRs1 != ForwardNone || r.ForwardRs2 != ForwardNone
}

// StallResult contains stall and flush control signals.
type StallResult struct {
	// StallIF indicates the IF/ID register and PC hold.
	StallIF bool
	// InsertBubbleEX indicates a bubble is inserted into ID/EX.
	InsertBubbleEX bool
	// FlushIF indicates the IF/ID register is replaced with a bubble.
	FlushIF bool
	// FlushID indicates the ID/EX register is replaced with a bubble.
	FlushID bool
}

// HazardUnit detects data hazards and determines forwarding/stall signals.
// All methods are pure functions of their arguments.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// DetectLoadUseHazard reports whether the instruction in Decode reads
// the destination of a load currently in Execute. The loaded value is
// not available until MEM/WB, so one bubble is required.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXRegister, rs1, rs2 uint8) bool {
	if !idex.MemRead() {
		return false
	}

	// x0 never causes hazards
	if idex.Rd == 0 {
		return false
	}

	return idex.Rd == rs1 || idex.Rd == rs2
}

// DetectForwarding determines the operand sources for the instruction
// in ID/EX.
func (h *HazardUnit) DetectForwarding(
	idex *IDEXRegister,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardingResult {
	result := ForwardingResult{}

	if !idex.Valid {
		return result
	}

	result.ForwardRs1 = h.detectForwardForReg(idex.Rs1, exmem, memwb)
	result.ForwardRs2 = h.detectForwardForReg(idex.Rs2, exmem, memwb)

	return result
}

// detectForwardForReg checks if a specific register needs forwarding.
func (h *HazardUnit) detectForwardForReg(
	reg uint8,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardSource {
	if reg == 0 {
		return ForwardNone
	}

	// EX/MEM holds the more recent value.
	if exmem.RegWrite() && exmem.Rd == reg {
		return ForwardFromEXMEM
	}

	if memwb.RegWrite() && memwb.Rd == reg {
		return ForwardFromMEMWB
	}

	return ForwardNone
}

// GetForwardedValue returns the value to use based on forwarding decision.
func (h *HazardUnit) GetForwardedValue(
	forward ForwardSource,
	originalValue uint32,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) uint32 {
	switch forward {
	case ForwardFromEXMEM:
		return exmem.ForwardValue()
	case ForwardFromMEMWB:
		return memwb.Result()
	default:
		return originalValue
	}
}

// DecodeBypass returns the value Decode should latch for reg. The
// register file is read as of the start of the cycle; when MEM/WB is
// committing to the same register this cycle, its value wins so the
// instruction does not carry a stale operand past the writeback.
func (h *HazardUnit) DecodeBypass(reg uint8, regValue uint32, memwb *MEMWBRegister) uint32 {
	if reg != 0 && memwb.RegWrite() && memwb.Rd == reg {
		return memwb.Result()
	}
	return regValue
}

// ComputeStalls computes stall and flush signals based on hazard conditions.
func (h *HazardUnit) ComputeStalls(loadUseHazard bool, branchTaken bool) StallResult {
	result := StallResult{}

	// Load-use hazard: hold IF/ID and PC, insert bubble in EX
	if loadUseHazard {
		result.StallIF = true
		result.InsertBubbleEX = true
	}

	// Taken branch or jump: kill fetched/decoded instructions
	if branchTaken {
		result.FlushIF = true
		result.FlushID = true
	}

	return result
}
