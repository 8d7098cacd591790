package emu

import "github.com/sarchlab/rvpipe/insts"

// ALU implements the RV32I arithmetic and logic operations.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Compute applies op to operands a and b. pc is used only by ALUAddPC.
// Shift amounts use the low five bits of b.
func (u *ALU) Compute(op insts.ALUOp, a, b, pc uint32) uint32 {
	switch op {
	case insts.ALUAdd:
		return a + b
	case insts.ALUSub:
		return a - b
	case insts.ALUSLL:
		return a << (b & 0x1F)
	case insts.ALUSRL:
		return a >> (b & 0x1F)
	case insts.ALUSRA:
		return uint32(int32(a) >> (b & 0x1F))
	case insts.ALUAnd:
		return a & b
	case insts.ALUOr:
		return a | b
	case insts.ALUXor:
		return a ^ b
	case insts.ALUSLT:
		return boolToWord(int32(a) < int32(b))
	case insts.ALUSLTU:
		return boolToWord(a < b)
	case insts.ALUAddPC:
		return pc + b
	default:
		return 0
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
