package emu

import "github.com/sarchlab/rvpipe/insts"

// EvalBranch evaluates a conditional branch. funct3 values that name no
// RV32I branch (2 and 3) are never taken.
func EvalBranch(funct3 uint8, a, b uint32) bool {
	switch funct3 {
	case insts.Funct3BEQ:
		return a == b
	case insts.Funct3BNE:
		return a != b
	case insts.Funct3BLT:
		return int32(a) < int32(b)
	case insts.Funct3BGE:
		return int32(a) >= int32(b)
	case insts.Funct3BLTU:
		return a < b
	case insts.Funct3BGEU:
		return a >= b
	default:
		return false
	}
}

// BranchTarget returns the PC-relative target used by branches and JAL.
func BranchTarget(pc uint32, imm int32) uint32 {
	return pc + uint32(imm)
}

// JumpRegisterTarget returns the JALR target: (base + imm) with bit 0
// cleared.
func JumpRegisterTarget(base uint32, imm int32) uint32 {
	return (base + uint32(imm)) &^ 1
}
