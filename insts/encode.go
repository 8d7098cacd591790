package insts

// EncodeR builds an R-type instruction word.
func EncodeR(op Opcode, rd, funct3, rs1, rs2, funct7 uint8) uint32 {
	return uint32(funct7&0x7F)<<25 | uint32(rs2&0x1F)<<20 | uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 | uint32(rd&0x1F)<<7 | uint32(op&0x7F)
}

// EncodeI builds an I-type instruction word. imm is truncated to 12 bits.
func EncodeI(op Opcode, rd, funct3, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 | uint32(rd&0x1F)<<7 | uint32(op&0x7F)
}

// EncodeS builds an S-type instruction word. imm is truncated to 12 bits.
func EncodeS(op Opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7F)<<25 | uint32(rs2&0x1F)<<20 | uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 | (u&0x1F)<<7 | uint32(op&0x7F)
}

// EncodeB builds a B-type instruction word. imm is a byte offset; bit 0
// is dropped and the remainder truncated to 13 bits.
func EncodeB(op Opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>12)&0x1)<<31 | ((u>>5)&0x3F)<<25 | uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 | uint32(funct3&0x7)<<12 |
		((u>>1)&0xF)<<8 | ((u>>11)&0x1)<<7 | uint32(op&0x7F)
}

// EncodeU builds a U-type instruction word from the full 32-bit
// immediate; the low 12 bits are dropped.
func EncodeU(op Opcode, rd uint8, imm int32) uint32 {
	return uint32(imm)&0xFFFFF000 | uint32(rd&0x1F)<<7 | uint32(op&0x7F)
}

// EncodeJ builds a J-type instruction word. imm is a byte offset; bit 0
// is dropped and the remainder truncated to 21 bits.
func EncodeJ(op Opcode, rd uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>20)&0x1)<<31 | ((u>>1)&0x3FF)<<21 | ((u>>11)&0x1)<<20 |
		((u>>12)&0xFF)<<12 | uint32(rd&0x1F)<<7 | uint32(op&0x7F)
}

// Assembly helpers for building test programs.

// ADD encodes ADD rd, rs1, rs2.
func ADD(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpReg, rd, Funct3AddSub, rs1, rs2, Funct7Base)
}

// SUB encodes SUB rd, rs1, rs2.
func SUB(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpReg, rd, Funct3AddSub, rs1, rs2, Funct7Alt)
}

// ADDI encodes ADDI rd, rs1, imm.
func ADDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpImm, rd, Funct3AddSub, rs1, imm)
}

// SRAI encodes SRAI rd, rs1, shamt.
func SRAI(rd, rs1, shamt uint8) uint32 {
	return EncodeI(OpImm, rd, Funct3SRL, rs1, int32(shamt&0x1F)|0x400)
}

// LW encodes LW rd, imm(rs1).
func LW(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpLoad, rd, Funct3LW, rs1, imm)
}

// SW encodes SW rs2, imm(rs1).
func SW(rs2, rs1 uint8, imm int32) uint32 {
	return EncodeS(OpStore, Funct3LW, rs1, rs2, imm)
}

// BEQ encodes BEQ rs1, rs2, offset.
func BEQ(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(OpBranch, Funct3BEQ, rs1, rs2, offset)
}

// BNE encodes BNE rs1, rs2, offset.
func BNE(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(OpBranch, Funct3BNE, rs1, rs2, offset)
}

// JAL encodes JAL rd, offset.
func JAL(rd uint8, offset int32) uint32 {
	return EncodeJ(OpJAL, rd, offset)
}

// JALR encodes JALR rd, imm(rs1).
func JALR(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpJALR, rd, 0, rs1, imm)
}

// LUI encodes LUI rd, imm (imm is the full 32-bit value).
func LUI(rd uint8, imm int32) uint32 {
	return EncodeU(OpLUI, rd, imm)
}

// AUIPC encodes AUIPC rd, imm (imm is the full 32-bit value).
func AUIPC(rd uint8, imm int32) uint32 {
	return EncodeU(OpAUIPC, rd, imm)
}

// NOP is ADDI x0, x0, 0.
const NOP uint32 = 0x00000013
