package insts

// Opcode is the 7-bit major opcode in bits [6:0] of an instruction word.
type Opcode uint8

// RV32I major opcodes.
const (
	OpLoad   Opcode = 0b0000011
	OpImm    Opcode = 0b0010011
	OpAUIPC  Opcode = 0b0010111
	OpStore  Opcode = 0b0100011
	OpReg    Opcode = 0b0110011
	OpLUI    Opcode = 0b0110111
	OpBranch Opcode = 0b1100011
	OpJALR   Opcode = 0b1100111
	OpJAL    Opcode = 0b1101111
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// FormatOf returns the encoding format used by an opcode.
func FormatOf(op Opcode) Format {
	switch op {
	case OpReg:
		return FormatR
	case OpImm, OpLoad, OpJALR:
		return FormatI
	case OpStore:
		return FormatS
	case OpBranch:
		return FormatB
	case OpLUI, OpAUIPC:
		return FormatU
	case OpJAL:
		return FormatJ
	default:
		return FormatUnknown
	}
}

// Funct3 values for OP and OP-IMM.
const (
	Funct3AddSub uint8 = 0b000
	Funct3SLL    uint8 = 0b001
	Funct3SLT    uint8 = 0b010
	Funct3SLTU   uint8 = 0b011
	Funct3XOR    uint8 = 0b100
	Funct3SRL    uint8 = 0b101 // SRL and SRA
	Funct3OR     uint8 = 0b110
	Funct3AND    uint8 = 0b111
)

// Funct3 values for BRANCH.
const (
	Funct3BEQ  uint8 = 0b000
	Funct3BNE  uint8 = 0b001
	Funct3BLT  uint8 = 0b100
	Funct3BGE  uint8 = 0b101
	Funct3BLTU uint8 = 0b110
	Funct3BGEU uint8 = 0b111
)

// Funct3LW selects a word-sized load or store.
const Funct3LW uint8 = 0b010

// Funct7 values for OP.
const (
	Funct7Base uint8 = 0b0000000
	Funct7Alt  uint8 = 0b0100000 // SUB, SRA, SRAI
)

// Fields is a decoded RV32I instruction. Fields the instruction's format
// does not define are zero, so hazard and forwarding comparisons never
// match on stray bits.
type Fields struct {
	Word   uint32 // Raw instruction word
	Opcode Opcode
	Format Format

	Rd     uint8 // Destination register
	Rs1    uint8 // First source register
	Rs2    uint8 // Second source register
	Funct3 uint8
	Funct7 uint8 // OP, and the shift forms of OP-IMM
	Shamt  uint8 // Shift amount for SLLI/SRLI/SRAI

	Imm int32 // Sign- or zero-extended immediate
}

// Decoder decodes RV32I machine code into instruction fields.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode splits a 32-bit instruction word into its fields.
func (d *Decoder) Decode(word uint32) Fields {
	op := Opcode(word & 0x7F)
	f := Fields{
		Word:   word,
		Opcode: op,
		Format: FormatOf(op),
		Imm:    Immediate(op, word),
	}

	rd := uint8((word >> 7) & 0x1F)
	funct3 := uint8((word >> 12) & 0x7)
	rs1 := uint8((word >> 15) & 0x1F)
	rs2 := uint8((word >> 20) & 0x1F)
	funct7 := uint8((word >> 25) & 0x7F)

	switch f.Format {
	case FormatR:
		f.Rd, f.Rs1, f.Rs2 = rd, rs1, rs2
		f.Funct3, f.Funct7 = funct3, funct7
	case FormatI:
		f.Rd, f.Rs1, f.Funct3 = rd, rs1, funct3
		if op == OpImm && (funct3 == Funct3SLL || funct3 == Funct3SRL) {
			f.Funct7 = funct7
			f.Shamt = rs2
		}
	case FormatS, FormatB:
		f.Rs1, f.Rs2, f.Funct3 = rs1, rs2, funct3
	case FormatU, FormatJ:
		f.Rd = rd
	}

	return f
}

// Immediate generates the 32-bit immediate for an instruction word.
// Opcodes without an immediate, including unrecognized ones, yield 0.
func Immediate(op Opcode, word uint32) int32 {
	switch FormatOf(op) {
	case FormatI:
		return int32(word) >> 20
	case FormatS:
		imm := (word>>25)<<5 | (word>>7)&0x1F
		return signExtend(imm, 12)
	case FormatB:
		imm := (word>>31)<<12 | // imm[12]
			((word>>7)&0x1)<<11 | // imm[11]
			((word>>25)&0x3F)<<5 | // imm[10:5]
			((word>>8)&0xF)<<1 // imm[4:1]
		return signExtend(imm, 13)
	case FormatU:
		return int32(word & 0xFFFFF000)
	case FormatJ:
		imm := (word>>31)<<20 | // imm[20]
			((word>>12)&0xFF)<<12 | // imm[19:12]
			((word>>20)&0x1)<<11 | // imm[11]
			((word>>21)&0x3FF)<<1 // imm[10:1]
		return signExtend(imm, 21)
	default:
		return 0
	}
}

// signExtend extends the low `bits` bits of v using bit (bits-1) as sign.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
