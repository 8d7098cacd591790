package insts

// ALUOp selects the operation performed by the execute stage ALU.
type ALUOp uint8

// ALU operations.
const (
	ALUNop ALUOp = iota
	ALUAdd
	ALUSub
	ALUSLL
	ALUSRL
	ALUSRA
	ALUAnd
	ALUOr
	ALUXor
	ALUSLT
	ALUSLTU
	ALUAddPC // PC-relative add: pc + operand B
)

var aluOpNames = [...]string{
	ALUNop:   "nop",
	ALUAdd:   "add",
	ALUSub:   "sub",
	ALUSLL:   "sll",
	ALUSRL:   "srl",
	ALUSRA:   "sra",
	ALUAnd:   "and",
	ALUOr:    "or",
	ALUXor:   "xor",
	ALUSLT:   "slt",
	ALUSLTU:  "sltu",
	ALUAddPC: "addpc",
}

func (op ALUOp) String() string {
	if int(op) < len(aluOpNames) {
		return aluOpNames[op]
	}
	return "unknown"
}

// WBSource selects the value written back to the register file.
type WBSource uint8

// Writeback sources.
const (
	WBNone WBSource = iota
	WBALU
	WBMem
	WBPCPlus4
)

// Kind is the shape of an instruction as seen by the pipeline. Every
// control signal is derived from it.
type Kind uint8

// Instruction kinds. KindNone is the all-disabled shape.
const (
	KindNone Kind = iota
	KindALU
	KindALUImm
	KindLoad
	KindStore
	KindBranch
	KindJAL
	KindJALR
	KindLUI
	KindAUIPC
)

// Control is the control word carried from Decode through Writeback.
// The zero value disables every side effect.
type Control struct {
	Kind  Kind
	ALUOp ALUOp
}

// RegWrite reports whether the instruction writes a destination register.
func (c Control) RegWrite() bool {
	switch c.Kind {
	case KindALU, KindALUImm, KindLoad, KindJAL, KindJALR, KindLUI, KindAUIPC:
		return true
	default:
		return false
	}
}

// MemRead reports whether the instruction is a load.
func (c Control) MemRead() bool { return c.Kind == KindLoad }

// MemWrite reports whether the instruction is a store.
func (c Control) MemWrite() bool { return c.Kind == KindStore }

// UseImm reports whether ALU operand B is the immediate.
func (c Control) UseImm() bool {
	switch c.Kind {
	case KindALUImm, KindLoad, KindStore, KindJALR, KindLUI, KindAUIPC:
		return true
	default:
		return false
	}
}

// IsControlFlow reports whether the instruction may redirect fetch.
func (c Control) IsControlFlow() bool {
	return c.Kind == KindBranch || c.Kind == KindJAL || c.Kind == KindJALR
}

// IsLink reports whether the instruction writes its return address.
func (c Control) IsLink() bool {
	return c.Kind == KindJAL || c.Kind == KindJALR
}

// WBSource returns the writeback source.
func (c Control) WBSource() WBSource {
	switch c.Kind {
	case KindALU, KindALUImm, KindLUI, KindAUIPC:
		return WBALU
	case KindLoad:
		return WBMem
	case KindJAL, KindJALR:
		return WBPCPlus4
	default:
		return WBNone
	}
}

// DecodeControl derives the control word for decoded fields.
// Unrecognized encodings yield the zero Control.
func DecodeControl(f Fields) Control {
	switch f.Opcode {
	case OpReg:
		op, ok := regALUOp(f.Funct3, f.Funct7)
		if !ok {
			return Control{}
		}
		return Control{Kind: KindALU, ALUOp: op}
	case OpImm:
		return Control{Kind: KindALUImm, ALUOp: immALUOp(f.Funct3, f.Word)}
	case OpLoad:
		return Control{Kind: KindLoad, ALUOp: ALUAdd}
	case OpStore:
		return Control{Kind: KindStore, ALUOp: ALUAdd}
	case OpBranch:
		return Control{Kind: KindBranch, ALUOp: ALUSub}
	case OpJAL:
		return Control{Kind: KindJAL, ALUOp: ALUAddPC}
	case OpJALR:
		return Control{Kind: KindJALR, ALUOp: ALUAdd}
	case OpLUI:
		return Control{Kind: KindLUI, ALUOp: ALUAdd}
	case OpAUIPC:
		return Control{Kind: KindAUIPC, ALUOp: ALUAddPC}
	default:
		return Control{}
	}
}

// regALUOp selects the OP ALU operation. Only funct7 0x00 and 0x20
// are defined in RV32I; 0x20 is legal only for SUB and SRA.
func regALUOp(funct3, funct7 uint8) (ALUOp, bool) {
	alt := funct7 == Funct7Alt
	if funct7 != Funct7Base && !alt {
		return ALUNop, false
	}

	switch funct3 {
	case Funct3AddSub:
		if alt {
			return ALUSub, true
		}
		return ALUAdd, true
	case Funct3SRL:
		if alt {
			return ALUSRA, true
		}
		return ALUSRL, true
	}

	if alt {
		return ALUNop, false
	}
	return baseALUOp(funct3), true
}

// immALUOp selects the OP-IMM ALU operation. ADDI never subtracts and
// the right shifts are told apart by instruction bit 30.
func immALUOp(funct3 uint8, word uint32) ALUOp {
	if funct3 == Funct3SRL {
		if word&(1<<30) != 0 {
			return ALUSRA
		}
		return ALUSRL
	}
	return baseALUOp(funct3)
}

func baseALUOp(funct3 uint8) ALUOp {
	switch funct3 {
	case Funct3AddSub:
		return ALUAdd
	case Funct3SLL:
		return ALUSLL
	case Funct3SLT:
		return ALUSLT
	case Funct3SLTU:
		return ALUSLTU
	case Funct3XOR:
		return ALUXor
	case Funct3SRL:
		return ALUSRL
	case Funct3OR:
		return ALUOr
	default:
		return ALUAnd
	}
}
