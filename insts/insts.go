// Package insts provides RV32I instruction definitions and decoding.
//
// This package turns 32-bit RISC-V machine words into structured field
// sets and derives the control word each pipeline stage consumes. It
// supports the base integer subset:
//   - Register-register ALU ops: ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND
//   - Register-immediate ALU ops: ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI
//   - Loads and stores (word granular)
//   - Branches: BEQ, BNE, BLT, BGE, BLTU, BGEU
//   - Jumps: JAL, JALR
//   - Upper immediates: LUI, AUIPC
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	f := decoder.Decode(0x00A08093) // ADDI x1, x1, 10
//	ctrl := insts.DecodeControl(f)
//	fmt.Printf("rd=%d rs1=%d imm=%d alu=%v\n", f.Rd, f.Rs1, f.Imm, ctrl.ALUOp)
package insts
