package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvpipe/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("R-type", func() {
		// ADD x3, x1, x2 -> 0x002081B3
		It("should decode ADD x3, x1, x2", func() {
			f := decoder.Decode(0x002081B3)

			Expect(f.Opcode).To(Equal(insts.OpReg))
			Expect(f.Format).To(Equal(insts.FormatR))
			Expect(f.Rd).To(Equal(uint8(3)))
			Expect(f.Rs1).To(Equal(uint8(1)))
			Expect(f.Rs2).To(Equal(uint8(2)))
			Expect(f.Funct3).To(Equal(uint8(0)))
			Expect(f.Funct7).To(Equal(uint8(0)))
			Expect(f.Imm).To(Equal(int32(0)))
		})

		// SUB x4, x3, x1 -> 0x40118233
		It("should decode SUB x4, x3, x1", func() {
			f := decoder.Decode(0x40118233)

			Expect(f.Rd).To(Equal(uint8(4)))
			Expect(f.Rs1).To(Equal(uint8(3)))
			Expect(f.Rs2).To(Equal(uint8(1)))
			Expect(f.Funct7).To(Equal(insts.Funct7Alt))
		})
	})

	Describe("I-type", func() {
		// ADDI x1, x1, 10 -> 0x00A08093
		It("should decode ADDI x1, x1, 10", func() {
			f := decoder.Decode(0x00A08093)

			Expect(f.Opcode).To(Equal(insts.OpImm))
			Expect(f.Rd).To(Equal(uint8(1)))
			Expect(f.Rs1).To(Equal(uint8(1)))
			Expect(f.Imm).To(Equal(int32(10)))
		})

		It("should leave rs2 zero for loads", func() {
			// LW x5, 0(x3) -> 0x0001A283; bits [24:20] are zero anyway,
			// so use a negative offset to put ones there.
			f := decoder.Decode(insts.LW(5, 3, -4))

			Expect(f.Opcode).To(Equal(insts.OpLoad))
			Expect(f.Rd).To(Equal(uint8(5)))
			Expect(f.Rs1).To(Equal(uint8(3)))
			Expect(f.Rs2).To(Equal(uint8(0)))
			Expect(f.Funct7).To(Equal(uint8(0)))
			Expect(f.Imm).To(Equal(int32(-4)))
		})

		It("should extract shamt and funct7 for SRAI", func() {
			f := decoder.Decode(insts.SRAI(2, 3, 7))

			Expect(f.Shamt).To(Equal(uint8(7)))
			Expect(f.Funct7).To(Equal(insts.Funct7Alt))
			Expect(f.Rs2).To(Equal(uint8(0)))
		})

		It("should not set funct7 for non-shift immediates", func() {
			f := decoder.Decode(insts.ADDI(1, 0, -1))

			Expect(f.Funct7).To(Equal(uint8(0)))
			Expect(f.Shamt).To(Equal(uint8(0)))
			Expect(f.Imm).To(Equal(int32(-1)))
		})
	})

	Describe("S-type and B-type", func() {
		It("should not report a destination for stores", func() {
			f := decoder.Decode(insts.SW(6, 2, 12))

			Expect(f.Format).To(Equal(insts.FormatS))
			Expect(f.Rd).To(Equal(uint8(0)))
			Expect(f.Rs1).To(Equal(uint8(2)))
			Expect(f.Rs2).To(Equal(uint8(6)))
			Expect(f.Imm).To(Equal(int32(12)))
		})

		// BEQ x7, x6, 8 -> 0x00638463
		It("should decode BEQ x7, x6, 8", func() {
			f := decoder.Decode(0x00638463)

			Expect(f.Opcode).To(Equal(insts.OpBranch))
			Expect(f.Rd).To(Equal(uint8(0)))
			Expect(f.Rs1).To(Equal(uint8(7)))
			Expect(f.Rs2).To(Equal(uint8(6)))
			Expect(f.Imm).To(Equal(int32(8)))
		})
	})

	Describe("U-type and J-type", func() {
		It("should zero rs1 and rs2 for LUI", func() {
			f := decoder.Decode(insts.LUI(5, 0x7FFFF000))

			Expect(f.Rd).To(Equal(uint8(5)))
			Expect(f.Rs1).To(Equal(uint8(0)))
			Expect(f.Rs2).To(Equal(uint8(0)))
			Expect(f.Funct3).To(Equal(uint8(0)))
			Expect(f.Imm).To(Equal(int32(0x7FFFF000)))
		})

		It("should decode JAL x1, -8", func() {
			f := decoder.Decode(insts.JAL(1, -8))

			Expect(f.Opcode).To(Equal(insts.OpJAL))
			Expect(f.Rd).To(Equal(uint8(1)))
			Expect(f.Rs1).To(Equal(uint8(0)))
			Expect(f.Imm).To(Equal(int32(-8)))
		})
	})

	Describe("unknown opcodes", func() {
		It("should zero every field", func() {
			f := decoder.Decode(0xFFFFFFFF)

			Expect(f.Format).To(Equal(insts.FormatUnknown))
			Expect(f.Rd).To(Equal(uint8(0)))
			Expect(f.Rs1).To(Equal(uint8(0)))
			Expect(f.Rs2).To(Equal(uint8(0)))
			Expect(f.Imm).To(Equal(int32(0)))
		})
	})
})

var _ = Describe("Immediate", func() {
	decoder := insts.NewDecoder()

	DescribeTable("round-trips through the encoder",
		func(word uint32, want int32) {
			f := decoder.Decode(word)
			Expect(f.Imm).To(Equal(want))
			Expect(insts.Immediate(f.Opcode, word)).To(Equal(want))
		},
		Entry("I max", insts.ADDI(1, 2, 2047), int32(2047)),
		Entry("I min", insts.ADDI(1, 2, -2048), int32(-2048)),
		Entry("I load", insts.LW(1, 2, -100), int32(-100)),
		Entry("I jalr", insts.JALR(1, 2, 33), int32(33)),
		Entry("S max", insts.SW(1, 2, 2047), int32(2047)),
		Entry("S min", insts.SW(1, 2, -2048), int32(-2048)),
		Entry("S mixed", insts.SW(1, 2, -37), int32(-37)),
		Entry("B max", insts.BEQ(1, 2, 4094), int32(4094)),
		Entry("B min", insts.BEQ(1, 2, -4096), int32(-4096)),
		Entry("B bit 11", insts.BNE(1, 2, 2048), int32(2048)),
		Entry("U lui", insts.LUI(1, 0x12345000), int32(0x12345000)),
		Entry("U negative", insts.AUIPC(1, -4096), int32(-4096)),
		Entry("J max", insts.JAL(1, 1048574), int32(1048574)),
		Entry("J min", insts.JAL(1, -1048576), int32(-1048576)),
		Entry("J bit 11", insts.JAL(0, 2048), int32(2048)),
	)

	It("should return zero for R-type and unknown opcodes", func() {
		Expect(insts.Immediate(insts.OpReg, 0xFFFFFFFF)).To(Equal(int32(0)))
		Expect(insts.Immediate(insts.Opcode(0x7F), 0xFFFFFFFF)).To(Equal(int32(0)))
	})
})
