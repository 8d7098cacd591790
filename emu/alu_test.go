package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/insts"
)

var _ = Describe("ALU", func() {
	alu := emu.NewALU()

	DescribeTable("Compute",
		func(op insts.ALUOp, a, b, want uint32) {
			Expect(alu.Compute(op, a, b, 0x1000)).To(Equal(want))
		},
		Entry("add", insts.ALUAdd, uint32(5), uint32(7), uint32(12)),
		Entry("add wraps", insts.ALUAdd, uint32(0xFFFFFFFF), uint32(2), uint32(1)),
		Entry("sub", insts.ALUSub, uint32(5), uint32(7), uint32(0xFFFFFFFE)),
		Entry("sll", insts.ALUSLL, uint32(1), uint32(31), uint32(0x80000000)),
		Entry("sll masks shamt", insts.ALUSLL, uint32(1), uint32(33), uint32(2)),
		Entry("srl", insts.ALUSRL, uint32(0x80000000), uint32(31), uint32(1)),
		Entry("sra", insts.ALUSRA, uint32(0x80000000), uint32(31), uint32(0xFFFFFFFF)),
		Entry("and", insts.ALUAnd, uint32(0xF0F0), uint32(0xFF00), uint32(0xF000)),
		Entry("or", insts.ALUOr, uint32(0xF0F0), uint32(0x0F0F), uint32(0xFFFF)),
		Entry("xor", insts.ALUXor, uint32(0xFFFF), uint32(0x0F0F), uint32(0xF0F0)),
		Entry("slt signed true", insts.ALUSLT, uint32(0xFFFFFFFF), uint32(1), uint32(1)),
		Entry("slt signed false", insts.ALUSLT, uint32(1), uint32(0xFFFFFFFF), uint32(0)),
		Entry("sltu unsigned false", insts.ALUSLTU, uint32(0xFFFFFFFF), uint32(1), uint32(0)),
		Entry("sltu unsigned true", insts.ALUSLTU, uint32(1), uint32(0xFFFFFFFF), uint32(1)),
		Entry("addpc", insts.ALUAddPC, uint32(99), uint32(0x20), uint32(0x1020)),
		Entry("nop", insts.ALUNop, uint32(1), uint32(2), uint32(0)),
	)
})
