package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvpipe/insts"
	"github.com/sarchlab/rvpipe/timing/pipeline"
)

var (
	aluCtrl  = insts.Control{Kind: insts.KindALU, ALUOp: insts.ALUAdd}
	loadCtrl = insts.Control{Kind: insts.KindLoad, ALUOp: insts.ALUAdd}
	jalCtrl  = insts.Control{Kind: insts.KindJAL, ALUOp: insts.ALUAddPC}
)

var _ = Describe("HazardUnit", func() {
	var hazardUnit *pipeline.HazardUnit

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
	})

	Describe("DetectForwarding", func() {
		var idex *pipeline.IDEXRegister
		var exmem *pipeline.EXMEMRegister
		var memwb *pipeline.MEMWBRegister

		BeforeEach(func() {
			idex = &pipeline.IDEXRegister{Valid: true, Rs1: 1, Rs2: 2}
			exmem = &pipeline.EXMEMRegister{}
			memwb = &pipeline.MEMWBRegister{}
		})

		Context("when no forwarding is needed", func() {
			It("should return ForwardNone for both operands", func() {
				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
				Expect(result.Any()).To(BeFalse())
			})
		})

		Context("when forwarding from EX/MEM is needed", func() {
			It("should forward rs1 from EX/MEM", func() {
				*exmem = pipeline.EXMEMRegister{Valid: true, Ctrl: aluCtrl, Rd: 1}

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
			})

			It("should forward rs2 from EX/MEM", func() {
				*exmem = pipeline.EXMEMRegister{Valid: true, Ctrl: aluCtrl, Rd: 2}

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardFromEXMEM))
			})
		})

		Context("when forwarding from MEM/WB is needed", func() {
			It("should forward rs1 from MEM/WB", func() {
				*memwb = pipeline.MEMWBRegister{Valid: true, Ctrl: aluCtrl, Rd: 1}

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromMEMWB))
			})
		})

		Context("when both stages write the same register", func() {
			It("should prefer EX/MEM", func() {
				*exmem = pipeline.EXMEMRegister{Valid: true, Ctrl: aluCtrl, Rd: 1}
				*memwb = pipeline.MEMWBRegister{Valid: true, Ctrl: aluCtrl, Rd: 1}

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
			})
		})

		Context("with register 0", func() {
			It("should never forward", func() {
				idex.Rs1 = 0
				*exmem = pipeline.EXMEMRegister{Valid: true, Ctrl: aluCtrl, Rd: 0}
				*memwb = pipeline.MEMWBRegister{Valid: true, Ctrl: aluCtrl, Rd: 0}

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
			})
		})

		Context("when the producer does not write registers", func() {
			It("should not forward from a store or a bubble", func() {
				*exmem = pipeline.EXMEMRegister{
					Valid: true, Ctrl: insts.Control{Kind: insts.KindStore}, Rd: 1,
				}
				*memwb = pipeline.MEMWBRegister{Valid: false, Ctrl: aluCtrl, Rd: 1}

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
			})
		})

		It("should not forward into a bubble", func() {
			idex.Valid = false
			*exmem = pipeline.EXMEMRegister{Valid: true, Ctrl: aluCtrl, Rd: 1}

			result := hazardUnit.DetectForwarding(idex, exmem, memwb)

			Expect(result.Any()).To(BeFalse())
		})
	})

	Describe("GetForwardedValue", func() {
		It("should pick the source", func() {
			exmem := &pipeline.EXMEMRegister{Valid: true, Ctrl: aluCtrl, ALUResult: 100}
			memwb := &pipeline.MEMWBRegister{
				Valid: true, Ctrl: loadCtrl, ALUResult: 0x40, MemData: 200,
			}

			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardNone, 7, exmem, memwb)).
				To(Equal(uint32(7)))
			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardFromEXMEM, 7, exmem, memwb)).
				To(Equal(uint32(100)))
			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardFromMEMWB, 7, exmem, memwb)).
				To(Equal(uint32(200)))
		})

		It("should forward the return address of a link instruction", func() {
			exmem := &pipeline.EXMEMRegister{Valid: true, PC: 0x1000, Ctrl: jalCtrl, ALUResult: 0x1040}

			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardFromEXMEM, 0, exmem, &pipeline.MEMWBRegister{})).
				To(Equal(uint32(0x1004)))
		})
	})

	Describe("DetectLoadUseHazard", func() {
		var idex *pipeline.IDEXRegister

		BeforeEach(func() {
			idex = &pipeline.IDEXRegister{Valid: true, Ctrl: loadCtrl, Rd: 5}
		})

		It("should stall when rs1 uses the load destination", func() {
			Expect(hazardUnit.DetectLoadUseHazard(idex, 5, 2)).To(BeTrue())
		})

		It("should stall when rs2 uses the load destination", func() {
			Expect(hazardUnit.DetectLoadUseHazard(idex, 1, 5)).To(BeTrue())
		})

		It("should not stall for independent instructions", func() {
			Expect(hazardUnit.DetectLoadUseHazard(idex, 1, 2)).To(BeFalse())
		})

		It("should not stall for loads into x0", func() {
			idex.Rd = 0
			Expect(hazardUnit.DetectLoadUseHazard(idex, 0, 0)).To(BeFalse())
		})

		It("should not stall for non-load producers", func() {
			idex.Ctrl = aluCtrl
			Expect(hazardUnit.DetectLoadUseHazard(idex, 5, 5)).To(BeFalse())
		})

		It("should not stall behind a bubble", func() {
			idex.Valid = false
			Expect(hazardUnit.DetectLoadUseHazard(idex, 5, 5)).To(BeFalse())
		})
	})

	Describe("DecodeBypass", func() {
		It("should take the committing MEM/WB value", func() {
			memwb := &pipeline.MEMWBRegister{Valid: true, Ctrl: aluCtrl, Rd: 3, ALUResult: 55}
			Expect(hazardUnit.DecodeBypass(3, 1, memwb)).To(Equal(uint32(55)))
			Expect(hazardUnit.DecodeBypass(4, 1, memwb)).To(Equal(uint32(1)))
		})

		It("should ignore x0", func() {
			memwb := &pipeline.MEMWBRegister{Valid: true, Ctrl: aluCtrl, Rd: 0, ALUResult: 55}
			Expect(hazardUnit.DecodeBypass(0, 0, memwb)).To(Equal(uint32(0)))
		})
	})

	Describe("ComputeStalls", func() {
		It("should hold IF and bubble EX on a load-use hazard", func() {
			result := hazardUnit.ComputeStalls(true, false)
			Expect(result.StallIF).To(BeTrue())
			Expect(result.InsertBubbleEX).To(BeTrue())
			Expect(result.FlushIF).To(BeFalse())
		})

		It("should flush IF and ID on a taken branch", func() {
			result := hazardUnit.ComputeStalls(false, true)
			Expect(result.FlushIF).To(BeTrue())
			Expect(result.FlushID).To(BeTrue())
			Expect(result.StallIF).To(BeFalse())
		})
	})
})
