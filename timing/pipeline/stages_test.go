package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/insts"
	"github.com/sarchlab/rvpipe/timing/pipeline"
)

var _ = Describe("Pipeline Stages", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory(0x1000, 0x1000)
		decoder = insts.NewDecoder()
	})

	// idexFor builds a valid ID/EX register for word at pc.
	idexFor := func(word, pc uint32) *pipeline.IDEXRegister {
		f := decoder.Decode(word)
		return &pipeline.IDEXRegister{
			Valid: true,
			PC:    pc,
			Inst:  f,
			Ctrl:  insts.DecodeControl(f),
			Rd:    f.Rd,
			Rs1:   f.Rs1,
			Rs2:   f.Rs2,
		}
	}

	Describe("FetchStage", func() {
		It("should fetch instruction from memory", func() {
			Expect(memory.LoadWords(0x1000, insts.ADDI(1, 1, 10))).To(Succeed())

			fetchStage := pipeline.NewFetchStage(memory)

			Expect(fetchStage.Fetch(0x1000)).To(Equal(uint32(0x00A08093)))
		})

		It("should fetch zero outside memory", func() {
			fetchStage := pipeline.NewFetchStage(memory)

			Expect(fetchStage.Fetch(0x8000)).To(Equal(uint32(0)))
		})
	})

	Describe("DecodeStage", func() {
		var decodeStage *pipeline.DecodeStage

		BeforeEach(func() {
			decodeStage = pipeline.NewDecodeStage(regFile)
		})

		It("should decode and read source registers", func() {
			regFile.WriteReg(1, 10)
			regFile.WriteReg(2, 20)

			result := decodeStage.Decode(&pipeline.IFIDRegister{
				Valid: true, PC: 0x1000, InstructionWord: insts.ADD(3, 1, 2),
			})

			Expect(result.Inst.Rd).To(Equal(uint8(3)))
			Expect(result.Ctrl.Kind).To(Equal(insts.KindALU))
			Expect(result.Rs1Value).To(Equal(uint32(10)))
			Expect(result.Rs2Value).To(Equal(uint32(20)))
		})

		It("should decode a bubble to nothing", func() {
			result := decodeStage.Decode(&pipeline.IFIDRegister{})

			Expect(result).To(Equal(pipeline.DecodeResult{}))
		})

		It("should drop register fields of an unrecognized instruction", func() {
			result := decodeStage.Decode(&pipeline.IFIDRegister{
				Valid: true, InstructionWord: insts.EncodeR(insts.OpReg, 3, 0, 1, 2, 0x7F),
			})

			Expect(result.Ctrl).To(Equal(insts.Control{}))
			Expect(result.Inst.Rd).To(Equal(uint8(0)))
			Expect(result.Inst.Rs1).To(Equal(uint8(0)))
			Expect(result.Inst.Rs2).To(Equal(uint8(0)))
		})
	})

	Describe("ExecuteStage", func() {
		var executeStage *pipeline.ExecuteStage

		BeforeEach(func() {
			executeStage = pipeline.NewExecuteStage()
		})

		It("should compute register-register results", func() {
			result := executeStage.Execute(idexFor(insts.SUB(4, 3, 1), 0x1000), 30, 10)

			Expect(result.ALUResult).To(Equal(uint32(20)))
			Expect(result.BranchTaken).To(BeFalse())
		})

		It("should substitute the immediate for operand B", func() {
			result := executeStage.Execute(idexFor(insts.ADDI(1, 2, -3), 0x1000), 10, 999)

			Expect(result.ALUResult).To(Equal(uint32(7)))
		})

		It("should keep the register value as store data", func() {
			result := executeStage.Execute(idexFor(insts.SW(2, 1, 8), 0x1000), 0x100, 0xBEEF)

			Expect(result.ALUResult).To(Equal(uint32(0x108)))
			Expect(result.StoreValue).To(Equal(uint32(0xBEEF)))
		})

		It("should produce the upper immediate for LUI", func() {
			result := executeStage.Execute(idexFor(insts.LUI(1, 0x12345000), 0x1000), 0, 0)

			Expect(result.ALUResult).To(Equal(uint32(0x12345000)))
		})

		It("should add the PC for AUIPC", func() {
			result := executeStage.Execute(idexFor(insts.AUIPC(1, 0x2000), 0x1004), 0, 0)

			Expect(result.ALUResult).To(Equal(uint32(0x3004)))
		})

		Context("branches", func() {
			It("should take BEQ when operands are equal", func() {
				result := executeStage.Execute(idexFor(insts.BEQ(7, 6, 8), 0x1000), 5, 5)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x1008)))
			})

			It("should not take BEQ when operands differ", func() {
				result := executeStage.Execute(idexFor(insts.BEQ(7, 6, 8), 0x1000), 5, 6)

				Expect(result.BranchTaken).To(BeFalse())
			})

			It("should compare registers, not the immediate", func() {
				// BEQ x1, x2, 8 where rs1 equals the encoded offset.
				result := executeStage.Execute(idexFor(insts.BEQ(1, 2, 8), 0x1000), 8, 3)

				Expect(result.BranchTaken).To(BeFalse())
			})

			It("should branch backwards", func() {
				result := executeStage.Execute(idexFor(insts.BNE(1, 2, -16), 0x1010), 1, 2)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x1000)))
			})
		})

		Context("jumps", func() {
			It("should always take JAL relative to its own PC", func() {
				result := executeStage.Execute(idexFor(insts.JAL(1, 0x20), 0x1004), 0, 0)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x1024)))
			})

			It("should clear bit 0 of the JALR target", func() {
				result := executeStage.Execute(idexFor(insts.JALR(1, 2, 1), 0x1000), 0x2000, 0)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x2000)))
			})
		})

		It("should produce nothing for a bubble", func() {
			result := executeStage.Execute(&pipeline.IDEXRegister{}, 1, 2)

			Expect(result).To(Equal(pipeline.ExecuteResult{}))
		})
	})

	Describe("MemoryStage", func() {
		var (
			dataMem     *emu.Memory
			memoryStage *pipeline.MemoryStage
		)

		BeforeEach(func() {
			dataMem = emu.NewMemory(0, 0x100)
			memoryStage = pipeline.NewMemoryStage(dataMem)
		})

		It("should load a word", func() {
			dataMem.Write32(0x40, 1234)

			result := memoryStage.Access(&pipeline.EXMEMRegister{
				Valid: true, Ctrl: loadCtrl, ALUResult: 0x40,
			})

			Expect(result.MemData).To(Equal(uint32(1234)))
		})

		It("should return zero when reads are disabled", func() {
			dataMem.Write32(0x40, 1234)

			result := memoryStage.Access(&pipeline.EXMEMRegister{
				Valid: true, Ctrl: aluCtrl, ALUResult: 0x40,
			})

			Expect(result.MemData).To(Equal(uint32(0)))
		})

		It("should store only on commit", func() {
			exmem := &pipeline.EXMEMRegister{
				Valid: true, Ctrl: insts.Control{Kind: insts.KindStore}, ALUResult: 0x20, StoreValue: 9,
			}

			memoryStage.Access(exmem)
			Expect(dataMem.Read32(0x20)).To(Equal(uint32(0)))

			Expect(memoryStage.Commit(exmem)).To(BeTrue())
			Expect(dataMem.Read32(0x20)).To(Equal(uint32(9)))
		})

		It("should not store for a bubble", func() {
			exmem := &pipeline.EXMEMRegister{
				Ctrl: insts.Control{Kind: insts.KindStore}, ALUResult: 0x20, StoreValue: 9,
			}

			Expect(memoryStage.Commit(exmem)).To(BeFalse())
			Expect(dataMem.Read32(0x20)).To(Equal(uint32(0)))
		})
	})

	Describe("WritebackStage", func() {
		var writebackStage *pipeline.WritebackStage

		BeforeEach(func() {
			writebackStage = pipeline.NewWritebackStage(regFile)
		})

		It("should select the ALU result", func() {
			w := writebackStage.Select(&pipeline.MEMWBRegister{
				Valid: true, Ctrl: aluCtrl, Rd: 3, ALUResult: 30, MemData: 99,
			})

			Expect(w).To(Equal(pipeline.RegWrite{Rd: 3, Value: 30, Enable: true}))
		})

		It("should select loaded data", func() {
			w := writebackStage.Select(&pipeline.MEMWBRegister{
				Valid: true, Ctrl: loadCtrl, Rd: 5, ALUResult: 0x40, MemData: 77,
			})

			Expect(w.Value).To(Equal(uint32(77)))
		})

		It("should select PC+4 for links", func() {
			w := writebackStage.Select(&pipeline.MEMWBRegister{
				Valid: true, PC: 0x1010, Ctrl: jalCtrl, Rd: 1, ALUResult: 0x2000,
			})

			Expect(w.Value).To(Equal(uint32(0x1014)))
		})

		It("should report a neutral write when disabled", func() {
			w := writebackStage.Select(&pipeline.MEMWBRegister{
				Valid: true, Ctrl: insts.Control{Kind: insts.KindStore}, Rd: 0, ALUResult: 0x40,
			})

			Expect(w).To(Equal(pipeline.RegWrite{}))
		})

		It("should never commit to x0", func() {
			writebackStage.Commit(pipeline.RegWrite{Rd: 0, Value: 5, Enable: true})

			Expect(regFile.X[0]).To(Equal(uint32(0)))
		})

		It("should commit enabled writes", func() {
			writebackStage.Commit(pipeline.RegWrite{Rd: 7, Value: 5, Enable: true})
			writebackStage.Commit(pipeline.RegWrite{Rd: 8, Value: 5})

			Expect(regFile.ReadReg(7)).To(Equal(uint32(5)))
			Expect(regFile.ReadReg(8)).To(Equal(uint32(0)))
		})
	})
})
