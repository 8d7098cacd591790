// Package benchmarks provides a timing benchmark harness for the RV32I
// pipeline model.
package benchmarks

import (
	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/insts"
	"github.com/sarchlab/rvpipe/timing/core"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets one pipeline characteristic and leaves its
// result in x10.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUseChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		loopSum(),
		vectorAdd(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: a loop, a memory kernel and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSum(),
		vectorAdd(),
		branchTaken(),
	}
}

// 1. Arithmetic Sequential - no operand is produced fewer than five
// instructions earlier, so nothing is forwarded.
func arithmeticSequential() Benchmark {
	prog := make([]uint32, 0, 21)
	for i := 0; i < 4; i++ {
		for rd := uint8(10); rd <= 14; rd++ {
			prog = append(prog, insts.ADDI(rd, rd, 1))
		}
	}

	return Benchmark{
		Name:           "arithmetic_sequential",
		Description:    "20 ADDIs over 5 registers - measures the no-hazard CPI",
		Program:        append(prog, core.HaltWord),
		ExpectedResult: 4,
	}
}

// 2. Dependency Chain - every instruction consumes the previous result.
func dependencyChain() Benchmark {
	prog := make([]uint32, 0, 21)
	for i := 0; i < 20; i++ {
		prog = append(prog, insts.ADDI(10, 10, 1))
	}

	return Benchmark{
		Name:           "dependency_chain",
		Description:    "20 dependent ADDIs (x10 = x10 + 1) - measures forwarding",
		Program:        append(prog, core.HaltWord),
		ExpectedResult: 20,
	}
}

// 3. Load-Use Chain - every load is consumed by the next instruction.
func loadUseChain() Benchmark {
	prog := []uint32{insts.ADDI(1, 0, 0x100)}
	for i := 0; i < 10; i++ {
		prog = append(prog,
			insts.LW(10, 1, 0),
			insts.ADDI(10, 10, 1),
			insts.SW(10, 1, 0),
		)
	}

	return Benchmark{
		Name:           "load_use_chain",
		Description:    "10 load/increment/store triples on one word - one stall each",
		Program:        append(prog, core.HaltWord),
		ExpectedResult: 10,
	}
}

// 4. Memory Sequential - store/load pairs to consecutive words.
func memorySequential() Benchmark {
	prog := []uint32{
		insts.ADDI(1, 0, 0x100),
		insts.ADDI(10, 0, 42),
	}
	for i := int32(0); i < 10; i++ {
		prog = append(prog,
			insts.SW(10, 1, 4*i),
			insts.LW(10, 1, 4*i),
		)
	}

	return Benchmark{
		Name:           "memory_sequential",
		Description:    "10 store/load pairs to sequential addresses",
		Program:        append(prog, core.HaltWord),
		ExpectedResult: 42,
	}
}

// 5. Function Calls - JAL/JALR pairs to a one-instruction function.
func functionCalls() Benchmark {
	// Calls at 0..16, halt at 20, function at 24.
	prog := make([]uint32, 0, 8)
	for i := int32(0); i < 5; i++ {
		prog = append(prog, insts.JAL(1, 24-4*i))
	}
	prog = append(prog,
		core.HaltWord,
		insts.ADDI(10, 10, 1),
		insts.JALR(0, 1, 0),
	)

	return Benchmark{
		Name:           "function_calls",
		Description:    "5 function calls (JAL + JALR pairs) - measures call overhead",
		Program:        prog,
		ExpectedResult: 5,
	}
}

// 6. Branch Taken - forward branches that skip one instruction each.
func branchTaken() Benchmark {
	prog := make([]uint32, 0, 16)
	for i := 0; i < 5; i++ {
		prog = append(prog,
			insts.BEQ(0, 0, 8),
			insts.ADDI(10, 10, 100), // skipped
			insts.ADDI(10, 10, 1),
		)
	}

	return Benchmark{
		Name:           "branch_taken",
		Description:    "5 taken forward branches - measures flush overhead",
		Program:        append(prog, core.HaltWord),
		ExpectedResult: 5,
	}
}

// 7. Loop Sum - a counted loop adding 10 down to 1.
func loopSum() Benchmark {
	return Benchmark{
		Name:        "loop_sum",
		Description: "10-iteration counted loop - tests backward branches",
		Program: []uint32{
			insts.ADDI(5, 0, 10),
			insts.ADD(10, 10, 5),
			insts.ADDI(5, 5, -1),
			insts.BNE(5, 0, -8),
			core.HaltWord,
		},
		ExpectedResult: 55,
	}
}

// 8. Vector Add - C = A + B over 4 words, x10 = sum of C.
func vectorAdd() Benchmark {
	const a, b, c = 0x200, 0x210, 0x220

	prog := make([]uint32, 0, 21)
	for i := int32(0); i < 4; i++ {
		prog = append(prog,
			insts.LW(5, 0, a+4*i),
			insts.LW(6, 0, b+4*i),
			insts.ADD(7, 5, 6),
			insts.SW(7, 0, c+4*i),
			insts.ADD(10, 10, 7),
		)
	}

	return Benchmark{
		Name:        "vector_add",
		Description: "Load/compute/store over two 4-word vectors - tests memory access",
		Setup: func(regFile *emu.RegFile, dmem *emu.Memory) {
			for i, v := range []uint32{1, 2, 3, 4} {
				dmem.Write32(a+uint32(4*i), v)
				dmem.Write32(b+uint32(4*i), 10*v)
			}
		},
		Program:        append(prog, core.HaltWord),
		ExpectedResult: 110,
	}
}
