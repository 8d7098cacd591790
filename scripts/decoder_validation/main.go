// Validate that the decode stage runs allocation-free on the hot path.
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/rvpipe/emu"
	"github.com/sarchlab/rvpipe/insts"
	"github.com/sarchlab/rvpipe/timing/pipeline"
)

func main() {
	regFile := &emu.RegFile{}
	regFile.WriteReg(1, 10)
	regFile.WriteReg(2, 20)

	decodeStage := pipeline.NewDecodeStage(regFile)

	fetched := []pipeline.IFIDRegister{
		{Valid: true, PC: 0x1000, InstructionWord: insts.ADDI(3, 1, 42)},
		{Valid: true, PC: 0x1004, InstructionWord: insts.ADD(4, 1, 2)},
		{Valid: true, PC: 0x1008, InstructionWord: insts.LW(5, 1, 8)},
		{Valid: true, PC: 0x100C, InstructionWord: insts.BNE(1, 2, -12)},
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decodeStage.Decode(&fetched[0])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for j := range fetched {
			decodeStage.Decode(&fetched[j])
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(fetched)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	if float64(allocations)/float64(totalDecodes) < 0.1 {
		fmt.Printf("\nOK: low allocation rate (< 0.1 per decode)\n")
	} else {
		fmt.Printf("\nWARNING: high allocation rate detected\n")
	}
}
