// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

// Package arm is an interpreter for the ARM and Thumb instruction sets of
// the ARMv5TE and ARMv6K architectures. The architecture is selected when the
// ARM is created and cannot be changed.
//
// Instructions are executed one at a time with the Step() function. The ARM
// has no notion of time and knows nothing about the other core. It is up to
// the caller to interleave the execution of several ARM instances.
package arm

import (
	"errors"
	"fmt"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/logger"
)

// Memory is the interface to the memory of the system. In the normal case the
// implementation is a bus.Port but it can be anything that sits in front of
// the bus (tightly coupled memory for example).
type Memory interface {
	Read(addr uint32, width int) (uint32, error)
	Write(addr uint32, width int, value uint32) error
}

// Coprocessor is the interface to the system control coprocessor (CP15).
type Coprocessor interface {
	MRC(opc1, crn, crm, opc2 uint32) uint32
	MCR(opc1, crn, crm, opc2 uint32, value uint32)

	// exception vectors at 0xffff0000 rather than 0x00000000
	HighVectors() bool

	// unaligned word and halfword accesses are performed without rotation
	UnalignedAccess() bool
}

// Intercept is consulted before every instruction fetch. If the intercept
// returns true then the instruction is considered to have been executed by the
// intercept and the ARM fetches nothing. The intercept is free to change the
// registers of the ARM.
type Intercept interface {
	Intercept(arm *ARM, pc uint32) (bool, error)
}

// Sentinal error patterns.
const (
	MemoryError = "%s: memory error at %08x: %v"
)

// decodeFunction represents one of the functions that executes a specific
// group of instructions. the function is created with the opcode already
// decoded so that it can be executed without further inspection of the
// opcode
type decodeFunction func()

// StepResult is returned by a successful call to Step().
type StepResult struct {
	// address and opcode of the instruction that was executed
	PC     uint32
	Opcode uint32
	Thumb  bool

	// the address of the next instruction
	NextPC uint32

	// whether the condition of the instruction passed. an instruction that
	// did not pass its condition is still counted as having been executed
	Executed bool

	// the number of memory accesses performed by the instruction, including
	// the fetch
	BusAccesses int

	// the instruction changed the flow of control. a taken branch, an
	// exception entry or any write to the PC
	Discontinuity bool
}

// ARM implements the ARMv5TE and ARMv6K architectures.
type ARM struct {
	arch Architecture

	// name of the core. used in log entries and in errors
	core string

	mem       Memory
	cp        Coprocessor
	intercept Intercept

	state armState

	// bits of the CPSR that can be written by MSR and by exception return.
	// depends on the architecture
	cpsrMask uint32

	// the address of the instruction currently being executed
	executingPC uint32

	// the opcode of the instruction currently being executed
	executingOpcode uint32

	// the instruction has written to the PC
	branched bool

	// number of memory accesses made by the instruction
	accesses int

	// the first memory error seen during execution of the instruction. once
	// an error has been recorded further memory accesses are ignored
	memoryError error

	// the decoded instruction was found to be undefined during execution
	undefined bool

	// the condition of the instruction passed
	conditionPassed bool

	// total number of instructions since the last reset
	instructions uint64

	// log every instruction
	trace bool

	// whether the ARM is allowed to create log entries
	logging bool
}

// NewARM is the preferred method of initialisation for the ARM type.
//
// The core argument is the name of the core and is used to identify the ARM
// in log entries and errors. The Coprocessor argument can be nil, in which case
// coprocessor instructions are undefined and exception vectors are low.
func NewARM(arch Architecture, core string, mem Memory, cp Coprocessor) *ARM {
	arm := &ARM{
		arch:    arch,
		core:    core,
		mem:     mem,
		cp:      cp,
		logging: true,
	}

	switch arch {
	case ARMv5TE:
		arm.cpsrMask = 0xf80000ff
	case ARMv6K:
		arm.cpsrMask = 0xf80f03ff
	default:
		panic(fmt.Sprintf("unhandled ARM architecture: %s", arch))
	}

	arm.Reset(0)

	return arm
}

func (arm *ARM) String() string {
	return arm.core
}

// Architecture returns the architecture of the ARM.
func (arm *ARM) Architecture() Architecture {
	return arm.arch
}

// Core returns the name of the core.
func (arm *ARM) Core() string {
	return arm.core
}

// SetIntercept installs an Intercept. A value of nil removes the intercept.
func (arm *ARM) SetIntercept(intercept Intercept) {
	arm.intercept = intercept
}

// SetTrace turns instruction tracing on or off. Tracing creates a log entry
// for every instruction.
func (arm *ARM) SetTrace(trace bool) {
	arm.trace = trace
}

// SetLogging turns logging on or off for the ARM.
func (arm *ARM) SetLogging(logging bool) {
	arm.logging = logging
}

// AllowLogging implements the logger.Permission interface.
func (arm *ARM) AllowLogging() bool {
	return arm.logging
}

func (arm *ARM) logf(format string, args ...interface{}) {
	logger.Logf(arm, arm.core, format, args...)
}

// Step executes a single instruction. Errors are always one of DecodeFault,
// BusFault or an error returned by the Intercept. The ARM should not be
// stepped again after an error.
//
// After an error the PC is the address of the faulting instruction.
func (arm *ARM) Step() (StepResult, error) {
	pc := arm.state.registers[rPC]
	thumb := arm.state.status.thumb

	r := StepResult{
		PC:    pc,
		Thumb: thumb,
	}

	arm.executingPC = pc
	arm.branched = false
	arm.accesses = 0
	arm.memoryError = nil
	arm.undefined = false
	arm.conditionPassed = true

	if arm.intercept != nil {
		handled, err := arm.intercept.Intercept(arm, pc)
		if err != nil {
			return r, err
		}
		if handled {
			arm.instructions++
			r.NextPC = arm.state.registers[rPC]
			r.Executed = true
			r.Discontinuity = true
			return r, nil
		}
	}

	// fetch
	width := 4
	if thumb {
		width = 2
	}
	opcode, err := arm.mem.Read(pc, width)
	arm.accesses++
	if err != nil {
		return r, arm.wrapMemoryError(pc, 0, thumb, err)
	}
	r.Opcode = opcode
	arm.executingOpcode = opcode

	// the PC is two instructions ahead of the executing instruction while the
	// instruction is being executed
	var f decodeFunction
	if thumb {
		arm.state.registers[rPC] = pc + 4
		f = arm.decodeThumb(uint16(opcode))
	} else {
		arm.state.registers[rPC] = pc + 8
		f = arm.decodeARM(opcode)
	}

	if f == nil {
		arm.state.registers[rPC] = pc
		return r, DecodeFault{Core: arm.core, Address: pc, Opcode: opcode, Thumb: thumb}
	}

	if arm.trace {
		arm.logf("%08x: %s", pc, Disassemble(arm.arch, opcode, thumb, pc))
	}

	f()

	if arm.undefined {
		arm.state.registers[rPC] = pc
		return r, DecodeFault{Core: arm.core, Address: pc, Opcode: opcode, Thumb: thumb}
	}

	if arm.memoryError != nil {
		arm.state.registers[rPC] = pc
		return r, arm.wrapMemoryError(pc, opcode, thumb, arm.memoryError)
	}

	if !arm.branched {
		arm.state.registers[rPC] = pc + uint32(width)
	}

	arm.instructions++

	r.NextPC = arm.state.registers[rPC]
	r.Executed = arm.conditionPassed
	r.BusAccesses = arm.accesses
	r.Discontinuity = arm.branched

	return r, nil
}

func (arm *ARM) wrapMemoryError(pc uint32, opcode uint32, thumb bool, err error) error {
	var f bus.Fault
	if errors.As(err, &f) {
		return BusFault{Core: arm.core, PC: pc, Opcode: opcode, Thumb: thumb, Fault: f}
	}
	return curated.Errorf(MemoryError, arm.core, pc, err)
}

// undefinedInstruction is called by decode functions that discover during
// execution that the instruction is undefined
func (arm *ARM) undefinedInstruction() {
	arm.undefined = true
}

// nop is the decode function for instructions that have no effect on the
// emulation. including instructions that fail their condition
func (arm *ARM) nop() {
}
