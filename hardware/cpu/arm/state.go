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

package arm

import (
	"fmt"
	"strings"
)

// register names.
const (
	rSP = 13 + iota
	rLR
	rPC
	NumRegisters
)

// the internal state of the ARM. the state of the registers not visible in the
// current mode are kept in the banked arrays. the bank for the current mode is
// stale while that mode is active.
type armState struct {
	registers [NumRegisters]uint32
	status    status

	bankedSP [numBanks]uint32
	bankedLR [numBanks]uint32
	spsr     [numBanks]uint32

	// R8 to R12. index zero is the bank for every mode except FIQ
	bankedHi [2][numFIQBanked]uint32

	// local exclusive monitor for LDREX/STREX
	exclusiveValid   bool
	exclusiveAddress uint32
}

// State is a snapshot of the architectural state of the ARM. The type is
// comparable so two snapshots can be checked for equality with the ==
// operator.
//
// The banked arrays contain up to date values for every mode, including the
// current mode.
type State struct {
	Registers [NumRegisters]uint32
	CPSR      uint32

	// SPSR of the current mode. zero in user and system modes
	SPSR uint32

	// banked registers indexed by bank: USR/SYS, FIQ, IRQ, SVC, ABT, UND
	BankedSP   [numBanks]uint32
	BankedLR   [numBanks]uint32
	BankedSPSR [numBanks]uint32

	// R8 to R12 for non-FIQ modes and for FIQ mode
	BankedHi [2][numFIQBanked]uint32
}

// Mode returns the mode field of the CPSR.
func (s State) Mode() Mode {
	return Mode(s.CPSR & cpsrModeMask)
}

// Thumb returns true if the T bit of the CPSR is set.
func (s State) Thumb() bool {
	return s.CPSR&cpsrT == cpsrT
}

func (s State) String() string {
	b := strings.Builder{}
	for i := 0; i < NumRegisters; i++ {
		if i > 0 {
			if i%4 == 0 {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf("R%-2d=%08x", i, s.Registers[i]))
	}
	var sr status
	sr.unpack(s.CPSR)
	sr.mode = s.Mode()
	b.WriteString(fmt.Sprintf("\nCPSR=%08x [%s]", s.CPSR, sr.String()))
	return b.String()
}

// State returns a snapshot of the architectural state.
func (arm *ARM) State() State {
	s := State{
		Registers:  arm.state.registers,
		CPSR:       arm.state.status.cpsr(),
		BankedSP:   arm.state.bankedSP,
		BankedLR:   arm.state.bankedLR,
		BankedSPSR: arm.state.spsr,
		BankedHi:   arm.state.bankedHi,
	}

	mode := arm.state.status.mode
	b := mode.bank()
	s.BankedSP[b] = arm.state.registers[rSP]
	s.BankedLR[b] = arm.state.registers[rLR]
	if mode == FIQ {
		copy(s.BankedHi[1][:], arm.state.registers[8:8+numFIQBanked])
	} else {
		copy(s.BankedHi[0][:], arm.state.registers[8:8+numFIQBanked])
	}
	if mode.hasSPSR() {
		s.SPSR = arm.state.spsr[b]
	}

	return s
}

// Reset the ARM. All registers are cleared and the ARM starts in supervisor
// mode with IRQ and FIQ masked. Bit 0 of the entry address selects Thumb
// state.
func (arm *ARM) Reset(entry uint32) {
	arm.state = armState{}
	arm.state.status.mode = Supervisor
	arm.state.status.irqDisable = true
	arm.state.status.fiqDisable = true
	arm.state.status.thumb = entry&0x01 == 0x01
	arm.state.registers[rPC] = entry &^ 0x01
	arm.instructions = 0
}

// PC returns the address of the next instruction to be executed.
func (arm *ARM) PC() uint32 {
	return arm.state.registers[rPC]
}

// Register returns the value of the register in the current mode. Reading the
// PC returns the address of the next instruction.
func (arm *ARM) Register(reg int) uint32 {
	return arm.state.registers[reg]
}

// SetRegister changes the value of a register in the current mode. Setting
// the PC changes the address of the next instruction.
func (arm *ARM) SetRegister(reg int, value uint32) {
	arm.state.registers[reg] = value
}

// CPSR returns the packed value of the status register.
func (arm *ARM) CPSR() uint32 {
	return arm.state.status.cpsr()
}

// Mode returns the current processor mode.
func (arm *ARM) Mode() Mode {
	return arm.state.status.mode
}

// Thumb returns true if the ARM is in Thumb state.
func (arm *ARM) Thumb() bool {
	return arm.state.status.thumb
}

// Instructions returns the number of instructions retired since the last
// reset.
func (arm *ARM) Instructions() uint64 {
	return arm.instructions
}

// writeCPSR updates the CPSR with the bits selected by mask. if the mode field
// is updated with a valid mode value then the register banks are switched.
func (arm *ARM) writeCPSR(value uint32, mask uint32) {
	mask &= arm.cpsrMask
	current := arm.state.status.cpsr()
	v := (current &^ mask) | (value & mask)

	mode := Mode(v & cpsrModeMask)
	if mode != arm.state.status.mode {
		if mode.IsValid() {
			arm.switchMode(mode)
		} else {
			arm.logf("ignoring switch to invalid mode %02x", uint8(mode))
		}
	}

	arm.state.status.unpack(v)
}

// restoreCPSR copies the SPSR of the current mode to the CPSR. used on return
// from an exception. has no effect in user and system modes.
func (arm *ARM) restoreCPSR() {
	if !arm.state.status.mode.hasSPSR() {
		arm.logf("no SPSR to restore in %s mode", arm.state.status.mode)
		return
	}
	arm.writeCPSR(arm.state.spsr[arm.state.status.mode.bank()], 0xffffffff)
}

// the SPSR of the current mode. zero in user and system modes.
func (arm *ARM) spsr() uint32 {
	if !arm.state.status.mode.hasSPSR() {
		return 0
	}
	return arm.state.spsr[arm.state.status.mode.bank()]
}

func (arm *ARM) setSPSR(value uint32, mask uint32) {
	if !arm.state.status.mode.hasSPSR() {
		return
	}
	b := arm.state.status.mode.bank()
	arm.state.spsr[b] = (arm.state.spsr[b] &^ mask) | (value & mask)
}
