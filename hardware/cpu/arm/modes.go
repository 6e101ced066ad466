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

import "fmt"

// Mode is the processor mode field of the CPSR.
type Mode uint8

// List of valid Mode values.
const (
	User       Mode = 0x10
	FIQ        Mode = 0x11
	IRQ        Mode = 0x12
	Supervisor Mode = 0x13
	Abort      Mode = 0x17
	Undefined  Mode = 0x1b
	System     Mode = 0x1f
)

func (m Mode) String() string {
	switch m {
	case User:
		return "USR"
	case FIQ:
		return "FIQ"
	case IRQ:
		return "IRQ"
	case Supervisor:
		return "SVC"
	case Abort:
		return "ABT"
	case Undefined:
		return "UND"
	case System:
		return "SYS"
	}
	return fmt.Sprintf("mode(%02x)", uint8(m))
}

// IsValid returns true if the mode value is one of the seven defined modes.
func (m Mode) IsValid() bool {
	switch m {
	case User, FIQ, IRQ, Supervisor, Abort, Undefined, System:
		return true
	}
	return false
}

// the number of register banks. user and system modes share a bank
const numBanks = 6

// bank returns the index into the banked register arrays for the mode
func (m Mode) bank() int {
	switch m {
	case FIQ:
		return 1
	case IRQ:
		return 2
	case Supervisor:
		return 3
	case Abort:
		return 4
	case Undefined:
		return 5
	}
	return 0
}

// privileged modes are every mode except user mode
func (m Mode) privileged() bool {
	return m != User
}

// user and system modes have no SPSR
func (m Mode) hasSPSR() bool {
	return m != User && m != System
}

// the number of registers banked for FIQ mode starting at R8
const numFIQBanked = 5

// switchMode changes the processor mode and swaps in the banked registers for
// the new mode. the current R13 and R14 (and R8 to R12 when entering or
// leaving FIQ mode) are saved to the bank of the outgoing mode.
//
// the mode value must be valid.
func (arm *ARM) switchMode(mode Mode) {
	old := arm.state.status.mode
	if old == mode {
		return
	}

	ob := old.bank()
	nb := mode.bank()

	if ob != nb {
		arm.state.bankedSP[ob] = arm.state.registers[rSP]
		arm.state.bankedLR[ob] = arm.state.registers[rLR]
		arm.state.registers[rSP] = arm.state.bankedSP[nb]
		arm.state.registers[rLR] = arm.state.bankedLR[nb]
	}

	if (old == FIQ) != (mode == FIQ) {
		of := 0
		nf := 1
		if old == FIQ {
			of = 1
			nf = 0
		}
		copy(arm.state.bankedHi[of][:], arm.state.registers[8:8+numFIQBanked])
		copy(arm.state.registers[8:8+numFIQBanked], arm.state.bankedHi[nf][:])
	}

	arm.state.status.mode = mode
}

// userRegister returns the value of the user mode version of the register
// regardless of the current mode. used by LDM/STM with the S bit set.
func (arm *ARM) userRegister(reg int) uint32 {
	mode := arm.state.status.mode
	switch {
	case reg >= 8 && reg < 8+numFIQBanked && mode == FIQ:
		return arm.state.bankedHi[0][reg-8]
	case reg == rSP && mode.bank() != 0:
		return arm.state.bankedSP[0]
	case reg == rLR && mode.bank() != 0:
		return arm.state.bankedLR[0]
	}
	return arm.state.registers[reg]
}

// setUserRegister is the counterpart to userRegister().
func (arm *ARM) setUserRegister(reg int, value uint32) {
	mode := arm.state.status.mode
	switch {
	case reg >= 8 && reg < 8+numFIQBanked && mode == FIQ:
		arm.state.bankedHi[0][reg-8] = value
	case reg == rSP && mode.bank() != 0:
		arm.state.bankedSP[0] = value
	case reg == rLR && mode.bank() != 0:
		arm.state.bankedLR[0] = value
	default:
		arm.state.registers[reg] = value
	}
}

// bankedSPForMode returns the stack pointer for the specified mode. used by
// SRS which stores to the stack of a mode other than the current mode.
func (arm *ARM) bankedSPForMode(mode Mode) uint32 {
	if mode.bank() == arm.state.status.mode.bank() {
		return arm.state.registers[rSP]
	}
	return arm.state.bankedSP[mode.bank()]
}

func (arm *ARM) setBankedSPForMode(mode Mode, value uint32) {
	if mode.bank() == arm.state.status.mode.bank() {
		arm.state.registers[rSP] = value
		return
	}
	arm.state.bankedSP[mode.bank()] = value
}
