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

// branch to an address. the address is forced into alignment for the current
// instruction set state.
func (arm *ARM) branch(addr uint32) {
	if arm.state.status.thumb {
		arm.state.registers[rPC] = addr &^ 0x01
	} else {
		arm.state.registers[rPC] = addr &^ 0x03
	}
	arm.branched = true
}

// branchExchange branches to an address and selects the instruction set state
// from bit 0 of the address. used by BX, BLX and by loads to the PC.
func (arm *ARM) branchExchange(addr uint32) {
	arm.state.status.thumb = addr&0x01 == 0x01
	arm.branch(addr)
}

// Jump sets the PC to the address and selects the instruction set state from
// bit 0 of the address. It is intended for use by an Intercept that needs to
// return to the caller of an intercepted function.
func (arm *ARM) Jump(addr uint32) {
	arm.branchExchange(addr)
}

// writeRegister sets a register as the destination of an instruction. a write
// to the PC is a branch without a change of instruction set state.
func (arm *ARM) writeRegister(reg uint32, value uint32) {
	if reg == rPC {
		arm.branch(value)
		return
	}
	arm.state.registers[reg] = value
}

// loadRegister sets a register as the destination of a load. a load to the PC
// selects the instruction set state from bit 0 of the loaded value.
func (arm *ARM) loadRegister(reg uint32, value uint32) {
	if reg == rPC {
		arm.branchExchange(value)
		return
	}
	arm.state.registers[reg] = value
}

// the address of the instruction following the executing instruction
func (arm *ARM) nextInstruction() uint32 {
	if arm.state.status.thumb {
		return arm.executingPC + 2
	}
	return arm.executingPC + 4
}

// exception vector offsets.
const (
	vectorReset         = 0x00
	vectorUndefined     = 0x04
	vectorSWI           = 0x08
	vectorPrefetchAbort = 0x0c
	vectorDataAbort     = 0x10
	vectorIRQ           = 0x18
	vectorFIQ           = 0x1c
)

// base address of the high exception vectors
const HighVectorBase = 0xffff0000

func (arm *ARM) vectorBase() uint32 {
	if arm.cp != nil && arm.cp.HighVectors() {
		return HighVectorBase
	}
	return 0x00000000
}

// exception entry sequence. the CPSR is saved in the SPSR of the new mode and
// the return address is put in the LR of the new mode. exceptions are always
// handled in ARM state with IRQ disabled.
func (arm *ARM) exception(vector uint32, mode Mode, returnAddress uint32) {
	cpsr := arm.state.status.cpsr()
	arm.switchMode(mode)
	arm.state.spsr[mode.bank()] = cpsr
	arm.state.registers[rLR] = returnAddress
	arm.state.status.thumb = false
	arm.state.status.irqDisable = true
	if mode == FIQ || vector == vectorReset {
		arm.state.status.fiqDisable = true
	}
	if arm.arch.isV6() && (mode == Abort || mode == IRQ || mode == FIQ) {
		arm.state.status.abortDisable = true
	}
	arm.branch(arm.vectorBase() + vector)
}
