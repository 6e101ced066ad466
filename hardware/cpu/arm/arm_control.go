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

// B and BL
func (arm *ARM) decodeARMBranch(opcode uint32) decodeFunction {
	link := opcode&0x01000000 == 0x01000000
	offset := uint32(int32(opcode<<8) >> 6)

	return func() {
		if link {
			arm.state.registers[rLR] = arm.nextInstruction()
		}
		arm.branch(arm.state.registers[rPC] + offset)
	}
}

// BLX with an immediate offset always switches to Thumb state. the H bit adds
// a halfword to the offset
func (arm *ARM) decodeARMBranchLinkExchangeImmediate(opcode uint32) decodeFunction {
	offset := uint32(int32(opcode<<8) >> 6)
	if opcode&0x01000000 == 0x01000000 {
		offset += 2
	}

	return func() {
		arm.state.registers[rLR] = arm.nextInstruction()
		arm.branchExchange((arm.state.registers[rPC] + offset) | 0x01)
	}
}

// the miscellaneous instructions occupy the space of the comparison
// instructions without the S bit set
func (arm *ARM) decodeARMMiscellaneous(opcode uint32) decodeFunction {
	op := (opcode >> 21) & 0x03

	// signed halfword multiplies
	if opcode&0x90 == 0x80 {
		return arm.decodeARMSignedMultiply(opcode)
	}

	switch (opcode >> 4) & 0x0f {
	case 0b0000:
		if op&0x01 == 0x01 {
			return arm.decodeARMMoveToStatus(opcode)
		}
		return arm.decodeARMMoveFromStatus(opcode)
	case 0b0001:
		switch op {
		case 0b01:
			return arm.decodeARMBranchExchange(opcode)
		case 0b11:
			return arm.decodeARMCountLeadingZeros(opcode)
		}
	case 0b0011:
		if op == 0b01 {
			return arm.decodeARMBranchExchange(opcode)
		}
	case 0b0101:
		return arm.decodeARMSaturatingArithmetic(opcode)
	case 0b0111:
		if op == 0b01 {
			return arm.decodeARMBreakpoint(opcode)
		}
	}

	return nil
}

// BX and BLX with a register operand
func (arm *ARM) decodeARMBranchExchange(opcode uint32) decodeFunction {
	rm := opcode & 0x0f
	link := opcode&0x20 == 0x20

	return func() {
		target := arm.state.registers[rm]
		if link {
			arm.state.registers[rLR] = arm.nextInstruction()
		}
		arm.branchExchange(target)
	}
}

// MRS
func (arm *ARM) decodeARMMoveFromStatus(opcode uint32) decodeFunction {
	spsr := opcode&0x00400000 == 0x00400000
	rd := (opcode >> 12) & 0x0f

	if rd == rPC {
		return nil
	}

	return func() {
		if spsr {
			arm.state.registers[rd] = arm.spsr()
		} else {
			arm.state.registers[rd] = arm.state.status.cpsr()
		}
	}
}

// MSR with either an immediate or a register operand
func (arm *ARM) decodeARMMoveToStatus(opcode uint32) decodeFunction {
	spsr := opcode&0x00400000 == 0x00400000
	immediate := opcode&0x02000000 == 0x02000000

	var mask uint32
	if opcode&0x00010000 == 0x00010000 {
		mask |= 0x000000ff
	}
	if opcode&0x00020000 == 0x00020000 {
		mask |= 0x0000ff00
	}
	if opcode&0x00040000 == 0x00040000 {
		mask |= 0x00ff0000
	}
	if opcode&0x00080000 == 0x00080000 {
		mask |= 0xff000000
	}

	return func() {
		var v uint32
		if immediate {
			v, _ = arm.expandImmediate(opcode)
		} else {
			v = arm.state.registers[opcode&0x0f]
		}

		if spsr {
			arm.setSPSR(v, mask)
			return
		}

		// the T bit cannot be changed by MSR
		m := mask &^ cpsrT

		// only the condition flags can be changed in user mode. ARMv6 also
		// allows the GE flags and the E bit
		if !arm.state.status.mode.privileged() {
			if arm.arch.isV6() {
				m &= 0xf80f0200
			} else {
				m &= 0xf8000000
			}
		}

		arm.writeCPSR(v, m)
	}
}

// SWI
func (arm *ARM) decodeARMSoftwareInterrupt(opcode uint32) decodeFunction {
	return func() {
		arm.exception(vectorSWI, Supervisor, arm.nextInstruction())
	}
}

// BKPT causes a prefetch abort
func (arm *ARM) decodeARMBreakpoint(opcode uint32) decodeFunction {
	return func() {
		arm.logf("BKPT %04x at %08x", ((opcode>>4)&0xfff0)|(opcode&0x0f), arm.executingPC)
		arm.exception(vectorPrefetchAbort, Abort, arm.executingPC+4)
	}
}

// MRC and MCR. only coprocessor 15 is present
func (arm *ARM) decodeARMCoprocessorTransfer(opcode uint32) decodeFunction {
	cp := (opcode >> 8) & 0x0f
	if cp != 15 || arm.cp == nil {
		return nil
	}

	load := opcode&0x00100000 == 0x00100000
	opc1 := (opcode >> 21) & 0x07
	crn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	opc2 := (opcode >> 5) & 0x07
	crm := opcode & 0x0f

	if load {
		return func() {
			v := arm.cp.MRC(opc1, crn, crm, opc2)

			// MRC to the PC sets the condition flags from the top four
			// bits of the value
			if rd == rPC {
				arm.writeCPSR(v, 0xf0000000)
				return
			}
			arm.state.registers[rd] = v
		}
	}

	return func() {
		v := arm.state.registers[rd]
		if rd == rPC {
			v += 4
		}
		arm.cp.MCR(opc1, crn, crm, opc2, v)
	}
}

// the hint instructions in the MSR immediate space. NOP, YIELD, WFE, WFI and
// SEV are all treated as NOP. there is no other core to wait for that is not
// going to be executed anyway by the scheduler
func (arm *ARM) decodeARMHint(opcode uint32) decodeFunction {
	if opcode&0x00400000 != 0 || opcode&0xff00 != 0xf000 {
		return nil
	}
	switch opcode & 0xff {
	case 0x00, 0x01, 0x02, 0x03, 0x04:
		return arm.nop
	}
	return nil
}

// CPS
func (arm *ARM) decodeARMChangeProcessorState(opcode uint32) decodeFunction {
	imod := (opcode >> 18) & 0x03
	changeMode := opcode&0x00020000 == 0x00020000
	mode := Mode(opcode & 0x1f)

	if imod == 0b01 || (changeMode && !mode.IsValid()) {
		return nil
	}

	return func() {
		if !arm.state.status.mode.privileged() {
			return
		}

		if imod&0b10 == 0b10 {
			disable := imod == 0b11
			if opcode&0x100 == 0x100 {
				arm.state.status.abortDisable = disable
			}
			if opcode&0x80 == 0x80 {
				arm.state.status.irqDisable = disable
			}
			if opcode&0x40 == 0x40 {
				arm.state.status.fiqDisable = disable
			}
		}

		if changeMode {
			arm.switchMode(mode)
		}
	}
}

// SETEND. big endian data accesses are not supported
func (arm *ARM) decodeARMSetEndianness(opcode uint32) decodeFunction {
	if opcode&0x200 == 0x200 {
		return nil
	}
	return func() {
		arm.state.status.bigEndian = false
	}
}

// addresses for SRS and RFE, which always transfer two words
func blockAddress2(base uint32, pre bool, up bool) (start uint32, writeback uint32) {
	switch {
	case up && !pre:
		return base, base + 8
	case up && pre:
		return base + 4, base + 8
	case !up && !pre:
		return base - 4, base - 8
	}
	return base - 8, base - 8
}

// SRS stores the LR and SPSR of the current mode to the stack of the
// specified mode
func (arm *ARM) decodeARMStoreReturnState(opcode uint32) decodeFunction {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	writeback := opcode&0x00200000 == 0x00200000
	mode := Mode(opcode & 0x1f)

	if !mode.IsValid() {
		return nil
	}

	return func() {
		addr, wb := blockAddress2(arm.bankedSPForMode(mode), pre, up)
		arm.writeWord(addr, arm.state.registers[rLR])
		arm.writeWord(addr+4, arm.spsr())
		if writeback {
			arm.setBankedSPForMode(mode, wb)
		}
	}
}

// RFE loads the PC and the CPSR from memory
func (arm *ARM) decodeARMReturnFromException(opcode uint32) decodeFunction {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	writeback := opcode&0x00200000 == 0x00200000
	rn := (opcode >> 16) & 0x0f

	return func() {
		addr, wb := blockAddress2(arm.state.registers[rn], pre, up)
		pc := arm.readWord(addr)
		cpsr := arm.readWord(addr + 4)
		if arm.memoryError != nil {
			return
		}
		if writeback {
			arm.state.registers[rn] = wb
		}
		arm.writeCPSR(cpsr, 0xffffffff)
		arm.branch(pc)
	}
}
