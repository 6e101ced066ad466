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

// returns an instance of the decodeFunction type. if the value is nil then
// that means the opcode is undefined or unimplemented.
//
// the decoding follows the tables in "A3.1 Instruction set encoding" of the
// "ARM Architecture Reference Manual"
func (arm *ARM) decodeARM(opcode uint32) decodeFunction {
	cond := uint8(opcode >> 28)

	if cond == 0b1111 {
		return arm.decodeARMUnconditional(opcode)
	}

	if !arm.state.status.condition(cond) {
		arm.conditionPassed = false
		return arm.nop
	}

	switch (opcode >> 25) & 0x07 {
	case 0b000:
		if opcode&0xf0 == 0x90 {
			switch (opcode >> 23) & 0x03 {
			case 0b00:
				return arm.decodeARMMultiply(opcode)
			case 0b01:
				return arm.decodeARMMultiplyLong(opcode)
			case 0b10:
				if opcode&0x00300f00 == 0 {
					return arm.decodeARMSwap(opcode)
				}
			case 0b11:
				if arm.arch.isV6() {
					return arm.decodeARMExclusive(opcode)
				}
			}
			return nil
		}

		if opcode&0x90 == 0x90 {
			return arm.decodeARMExtraLoadStore(opcode)
		}

		if opcode&0x01900000 == 0x01000000 {
			return arm.decodeARMMiscellaneous(opcode)
		}

		return arm.decodeARMDataProcessing(opcode)

	case 0b001:
		if opcode&0x01900000 == 0x01000000 {
			if opcode&0x00200000 == 0x00200000 {
				if opcode&0x000f0000 == 0 && arm.arch.isV6() {
					return arm.decodeARMHint(opcode)
				}
				return arm.decodeARMMoveToStatus(opcode)
			}
			return nil
		}
		return arm.decodeARMDataProcessing(opcode)

	case 0b010:
		return arm.decodeARMLoadStore(opcode)

	case 0b011:
		if opcode&0x10 == 0x10 {
			if arm.arch.isV6() {
				return arm.decodeARMMedia(opcode)
			}
			return nil
		}
		return arm.decodeARMLoadStore(opcode)

	case 0b100:
		return arm.decodeARMBlockTransfer(opcode)

	case 0b101:
		return arm.decodeARMBranch(opcode)

	case 0b110:
		// LDC, STC, MCRR and MRRC. no coprocessor supports these
		return nil

	case 0b111:
		if opcode&0x01000000 == 0x01000000 {
			return arm.decodeARMSoftwareInterrupt(opcode)
		}
		if opcode&0x10 == 0x10 {
			return arm.decodeARMCoprocessorTransfer(opcode)
		}
		// CDP
		return nil
	}

	return nil
}

// instructions in the unconditional space
func (arm *ARM) decodeARMUnconditional(opcode uint32) decodeFunction {
	// BLX (immediate)
	if opcode&0x0e000000 == 0x0a000000 {
		return arm.decodeARMBranchLinkExchangeImmediate(opcode)
	}

	// PLD
	if opcode&0x0d70f000 == 0x0550f000 {
		return arm.nop
	}

	if !arm.arch.isV6() {
		return nil
	}

	// CPS
	if opcode&0x0ff10020 == 0x01000000 {
		return arm.decodeARMChangeProcessorState(opcode)
	}

	// SETEND
	if opcode&0x0ffffdff == 0x01010000 {
		return arm.decodeARMSetEndianness(opcode)
	}

	// CLREX
	if opcode == 0xf57ff01f {
		return func() {
			arm.state.exclusiveValid = false
		}
	}

	// SRS
	if opcode&0x0e5fffe0 == 0x084d0500 {
		return arm.decodeARMStoreReturnState(opcode)
	}

	// RFE
	if opcode&0x0e50ffff == 0x08100a00 {
		return arm.decodeARMReturnFromException(opcode)
	}

	return nil
}

// operand2 returns the value of the shifter operand of a data processing
// instruction along with the carry out of the shifter.
func (arm *ARM) operand2(opcode uint32) (uint32, bool) {
	if opcode&0x02000000 == 0x02000000 {
		return arm.expandImmediate(opcode)
	}

	rm := opcode & 0x0f
	typ := (opcode >> 5) & 0x03

	// shift by register. the PC reads as 12 bytes ahead of the instruction
	if opcode&0x10 == 0x10 {
		rs := (opcode >> 8) & 0x0f
		v := arm.state.registers[rm]
		if rm == rPC {
			v += 4
		}
		return arm.shiftRegister(typ, arm.state.registers[rs], v)
	}

	amount := (opcode >> 7) & 0x1f
	return arm.shiftImmediate(typ, amount, arm.state.registers[rm])
}
