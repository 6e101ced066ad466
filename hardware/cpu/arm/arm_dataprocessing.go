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

// data processing opcodes.
const (
	dpAND = iota
	dpEOR
	dpSUB
	dpRSB
	dpADD
	dpADC
	dpSBC
	dpRSC
	dpTST
	dpTEQ
	dpCMP
	dpCMN
	dpORR
	dpMOV
	dpBIC
	dpMVN
)

var dataProcessingMnemonic = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

func (arm *ARM) decodeARMDataProcessing(opcode uint32) decodeFunction {
	op := (opcode >> 21) & 0x0f
	setFlags := opcode&0x00100000 == 0x00100000
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f

	// comparison instructions without the S bit are in the miscellaneous
	// instruction space and never reach here
	if op >= dpTST && op <= dpCMN && !setFlags {
		return nil
	}

	// the PC reads as 12 bytes ahead of the instruction when the shift
	// amount is in a register
	regShift := opcode&0x02000010 == 0x00000010

	return func() {
		a := arm.state.registers[rn]
		if rn == rPC && regShift {
			a += 4
		}
		b, shifterCarry := arm.operand2(opcode)

		var result uint32
		logical := false

		switch op {
		case dpAND, dpTST:
			result = a & b
			logical = true
		case dpEOR, dpTEQ:
			result = a ^ b
			logical = true
		case dpSUB, dpCMP:
			result = a - b
			if setFlags {
				arm.state.status.isCarry(a, ^b, 1)
				arm.state.status.isOverflow(a, ^b, 1)
			}
		case dpRSB:
			result = b - a
			if setFlags {
				arm.state.status.isCarry(b, ^a, 1)
				arm.state.status.isOverflow(b, ^a, 1)
			}
		case dpADD, dpCMN:
			result = a + b
			if setFlags {
				arm.state.status.isCarry(a, b, 0)
				arm.state.status.isOverflow(a, b, 0)
			}
		case dpADC:
			c := arm.state.status.carryValue()
			result = a + b + c
			if setFlags {
				arm.state.status.isCarry(a, b, c)
				arm.state.status.isOverflow(a, b, c)
			}
		case dpSBC:
			c := arm.state.status.carryValue()
			result = a - b - (1 - c)
			if setFlags {
				arm.state.status.isCarry(a, ^b, c)
				arm.state.status.isOverflow(a, ^b, c)
			}
		case dpRSC:
			c := arm.state.status.carryValue()
			result = b - a - (1 - c)
			if setFlags {
				arm.state.status.isCarry(b, ^a, c)
				arm.state.status.isOverflow(b, ^a, c)
			}
		case dpORR:
			result = a | b
			logical = true
		case dpMOV:
			result = b
			logical = true
		case dpBIC:
			result = a &^ b
			logical = true
		case dpMVN:
			result = ^b
			logical = true
		}

		// comparisons do not write a result
		if op >= dpTST && op <= dpCMN {
			arm.state.status.isZero(result)
			arm.state.status.isNegative(result)
			if logical {
				arm.state.status.setCarry(shifterCarry)
			}
			return
		}

		// writing to the PC with the S bit set is the return from exception.
		// the flags are not changed by the result but by the SPSR
		if rd == rPC && setFlags {
			arm.restoreCPSR()
			arm.branch(result)
			return
		}

		if setFlags {
			arm.state.status.isZero(result)
			arm.state.status.isNegative(result)
			if logical {
				arm.state.status.setCarry(shifterCarry)
			}
		}

		arm.writeRegister(rd, result)
	}
}
