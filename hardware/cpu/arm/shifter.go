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

import "math/bits"

// shift types as encoded in bits 5 and 6 of data processing and load/store
// instructions
const (
	shiftLSL = 0b00
	shiftLSR = 0b01
	shiftASR = 0b10
	shiftROR = 0b11
)

var shiftMnemonic = [4]string{"LSL", "LSR", "ASR", "ROR"}

// shiftImmediate applies a shift where the amount is encoded in the
// instruction. an amount of zero has special meaning for all shift types
// except LSL. returns the shifted value and the carry out of the shifter.
func (arm *ARM) shiftImmediate(typ uint32, amount uint32, value uint32) (uint32, bool) {
	carry := arm.state.status.carry

	switch typ {
	case shiftLSL:
		if amount == 0 {
			return value, carry
		}
		return value << amount, (value>>(32-amount))&0x01 == 0x01

	case shiftLSR:
		// LSR #0 is encoded for LSR #32
		if amount == 0 {
			return 0, value&0x80000000 == 0x80000000
		}
		return value >> amount, (value>>(amount-1))&0x01 == 0x01

	case shiftASR:
		// ASR #0 is encoded for ASR #32
		if amount == 0 {
			if value&0x80000000 == 0x80000000 {
				return 0xffffffff, true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), (value>>(amount-1))&0x01 == 0x01

	case shiftROR:
		// ROR #0 is encoded for RRX
		if amount == 0 {
			r := value >> 1
			if carry {
				r |= 0x80000000
			}
			return r, value&0x01 == 0x01
		}
		return bits.RotateLeft32(value, -int(amount)), (value>>(amount-1))&0x01 == 0x01
	}

	panic("impossible shift type")
}

// shiftRegister applies a shift where the amount is taken from the bottom
// byte of a register. an amount of zero leaves both the value and the carry
// unchanged.
func (arm *ARM) shiftRegister(typ uint32, amount uint32, value uint32) (uint32, bool) {
	carry := arm.state.status.carry
	amount &= 0xff

	if amount == 0 {
		return value, carry
	}

	switch typ {
	case shiftLSL:
		if amount < 32 {
			return value << amount, (value>>(32-amount))&0x01 == 0x01
		}
		if amount == 32 {
			return 0, value&0x01 == 0x01
		}
		return 0, false

	case shiftLSR:
		if amount < 32 {
			return value >> amount, (value>>(amount-1))&0x01 == 0x01
		}
		if amount == 32 {
			return 0, value&0x80000000 == 0x80000000
		}
		return 0, false

	case shiftASR:
		if amount < 32 {
			return uint32(int32(value) >> amount), (value>>(amount-1))&0x01 == 0x01
		}
		if value&0x80000000 == 0x80000000 {
			return 0xffffffff, true
		}
		return 0, false

	case shiftROR:
		amount &= 0x1f
		if amount == 0 {
			return value, value&0x80000000 == 0x80000000
		}
		return bits.RotateLeft32(value, -int(amount)), (value>>(amount-1))&0x01 == 0x01
	}

	panic("impossible shift type")
}

// expandImmediate returns the value of an 8bit immediate rotated right by twice
// the 4bit rotate field. the carry out is unchanged if the rotation is zero
// otherwise it is bit 31 of the result.
func (arm *ARM) expandImmediate(opcode uint32) (uint32, bool) {
	imm := opcode & 0xff
	rot := (opcode & 0xf00) >> 7
	if rot == 0 {
		return imm, arm.state.status.carry
	}
	v := bits.RotateLeft32(imm, -int(rot))
	return v, v&0x80000000 == 0x80000000
}
