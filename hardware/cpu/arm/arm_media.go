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
	"math/bits"
)

// the media instructions are ARMv6 only. the packing, extension, reversal and
// saturation instructions are supported. parallel add/subtract and the SIMD
// multiplies are not
func (arm *ARM) decodeARMMedia(opcode uint32) decodeFunction {
	if (opcode>>23)&0x03 != 0b01 {
		return nil
	}

	op1 := (opcode >> 20) & 0x07
	op2 := (opcode >> 5) & 0x07

	switch {
	case op1 == 0b000 && op2&0b001 == 0b000:
		return arm.decodeARMPack(opcode)
	case op1&0b010 == 0b010 && op2&0b001 == 0b000:
		return arm.decodeARMSaturate(opcode)
	case op1 == 0b010 && op2 == 0b001:
		return arm.decodeARMSaturate16(opcode)
	case op1 == 0b110 && op2 == 0b001:
		return arm.decodeARMSaturate16(opcode)
	case op2 == 0b011:
		return arm.decodeARMExtend(opcode)
	case op1 == 0b011 && op2 == 0b001:
		return arm.decodeARMReverse(opcode, reverseWord)
	case op1 == 0b011 && op2 == 0b101:
		return arm.decodeARMReverse(opcode, reverseHalfwords)
	case op1 == 0b111 && op2 == 0b101:
		return arm.decodeARMReverse(opcode, reverseSignedHalfword)
	}

	return nil
}

// PKHBT and PKHTB
func (arm *ARM) decodeARMPack(opcode uint32) decodeFunction {
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f
	amount := (opcode >> 7) & 0x1f
	tb := opcode&0x40 == 0x40

	if rd == rPC || rn == rPC || rm == rPC {
		return nil
	}

	return func() {
		n := arm.state.registers[rn]
		m := arm.state.registers[rm]
		if tb {
			// ASR #0 is encoded for ASR #32
			if amount == 0 {
				m = uint32(int32(m) >> 31)
			} else {
				m = uint32(int32(m) >> amount)
			}
			arm.state.registers[rd] = (n & 0xffff0000) | (m & 0x0000ffff)
			return
		}
		m <<= amount
		arm.state.registers[rd] = (m & 0xffff0000) | (n & 0x0000ffff)
	}
}

// ssat returns v saturated to the signed range of the specified number of bits
func ssat(v int64, n uint32) (uint32, bool) {
	max := int64(1)<<(n-1) - 1
	min := -(int64(1) << (n - 1))
	if v > max {
		return uint32(max), true
	}
	if v < min {
		return uint32(min), true
	}
	return uint32(v), false
}

// usat returns v saturated to the unsigned range of the specified number of
// bits
func usat(v int64, n uint32) (uint32, bool) {
	max := int64(1)<<n - 1
	if v > max {
		return uint32(max), true
	}
	if v < 0 {
		return 0, true
	}
	return uint32(v), false
}

// SSAT and USAT
func (arm *ARM) decodeARMSaturate(opcode uint32) decodeFunction {
	unsigned := opcode&0x00400000 == 0x00400000
	sat := (opcode >> 16) & 0x1f
	rd := (opcode >> 12) & 0x0f
	rn := opcode & 0x0f
	amount := (opcode >> 7) & 0x1f
	asr := opcode&0x40 == 0x40

	if rd == rPC || rn == rPC {
		return nil
	}

	return func() {
		var v int64
		if asr {
			// ASR #0 is encoded for ASR #32
			a := amount
			if a == 0 {
				a = 31
			}
			v = int64(int32(arm.state.registers[rn]) >> a)
		} else {
			v = int64(int32(arm.state.registers[rn] << amount))
		}

		var r uint32
		var saturated bool
		if unsigned {
			r, saturated = usat(v, sat)
		} else {
			r, saturated = ssat(v, sat+1)
		}

		arm.state.registers[rd] = r
		if saturated {
			arm.state.status.saturation = true
		}
	}
}

// SSAT16 and USAT16
func (arm *ARM) decodeARMSaturate16(opcode uint32) decodeFunction {
	unsigned := opcode&0x00400000 == 0x00400000
	sat := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rn := opcode & 0x0f

	if rd == rPC || rn == rPC || opcode&0xf00 != 0xf00 {
		return nil
	}

	return func() {
		v := arm.state.registers[rn]
		lo := int64(int16(v))
		hi := int64(int16(v >> 16))

		var rlo, rhi uint32
		var slo, shi bool
		if unsigned {
			rlo, slo = usat(lo, sat)
			rhi, shi = usat(hi, sat)
		} else {
			rlo, slo = ssat(lo, sat+1)
			rhi, shi = ssat(hi, sat+1)
		}

		arm.state.registers[rd] = (rhi << 16) | (rlo & 0xffff)
		if slo || shi {
			arm.state.status.saturation = true
		}
	}
}

// SXTB, SXTH, SXTB16, UXTB, UXTH, UXTB16 and the accumulating forms. the
// accumulating forms are selected when Rn is not the PC
func (arm *ARM) decodeARMExtend(opcode uint32) decodeFunction {
	op := (opcode >> 20) & 0x07
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f
	rotate := ((opcode >> 10) & 0x03) * 8

	if rd == rPC || rm == rPC || opcode&0x300 != 0 {
		return nil
	}

	var extend func(v uint32, acc uint32) uint32

	switch op {
	case 0b000:
		// SXTB16
		extend = func(v uint32, acc uint32) uint32 {
			lo := uint32(int32(int8(v))) + acc
			hi := uint32(int32(int8(v>>16))) + acc>>16
			return (hi << 16) | (lo & 0xffff)
		}
	case 0b010:
		// SXTB
		extend = func(v uint32, acc uint32) uint32 {
			return uint32(int32(int8(v))) + acc
		}
	case 0b011:
		// SXTH
		extend = func(v uint32, acc uint32) uint32 {
			return uint32(int32(int16(v))) + acc
		}
	case 0b100:
		// UXTB16
		extend = func(v uint32, acc uint32) uint32 {
			lo := (v & 0xff) + acc
			hi := ((v >> 16) & 0xff) + acc>>16
			return (hi << 16) | (lo & 0xffff)
		}
	case 0b110:
		// UXTB
		extend = func(v uint32, acc uint32) uint32 {
			return (v & 0xff) + acc
		}
	case 0b111:
		// UXTH
		extend = func(v uint32, acc uint32) uint32 {
			return (v & 0xffff) + acc
		}
	default:
		return nil
	}

	return func() {
		v := bits.RotateLeft32(arm.state.registers[rm], -int(rotate))
		var acc uint32
		if rn != rPC {
			acc = arm.state.registers[rn]
		}
		arm.state.registers[rd] = extend(v, acc)
	}
}

// byte reversal operations
const (
	reverseWord = iota
	reverseHalfwords
	reverseSignedHalfword
)

func reverse(op int, v uint32) uint32 {
	switch op {
	case reverseWord:
		return bits.ReverseBytes32(v)
	case reverseHalfwords:
		return (v&0x00ff00ff)<<8 | (v&0xff00ff00)>>8
	}
	return uint32(int32(int16(bits.ReverseBytes16(uint16(v)))))
}

// REV, REV16 and REVSH
func (arm *ARM) decodeARMReverse(opcode uint32, op int) decodeFunction {
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f

	if rd == rPC || rm == rPC || opcode&0x000f0f00 != 0x000f0f00 {
		return nil
	}

	return func() {
		arm.state.registers[rd] = reverse(op, arm.state.registers[rm])
	}
}
