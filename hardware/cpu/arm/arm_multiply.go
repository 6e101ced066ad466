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
	"math"
	"math/bits"
)

// MUL, MLA and UMAAL
func (arm *ARM) decodeARMMultiply(opcode uint32) decodeFunction {
	op := (opcode >> 21) & 0x03
	setFlags := opcode&0x00100000 == 0x00100000
	rd := (opcode >> 16) & 0x0f
	rn := (opcode >> 12) & 0x0f
	rs := (opcode >> 8) & 0x0f
	rm := opcode & 0x0f

	if rd == rPC || rm == rPC || rs == rPC {
		return nil
	}

	switch op {
	case 0b00, 0b01:
		accumulate := op == 0b01
		return func() {
			result := arm.state.registers[rm] * arm.state.registers[rs]
			if accumulate {
				result += arm.state.registers[rn]
			}
			arm.state.registers[rd] = result
			if setFlags {
				arm.state.status.isZero(result)
				arm.state.status.isNegative(result)
			}
		}

	case 0b10:
		// UMAAL. rd is RdHi and rn is RdLo
		if !arm.arch.isV6() || setFlags {
			return nil
		}
		return func() {
			hi, lo := bits.Mul32(arm.state.registers[rm], arm.state.registers[rs])
			lo, c := bits.Add32(lo, arm.state.registers[rn], 0)
			hi += c
			lo, c = bits.Add32(lo, arm.state.registers[rd], 0)
			hi += c
			arm.state.registers[rn] = lo
			arm.state.registers[rd] = hi
		}
	}

	return nil
}

// UMULL, UMLAL, SMULL and SMLAL
func (arm *ARM) decodeARMMultiplyLong(opcode uint32) decodeFunction {
	signed := opcode&0x00400000 == 0x00400000
	accumulate := opcode&0x00200000 == 0x00200000
	setFlags := opcode&0x00100000 == 0x00100000
	rdHi := (opcode >> 16) & 0x0f
	rdLo := (opcode >> 12) & 0x0f
	rs := (opcode >> 8) & 0x0f
	rm := opcode & 0x0f

	if rdHi == rPC || rdLo == rPC || rs == rPC || rm == rPC || rdHi == rdLo {
		return nil
	}

	return func() {
		var result uint64
		if signed {
			result = uint64(int64(int32(arm.state.registers[rm])) * int64(int32(arm.state.registers[rs])))
		} else {
			result = uint64(arm.state.registers[rm]) * uint64(arm.state.registers[rs])
		}

		if accumulate {
			result += uint64(arm.state.registers[rdHi])<<32 | uint64(arm.state.registers[rdLo])
		}

		arm.state.registers[rdHi] = uint32(result >> 32)
		arm.state.registers[rdLo] = uint32(result)

		if setFlags {
			arm.state.status.zero = result == 0
			arm.state.status.negative = result&0x8000000000000000 == 0x8000000000000000
		}
	}
}

// halfword selection for the DSP multiplies
func halfword(v uint32, top bool) int32 {
	if top {
		return int32(v) >> 16
	}
	return int32(int16(v))
}

// SMLAxy, SMLAWy, SMULWy, SMLALxy and SMULxy
func (arm *ARM) decodeARMSignedMultiply(opcode uint32) decodeFunction {
	op := (opcode >> 21) & 0x03
	rd := (opcode >> 16) & 0x0f
	rn := (opcode >> 12) & 0x0f
	rs := (opcode >> 8) & 0x0f
	rm := opcode & 0x0f
	x := opcode&0x20 == 0x20
	y := opcode&0x40 == 0x40

	if rd == rPC || rm == rPC || rs == rPC {
		return nil
	}

	switch op {
	case 0b00:
		// SMLAxy
		return func() {
			p := halfword(arm.state.registers[rm], x) * halfword(arm.state.registers[rs], y)
			r, overflow := addOverflow(p, int32(arm.state.registers[rn]))
			arm.state.registers[rd] = uint32(r)
			if overflow {
				arm.state.status.saturation = true
			}
		}

	case 0b01:
		if x {
			// SMULWy
			return func() {
				p := (int64(int32(arm.state.registers[rm])) * int64(halfword(arm.state.registers[rs], y))) >> 16
				arm.state.registers[rd] = uint32(p)
			}
		}

		// SMLAWy
		return func() {
			p := (int64(int32(arm.state.registers[rm])) * int64(halfword(arm.state.registers[rs], y))) >> 16
			r, overflow := addOverflow(int32(p), int32(arm.state.registers[rn]))
			arm.state.registers[rd] = uint32(r)
			if overflow {
				arm.state.status.saturation = true
			}
		}

	case 0b10:
		// SMLALxy. rd is RdHi and rn is RdLo
		if rn == rPC || rn == rd {
			return nil
		}
		return func() {
			p := int64(halfword(arm.state.registers[rm], x) * halfword(arm.state.registers[rs], y))
			acc := int64(uint64(arm.state.registers[rd])<<32 | uint64(arm.state.registers[rn]))
			r := uint64(acc + p)
			arm.state.registers[rd] = uint32(r >> 32)
			arm.state.registers[rn] = uint32(r)
		}

	case 0b11:
		// SMULxy
		return func() {
			p := halfword(arm.state.registers[rm], x) * halfword(arm.state.registers[rs], y)
			arm.state.registers[rd] = uint32(p)
		}
	}

	return nil
}

// CLZ
func (arm *ARM) decodeARMCountLeadingZeros(opcode uint32) decodeFunction {
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f

	if rd == rPC || rm == rPC {
		return nil
	}

	return func() {
		arm.state.registers[rd] = uint32(bits.LeadingZeros32(arm.state.registers[rm]))
	}
}

// addOverflow returns the sum of a and b and whether the sum overflowed
func addOverflow(a, b int32) (int32, bool) {
	r := a + b
	return r, (a >= 0) == (b >= 0) && (r >= 0) != (a >= 0)
}

// saturate a 64bit value to the range of a signed 32bit value
func saturate32(v int64) (int32, bool) {
	if v > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if v < math.MinInt32 {
		return math.MinInt32, true
	}
	return int32(v), false
}

// QADD, QSUB, QDADD and QDSUB
func (arm *ARM) decodeARMSaturatingArithmetic(opcode uint32) decodeFunction {
	op := (opcode >> 21) & 0x03
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f

	if rd == rPC || rn == rPC || rm == rPC {
		return nil
	}

	return func() {
		a := int64(int32(arm.state.registers[rm]))
		b := int64(int32(arm.state.registers[rn]))

		var sat bool
		if op&0b10 == 0b10 {
			// doubling
			var d int32
			d, sat = saturate32(b * 2)
			b = int64(d)
		}

		var r int32
		var s bool
		if op&0b01 == 0b01 {
			r, s = saturate32(a - b)
		} else {
			r, s = saturate32(a + b)
		}

		arm.state.registers[rd] = uint32(r)
		if sat || s {
			arm.state.status.saturation = true
		}
	}
}
