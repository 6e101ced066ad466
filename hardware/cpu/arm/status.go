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
	"strings"
)

// CPSR bit positions.
const (
	cpsrN = 0x80000000
	cpsrZ = 0x40000000
	cpsrC = 0x20000000
	cpsrV = 0x10000000
	cpsrQ = 0x08000000
	cpsrE = 0x00000200
	cpsrA = 0x00000100
	cpsrI = 0x00000080
	cpsrF = 0x00000040
	cpsrT = 0x00000020

	cpsrGEMask   = 0x000f0000
	cpsrGEShift  = 16
	cpsrModeMask = 0x0000001f
)

// the status register is the unpacked CPSR. the fields are packed into a
// uint32 only when the CPSR is read as a whole (MRS, exception entry, etc.)
type status struct {
	negative   bool
	zero       bool
	carry      bool
	overflow   bool
	saturation bool

	// greater than or equal flags. ARMv6 only
	ge uint8

	// endianness of data accesses. ARMv6 only. only little endian is
	// supported and the field is kept so that the CPSR reads back correctly
	bigEndian bool

	// interrupt masks. no interrupts are delivered but the bits are
	// maintained
	abortDisable bool
	irqDisable   bool
	fiqDisable   bool

	thumb bool
	mode  Mode
}

func (sr status) String() string {
	s := strings.Builder{}

	if sr.negative {
		s.WriteRune('N')
	} else {
		s.WriteRune('n')
	}
	if sr.zero {
		s.WriteRune('Z')
	} else {
		s.WriteRune('z')
	}
	if sr.carry {
		s.WriteRune('C')
	} else {
		s.WriteRune('c')
	}
	if sr.overflow {
		s.WriteRune('V')
	} else {
		s.WriteRune('v')
	}
	if sr.saturation {
		s.WriteRune('Q')
	} else {
		s.WriteRune('q')
	}
	s.WriteRune(' ')
	if sr.irqDisable {
		s.WriteRune('I')
	} else {
		s.WriteRune('i')
	}
	if sr.fiqDisable {
		s.WriteRune('F')
	} else {
		s.WriteRune('f')
	}
	if sr.thumb {
		s.WriteRune('T')
	} else {
		s.WriteRune('t')
	}
	s.WriteRune(' ')
	s.WriteString(sr.mode.String())

	return s.String()
}

// pack status into the 32bit CPSR format.
func (sr status) cpsr() uint32 {
	var v uint32
	if sr.negative {
		v |= cpsrN
	}
	if sr.zero {
		v |= cpsrZ
	}
	if sr.carry {
		v |= cpsrC
	}
	if sr.overflow {
		v |= cpsrV
	}
	if sr.saturation {
		v |= cpsrQ
	}
	v |= uint32(sr.ge&0x0f) << cpsrGEShift
	if sr.bigEndian {
		v |= cpsrE
	}
	if sr.abortDisable {
		v |= cpsrA
	}
	if sr.irqDisable {
		v |= cpsrI
	}
	if sr.fiqDisable {
		v |= cpsrF
	}
	if sr.thumb {
		v |= cpsrT
	}
	v |= uint32(sr.mode) & cpsrModeMask
	return v
}

// unpack the bits of a 32bit CPSR value. the mode field is not changed. mode
// changes must be made with ARM.switchMode() so that the registers banks are
// updated.
func (sr *status) unpack(v uint32) {
	sr.negative = v&cpsrN == cpsrN
	sr.zero = v&cpsrZ == cpsrZ
	sr.carry = v&cpsrC == cpsrC
	sr.overflow = v&cpsrV == cpsrV
	sr.saturation = v&cpsrQ == cpsrQ
	sr.ge = uint8((v & cpsrGEMask) >> cpsrGEShift)
	sr.bigEndian = v&cpsrE == cpsrE
	sr.abortDisable = v&cpsrA == cpsrA
	sr.irqDisable = v&cpsrI == cpsrI
	sr.fiqDisable = v&cpsrF == cpsrF
	sr.thumb = v&cpsrT == cpsrT
}

func (sr *status) isNegative(a uint32) {
	sr.negative = a&0x80000000 == 0x80000000
}

func (sr *status) isZero(a uint32) {
	sr.zero = a == 0x00
}

func (sr *status) isOverflow(a, b, c uint32) {
	d := (a & 0x7fffffff) + (b & 0x7fffffff) + c
	d >>= 31
	e := (d & 0x01) + ((a >> 31) & 0x01) + ((b >> 31) & 0x01)
	e >>= 1
	sr.overflow = (d^e)&0x01 == 0x01
}

func (sr *status) isCarry(a, b, c uint32) {
	d := (a & 0x7fffffff) + (b & 0x7fffffff) + c
	d = (d >> 31) + (a >> 31) + (b >> 31)
	sr.carry = d&0x02 == 0x02
}

func (sr *status) setCarry(a bool) {
	sr.carry = a
}

func (sr *status) setOverflow(a bool) {
	sr.overflow = a
}

func (sr *status) carryValue() uint32 {
	if sr.carry {
		return 1
	}
	return 0
}

// conditional execution information from "A3.2 The condition field" in "ARM
// Architecture Reference Manual". the unconditional space (0b1111) is dealt
// with by the instruction decoder and is never passed to this function
func (sr *status) condition(cond uint8) bool {
	switch cond {
	case 0b0000:
		// equal
		return sr.zero
	case 0b0001:
		// not equal
		return !sr.zero
	case 0b0010:
		// carry set
		return sr.carry
	case 0b0011:
		// carry clear
		return !sr.carry
	case 0b0100:
		// minus
		return sr.negative
	case 0b0101:
		// plus
		return !sr.negative
	case 0b0110:
		// overflow
		return sr.overflow
	case 0b0111:
		// no overflow
		return !sr.overflow
	case 0b1000:
		// unsigned higher C==1 and Z==0
		return sr.carry && !sr.zero
	case 0b1001:
		// unsigned lower or same C==0 or Z==1
		return !sr.carry || sr.zero
	case 0b1010:
		// signed greater than or equal N==V
		return sr.negative == sr.overflow
	case 0b1011:
		// signed less than N!=V
		return sr.negative != sr.overflow
	case 0b1100:
		// signed greater than Z==0 and N==V
		return !sr.zero && sr.negative == sr.overflow
	case 0b1101:
		// signed less than or equal Z==1 or N!=V
		return sr.zero || sr.negative != sr.overflow
	}

	// always
	return true
}

// condition suffixes for disassembly
var conditionSuffix = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "", "",
}
