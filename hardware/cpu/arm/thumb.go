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

// returns an instance of the decodeFunction type. if the value is nil then
// that means the decoding could not complete
func (arm *ARM) decodeThumb(opcode uint16) decodeFunction {
	// working backwards up the table in Figure 5-1 of the ARM7TDMI Data Sheet.
	// the BLX instructions of ARMv5 and the miscellaneous instructions of
	// ARMv6 are found in the gaps of the table
	if opcode&0xf800 == 0xf800 {
		// format 19 - Long branch with link (suffix)
		return arm.decodeThumbLongBranchWithLink(opcode)
	} else if opcode&0xf800 == 0xf000 {
		// format 19 - Long branch with link (prefix)
		return arm.decodeThumbLongBranchWithLinkPrefix(opcode)
	} else if opcode&0xf800 == 0xe800 {
		// format 19 - Long branch with link and exchange (suffix)
		return arm.decodeThumbLongBranchWithLinkExchange(opcode)
	} else if opcode&0xf800 == 0xe000 {
		// format 18 - Unconditional branch
		return arm.decodeThumbUnconditionalBranch(opcode)
	} else if opcode&0xff00 == 0xdf00 {
		// format 17 - Software interrupt"
		return arm.decodeThumbSoftwareInterrupt(opcode)
	} else if opcode&0xf000 == 0xd000 {
		// format 16 - Conditional branch
		return arm.decodeThumbConditionalBranch(opcode)
	} else if opcode&0xf000 == 0xc000 {
		// format 15 - Multiple load/store
		return arm.decodeThumbMultipleLoadStore(opcode)
	} else if opcode&0xf600 == 0xb400 {
		// format 14 - Push/pop registers
		return arm.decodeThumbPushPopRegisters(opcode)
	} else if opcode&0xff00 == 0xb000 {
		// format 13 - Add offset to stack pointer
		return arm.decodeThumbAddOffsetToSP(opcode)
	} else if opcode&0xf000 == 0xb000 {
		// miscellaneous instructions
		return arm.decodeThumbMiscellaneous(opcode)
	} else if opcode&0xf000 == 0xa000 {
		// format 12 - Load address
		return arm.decodeThumbLoadAddress(opcode)
	} else if opcode&0xf000 == 0x9000 {
		// format 11 - SP-relative load/store
		return arm.decodeThumbSPRelativeLoadStore(opcode)
	} else if opcode&0xf000 == 0x8000 {
		// format 10 - Load/store halfword
		return arm.decodeThumbLoadStoreHalfword(opcode)
	} else if opcode&0xe000 == 0x6000 {
		// format 9 - Load/store with immediate offset
		return arm.decodeThumbLoadStoreWithImmOffset(opcode)
	} else if opcode&0xf200 == 0x5200 {
		// format 8 - Load/store sign-extended byte/halfword
		return arm.decodeThumbLoadStoreSignExtendedByteHalfword(opcode)
	} else if opcode&0xf200 == 0x5000 {
		// format 7 - Load/store with register offset
		return arm.decodeThumbLoadStoreWithRegisterOffset(opcode)
	} else if opcode&0xf800 == 0x4800 {
		// format 6 - PC-relative load
		return arm.decodeThumbPCrelativeLoad(opcode)
	} else if opcode&0xfc00 == 0x4400 {
		// format 5 - Hi register operations/branch exchange
		return arm.decodeThumbHiRegisterOps(opcode)
	} else if opcode&0xfc00 == 0x4000 {
		// format 4 - ALU operations
		return arm.decodeThumbALUoperations(opcode)
	} else if opcode&0xe000 == 0x2000 {
		// format 3 - Move/compare/add/subtract immediate
		return arm.decodeThumbMovCmpAddSubImm(opcode)
	} else if opcode&0xf800 == 0x1800 {
		// format 2 - Add/subtract
		return arm.decodeThumbAddSubtract(opcode)
	} else if opcode&0xe000 == 0x0000 {
		// format 1 - Move shifted register
		return arm.decodeThumbMoveShiftedRegister(opcode)
	}

	return nil
}

func (arm *ARM) decodeThumbMoveShiftedRegister(opcode uint16) decodeFunction {
	// format 1 - Move shifted register
	op := uint32(opcode&0x1800) >> 11
	shift := uint32(opcode&0x7c0) >> 6
	srcReg := (opcode & 0x38) >> 3
	destReg := opcode & 0x07

	return func() {
		v, carry := arm.shiftImmediate(op, shift, arm.state.registers[srcReg])
		arm.state.registers[destReg] = v
		arm.state.status.setCarry(carry)
		arm.state.status.isZero(v)
		arm.state.status.isNegative(v)
	}
}

func (arm *ARM) decodeThumbAddSubtract(opcode uint16) decodeFunction {
	// format 2 - Add/subtract
	immediate := opcode&0x0400 == 0x0400
	subtract := opcode&0x0200 == 0x0200
	imm := uint32((opcode & 0x01c0) >> 6)
	srcReg := (opcode & 0x038) >> 3
	destReg := opcode & 0x07

	return func() {
		// value to work with is either an immediate value or is in a register
		val := imm
		if !immediate {
			val = arm.state.registers[imm]
		}

		a := arm.state.registers[srcReg]
		if subtract {
			arm.state.status.isCarry(a, ^val, 1)
			arm.state.status.isOverflow(a, ^val, 1)
			arm.state.registers[destReg] = a - val
		} else {
			arm.state.status.isCarry(a, val, 0)
			arm.state.status.isOverflow(a, val, 0)
			arm.state.registers[destReg] = a + val
		}

		arm.state.status.isZero(arm.state.registers[destReg])
		arm.state.status.isNegative(arm.state.registers[destReg])
	}
}

// "The instructions in this group perform operations between a Lo register and
// an 8-bit immediate value".
func (arm *ARM) decodeThumbMovCmpAddSubImm(opcode uint16) decodeFunction {
	// format 3 - Move/compare/add/subtract immediate
	op := (opcode & 0x1800) >> 11
	destReg := (opcode & 0x0700) >> 8
	imm := uint32(opcode & 0x00ff)

	return func() {
		a := arm.state.registers[destReg]

		switch op {
		case 0b00:
			// MOV
			arm.state.registers[destReg] = imm
			arm.state.status.isZero(imm)
			arm.state.status.isNegative(imm)
		case 0b01:
			// CMP
			arm.state.status.isCarry(a, ^imm, 1)
			arm.state.status.isOverflow(a, ^imm, 1)
			arm.state.status.isZero(a - imm)
			arm.state.status.isNegative(a - imm)
		case 0b10:
			// ADD
			arm.state.status.isCarry(a, imm, 0)
			arm.state.status.isOverflow(a, imm, 0)
			arm.state.registers[destReg] = a + imm
			arm.state.status.isZero(a + imm)
			arm.state.status.isNegative(a + imm)
		case 0b11:
			// SUB
			arm.state.status.isCarry(a, ^imm, 1)
			arm.state.status.isOverflow(a, ^imm, 1)
			arm.state.registers[destReg] = a - imm
			arm.state.status.isZero(a - imm)
			arm.state.status.isNegative(a - imm)
		}
	}
}

// "The following instructions perform ALU operations on a Lo register pair".
func (arm *ARM) decodeThumbALUoperations(opcode uint16) decodeFunction {
	// format 4 - ALU operations
	op := (opcode & 0x03c0) >> 6
	srcReg := (opcode & 0x38) >> 3
	destReg := opcode & 0x07

	return func() {
		a := arm.state.registers[destReg]
		b := arm.state.registers[srcReg]

		var result uint32
		writeResult := true

		switch op {
		case 0b0000:
			// AND
			result = a & b
		case 0b0001:
			// EOR
			result = a ^ b
		case 0b0010:
			// LSL
			var c bool
			result, c = arm.shiftRegister(shiftLSL, b, a)
			arm.state.status.setCarry(c)
		case 0b0011:
			// LSR
			var c bool
			result, c = arm.shiftRegister(shiftLSR, b, a)
			arm.state.status.setCarry(c)
		case 0b0100:
			// ASR
			var c bool
			result, c = arm.shiftRegister(shiftASR, b, a)
			arm.state.status.setCarry(c)
		case 0b0101:
			// ADC
			c := arm.state.status.carryValue()
			result = a + b + c
			arm.state.status.isCarry(a, b, c)
			arm.state.status.isOverflow(a, b, c)
		case 0b0110:
			// SBC
			c := arm.state.status.carryValue()
			result = a - b - (1 - c)
			arm.state.status.isCarry(a, ^b, c)
			arm.state.status.isOverflow(a, ^b, c)
		case 0b0111:
			// ROR
			var c bool
			result, c = arm.shiftRegister(shiftROR, b, a)
			arm.state.status.setCarry(c)
		case 0b1000:
			// TST
			result = a & b
			writeResult = false
		case 0b1001:
			// NEG
			result = 0 - b
			arm.state.status.isCarry(0, ^b, 1)
			arm.state.status.isOverflow(0, ^b, 1)
		case 0b1010:
			// CMP
			result = a - b
			arm.state.status.isCarry(a, ^b, 1)
			arm.state.status.isOverflow(a, ^b, 1)
			writeResult = false
		case 0b1011:
			// CMN
			result = a + b
			arm.state.status.isCarry(a, b, 0)
			arm.state.status.isOverflow(a, b, 0)
			writeResult = false
		case 0b1100:
			// ORR
			result = a | b
		case 0b1101:
			// MUL
			result = a * b
		case 0b1110:
			// BIC
			result = a &^ b
		case 0b1111:
			// MVN
			result = ^b
		}

		arm.state.status.isZero(result)
		arm.state.status.isNegative(result)
		if writeResult {
			arm.state.registers[destReg] = result
		}
	}
}

func (arm *ARM) decodeThumbHiRegisterOps(opcode uint16) decodeFunction {
	// format 5 - Hi register operations/branch exchange
	op := (opcode & 0x300) >> 8
	hi1 := opcode&0x80 == 0x80
	hi2 := opcode&0x40 == 0x40
	srcReg := (opcode & 0x38) >> 3
	destReg := opcode & 0x07

	// the H flags select the high registers
	if hi1 {
		destReg += 8
	}
	if hi2 {
		srcReg += 8
	}

	switch op {
	case 0b00:
		// ADD
		return func() {
			arm.writeRegister(uint32(destReg), arm.state.registers[destReg]+arm.state.registers[srcReg])
		}
	case 0b01:
		// CMP
		return func() {
			a := arm.state.registers[destReg]
			b := arm.state.registers[srcReg]
			arm.state.status.isCarry(a, ^b, 1)
			arm.state.status.isOverflow(a, ^b, 1)
			arm.state.status.isZero(a - b)
			arm.state.status.isNegative(a - b)
		}
	case 0b10:
		// MOV
		return func() {
			arm.writeRegister(uint32(destReg), arm.state.registers[srcReg])
		}
	}

	// BX and BLX
	if opcode&0x07 != 0 {
		return nil
	}

	return func() {
		target := arm.state.registers[srcReg]
		if hi1 {
			arm.state.registers[rLR] = arm.nextInstruction() | 0x01
		}
		arm.branchExchange(target)
	}
}

func (arm *ARM) decodeThumbPCrelativeLoad(opcode uint16) decodeFunction {
	// format 6 - PC-relative load
	destReg := (opcode & 0x0700) >> 8
	imm := uint32(opcode&0x00ff) << 2

	return func() {
		// "Bit 1 of the PC value is forced to zero for the purpose of this
		// calculation, so the address is always word-aligned."
		addr := (arm.state.registers[rPC] &^ 0x02) + imm
		arm.state.registers[destReg] = arm.read32bit(addr)
	}
}

func (arm *ARM) decodeThumbLoadStoreWithRegisterOffset(opcode uint16) decodeFunction {
	// format 7 - Load/store with register offset
	load := opcode&0x0800 == 0x0800
	byteTransfer := opcode&0x0400 == 0x0400
	offsetReg := (opcode & 0x01c0) >> 6
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	return func() {
		addr := arm.state.registers[baseReg] + arm.state.registers[offsetReg]

		if load {
			if byteTransfer {
				v := arm.read8bit(addr)
				if arm.memoryError == nil {
					arm.state.registers[reg] = uint32(v)
				}
				return
			}
			v := arm.read32bit(addr)
			if arm.memoryError == nil {
				arm.state.registers[reg] = v
			}
			return
		}

		if byteTransfer {
			arm.write8bit(addr, uint8(arm.state.registers[reg]))
			return
		}
		arm.write32bit(addr, arm.state.registers[reg])
	}
}

func (arm *ARM) decodeThumbLoadStoreSignExtendedByteHalfword(opcode uint16) decodeFunction {
	// format 8 - Load/store sign-extended byte/halfword
	hi := opcode&0x0800 == 0x0800
	sign := opcode&0x0400 == 0x0400
	offsetReg := (opcode & 0x01c0) >> 6
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	return func() {
		addr := arm.state.registers[baseReg] + arm.state.registers[offsetReg]

		var v uint32
		switch {
		case !sign && !hi:
			// STRH
			arm.write16bit(addr, uint16(arm.state.registers[reg]))
			return
		case !sign && hi:
			// LDRH
			v = uint32(arm.read16bit(addr))
		case sign && !hi:
			// LDSB
			v = uint32(int32(int8(arm.read8bit(addr))))
		default:
			// LDSH
			v = uint32(int32(int16(arm.read16bit(addr))))
		}

		if arm.memoryError == nil {
			arm.state.registers[reg] = v
		}
	}
}

func (arm *ARM) decodeThumbLoadStoreWithImmOffset(opcode uint16) decodeFunction {
	// format 9 - Load/store with immediate offset
	load := opcode&0x0800 == 0x0800
	byteTransfer := opcode&0x1000 == 0x1000
	offset := uint32((opcode & 0x07c0) >> 6)
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	// "For word accesses (B = 0), the value specified by #Imm is a full 7-bit
	// address, but must be word-aligned (ie with bits 1:0 set to 0), since the
	// assembler places #Imm >> 2 in the Offset5 field."
	if !byteTransfer {
		offset <<= 2
	}

	return func() {
		addr := arm.state.registers[baseReg] + offset

		if load {
			var v uint32
			if byteTransfer {
				v = uint32(arm.read8bit(addr))
			} else {
				v = arm.read32bit(addr)
			}
			if arm.memoryError == nil {
				arm.state.registers[reg] = v
			}
			return
		}

		if byteTransfer {
			arm.write8bit(addr, uint8(arm.state.registers[reg]))
			return
		}
		arm.write32bit(addr, arm.state.registers[reg])
	}
}

func (arm *ARM) decodeThumbLoadStoreHalfword(opcode uint16) decodeFunction {
	// format 10 - Load/store halfword
	load := opcode&0x0800 == 0x0800
	offset := uint32((opcode&0x07c0)>>6) << 1
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	return func() {
		addr := arm.state.registers[baseReg] + offset

		if load {
			v := arm.read16bit(addr)
			if arm.memoryError == nil {
				arm.state.registers[reg] = uint32(v)
			}
			return
		}

		arm.write16bit(addr, uint16(arm.state.registers[reg]))
	}
}

func (arm *ARM) decodeThumbSPRelativeLoadStore(opcode uint16) decodeFunction {
	// format 11 - SP-relative load/store
	load := opcode&0x0800 == 0x0800
	reg := (opcode & 0x07ff) >> 8
	offset := uint32(opcode&0xff) << 2

	return func() {
		addr := arm.state.registers[rSP] + offset

		if load {
			v := arm.read32bit(addr)
			if arm.memoryError == nil {
				arm.state.registers[reg] = v
			}
			return
		}

		arm.write32bit(addr, arm.state.registers[reg])
	}
}

func (arm *ARM) decodeThumbLoadAddress(opcode uint16) decodeFunction {
	// format 12 - Load address
	sp := opcode&0x0800 == 0x0800
	destReg := (opcode & 0x0700) >> 8
	offset := uint32(opcode&0x00ff) << 2

	return func() {
		if sp {
			arm.state.registers[destReg] = arm.state.registers[rSP] + offset
			return
		}

		// "Where the PC is used as the source register (SP = 0), bit 1 of the
		// PC is always read as 0."
		arm.state.registers[destReg] = (arm.state.registers[rPC] &^ 0x02) + offset
	}
}

func (arm *ARM) decodeThumbAddOffsetToSP(opcode uint16) decodeFunction {
	// format 13 - Add offset to stack pointer
	sign := opcode&0x80 == 0x80
	imm := uint32(opcode&0x7f) << 2

	return func() {
		if sign {
			arm.state.registers[rSP] -= imm
			return
		}
		arm.state.registers[rSP] += imm
	}
}

func (arm *ARM) decodeThumbPushPopRegisters(opcode uint16) decodeFunction {
	// format 14 - Push/pop registers
	load := opcode&0x0800 == 0x0800
	pclr := opcode&0x0100 == 0x0100
	regList := uint8(opcode & 0x00ff)

	if regList == 0 && !pclr {
		return nil
	}

	count := uint32(bits.OnesCount8(regList))
	if pclr {
		count++
	}

	if load {
		// POP
		return func() {
			addr := arm.state.registers[rSP]

			var values [8]uint32
			for i := 0; i < 8; i++ {
				if regList&(1<<i) != 0 {
					values[i] = arm.readWord(addr)
					addr += 4
				}
			}
			var pc uint32
			if pclr {
				pc = arm.readWord(addr)
			}
			if arm.memoryError != nil {
				return
			}

			for i := 0; i < 8; i++ {
				if regList&(1<<i) != 0 {
					arm.state.registers[i] = values[i]
				}
			}
			arm.state.registers[rSP] += count * 4

			if pclr {
				arm.branchExchange(pc)
			}
		}
	}

	// PUSH
	return func() {
		addr := arm.state.registers[rSP] - count*4
		start := addr
		for i := 0; i < 8; i++ {
			if regList&(1<<i) != 0 {
				arm.writeWord(addr, arm.state.registers[i])
				addr += 4
			}
		}
		if pclr {
			arm.writeWord(addr, arm.state.registers[rLR])
		}
		if arm.memoryError != nil {
			return
		}
		arm.state.registers[rSP] = start
	}
}

func (arm *ARM) decodeThumbMiscellaneous(opcode uint16) decodeFunction {
	// BKPT
	if opcode&0xff00 == 0xbe00 {
		return func() {
			arm.logf("BKPT %02x at %08x", opcode&0xff, arm.executingPC)
			arm.exception(vectorPrefetchAbort, Abort, arm.executingPC+4)
		}
	}

	if !arm.arch.isV6() {
		return nil
	}

	rm := (opcode & 0x38) >> 3
	rd := opcode & 0x07

	// SXTH, SXTB, UXTH and UXTB
	if opcode&0xff00 == 0xb200 {
		var extend func(uint32) uint32
		switch (opcode >> 6) & 0x03 {
		case 0b00:
			extend = func(v uint32) uint32 { return uint32(int32(int16(v))) }
		case 0b01:
			extend = func(v uint32) uint32 { return uint32(int32(int8(v))) }
		case 0b10:
			extend = func(v uint32) uint32 { return v & 0xffff }
		case 0b11:
			extend = func(v uint32) uint32 { return v & 0xff }
		}
		return func() {
			arm.state.registers[rd] = extend(arm.state.registers[rm])
		}
	}

	// REV, REV16 and REVSH
	if opcode&0xff00 == 0xba00 {
		var op int
		switch (opcode >> 6) & 0x03 {
		case 0b00:
			op = reverseWord
		case 0b01:
			op = reverseHalfwords
		case 0b11:
			op = reverseSignedHalfword
		default:
			return nil
		}
		return func() {
			arm.state.registers[rd] = reverse(op, arm.state.registers[rm])
		}
	}

	// SETEND
	if opcode&0xfff7 == 0xb650 {
		if opcode&0x08 == 0x08 {
			return nil
		}
		return func() {
			arm.state.status.bigEndian = false
		}
	}

	// CPS
	if opcode&0xffe8 == 0xb660 {
		disable := opcode&0x10 == 0x10
		return func() {
			if !arm.state.status.mode.privileged() {
				return
			}
			if opcode&0x04 == 0x04 {
				arm.state.status.abortDisable = disable
			}
			if opcode&0x02 == 0x02 {
				arm.state.status.irqDisable = disable
			}
			if opcode&0x01 == 0x01 {
				arm.state.status.fiqDisable = disable
			}
		}
	}

	return nil
}

func (arm *ARM) decodeThumbMultipleLoadStore(opcode uint16) decodeFunction {
	// format 15 - Multiple load/store
	load := opcode&0x0800 == 0x0800
	baseReg := uint32(opcode&0x07ff) >> 8
	regList := uint8(opcode & 0xff)

	if regList == 0 {
		return nil
	}

	count := uint32(bits.OnesCount8(regList))

	return func() {
		addr := arm.state.registers[baseReg]
		wb := addr + count*4

		if load {
			var values [8]uint32
			for i := 0; i < 8; i++ {
				if regList&(1<<i) != 0 {
					values[i] = arm.readWord(addr)
					addr += 4
				}
			}
			if arm.memoryError != nil {
				return
			}

			// the loaded value takes precedence over the writeback
			arm.state.registers[baseReg] = wb
			for i := 0; i < 8; i++ {
				if regList&(1<<i) != 0 {
					arm.state.registers[i] = values[i]
				}
			}
			return
		}

		// the base register is stored with its original value
		for i := 0; i < 8; i++ {
			if regList&(1<<i) != 0 {
				arm.writeWord(addr, arm.state.registers[i])
				addr += 4
			}
		}
		if arm.memoryError != nil {
			return
		}
		arm.state.registers[baseReg] = wb
	}
}

func (arm *ARM) decodeThumbConditionalBranch(opcode uint16) decodeFunction {
	// format 16 - Conditional branch
	cond := uint8((opcode & 0x0f00) >> 8)
	offset := uint32(int32(int8(opcode&0xff))) << 1

	// condition 0b1110 is undefined. 0b1111 is the SWI instruction which
	// is dealt with before this function is called
	if cond == 0b1110 {
		return nil
	}

	return func() {
		if !arm.state.status.condition(cond) {
			arm.conditionPassed = false
			return
		}
		arm.branch(arm.state.registers[rPC] + offset)
	}
}

func (arm *ARM) decodeThumbSoftwareInterrupt(opcode uint16) decodeFunction {
	// format 17 - Software interrupt
	return func() {
		arm.exception(vectorSWI, Supervisor, arm.nextInstruction())
	}
}

func (arm *ARM) decodeThumbUnconditionalBranch(opcode uint16) decodeFunction {
	// format 18 - Unconditional branch
	offset := uint32(int32(int16(opcode<<5)) >> 4)

	return func() {
		arm.branch(arm.state.registers[rPC] + offset)
	}
}

// the first half of the BL and BLX instruction pairs. the prefix and suffix
// are executed as separate instructions with the LR holding the intermediate
// value
func (arm *ARM) decodeThumbLongBranchWithLinkPrefix(opcode uint16) decodeFunction {
	// format 19 - Long branch with link
	offset := uint32(int32(int16(opcode<<5))>>5) << 12

	return func() {
		arm.state.registers[rLR] = arm.state.registers[rPC] + offset
	}
}

func (arm *ARM) decodeThumbLongBranchWithLink(opcode uint16) decodeFunction {
	// format 19 - Long branch with link
	offset := uint32(opcode&0x07ff) << 1

	return func() {
		target := arm.state.registers[rLR] + offset
		arm.state.registers[rLR] = arm.nextInstruction() | 0x01
		arm.branch(target)
	}
}

func (arm *ARM) decodeThumbLongBranchWithLinkExchange(opcode uint16) decodeFunction {
	// format 19 - Long branch with link and exchange. ARMv5 and later
	if opcode&0x01 == 0x01 {
		return nil
	}

	offset := uint32(opcode&0x07ff) << 1

	return func() {
		target := (arm.state.registers[rLR] + offset) &^ 0x03
		arm.state.registers[rLR] = arm.nextInstruction() | 0x01
		arm.branchExchange(target)
	}
}
