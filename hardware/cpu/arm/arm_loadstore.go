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

// LDR, STR, LDRB and STRB. the offset is a 12bit immediate or a register
// shifted by an immediate amount
func (arm *ARM) decodeARMLoadStore(opcode uint32) decodeFunction {
	immediate := opcode&0x02000000 == 0
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	byteAccess := opcode&0x00400000 == 0x00400000
	writeback := opcode&0x00200000 == 0x00200000 || !pre
	load := opcode&0x00100000 == 0x00100000
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f

	// register offset with a shift of a register amount is in the media
	// instruction space
	if !immediate && opcode&0x10 == 0x10 {
		return nil
	}

	return func() {
		var offset uint32
		if immediate {
			offset = opcode & 0xfff
		} else {
			rm := opcode & 0x0f
			typ := (opcode >> 5) & 0x03
			amount := (opcode >> 7) & 0x1f
			offset, _ = arm.shiftImmediate(typ, amount, arm.state.registers[rm])
		}

		base := arm.state.registers[rn]
		offsetAddr := base - offset
		if up {
			offsetAddr = base + offset
		}

		addr := base
		if pre {
			addr = offsetAddr
		}

		if load {
			var v uint32
			if byteAccess {
				v = uint32(arm.read8bit(addr))
			} else {
				v = arm.read32bit(addr)
			}
			if arm.memoryError != nil {
				return
			}

			// the loaded value takes precedence over the writeback
			if writeback && rn != rd {
				arm.writeRegister(rn, offsetAddr)
			}
			arm.loadRegister(rd, v)
			return
		}

		v := arm.state.registers[rd]
		if rd == rPC {
			v = arm.storedPC()
		}
		if byteAccess {
			arm.write8bit(addr, uint8(v))
		} else {
			arm.write32bit(addr, v)
		}
		if arm.memoryError != nil {
			return
		}
		if writeback {
			arm.writeRegister(rn, offsetAddr)
		}
	}
}

// the value of the PC when it is stored by STR or STM is implementation
// defined. the ARM9 stores the address of the instruction plus 12 and the
// ARM11 stores the address plus 8.
func (arm *ARM) storedPC() uint32 {
	if arm.arch.isV6() {
		return arm.executingPC + 8
	}
	return arm.executingPC + 12
}

// LDRH, STRH, LDRSB, LDRSH, LDRD and STRD
func (arm *ARM) decodeARMExtraLoadStore(opcode uint32) decodeFunction {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	immediate := opcode&0x00400000 == 0x00400000
	writeback := opcode&0x00200000 == 0x00200000 || !pre
	load := opcode&0x00100000 == 0x00100000
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	sh := (opcode >> 5) & 0x03

	// post indexed with the W bit set is unpredictable
	if !pre && opcode&0x00200000 == 0x00200000 {
		return nil
	}

	// without the immediate bit, bits 8 to 11 must be zero
	if !immediate && opcode&0xf00 != 0 {
		return nil
	}

	// LDRD and STRD require an even numbered register that is not R14
	double := !load && sh&0b10 == 0b10
	if double && (rd&0x01 == 0x01 || rd == rLR) {
		return nil
	}

	return func() {
		var offset uint32
		if immediate {
			offset = ((opcode >> 4) & 0xf0) | (opcode & 0x0f)
		} else {
			offset = arm.state.registers[opcode&0x0f]
		}

		base := arm.state.registers[rn]
		offsetAddr := base - offset
		if up {
			offsetAddr = base + offset
		}

		addr := base
		if pre {
			addr = offsetAddr
		}

		if double {
			if sh == 0b10 {
				// LDRD
				lo := arm.readWord(addr)
				hi := arm.readWord(addr + 4)
				if arm.memoryError != nil {
					return
				}
				if writeback && rn != rd && rn != rd+1 {
					arm.writeRegister(rn, offsetAddr)
				}
				arm.state.registers[rd] = lo
				arm.loadRegister(rd+1, hi)
			} else {
				// STRD
				arm.writeWord(addr, arm.state.registers[rd])
				hi := arm.state.registers[rd+1]
				if rd+1 == rPC {
					hi = arm.storedPC()
				}
				arm.writeWord(addr+4, hi)
				if arm.memoryError != nil {
					return
				}
				if writeback {
					arm.writeRegister(rn, offsetAddr)
				}
			}
			return
		}

		if load {
			var v uint32
			switch sh {
			case 0b01:
				// LDRH
				v = uint32(arm.read16bit(addr))
			case 0b10:
				// LDRSB
				v = uint32(int32(int8(arm.read8bit(addr))))
			case 0b11:
				// LDRSH
				v = uint32(int32(int16(arm.read16bit(addr))))
			}
			if arm.memoryError != nil {
				return
			}
			if writeback && rn != rd {
				arm.writeRegister(rn, offsetAddr)
			}
			arm.loadRegister(rd, v)
			return
		}

		// STRH
		v := arm.state.registers[rd]
		if rd == rPC {
			v = arm.storedPC()
		}
		arm.write16bit(addr, uint16(v))
		if arm.memoryError != nil {
			return
		}
		if writeback {
			arm.writeRegister(rn, offsetAddr)
		}
	}
}

// LDM and STM
func (arm *ARM) decodeARMBlockTransfer(opcode uint32) decodeFunction {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	userBank := opcode&0x00400000 == 0x00400000
	writeback := opcode&0x00200000 == 0x00200000
	load := opcode&0x00100000 == 0x00100000
	rn := (opcode >> 16) & 0x0f
	regList := uint16(opcode & 0xffff)

	if rn == rPC {
		return nil
	}

	return func() {
		count := uint32(bits.OnesCount16(regList))

		// an empty register list transfers the PC and adjusts the base
		// register by 64 bytes
		transferList := regList
		size := count * 4
		if regList == 0 {
			transferList = 0x8000
			size = 0x40
		}

		base := arm.state.registers[rn]

		var addr uint32
		var wb uint32
		if up {
			addr = base
			if pre {
				addr += 4
			}
			wb = base + size
		} else {
			addr = base - size
			if !pre {
				addr += 4
			}
			wb = base - size
		}

		loadsPC := load && transferList&0x8000 == 0x8000

		// the S bit with a load of the PC restores the CPSR. otherwise it
		// means that the user mode registers are transferred
		user := userBank && !loadsPC

		if load {
			var values [16]uint32
			for i := 0; i < 16; i++ {
				if transferList&(1<<i) != 0 {
					values[i] = arm.readWord(addr)
					addr += 4
				}
			}
			if arm.memoryError != nil {
				return
			}

			// the loaded value takes precedence over the writeback
			if writeback && regList&(1<<rn) == 0 {
				arm.state.registers[rn] = wb
			}

			for i := 0; i < 15; i++ {
				if transferList&(1<<i) != 0 {
					if user {
						arm.setUserRegister(i, values[i])
					} else {
						arm.state.registers[i] = values[i]
					}
				}
			}

			if loadsPC {
				if userBank {
					arm.restoreCPSR()
					arm.branch(values[rPC])
				} else {
					arm.branchExchange(values[rPC])
				}
			}
			return
		}

		// the base register is stored with its original value
		for i := 0; i < 16; i++ {
			if transferList&(1<<i) != 0 {
				var v uint32
				switch {
				case i == rPC:
					v = arm.storedPC()
				case user:
					v = arm.userRegister(i)
				default:
					v = arm.state.registers[i]
				}
				arm.writeWord(addr, v)
				addr += 4
			}
		}
		if arm.memoryError != nil {
			return
		}
		if writeback {
			arm.state.registers[rn] = wb
		}
	}
}

// SWP and SWPB
func (arm *ARM) decodeARMSwap(opcode uint32) decodeFunction {
	byteAccess := opcode&0x00400000 == 0x00400000
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f

	if rn == rPC || rd == rPC || rm == rPC {
		return nil
	}

	return func() {
		addr := arm.state.registers[rn]
		if byteAccess {
			v := arm.read8bit(addr)
			arm.write8bit(addr, uint8(arm.state.registers[rm]))
			if arm.memoryError != nil {
				return
			}
			arm.state.registers[rd] = uint32(v)
			return
		}

		v := arm.read32bit(addr)
		arm.write32bit(addr, arm.state.registers[rm])
		if arm.memoryError != nil {
			return
		}
		arm.state.registers[rd] = v
	}
}

// LDREX and STREX in their word, byte, halfword and doubleword forms. the
// exclusive monitor is local to the core
func (arm *ARM) decodeARMExclusive(opcode uint32) decodeFunction {
	load := opcode&0x00100000 == 0x00100000
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f
	size := (opcode >> 21) & 0x03

	if rn == rPC || rd == rPC {
		return nil
	}

	if load {
		if opcode&0xf0f != 0xf0f {
			return nil
		}
		if size == 0b01 && (rd&0x01 == 0x01 || rd == rLR) {
			return nil
		}
	} else {
		if opcode&0xf00 != 0xf00 || rm == rPC {
			return nil
		}
		if size == 0b01 && (rm&0x01 == 0x01 || rm == rLR) {
			return nil
		}
	}

	return func() {
		addr := arm.state.registers[rn]

		if load {
			var lo, hi uint32
			switch size {
			case 0b00:
				lo = arm.readWord(addr)
			case 0b01:
				lo = arm.readWord(addr)
				if arm.memoryError == nil {
					hi = arm.readWord(addr + 4)
				}
			case 0b10:
				lo = uint32(arm.read8bit(addr))
			case 0b11:
				lo = uint32(arm.read16bit(addr))
			}
			if arm.memoryError != nil {
				return
			}
			arm.state.registers[rd] = lo
			if size == 0b01 {
				arm.state.registers[rd+1] = hi
			}
			arm.state.exclusiveValid = true
			arm.state.exclusiveAddress = addr
			return
		}

		if !arm.state.exclusiveValid || arm.state.exclusiveAddress != addr {
			arm.state.exclusiveValid = false
			arm.state.registers[rd] = 1
			return
		}

		switch size {
		case 0b00:
			arm.writeWord(addr, arm.state.registers[rm])
		case 0b01:
			arm.writeWord(addr, arm.state.registers[rm])
			arm.writeWord(addr+4, arm.state.registers[rm+1])
		case 0b10:
			arm.write8bit(addr, uint8(arm.state.registers[rm]))
		case 0b11:
			arm.write16bit(addr, uint16(arm.state.registers[rm]))
		}
		if arm.memoryError != nil {
			return
		}
		arm.state.exclusiveValid = false
		arm.state.registers[rd] = 0
	}
}
