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

// memory access functions record the first error seen during the execution of
// an instruction. once an error has been seen the remaining accesses of the
// instruction are ignored: reads return zero and writes are dropped. the error
// is returned by Step() at the end of the instruction

func (arm *ARM) read(addr uint32, width int) uint32 {
	if arm.memoryError != nil {
		return 0
	}
	v, err := arm.mem.Read(addr, width)
	arm.accesses++
	if err != nil {
		arm.memoryError = err
		return 0
	}
	return v
}

func (arm *ARM) write(addr uint32, width int, value uint32) {
	if arm.memoryError != nil {
		return
	}
	err := arm.mem.Write(addr, width, value)
	arm.accesses++
	if err != nil {
		arm.memoryError = err
	}
}

func (arm *ARM) read8bit(addr uint32) uint8 {
	return uint8(arm.read(addr, 1))
}

func (arm *ARM) write8bit(addr uint32, val uint8) {
	arm.write(addr, 1, uint32(val))
}

// unaligned halfword accesses are forced into alignment unless the
// coprocessor says otherwise.
func (arm *ARM) read16bit(addr uint32) uint16 {
	if addr&0x01 != 0 && !arm.unalignedAccess() {
		addr &^= 0x01
	}
	return uint16(arm.read(addr, 2))
}

func (arm *ARM) write16bit(addr uint32, val uint16) {
	if addr&0x01 != 0 && !arm.unalignedAccess() {
		addr &^= 0x01
	}
	arm.write(addr, 2, uint32(val))
}

// read32bit is used by LDR and SWP. an unaligned address reads the aligned word
// and rotates it so that the addressed byte is in the least significant
// position
func (arm *ARM) read32bit(addr uint32) uint32 {
	if addr&0x03 != 0 {
		if arm.unalignedAccess() {
			return arm.read(addr, 4)
		}
		v := arm.read(addr&^0x03, 4)
		return bits.RotateLeft32(v, -int(addr&0x03)*8)
	}
	return arm.read(addr, 4)
}

// readWord is used by block transfers and by exception return instructions,
// which ignore the bottom two bits of the address
func (arm *ARM) readWord(addr uint32) uint32 {
	return arm.read(addr&^0x03, 4)
}

func (arm *ARM) write32bit(addr uint32, val uint32) {
	if addr&0x03 != 0 && !arm.unalignedAccess() {
		addr &^= 0x03
	}
	arm.write(addr, 4, val)
}

func (arm *ARM) writeWord(addr uint32, val uint32) {
	arm.write(addr&^0x03, 4, val)
}

func (arm *ARM) unalignedAccess() bool {
	return arm.arch.isV6() && arm.cp != nil && arm.cp.UnalignedAccess()
}
