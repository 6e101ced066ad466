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

package cp15

import (
	"github.com/jetsetilly/threemu/logger"
)

// ARM946 is the system control coprocessor of the ARM946E-S.
type ARM946 struct {
	unknown unknown

	control uint32

	// protection unit. stored but not enforced
	cacheable     uint32
	bufferable    uint32
	dataPerms     uint32
	instrPerms    uint32
	regions       [8]uint32
	cacheLockdown [2]uint32

	// TCM region registers as written by the program
	dtcmRegion uint32
	itcmRegion uint32

	processID uint32
}

// value of the ID code register for an ARM946E-S.
const arm946ID = 0x41059461

// cache type register. 8KB instruction cache and 4KB data cache
const arm946CacheType = 0x0f0d2112

// TCM size register. 32KB ITCM and 16KB DTCM
const arm946TCMSize = 0x00140180

// value of the control register at reset. high vectors are selected because
// the bootrom is at the top of the address space
const arm946ResetControl = 0x00002078

// NewARM946 is the preferred method of initialisation for the ARM946 type.
func NewARM946() *ARM946 {
	cp := &ARM946{
		unknown: unknown{tag: "CP15 (ARM9)"},
	}
	cp.Reset()
	return cp
}

// Reset the coprocessor to its power on state.
func (cp *ARM946) Reset() {
	cp.control = arm946ResetControl
	cp.cacheable = 0
	cp.bufferable = 0
	cp.dataPerms = 0
	cp.instrPerms = 0
	cp.regions = [8]uint32{}
	cp.cacheLockdown = [2]uint32{}
	cp.dtcmRegion = 0
	cp.itcmRegion = 0
	cp.processID = 0
}

// Registers returns the value of every register that holds state. The order
// never changes.
func (cp *ARM946) Registers() []uint32 {
	r := []uint32{
		cp.control,
		cp.cacheable,
		cp.bufferable,
		cp.dataPerms,
		cp.instrPerms,
	}
	r = append(r, cp.regions[:]...)
	r = append(r, cp.cacheLockdown[:]...)
	return append(r, cp.dtcmRegion, cp.itcmRegion, cp.processID)
}

// MRC implements the arm.Coprocessor interface.
func (cp *ARM946) MRC(opc1, crn, crm, opc2 uint32) uint32 {
	r := reg{crn: crn, crm: crm, opc2: opc2}

	if opc1 == 0 {
		switch {
		case r == reg{0, 0, 0}:
			return arm946ID
		case r == reg{0, 0, 1}:
			return arm946CacheType
		case r == reg{0, 0, 2}:
			return arm946TCMSize
		case r == reg{1, 0, 0}:
			return cp.control
		case r == reg{2, 0, 0}:
			return cp.cacheable
		case r == reg{2, 0, 1}:
			return cp.cacheable
		case r == reg{3, 0, 0}:
			return cp.bufferable
		case r == reg{5, 0, 2}:
			return cp.dataPerms
		case r == reg{5, 0, 3}:
			return cp.instrPerms
		case crn == 6 && opc2 <= 1:
			return cp.regions[crm&0x07]
		case r == reg{9, 0, 0}:
			return cp.cacheLockdown[0]
		case r == reg{9, 0, 1}:
			return cp.cacheLockdown[1]
		case r == reg{9, 1, 0}:
			return cp.dtcmRegion
		case r == reg{9, 1, 1}:
			return cp.itcmRegion
		case r == reg{13, 0, 1}, r == reg{13, 1, 1}:
			return cp.processID
		}
	}

	cp.unknown.log(false, opc1, r)
	return 0
}

// MCR implements the arm.Coprocessor interface.
func (cp *ARM946) MCR(opc1, crn, crm, opc2 uint32, value uint32) {
	r := reg{crn: crn, crm: crm, opc2: opc2}

	if opc1 == 0 {
		switch {
		case r == reg{1, 0, 0}:
			if (cp.control^value)&(ControlDTCM|ControlITCM) != 0 {
				logger.Logf(logger.Allow, cp.unknown.tag, "DTCM enable: %v, ITCM enable: %v",
					value&ControlDTCM == ControlDTCM, value&ControlITCM == ControlITCM)
			}
			cp.control = value
			return
		case r == reg{2, 0, 0}:
			cp.cacheable = value
			return
		case r == reg{2, 0, 1}:
			cp.cacheable = value
			return
		case r == reg{3, 0, 0}:
			cp.bufferable = value
			return
		case r == reg{5, 0, 2}:
			cp.dataPerms = value
			return
		case r == reg{5, 0, 3}:
			cp.instrPerms = value
			return
		case crn == 6 && opc2 <= 1:
			cp.regions[crm&0x07] = value
			return
		case crn == 7:
			// cache maintenance and wait for interrupt (c7, c0, 4). there
			// are no caches and no interrupts
			return
		case r == reg{9, 0, 0}:
			cp.cacheLockdown[0] = value
			return
		case r == reg{9, 0, 1}:
			cp.cacheLockdown[1] = value
			return
		case r == reg{9, 1, 0}:
			cp.dtcmRegion = value
			base, size := TCMRegion(value)
			logger.Logf(logger.Allow, cp.unknown.tag, "DTCM region: %08x (%dKB)", base, size/1024)
			return
		case r == reg{9, 1, 1}:
			cp.itcmRegion = value
			base, size := TCMRegion(value)
			logger.Logf(logger.Allow, cp.unknown.tag, "ITCM region: %08x (%dKB)", base, size/1024)
			return
		case r == reg{13, 0, 1}, r == reg{13, 1, 1}:
			cp.processID = value
			return
		}
	}

	cp.unknown.log(true, opc1, r)
}

// HighVectors implements the arm.Coprocessor interface.
func (cp *ARM946) HighVectors() bool {
	return cp.control&ControlHighVectors == ControlHighVectors
}

// UnalignedAccess implements the arm.Coprocessor interface. The ARM946 does not
// support unaligned accesses.
func (cp *ARM946) UnalignedAccess() bool {
	return false
}

// TCMRegion decodes the value of a TCM region register into a base address and
// size in bytes.
func TCMRegion(value uint32) (uint32, uint32) {
	return value & 0xfffff000, 512 << ((value >> 1) & 0x1f)
}

// DTCM returns the base, size and enabled state of the data TCM.
func (cp *ARM946) DTCM() (uint32, uint32, bool) {
	base, size := TCMRegion(cp.dtcmRegion)
	return base, size, cp.control&ControlDTCM == ControlDTCM
}

// ITCM returns the base, size and enabled state of the instruction TCM.
func (cp *ARM946) ITCM() (uint32, uint32, bool) {
	base, size := TCMRegion(cp.itcmRegion)
	return base, size, cp.control&ControlITCM == ControlITCM
}
