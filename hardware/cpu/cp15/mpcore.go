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

// MPCore is the system control coprocessor of an ARM11 MPCore CPU.
type MPCore struct {
	unknown unknown

	// the CPU number in the cluster. reported by the CPU ID register
	cpuID uint32

	control    uint32
	auxControl uint32
	cpAccess   uint32

	ttbr0 uint32
	ttbr1 uint32
	ttbcr uint32
	dacr  uint32

	dfsr uint32
	ifsr uint32
	far  uint32
	wfar uint32

	fcseID    uint32
	contextID uint32
	threadID  [3]uint32
}

// value of the main ID register for an ARM11 MPCore.
const mpcoreID = 0x410fb025

// cache type register. 16KB instruction and data caches
const mpcoreCacheType = 0x1d192992

// TLB type register. 64 entry unified TLB
const mpcoreTLBType = 0x00000800

// value of the control register at reset. high vectors are selected because
// the bootrom is at the top of the address space
const mpcoreResetControl = 0x00056078

// NewMPCore is the preferred method of initialisation for the MPCore type.
func NewMPCore(cpuID uint32) *MPCore {
	cp := &MPCore{
		unknown: unknown{tag: "CP15 (ARM11)"},
		cpuID:   cpuID,
	}
	cp.Reset()
	return cp
}

// Reset the coprocessor to its power on state.
func (cp *MPCore) Reset() {
	cp.control = mpcoreResetControl
	cp.auxControl = 0x0000000f
	cp.cpAccess = 0
	cp.ttbr0 = 0
	cp.ttbr1 = 0
	cp.ttbcr = 0
	cp.dacr = 0
	cp.dfsr = 0
	cp.ifsr = 0
	cp.far = 0
	cp.wfar = 0
	cp.fcseID = 0
	cp.contextID = 0
	cp.threadID = [3]uint32{}
}

// Registers returns the value of every register that holds state. The order
// never changes.
func (cp *MPCore) Registers() []uint32 {
	r := []uint32{
		cp.control,
		cp.auxControl,
		cp.cpAccess,
		cp.ttbr0,
		cp.ttbr1,
		cp.ttbcr,
		cp.dacr,
		cp.dfsr,
		cp.ifsr,
		cp.far,
		cp.wfar,
		cp.fcseID,
		cp.contextID,
	}
	return append(r, cp.threadID[:]...)
}

// MRC implements the arm.Coprocessor interface.
func (cp *MPCore) MRC(opc1, crn, crm, opc2 uint32) uint32 {
	r := reg{crn: crn, crm: crm, opc2: opc2}

	if opc1 == 0 {
		switch r {
		case reg{0, 0, 0}:
			return mpcoreID
		case reg{0, 0, 1}:
			return mpcoreCacheType
		case reg{0, 0, 3}:
			return mpcoreTLBType
		case reg{0, 0, 5}:
			return cp.cpuID & 0x0f
		case reg{1, 0, 0}:
			return cp.control
		case reg{1, 0, 1}:
			return cp.auxControl
		case reg{1, 0, 2}:
			return cp.cpAccess
		case reg{2, 0, 0}:
			return cp.ttbr0
		case reg{2, 0, 1}:
			return cp.ttbr1
		case reg{2, 0, 2}:
			return cp.ttbcr
		case reg{3, 0, 0}:
			return cp.dacr
		case reg{5, 0, 0}:
			return cp.dfsr
		case reg{5, 0, 1}:
			return cp.ifsr
		case reg{6, 0, 0}:
			return cp.far
		case reg{6, 0, 1}:
			return cp.wfar
		case reg{13, 0, 0}:
			return cp.fcseID
		case reg{13, 0, 1}:
			return cp.contextID
		case reg{13, 0, 2}:
			return cp.threadID[0]
		case reg{13, 0, 3}:
			return cp.threadID[1]
		case reg{13, 0, 4}:
			return cp.threadID[2]
		}
	}

	cp.unknown.log(false, opc1, r)
	return 0
}

// MCR implements the arm.Coprocessor interface.
func (cp *MPCore) MCR(opc1, crn, crm, opc2 uint32, value uint32) {
	r := reg{crn: crn, crm: crm, opc2: opc2}

	if opc1 == 0 {
		// cache maintenance, barriers, wait for interrupt and TLB
		// maintenance. none of which have any effect
		if crn == 7 || crn == 8 {
			return
		}

		switch r {
		case reg{1, 0, 0}:
			cp.control = value
			return
		case reg{1, 0, 1}:
			cp.auxControl = value
			return
		case reg{1, 0, 2}:
			cp.cpAccess = value
			return
		case reg{2, 0, 0}:
			cp.ttbr0 = value
			return
		case reg{2, 0, 1}:
			cp.ttbr1 = value
			return
		case reg{2, 0, 2}:
			cp.ttbcr = value & 0x07
			return
		case reg{3, 0, 0}:
			cp.dacr = value
			return
		case reg{5, 0, 0}:
			cp.dfsr = value
			return
		case reg{5, 0, 1}:
			cp.ifsr = value
			return
		case reg{6, 0, 0}:
			cp.far = value
			return
		case reg{6, 0, 1}:
			cp.wfar = value
			return
		case reg{13, 0, 0}:
			cp.fcseID = value
			return
		case reg{13, 0, 1}:
			cp.contextID = value
			return
		case reg{13, 0, 2}:
			cp.threadID[0] = value
			return
		case reg{13, 0, 3}:
			cp.threadID[1] = value
			return
		case reg{13, 0, 4}:
			cp.threadID[2] = value
			return
		}
	}

	cp.unknown.log(true, opc1, r)
}

// HighVectors implements the arm.Coprocessor interface.
func (cp *MPCore) HighVectors() bool {
	return cp.control&ControlHighVectors == ControlHighVectors
}

// UnalignedAccess implements the arm.Coprocessor interface.
func (cp *MPCore) UnalignedAccess() bool {
	return cp.control&ControlUnaligned == ControlUnaligned
}
