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

// Package cp15 implements the system control coprocessor for the two cores.
// The ARM946 variant is used by the application core and the MPCore variant
// by the system core.
//
// No memory protection or translation is performed. Registers that control
// those features are stored so that they read back correctly. Cache and TLB
// maintenance operations are accepted and have no effect.
//
// Both types implement the arm.Coprocessor interface.
package cp15

import (
	"github.com/jetsetilly/threemu/logger"
)

// control register bits common to both variants.
const (
	ControlMMU         = 0x00000001
	ControlAlignment   = 0x00000002
	ControlDCache      = 0x00000004
	ControlICache      = 0x00001000
	ControlHighVectors = 0x00002000

	// ARM946 only
	ControlDTCM = 0x00010000
	ControlITCM = 0x00040000

	// MPCore only
	ControlUnaligned = 0x00400000
)

// the key used to identify a register. the opc1 value is always zero for
// the registers implemented by these coprocessors
type reg struct {
	crn  uint32
	crm  uint32
	opc2 uint32
}

// unknown records and logs accesses to registers that are not implemented.
// each register is logged once.
type unknown struct {
	tag    string
	logged map[reg]bool
}

func (u *unknown) log(write bool, opc1 uint32, r reg) {
	if u.logged == nil {
		u.logged = make(map[reg]bool)
	}
	if u.logged[r] {
		return
	}
	u.logged[r] = true

	op := "MRC"
	if write {
		op = "MCR"
	}
	logger.Logf(logger.Allow, u.tag, "unsupported %s p15, %d, c%d, c%d, %d", op, opc1, r.crn, r.crm, r.opc2)
}
