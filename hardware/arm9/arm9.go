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

// Package arm9 is the application core of the console. The core is an
// ARMv5TE interpreter with an ARM946E-S system control coprocessor and
// tightly coupled memory.
package arm9

import (
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/cpu/cp15"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
)

// name of the core and of its bus master
const master = "ARM9"

// ARM9 is the application core.
type ARM9 struct {
	*arm.ARM

	CP15 *cp15.ARM946
	TCM  *TCM

	port *bus.Port
}

// NewARM9 is the preferred method of initialisation for the ARM9 type.
func NewARM9(b *bus.Bus) *ARM9 {
	c := &ARM9{
		CP15: cp15.NewARM946(),
		port: b.NewPort(master, memorymap.ARM9),
	}
	c.TCM = NewTCM(c.CP15, c.port)
	c.ARM = arm.NewARM(arm.ARMv5TE, master, c.TCM, c.CP15)
	return c
}

// Reset the core, the coprocessor and the contents of the TCM. Bit 0 of the
// entry address selects Thumb state.
func (c *ARM9) Reset(entry uint32) {
	c.CP15.Reset()
	c.TCM.Clear()
	c.ARM.Reset(entry)
}

// Port returns the bus port used by the core.
func (c *ARM9) Port() *bus.Port {
	return c.port
}
