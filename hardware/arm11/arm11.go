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

// Package arm11 is the system core of the console. The core is an ARMv6K
// interpreter with an MPCore system control coprocessor.
package arm11

import (
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/cpu/cp15"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
)

const master = "ARM11"

// ARM11 is the system core. Only CPU 0 of the MPCore is emulated.
type ARM11 struct {
	*arm.ARM

	CP15 *cp15.MPCore

	port *bus.Port
}

// NewARM11 is the preferred method of initialisation for the ARM11 type.
func NewARM11(b *bus.Bus) *ARM11 {
	c := &ARM11{
		CP15: cp15.NewMPCore(0),
		port: b.NewPort(master, memorymap.ARM11),
	}
	c.ARM = arm.NewARM(arm.ARMv6K, master, c.port, c.CP15)
	return c
}

// Reset the core and the coprocessor. Bit 0 of the entry address selects
// Thumb state.
func (c *ARM11) Reset(entry uint32) {
	c.CP15.Reset()
	c.ARM.Reset(entry)
}

// Port returns the bus port used by the core.
func (c *ARM11) Port() *bus.Port {
	return c.port
}
