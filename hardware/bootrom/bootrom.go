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

// Package bootrom stands in for the bootrom of both cores. No bootrom image is
// loaded. Instead, execution inside the bootrom window is intercepted before
// the instruction is fetched and the effect of the bootrom code is emulated.
//
// The exception vectors of both cores are in the bootrom (CP15 selects high
// vectors at reset). The real bootrom vectors branch to a table in RAM that
// the loaded program is expected to fill. The table has one eight byte entry
// per vector, in the order IRQ, FIQ, SVC, UND, PABT, DABT.
//
// The bootrom also contains a small number of functions that programs call
// directly. These return through the LR.
package bootrom

import (
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/logger"
)

// offsets of bootrom functions
const (
	waitCycles = 0x0198
)

// index into the RAM vector table for each exception vector offset. the reset
// vector and the reserved vector have no entry
var vectorIndex = map[uint32]uint32{
	0x18: 0, // IRQ
	0x1c: 1, // FIQ
	0x08: 2, // SVC
	0x04: 3, // UND
	0x0c: 4, // PABT
	0x10: 5, // DABT
}

// size of each entry in the RAM vector table.
const vectorEntrySize = 8

// Bootrom implements the bus.Peripheral and arm.Intercept interfaces.
type Bootrom struct {
	// RAM vector table for each core, keyed by core name
	tables map[string]uint32

	// unknown offsets that have been logged
	logged map[uint32]bool
}

// NewBootrom is the preferred method of initialisation for the Bootrom type.
func NewBootrom() *Bootrom {
	return &Bootrom{
		tables: make(map[string]uint32),
		logged: make(map[uint32]bool),
	}
}

// Attach the bootrom to a core. The table argument is the address of the
// RAM vector table for that core.
func (b *Bootrom) Attach(cpu *arm.ARM, table uint32) {
	b.tables[cpu.Core()] = table
	cpu.SetIntercept(b)
}

// Label implements the bus.Peripheral interface.
func (b *Bootrom) Label() string {
	return "bootrom"
}

// Read implements the bus.Peripheral interface. There is no bootrom image so
// data reads return zero.
func (b *Bootrom) Read(_ uint32, _ int) (uint32, error) {
	return 0, nil
}

// Write implements the bus.Peripheral interface. Writes are ignored.
func (b *Bootrom) Write(_ uint32, _ int, _ uint32) error {
	return nil
}

// Intercept implements the arm.Intercept interface.
func (b *Bootrom) Intercept(cpu *arm.ARM, pc uint32) (bool, error) {
	if !memorymap.Bootrom.Contains(pc) {
		return false, nil
	}

	offset := pc - memorymap.Bootrom.Origin

	if offset < 0x20 {
		n, ok := vectorIndex[offset]
		if !ok {
			// the reset vector and the reserved vector. there is nothing
			// sensible that can be done so the instruction is undefined
			return false, arm.DecodeFault{Core: cpu.Core(), Address: pc, Thumb: cpu.Thumb()}
		}

		table, ok := b.tables[cpu.Core()]
		if !ok {
			table = memorymap.ARM9VectorTable
		}

		cpu.Jump(table + n*vectorEntrySize)
		return true, nil
	}

	switch offset {
	case waitCycles:
	default:
		if !b.logged[offset] {
			b.logged[offset] = true
			logger.Logf(logger.Allow, "bootrom", "%s: unknown bootrom function at offset %#04x", cpu.Core(), offset)
		}
	}

	cpu.Jump(cpu.Register(14))
	return true, nil
}
