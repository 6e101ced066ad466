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

// Package generic implements the register windows of IO space that have no
// dedicated emulation. Reads return zero and writes are ignored.
//
// The first access to each address is logged so that a program relying on an
// unemulated peripheral can be spotted in the log.
package generic

import (
	"github.com/jetsetilly/threemu/logger"
)

// IO is a register window with no behaviour.
type IO struct {
	label string
	seen  map[uint32]bool
}

// NewIO is the preferred method of initialisation for the IO type.
func NewIO(label string) *IO {
	return &IO{
		label: label,
		seen:  make(map[uint32]bool),
	}
}

// Label implements the bus.Peripheral interface.
func (io *IO) Label() string {
	return io.label
}

// Read implements the bus.Peripheral interface.
func (io *IO) Read(addr uint32, width int) (uint32, error) {
	io.note(addr, width, false, 0)
	return 0, nil
}

// Write implements the bus.Peripheral interface.
func (io *IO) Write(addr uint32, width int, value uint32) error {
	io.note(addr, width, true, value)
	return nil
}

func (io *IO) note(addr uint32, width int, write bool, value uint32) {
	if io.seen[addr] {
		return
	}
	io.seen[addr] = true
	if write {
		logger.Logf(logger.Allow, io.label, "unhandled %dbit write to %08x (%08x)", width*8, addr, value)
	} else {
		logger.Logf(logger.Allow, io.label, "unhandled %dbit read from %08x", width*8, addr)
	}
}

// Accessed returns the number of distinct addresses that have been accessed.
func (io *IO) Accessed() int {
	return len(io.seen)
}
