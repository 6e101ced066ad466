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
	"fmt"

	"github.com/jetsetilly/threemu/hardware/memory/bus"
)

// DecodeFault is returned by Step() when an instruction cannot be decoded or
// is not implemented. The fault is fatal because the result of the instruction
// cannot be inferred.
type DecodeFault struct {
	Core    string
	Address uint32
	Opcode  uint32
	Thumb   bool
}

func (f DecodeFault) Error() string {
	if f.Thumb {
		return fmt.Sprintf("%s: undefined thumb instruction %04x at %08x", f.Core, f.Opcode, f.Address)
	}
	return fmt.Sprintf("%s: undefined instruction %08x at %08x", f.Core, f.Opcode, f.Address)
}

// BusFault is returned by Step() when a fetch, load or store performed by the
// instruction is refused by the bus. The bus fault itself is available with
// errors.As() or the Fault field.
type BusFault struct {
	Core   string
	PC     uint32
	Opcode uint32
	Thumb  bool
	Fault  bus.Fault
}

func (f BusFault) Error() string {
	if f.Thumb {
		return fmt.Sprintf("%s: thumb instruction %04x at %08x: %v", f.Core, f.Opcode, f.PC, f.Fault)
	}
	return fmt.Sprintf("%s: instruction %08x at %08x: %v", f.Core, f.Opcode, f.PC, f.Fault)
}

// Unwrap returns the bus fault.
func (f BusFault) Unwrap() error {
	return f.Fault
}
