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

package bus

import "fmt"

// FaultKind classifies a bus fault.
type FaultKind int

// List of valid FaultKind values.
const (
	// no region or peripheral window contains the address, or the master
	// requesting the access cannot see the region that does
	Unmapped FaultKind = iota

	// the access starts in a region but extends past the end of it. also used
	// for peripheral accesses that are not naturally aligned
	Misaligned
)

func (k FaultKind) String() string {
	switch k {
	case Unmapped:
		return "unmapped"
	case Misaligned:
		return "misaligned"
	}
	return "unknown"
}

// Fault is returned by the bus for every access that cannot be completed.
// Faults are never retried or silently ignored.
type Fault struct {
	Kind    FaultKind
	Master  string
	Address uint32
	Width   int
	Write   bool
}

func (f Fault) Error() string {
	op := "read"
	if f.Write {
		op = "write"
	}
	return fmt.Sprintf("bus: %s address %08x (%s %s %dbit)", f.Kind, f.Address, f.Master, op, f.Width*8)
}
