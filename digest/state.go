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

package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/threemu/hardware/cpu/arm"
)

// Machine is the view of the emulated machine needed to create a State
// digest.
type Machine interface {
	// the state of each core. the order must not change between sessions
	CoreStates() []arm.State

	// the registers of the system control coprocessor of each core, in the
	// same order as CoreStates()
	Coprocessors() [][]uint32

	// the contents of every RAM region, including memory private to a core.
	// the order must not change between sessions
	RAM() [][]byte
}

// State is an implementation of the Digest interface. It generates a SHA-1
// value of the architectural state of every core, of the coprocessor state
// of every core and of the contents of all RAM.
type State struct {
	digest [sha1.Size]byte
}

// Hash implements digest.Digest interface.
func (dig State) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements digest.Digest interface.
func (dig *State) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// Update the digest with the current state of the machine. The previous
// digest value is chained into the new value.
func (dig *State) Update(m Machine) {
	h := sha1.New()
	h.Write(dig.digest[:])

	for _, s := range m.CoreStates() {
		// arm.State contains only fixed size values so binary.Write() cannot
		// fail
		_ = binary.Write(h, binary.LittleEndian, s)
	}

	for _, c := range m.Coprocessors() {
		_ = binary.Write(h, binary.LittleEndian, c)
	}

	for _, r := range m.RAM() {
		h.Write(r)
	}

	copy(dig.digest[:], h.Sum(nil))
}
