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

// Architecture defines the instruction set supported by the interpreter. The
// value is fixed when the ARM type is created.
type Architecture string

// List of valid Architecture values.
const (
	// the application core. ARM946E-S
	ARMv5TE Architecture = "ARMv5TE"

	// the system core. MPCore. superset of ARMv5TE
	ARMv6K Architecture = "ARMv6K"
)

// the instruction decoder asks this question a lot
func (a Architecture) isV6() bool {
	return a == ARMv6K
}
