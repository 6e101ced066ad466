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

package modalflag

import "strings"

// Strings is a flag value that collects every use of a repeatable flag.
type Strings []string

// String implements the flag.Value interface.
func (s *Strings) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

// Set implements the flag.Value interface.
func (s *Strings) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// AddStrings adds a repeatable flag for next call to Parse(). The values are
// kept in command line order.
func (md *Modes) AddStrings(name string, usage string) *Strings {
	s := &Strings{}
	md.flags.Var(s, name, usage)
	return s
}
