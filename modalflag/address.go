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

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is a flag value for a 32bit address. The value can be given in
// hexadecimal with a 0x prefix or in decimal. An Address that has not been set
// on the command line reports false from Valid().
type Address struct {
	value uint32
	set   bool
}

// ParseAddress parses a string as either a hexadecimal (with 0x prefix) or a
// decimal 32bit value.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	var v uint64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("address: %s is not a valid 32bit value", s)
	}
	return uint32(v), nil
}

// String implements the flag.Value interface.
func (a *Address) String() string {
	if a == nil || !a.set {
		return ""
	}
	return fmt.Sprintf("%#08x", a.value)
}

// Set implements the flag.Value interface.
func (a *Address) Set(s string) error {
	v, err := ParseAddress(s)
	if err != nil {
		return err
	}
	a.value = v
	a.set = true
	return nil
}

// Valid returns true if the address was set on the command line.
func (a *Address) Valid() bool {
	return a.set
}

// Value returns the address and whether it has been set. Suitable for
// assigning to an optional (pointer) field.
func (a *Address) Value() *uint32 {
	if !a.set {
		return nil
	}
	v := a.value
	return &v
}

// AddAddress flag for next call to Parse().
func (md *Modes) AddAddress(name string, usage string) *Address {
	a := &Address{}
	md.flags.Var(a, name, usage)
	return a
}
