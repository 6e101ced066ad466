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

package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/imageloader"
)

// Sentinal error patterns.
const (
	BadPoke    = "session: poke: %v"
	BadCapture = "session: capture: %v"
)

// Poke is a value written through the bus after boot and before the first
// instruction. Useful for overriding the initial value of a peripheral
// register.
type Poke struct {
	Address uint32
	Width   int
	Value   uint32
}

func (p Poke) String() string {
	return fmt.Sprintf("%08x/%d=%08x", p.Address, p.Width, p.Value)
}

// ParsePoke parses a poke in the form ADDRESS=VALUE or ADDRESS/WIDTH=VALUE.
// The width is in bytes and defaults to four. Numbers can be hexadecimal (with
// the 0x prefix) or decimal.
func ParsePoke(s string) (Poke, error) {
	addr, value, ok := strings.Cut(s, "=")
	if !ok {
		return Poke{}, curated.Errorf(BadPoke, "missing value in "+s)
	}

	p := Poke{Width: 4}

	if a, w, ok := strings.Cut(addr, "/"); ok {
		width, err := strconv.Atoi(w)
		if err != nil || (width != 1 && width != 2 && width != 4) {
			return Poke{}, curated.Errorf(BadPoke, "invalid width in "+s)
		}
		p.Width = width
		addr = a
	}

	a, err := strconv.ParseUint(addr, 0, 32)
	if err != nil {
		return Poke{}, curated.Errorf(BadPoke, err)
	}
	v, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return Poke{}, curated.Errorf(BadPoke, err)
	}

	p.Address = uint32(a)
	p.Value = uint32(v)

	return p, nil
}

// Capture is a range of memory that is copied into the Result.
type Capture struct {
	Address uint32
	Length  uint32
}

func (c Capture) String() string {
	return fmt.Sprintf("%08x+%x", c.Address, c.Length)
}

// ParseCapture parses a capture in the form ADDRESS+LENGTH.
func ParseCapture(s string) (Capture, error) {
	addr, length, ok := strings.Cut(s, "+")
	if !ok {
		return Capture{}, curated.Errorf(BadCapture, "missing length in "+s)
	}
	a, err := strconv.ParseUint(addr, 0, 32)
	if err != nil {
		return Capture{}, curated.Errorf(BadCapture, err)
	}
	l, err := strconv.ParseUint(length, 0, 32)
	if err != nil {
		return Capture{}, curated.Errorf(BadCapture, err)
	}
	return Capture{Address: uint32(a), Length: uint32(l)}, nil
}

// Config is the configuration of a session.
type Config struct {
	// the boot image. the loader will be loaded by New() if it has not been
	// loaded already
	Image imageloader.Loader

	// SD card image to insert in the SD slot. if the field is empty and the
	// boot image is read from an SD card image then that card is inserted
	SDCard string

	// the card is write protected
	SDReadOnly bool

	Stop scheduler.StopCondition

	// wall clock limit. zero means no limit
	Timeout time.Duration

	Pokes    []Poke
	Captures []Capture

	// log every instruction
	Trace bool
}
