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

package dma

import "github.com/jetsetilly/threemu/hardware/memory/bus"

// Memory is the view of the bus used by a DMA engine. In the normal case this
// is a bus.Port.
type Memory interface {
	Read(addr uint32, width int) (uint32, error)
	Write(addr uint32, width int, value uint32) error
}

// Update is the way an address changes after each unit of a transfer.
type Update int

// List of valid Update values.
const (
	Increment Update = iota
	Decrement
	Fixed
)

func (u Update) String() string {
	switch u {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case Fixed:
		return "fixed"
	}
	return "reserved"
}

func (u Update) apply(addr uint32, width int) uint32 {
	switch u {
	case Increment:
		return addr + uint32(width)
	case Decrement:
		return addr - uint32(width)
	}
	return addr
}

// Transfer is the progress of a single block transfer.
type Transfer struct {
	Source      uint32
	Destination uint32
	Remaining   uint32

	SourceUpdate      Update
	DestinationUpdate Update

	// fill mode writes FillValue to the destination and never reads the
	// source
	Fill      bool
	FillValue uint32
}

// Done returns true if there is nothing left to transfer.
func (tr *Transfer) Done() bool {
	return tr.Remaining == 0
}

// width of the next unit. words are moved when the source, destination and
// remaining length are all word aligned. bytes are moved otherwise
func (tr *Transfer) width(limit uint32) int {
	aligned := tr.Destination | tr.Remaining | limit
	if !tr.Fill {
		aligned |= tr.Source
	}
	if aligned&0x03 == 0 {
		return 4
	}
	return 1
}

// Burst moves up to length bytes. Each unit is read from the source and then
// immediately written to the destination. Returns the number of bytes moved.
//
// On error the returned TransferError has the address of the failed access
// but no engine name or channel number.
func (tr *Transfer) Burst(mem Memory, length uint32) (uint32, *TransferError) {
	length = min(length, tr.Remaining)

	var moved uint32
	for moved < length {
		width := tr.width(length - moved)

		v := tr.FillValue
		if !tr.Fill {
			var err error
			v, err = mem.Read(tr.Source, width)
			if err != nil {
				return moved, &TransferError{Address: tr.Source, Err: err}
			}
		} else if width == 1 {
			// byte fills take the byte of the fill value for the lane being
			// written
			v = tr.FillValue >> ((tr.Destination & 0x03) * 8)
		}

		if err := mem.Write(tr.Destination, width, v); err != nil {
			return moved, &TransferError{Address: tr.Destination, Err: err}
		}

		tr.Source = tr.SourceUpdate.apply(tr.Source, width)
		tr.Destination = tr.DestinationUpdate.apply(tr.Destination, width)
		tr.Remaining -= uint32(width)
		moved += uint32(width)
	}

	return moved, nil
}

// Engine is implemented by the DMA engines.
type Engine interface {
	bus.Peripheral

	// Tick advances every Running channel by one burst
	Tick()

	// Channels returns the channels of the engine in index order
	Channels() []*Channel

	// Reset every channel and register of the engine
	Reset()
}
