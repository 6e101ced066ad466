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

// Package xdma implements the extended DMA engine. The engine has four
// channels. Each channel follows a chain of transfer descriptors in memory.
//
// Register window (offsets from the start of the window):
//
//	+0x00 + n*0x10 channel n
//	+0x40          completion bitmap (read only)
//
// Channel registers:
//
//	+0x00 DESC   address of the first descriptor
//	+0x04 CTRL   bit 0 starts the channel
//	+0x08 STATUS state in bits 0 to 2, error in bit 3. write bit 0 to acknowledge
//	+0x0c BURST  bytes moved per tick (0 selects 16)
//
// A descriptor is four words: source, destination, length in bytes and the
// address of the next descriptor. A next address of zero ends the chain.
package xdma

import (
	"fmt"

	"github.com/jetsetilly/threemu/hardware/dma"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/logger"
)

// NumChannels is the number of channels in the engine.
const NumChannels = 4

const label = "XDMA"

// register offsets.
const (
	channelStride = 0x10

	regDESC   = 0x00
	regCTRL   = 0x04
	regSTATUS = 0x08
	regBURST  = 0x0c

	regCompletion = NumChannels * channelStride
)

const ctrlStart = 0x01

// burst size when BURST is zero
const defaultBurst = 16

// DescriptorSize is the size in bytes of a transfer descriptor.
const DescriptorSize = 16

// Descriptor is a single link in a descriptor chain.
type Descriptor struct {
	Source      uint32
	Destination uint32
	Length      uint32
	Next        uint32
}

type channel struct {
	*dma.Channel

	desc  uint32
	ctrl  uint32
	burst uint32

	// address of the descriptor to fetch when the current transfer is done
	next uint32

	// a descriptor must be fetched before the next burst
	fetch bool

	// number of descriptors fetched since the channel was started
	descriptors int

	tr dma.Transfer
}

// XDMA implements the dma.Engine interface.
type XDMA struct {
	mem      dma.Memory
	channels [NumChannels]*channel
}

// NewXDMA is the preferred method of initialisation for the XDMA type.
func NewXDMA(mem dma.Memory) *XDMA {
	x := &XDMA{
		mem: mem,
	}
	for i := range x.channels {
		x.channels[i] = &channel{Channel: dma.NewChannel(label, i)}
	}
	return x
}

func (x *XDMA) String() string {
	return fmt.Sprintf("%s: completion %04b", label, x.Completion())
}

// Label implements the bus.Peripheral interface.
func (x *XDMA) Label() string {
	return label
}

// Reset implements the dma.Engine interface.
func (x *XDMA) Reset() {
	for _, ch := range x.channels {
		ch.Reset()
		ch.desc, ch.ctrl, ch.burst, ch.next = 0, 0, 0, 0
		ch.fetch = false
		ch.descriptors = 0
		ch.tr = dma.Transfer{}
	}
}

// Channels implements the dma.Engine interface.
func (x *XDMA) Channels() []*dma.Channel {
	chs := make([]*dma.Channel, NumChannels)
	for i, ch := range x.channels {
		chs[i] = ch.Channel
	}
	return chs
}

// Completion returns the completion bitmap. A bit is set for every channel
// that is Complete.
func (x *XDMA) Completion() uint8 {
	var v uint8
	for i, ch := range x.channels {
		if ch.State() == dma.Complete {
			v |= 0x01 << i
		}
	}
	return v
}

// Read implements the bus.Peripheral interface. Registers are read as whole
// words and narrower reads return the addressed part of the word.
func (x *XDMA) Read(addr uint32, width int) (uint32, error) {
	offset := addr - memorymap.XDMA.Origin
	shift := (offset & 0x03) * 8
	v := x.readRegister(offset &^ 0x03)
	switch width {
	case 1:
		return (v >> shift) & 0xff, nil
	case 2:
		return (v >> shift) & 0xffff, nil
	}
	return v, nil
}

func (x *XDMA) readRegister(offset uint32) uint32 {
	if offset == regCompletion {
		return uint32(x.Completion())
	}
	if offset > regCompletion {
		return 0
	}

	ch := x.channels[offset/channelStride]
	switch offset % channelStride {
	case regDESC:
		return ch.desc
	case regCTRL:
		if ch.State() == dma.Running {
			return ch.ctrl | ctrlStart
		}
		return ch.ctrl
	case regSTATUS:
		return ch.Status()
	case regBURST:
		return ch.burst
	}
	return 0
}

// Write implements the bus.Peripheral interface. Only word writes are
// meaningful. Narrower writes are logged and ignored.
func (x *XDMA) Write(addr uint32, width int, value uint32) error {
	offset := addr - memorymap.XDMA.Origin
	if width != 4 {
		logger.Logf(logger.Allow, label, "%d bit write to register %02x ignored", width*8, offset)
		return nil
	}
	if offset >= regCompletion {
		return nil
	}

	ch := x.channels[offset/channelStride]
	reg := offset % channelStride

	if ch.State() == dma.Running && reg != regSTATUS {
		logger.Logf(logger.Allow, label, "channel %d: register write (%02x) while running ignored", ch.Index(), reg)
		return nil
	}

	switch reg {
	case regDESC:
		ch.desc = value
		if ch.State() == dma.Idle {
			ch.Configure()
		}
	case regCTRL:
		ch.ctrl = value &^ ctrlStart
		if value&ctrlStart == ctrlStart {
			x.start(ch)
		}
	case regSTATUS:
		if value&dma.StatusAck == dma.StatusAck {
			ch.Acknowledge()
		}
	case regBURST:
		ch.burst = value
	}

	return nil
}

func (x *XDMA) start(ch *channel) {
	if !ch.Start() {
		return
	}
	ch.next = ch.desc
	ch.fetch = true
	ch.descriptors = 0
	ch.tr = dma.Transfer{}
}

// ReadDescriptor reads a descriptor from memory.
func ReadDescriptor(mem dma.Memory, addr uint32) (Descriptor, *dma.TransferError) {
	var w [4]uint32
	for i := range w {
		a := addr + uint32(i*4)
		v, err := mem.Read(a, 4)
		if err != nil {
			return Descriptor{}, &dma.TransferError{Address: a, Err: err}
		}
		w[i] = v
	}
	return Descriptor{Source: w[0], Destination: w[1], Length: w[2], Next: w[3]}, nil
}

// Tick implements the dma.Engine interface. A channel that needs a new
// descriptor fetches it in the same tick as its next burst.
func (x *XDMA) Tick() {
	for _, ch := range x.channels {
		if ch.State() != dma.Running {
			continue
		}

		if ch.fetch {
			if ch.next == 0 {
				x.finish(ch)
				continue
			}

			d, err := ReadDescriptor(x.mem, ch.next)
			if err != nil {
				x.fail(ch, err)
				continue
			}

			ch.descriptors++
			ch.fetch = false
			ch.next = d.Next
			ch.tr = dma.Transfer{
				Source:            d.Source,
				Destination:       d.Destination,
				Remaining:         d.Length,
				SourceUpdate:      dma.Increment,
				DestinationUpdate: dma.Increment,
			}
		}

		burst := ch.burst
		if burst == 0 {
			burst = defaultBurst
		}

		moved, err := ch.tr.Burst(x.mem, burst)
		ch.Advance(moved)
		if err != nil {
			x.fail(ch, err)
			continue
		}

		if ch.tr.Done() {
			if ch.next == 0 {
				x.finish(ch)
			} else {
				ch.fetch = true
			}
		}
	}
}

func (x *XDMA) finish(ch *channel) {
	ch.Finish()
	logger.Logf(logger.Allow, label, "channel %d: complete. %d descriptors, %d bytes", ch.Index(), ch.descriptors, ch.Transferred())
}

func (x *XDMA) fail(ch *channel, err *dma.TransferError) {
	err.Engine = label
	err.Channel = ch.Index()
	ch.Fail(err)
}
