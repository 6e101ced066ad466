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

// Package ndma implements the legacy DMA engine of the ARM9. The engine has
// eight channels, each configured by a block of seven registers.
//
// Register window (offsets from the start of the window):
//
//	+0x00 global control. bits 16 to 23 read as the completion bitmap
//	+0x04 + n*0x1c channel n
//
// Channel registers:
//
//	+0x00 SAD    source address
//	+0x04 DAD    destination address
//	+0x08 TCNT   transfer length in bytes
//	+0x0c WCNT   burst size in bytes (0 selects 4)
//	+0x10 STATUS state in bits 0 to 2, error in bit 3. write bit 0 to acknowledge
//	+0x14 FILL   fill value
//	+0x18 CNT    control
//
// A channel becomes Configured once SAD, DAD and TCNT have been written. A
// write to CNT with bit 31 set starts a Configured channel.
package ndma

import (
	"fmt"

	"github.com/jetsetilly/threemu/hardware/dma"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/logger"
)

// NumChannels is the number of channels in the engine.
const NumChannels = 8

const label = "NDMA"

// register offsets.
const (
	regGlobal     = 0x00
	channelBase   = 0x04
	channelStride = 0x1c

	regSAD    = 0x00
	regDAD    = 0x04
	regTCNT   = 0x08
	regWCNT   = 0x0c
	regSTATUS = 0x10
	regFILL   = 0x14
	regCNT    = 0x18
)

// bits of the CNT register.
const (
	cntStart            = 0x80000000
	cntSignal           = 0x40000000
	cntFill             = 0x00008000
	cntSourceShift      = 10
	cntDestinationShift = 13
	cntUpdateMask       = 0x03
)

// the completion bitmap occupies bits 16 to 23 of the global control register
const completionShift = 16

// burst size when WCNT is zero
const defaultBurst = 4

// configuration registers that must be written before a channel is
// Configured.
const (
	wroteSAD = 0x01 << iota
	wroteDAD
	wroteTCNT

	wroteAll = wroteSAD | wroteDAD | wroteTCNT
)

type channel struct {
	*dma.Channel

	sad  uint32
	dad  uint32
	tcnt uint32
	wcnt uint32
	fill uint32
	cnt  uint32

	written int

	tr dma.Transfer
}

// NDMA implements the dma.Engine interface.
type NDMA struct {
	mem dma.Memory

	global   uint32
	channels [NumChannels]*channel
}

// NewNDMA is the preferred method of initialisation for the NDMA type.
func NewNDMA(mem dma.Memory) *NDMA {
	n := &NDMA{
		mem: mem,
	}
	for i := range n.channels {
		n.channels[i] = &channel{Channel: dma.NewChannel(label, i)}
	}
	return n
}

func (n *NDMA) String() string {
	return fmt.Sprintf("%s: completion %08b", label, n.Completion())
}

// Label implements the bus.Peripheral interface.
func (n *NDMA) Label() string {
	return label
}

// Reset implements the dma.Engine interface.
func (n *NDMA) Reset() {
	n.global = 0
	for _, ch := range n.channels {
		ch.Reset()
		ch.sad, ch.dad, ch.tcnt, ch.wcnt, ch.fill, ch.cnt = 0, 0, 0, 0, 0, 0
		ch.written = 0
		ch.tr = dma.Transfer{}
	}
}

// Channels implements the dma.Engine interface.
func (n *NDMA) Channels() []*dma.Channel {
	chs := make([]*dma.Channel, NumChannels)
	for i, ch := range n.channels {
		chs[i] = ch.Channel
	}
	return chs
}

// Completion returns the completion bitmap. A bit is set for every channel
// that is Complete and has the completion signal enabled.
func (n *NDMA) Completion() uint8 {
	var v uint8
	for i, ch := range n.channels {
		if ch.State() == dma.Complete && ch.cnt&cntSignal == cntSignal {
			v |= 0x01 << i
		}
	}
	return v
}

// decode an offset into the window into a channel and a register offset. the
// channel is nil for the global control register or for offsets beyond the
// last channel
func (n *NDMA) decode(offset uint32) (*channel, uint32) {
	if offset < channelBase {
		return nil, offset
	}
	i := (offset - channelBase) / channelStride
	if i >= NumChannels {
		return nil, offset
	}
	return n.channels[i], (offset - channelBase) % channelStride
}

// Read implements the bus.Peripheral interface.
func (n *NDMA) Read(addr uint32, width int) (uint32, error) {
	offset := addr - memorymap.NDMA.Origin
	shift := (offset & 0x03) * 8
	v := n.readRegister(offset &^ 0x03)
	return (v >> shift) & widthMask(width), nil
}

func (n *NDMA) readRegister(offset uint32) uint32 {
	ch, reg := n.decode(offset)
	if ch == nil {
		if reg == regGlobal {
			return n.global&0xffff | uint32(n.Completion())<<completionShift
		}
		return 0
	}

	switch reg {
	case regSAD:
		return ch.sad
	case regDAD:
		return ch.dad
	case regTCNT:
		return ch.tcnt
	case regWCNT:
		return ch.wcnt
	case regSTATUS:
		return ch.Status()
	case regFILL:
		return ch.fill
	case regCNT:
		if ch.State() == dma.Running {
			return ch.cnt | cntStart
		}
		return ch.cnt
	}

	return 0
}

// Write implements the bus.Peripheral interface. Byte and halfword writes
// are merged into the register.
func (n *NDMA) Write(addr uint32, width int, value uint32) error {
	offset := addr - memorymap.NDMA.Origin
	shift := (offset & 0x03) * 8
	mask := widthMask(width) << shift
	offset &^= 0x03

	// bits of the register not covered by the write keep their value. the
	// start bit of CNT and the acknowledge bit of STATUS are not kept
	old := n.readRegister(offset)
	if ch, reg := n.decode(offset); ch != nil {
		switch reg {
		case regCNT:
			old &^= cntStart
		case regSTATUS:
			old = 0
		}
	}

	n.writeRegister(offset, old&^mask | (value<<shift)&mask)

	return nil
}

func (n *NDMA) writeRegister(offset uint32, value uint32) {
	ch, reg := n.decode(offset)
	if ch == nil {
		if reg == regGlobal {
			n.global = value & 0xffff
		}
		return
	}

	if ch.State() == dma.Running && reg != regSTATUS {
		logger.Logf(logger.Allow, label, "channel %d: register write (%02x) while running ignored", ch.Index(), reg)
		return
	}

	switch reg {
	case regSAD:
		ch.sad = value
		ch.written |= wroteSAD
	case regDAD:
		ch.dad = value
		ch.written |= wroteDAD
	case regTCNT:
		ch.tcnt = value
		ch.written |= wroteTCNT
	case regWCNT:
		ch.wcnt = value
	case regSTATUS:
		if value&dma.StatusAck == dma.StatusAck {
			ch.Acknowledge()
		}
	case regFILL:
		ch.fill = value
	case regCNT:
		ch.cnt = value &^ cntStart
	}

	if ch.State() == dma.Idle && ch.written == wroteAll {
		ch.Configure()
	}

	if reg == regCNT && value&cntStart == cntStart {
		n.start(ch)
	}
}

func (n *NDMA) start(ch *channel) {
	if !ch.Start() {
		return
	}

	ch.written = 0
	ch.tr = dma.Transfer{
		Source:            ch.sad,
		Destination:       ch.dad,
		Remaining:         ch.tcnt,
		SourceUpdate:      dma.Update((ch.cnt >> cntSourceShift) & cntUpdateMask),
		DestinationUpdate: dma.Update((ch.cnt >> cntDestinationShift) & cntUpdateMask),
		Fill:              ch.cnt&cntFill == cntFill,
		FillValue:         ch.fill,
	}
}

// Tick implements the dma.Engine interface.
func (n *NDMA) Tick() {
	for _, ch := range n.channels {
		if ch.State() != dma.Running {
			continue
		}

		burst := ch.wcnt
		if burst == 0 {
			burst = defaultBurst
		}

		moved, err := ch.tr.Burst(n.mem, burst)
		ch.Advance(moved)
		if err != nil {
			err.Engine = label
			err.Channel = ch.Index()
			ch.Fail(err)
			continue
		}

		if ch.tr.Done() {
			ch.Finish()
		}
	}
}

func widthMask(width int) uint32 {
	switch width {
	case 1:
		return 0xff
	case 2:
		return 0xffff
	}
	return 0xffffffff
}
