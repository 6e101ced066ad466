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

package ndma_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/threemu/hardware/dma"
	"github.com/jetsetilly/threemu/hardware/dma/ndma"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/test"
)

// channel register offsets
const (
	sad    = 0x00
	dad    = 0x04
	tcnt   = 0x08
	wcnt   = 0x0c
	status = 0x10
	fill   = 0x14
	cnt    = 0x18
)

const (
	start  = 0x80000000
	signal = 0x40000000
)

var (
	src = memorymap.AXIWRAM.Origin
	dst = memorymap.AXIWRAM.Origin + 0x100
)

type harness struct {
	t    *testing.T
	cpu  *bus.Port
	ndma *ndma.NDMA
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	b := bus.NewBus()
	_, err := b.AddRAM("AXIWRAM", memorymap.AXIWRAM, memorymap.Both)
	test.DemandSuccess(t, err)

	h := &harness{
		t:    t,
		cpu:  b.NewPort("ARM9", memorymap.ARM9),
		ndma: ndma.NewNDMA(b.NewPort("NDMA", memorymap.ARM9)),
	}
	test.DemandSuccess(t, b.AddPeripheral(memorymap.NDMA, memorymap.ARM9, h.ndma))
	b.Seal()

	return h
}

func reg(channel int, offset uint32) uint32 {
	return memorymap.NDMA.Origin + 0x04 + uint32(channel)*0x1c + offset
}

func (h *harness) write(addr uint32, value uint32) {
	h.t.Helper()
	test.DemandSuccess(h.t, h.cpu.Write(addr, 4, value))
}

func (h *harness) read(addr uint32) uint32 {
	h.t.Helper()
	v, err := h.cpu.Read(addr, 4)
	test.DemandSuccess(h.t, err)
	return v
}

func (h *harness) state(channel int) dma.State {
	return h.ndma.Channels()[channel].State()
}

func TestTransfer(t *testing.T) {
	h := newHarness(t)
	for i := range uint32(4) {
		h.write(src+i*4, 0xa0a0a0a0+i)
	}

	h.write(reg(0, sad), src)
	h.write(reg(0, dad), dst)
	test.ExpectEquality(t, h.state(0), dma.Idle)
	h.write(reg(0, tcnt), 16)
	test.ExpectEquality(t, h.state(0), dma.Configured)
	h.write(reg(0, wcnt), 4)
	h.write(reg(0, cnt), start|signal)
	test.ExpectEquality(t, h.state(0), dma.Running)
	test.ExpectEquality(t, h.read(reg(0, cnt))&start, uint32(start))

	// one word per tick
	for i := range 3 {
		h.ndma.Tick()
		test.ExpectEquality(t, h.state(0), dma.Running, i)
	}
	h.ndma.Tick()
	test.ExpectEquality(t, h.state(0), dma.Complete)
	test.ExpectEquality(t, h.ndma.Channels()[0].Transferred(), uint32(16))

	for i := range uint32(4) {
		test.ExpectEquality(t, h.read(dst+i*4), 0xa0a0a0a0+i, i)
	}

	// completion is a level in the status and global registers
	test.ExpectEquality(t, h.read(reg(0, status)), uint32(3))
	test.ExpectEquality(t, h.read(reg(0, cnt))&start, uint32(0))
	test.ExpectEquality(t, h.read(memorymap.NDMA.Origin)>>16, uint32(0x01))
	test.ExpectEquality(t, h.ndma.Completion(), uint8(0x01))

	h.write(reg(0, status), 1)
	test.ExpectEquality(t, h.state(0), dma.Idle)
	test.ExpectEquality(t, h.ndma.Completion(), uint8(0))

	// configuration is consumed by the start so a start after
	// acknowledgement is ignored
	h.write(reg(0, cnt), start)
	test.ExpectEquality(t, h.state(0), dma.Idle)
}

func TestDefaultBurst(t *testing.T) {
	h := newHarness(t)

	h.write(reg(2, sad), src)
	h.write(reg(2, dad), dst)
	h.write(reg(2, tcnt), 8)
	h.write(reg(2, cnt), start)

	h.ndma.Tick()
	test.ExpectEquality(t, h.state(2), dma.Running)
	h.ndma.Tick()
	test.ExpectEquality(t, h.state(2), dma.Complete)

	// completion signal not enabled
	test.ExpectEquality(t, h.ndma.Completion(), uint8(0))
}

func TestTransferError(t *testing.T) {
	h := newHarness(t)

	// channel 1 reads from the test pass address, which is unmapped
	h.write(reg(1, sad), memorymap.TestPass)
	h.write(reg(1, dad), dst)
	h.write(reg(1, tcnt), 16)
	h.write(reg(1, cnt), start)

	// channel 5 writes into the hole in the IO space
	h.write(reg(5, sad), src)
	h.write(reg(5, dad), memorymap.Unused.Origin)
	h.write(reg(5, tcnt), 16)
	h.write(reg(5, cnt), start)

	// channel 0 is unaffected
	h.write(reg(0, sad), src)
	h.write(reg(0, dad), dst+0x40)
	h.write(reg(0, tcnt), 4)
	h.write(reg(0, cnt), start)

	h.ndma.Tick()

	test.ExpectEquality(t, h.state(0), dma.Complete)
	test.ExpectEquality(t, h.state(1), dma.Error)
	test.ExpectEquality(t, h.state(5), dma.Error)
	test.ExpectEquality(t, h.read(reg(1, status)), uint32(0x0c))

	err := h.ndma.Channels()[1].Err()
	test.DemandSuccess(t, err != nil)
	test.ExpectEquality(t, err.Engine, "NDMA")
	test.ExpectEquality(t, err.Channel, 1)
	test.ExpectEquality(t, err.Address, memorymap.TestPass)

	var f bus.Fault
	test.DemandSuccess(t, errors.As(*err, &f))
	test.ExpectEquality(t, f.Kind, bus.Unmapped)
	test.ExpectEquality(t, f.Master, "NDMA")

	err = h.ndma.Channels()[5].Err()
	test.DemandSuccess(t, err != nil)
	test.ExpectEquality(t, err.Address, memorymap.Unused.Origin)

	// acknowledge clears the error
	h.write(reg(1, status), 1)
	test.ExpectEquality(t, h.state(1), dma.Idle)
	test.ExpectEquality(t, h.ndma.Channels()[1].Err() == nil, true)
}

func TestFill(t *testing.T) {
	h := newHarness(t)

	// fill mode, fixed source
	h.write(reg(3, sad), 0)
	h.write(reg(3, dad), dst)
	h.write(reg(3, tcnt), 12)
	h.write(reg(3, wcnt), 12)
	h.write(reg(3, fill), 0x5a5a5a5a)
	h.write(reg(3, cnt), start|0x8000|2<<10)
	h.ndma.Tick()

	test.ExpectEquality(t, h.state(3), dma.Complete)
	for i := range uint32(3) {
		test.ExpectEquality(t, h.read(dst+i*4), uint32(0x5a5a5a5a), i)
	}
	test.ExpectEquality(t, h.read(dst+12), uint32(0))
}

func TestNarrowWrites(t *testing.T) {
	h := newHarness(t)

	test.DemandSuccess(t, h.cpu.Write(reg(4, sad), 2, src&0xffff))
	test.DemandSuccess(t, h.cpu.Write(reg(4, sad)+2, 2, src>>16))
	h.write(reg(4, dad), dst)
	test.DemandSuccess(t, h.cpu.Write(reg(4, tcnt), 1, 4))
	test.ExpectEquality(t, h.read(reg(4, sad)), src)
	test.ExpectEquality(t, h.state(4), dma.Configured)

	// start with a byte write to the top of CNT
	test.DemandSuccess(t, h.cpu.Write(reg(4, cnt)+3, 1, 0x80))
	test.ExpectEquality(t, h.state(4), dma.Running)

	v, err := h.cpu.Read(reg(4, status), 1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(2))

	// register writes while running are ignored
	h.write(reg(4, dad), 0)
	test.ExpectEquality(t, h.read(reg(4, dad)), dst)
}

func TestReset(t *testing.T) {
	h := newHarness(t)

	h.write(reg(7, sad), src)
	h.write(reg(7, dad), dst)
	h.write(reg(7, tcnt), 64)
	h.write(reg(7, cnt), start)
	test.ExpectEquality(t, h.state(7), dma.Running)

	h.ndma.Reset()
	test.ExpectEquality(t, h.state(7), dma.Idle)
	test.ExpectEquality(t, h.read(reg(7, sad)), uint32(0))
}
