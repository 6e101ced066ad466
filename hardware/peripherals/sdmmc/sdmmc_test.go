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

package sdmmc_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/hardware/peripherals/sdmmc"
	"github.com/jetsetilly/threemu/sdcard"
	"github.com/jetsetilly/threemu/test"
)

// register addresses
const (
	cmd       = 0x10006000
	portsel   = 0x10006002
	cmdarg0   = 0x10006004
	cmdarg1   = 0x10006006
	blkcount  = 0x1000600a
	resp0     = 0x1000600c
	status0   = 0x1000601c
	status1   = 0x1000601e
	blklen    = 0x10006026
	fifo16    = 0x10006030
	data32irq = 0x10006100
	d32blklen = 0x10006104
	d32blkcnt = 0x10006108
	fifo32    = 0x1000610c
)

type harness struct {
	t    *testing.T
	s    *sdmmc.SDMMC
	card *sdcard.Card
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	// every byte of the card holds the number of its sector
	data := make([]byte, sdcard.BlockSize*8)
	for i := range data {
		data[i] = uint8(i / sdcard.BlockSize)
	}
	card := sdcard.NewMemoryCard(data)

	s := sdmmc.NewSDMMC(card)
	test.ExpectImplements[bus.Peripheral](t, s)
	return &harness{t: t, s: s, card: card}
}

func (h *harness) write(addr uint32, width int, v uint32) {
	h.t.Helper()
	test.DemandSuccess(h.t, h.s.Write(addr, width, v))
}

func (h *harness) read(addr uint32, width int) uint32 {
	h.t.Helper()
	v, err := h.s.Read(addr, width)
	test.DemandSuccess(h.t, err)
	return v
}

// issue a command and acknowledge the end of the command
func (h *harness) command(idx uint32, arg uint32) uint32 {
	h.t.Helper()
	h.write(cmdarg0, 2, arg&0xffff)
	h.write(cmdarg1, 2, arg>>16)
	h.write(cmd, 2, idx)
	test.ExpectEquality(h.t, h.read(status0, 2)&sdmmc.Stat0CmdRespEnd, uint32(sdmmc.Stat0CmdRespEnd), idx)
	test.ExpectEquality(h.t, h.read(status1, 2)&sdmmc.Stat1CmdBusy, uint32(0), idx)
	h.write(status0, 2, ^uint32(sdmmc.Stat0CmdRespEnd))
	return h.read(resp0, 4)
}

// take the card to the transfer state
func (h *harness) initialise() {
	h.t.Helper()
	h.command(0, 0)
	h.command(8, 0x1aa)
	h.command(55, 0)
	h.command(0x40|41, 0)
	h.command(2, 0)
	h.command(3, 0)
	h.command(7, 0x00010000)
	test.DemandEquality(h.t, h.s.CardState(), sdmmc.Transfer)
}

func TestIdentification(t *testing.T) {
	h := newHarness(t)

	test.ExpectEquality(t, h.command(0, 0), uint32(0x200))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Idle)
	test.ExpectEquality(t, h.command(8, 0x1aa), uint32(0x1aa))

	r := h.command(55, 0)
	test.ExpectEquality(t, r&0x20, uint32(0x20))
	test.ExpectEquality(t, h.command(41, 0), uint32(0xc0ff8080))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Ready)

	// CID is in the response registers
	h.command(2, 0)
	test.ExpectEquality(t, h.read(resp0, 4), uint32(0xd71c65cd))
	test.ExpectEquality(t, h.read(resp0+12, 4), uint32(0x00150100))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Identify)

	r = h.command(3, 0)
	test.ExpectEquality(t, r&0xffff0000, uint32(0x00010000))
	test.ExpectEquality(t, (r>>9)&0x0f, uint32(sdmmc.Identify))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Standby)

	h.command(7, 0x00010000)
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Transfer)

	r = h.command(13, 0)
	test.ExpectEquality(t, (r>>9)&0x0f, uint32(sdmmc.Transfer))
	test.ExpectEquality(t, r&0x100, uint32(0x100))

	h.command(9, 0)
	test.ExpectEquality(t, h.read(resp0, 4), uint32(0xe9964040))
}

func TestNAND(t *testing.T) {
	h := newHarness(t)
	h.write(portsel, 2, sdmmc.PortNAND)
	h.command(0, 0)
	h.command(1, 0)
	test.ExpectEquality(t, h.read(resp0, 4), uint32(0x80ff8080))

	h.command(55, 0)
	test.ExpectEquality(t, h.command(41, 0), uint32(0x80ff8080))
	h.command(2, 0)
	test.ExpectEquality(t, h.read(resp0, 4), uint32(0))

	// NAND reads are zero
	h.command(3, 0)
	h.command(7, 0x00010000)
	h.write(blklen, 2, 0x200)
	h.write(blkcount, 2, 1)
	h.command(18, 3)
	test.ExpectEquality(t, h.read(fifo32, 4), uint32(0))
}

func TestStatus(t *testing.T) {
	h := newHarness(t)

	// card inserted and not write protected
	test.ExpectEquality(t, h.read(status0, 2), uint32(0x00a0))

	h.command(0, 0)
	h.write(cmd, 2, 0)
	test.ExpectEquality(t, h.read(status0, 2), uint32(0x00a1))

	// writing the bit as one leaves it set
	h.write(status0, 2, 0xffff)
	test.ExpectEquality(t, h.read(status0, 2), uint32(0x00a1))

	// byte writes only acknowledge bits in their lane
	h.write(status0+1, 1, 0x00)
	test.ExpectEquality(t, h.read(status0, 2), uint32(0x00a1))
	h.write(status0, 1, 0x00)
	test.ExpectEquality(t, h.read(status0, 2), uint32(0x00a0))

	// 32bit read of the status registers
	test.ExpectEquality(t, h.read(status0, 4), uint32(0x00a0))
}

func TestReadMultiple(t *testing.T) {
	h := newHarness(t)
	h.initialise()

	h.write(d32blklen, 4, 0x200)
	h.write(d32blkcnt, 4, 2)
	r := h.command(18, 3)
	test.ExpectEquality(t, (r>>9)&0x0f, uint32(sdmmc.Data))
	test.ExpectEquality(t, r&0x100, uint32(0))
	test.ExpectEquality(t, h.read(status1, 2)&sdmmc.Stat1RxReady, uint32(sdmmc.Stat1RxReady))
	test.ExpectEquality(t, h.read(data32irq, 4)&0x100, uint32(0x100))

	// sectors 3 and 4
	for blk := range 2 {
		for i := 0; i < sdcard.BlockSize; i += 4 {
			v := h.read(fifo32, 4)
			test.ExpectEquality(t, v, uint32(0x01010101)*uint32(3+blk), blk, i)
			if i == 0 {
				test.ExpectEquality(t, h.read(status0, 2)&sdmmc.Stat0DataEnd, uint32(0), blk)
			}
		}
	}

	test.ExpectEquality(t, h.read(status0, 2)&sdmmc.Stat0DataEnd, uint32(sdmmc.Stat0DataEnd))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Transfer)

	// no more data
	test.ExpectEquality(t, h.read(fifo32, 4), uint32(0))
}

func TestReadSingle(t *testing.T) {
	h := newHarness(t)
	h.initialise()

	h.write(blklen, 2, 0x200)
	h.command(17, 7)

	// 16bit FIFO
	test.ExpectEquality(t, h.read(fifo16, 2), uint32(0x0707))
	for i := 2; i < sdcard.BlockSize; i += 2 {
		h.read(fifo16, 2)
	}
	test.ExpectEquality(t, h.read(status0, 2)&sdmmc.Stat0DataEnd, uint32(sdmmc.Stat0DataEnd))
}

func TestReadBeyondCard(t *testing.T) {
	h := newHarness(t)
	h.initialise()

	h.write(blklen, 2, 0x200)
	h.command(17, 100)
	test.ExpectEquality(t, h.read(fifo32, 4), uint32(0))
}

func TestWriteMultiple(t *testing.T) {
	h := newHarness(t)
	h.initialise()

	h.write(d32blklen, 4, 0x200)
	h.write(d32blkcnt, 4, 2)

	test.ExpectEquality(t, h.read(data32irq, 4)&0x200, uint32(0x200))
	h.command(25, 5)
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Receive)
	test.ExpectEquality(t, h.read(status1, 2)&sdmmc.Stat1TxReq, uint32(sdmmc.Stat1TxReq))
	test.ExpectEquality(t, h.read(data32irq, 4)&0x200, uint32(0))

	for blk := range 2 {
		for i := 0; i < sdcard.BlockSize; i += 4 {
			h.write(fifo32, 4, 0xa0a0a0a0|uint32(blk))
		}
	}

	test.ExpectEquality(t, h.read(status0, 2)&sdmmc.Stat0DataEnd, uint32(sdmmc.Stat0DataEnd))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Transfer)

	d, err := h.card.ReadBlock(5)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(d[:4], []byte{0xa0, 0xa0, 0xa0, 0xa0}))
	d, err = h.card.ReadBlock(6)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(d[:4], []byte{0xa1, 0xa0, 0xa0, 0xa0}))
	d, err = h.card.ReadBlock(7)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d[0], uint8(7))
}

func TestStopTransmission(t *testing.T) {
	h := newHarness(t)
	h.initialise()

	h.write(blklen, 2, 0x200)
	h.write(blkcount, 2, 4)
	h.command(18, 0)
	h.read(fifo32, 4)

	r := h.command(12, 0)
	test.ExpectEquality(t, (r>>9)&0x0f, uint32(sdmmc.Data))
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Transfer)

	r = h.command(13, 0)
	test.ExpectEquality(t, r&0x100, uint32(0x100))

	h.command(12, 0)
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Standby)
}

func TestRegisterReads(t *testing.T) {
	h := newHarness(t)
	h.initialise()

	h.command(55, 0)
	h.command(51, 0)
	test.ExpectEquality(t, h.read(fifo32, 4), uint32(0x2a000000))
	test.ExpectEquality(t, h.read(fifo32, 4), uint32(0x00000001))
	test.ExpectEquality(t, h.read(status0, 2)&sdmmc.Stat0DataEnd, uint32(sdmmc.Stat0DataEnd))

	h.command(55, 0)
	h.command(13, 0)
	for range 16 {
		test.ExpectEquality(t, h.read(fifo32, 4), uint32(0))
	}
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Transfer)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	h.command(5, 0)
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Idle)
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	h.initialise()
	h.write(portsel, 2, 1)
	h.s.Reset()
	test.ExpectEquality(t, h.s.CardState(), sdmmc.Idle)
	test.ExpectEquality(t, h.read(portsel, 2), uint32(0))
}

func TestWindow(t *testing.T) {
	b := bus.NewBus()
	h := newHarness(t)
	test.DemandSuccess(t, b.AddPeripheral(memorymap.SDMMC, memorymap.Both, h.s))
	b.Seal()

	p := b.NewPort("ARM11", memorymap.ARM11)
	v, err := p.Read(status0, 2)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v&sdmmc.Stat0CardInserted, uint32(sdmmc.Stat0CardInserted))
}
