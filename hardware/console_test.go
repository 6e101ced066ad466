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

package hardware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jetsetilly/threemu/digest"
	"github.com/jetsetilly/threemu/hardware"
	"github.com/jetsetilly/threemu/hardware/boot"
	"github.com/jetsetilly/threemu/hardware/dma"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/logger"
	"github.com/jetsetilly/threemu/test"
)

func words(w ...uint32) []byte {
	b := make([]byte, 0, len(w)*4)
	for _, v := range w {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return b
}

func TestGaps(t *testing.T) {
	window := memorymap.Area{Origin: 0x1000, Size: 0x1000}

	gaps := hardware.Gaps(window, nil)
	test.DemandEquality(t, len(gaps), 1)
	test.ExpectEquality(t, gaps[0], window)

	gaps = hardware.Gaps(window, []memorymap.Area{
		{Origin: 0x1800, Size: 0x100},
		{Origin: 0x1000, Size: 0x100},
		{Origin: 0x4000, Size: 0x100},
	})
	test.DemandEquality(t, len(gaps), 2)
	test.ExpectEquality(t, gaps[0], memorymap.Area{Origin: 0x1100, Size: 0x700})
	test.ExpectEquality(t, gaps[1], memorymap.Area{Origin: 0x1900, Size: 0x700})

	// an area covering the end of the window
	gaps = hardware.Gaps(window, []memorymap.Area{{Origin: 0x1f00, Size: 0x1000}})
	test.DemandEquality(t, len(gaps), 1)
	test.ExpectEquality(t, gaps[0], memorymap.Area{Origin: 0x1000, Size: 0xf00})

	// a window at the very top of the address space
	top := memorymap.Area{Origin: 0xffff0000, Size: 0x10000}
	gaps = hardware.Gaps(top, []memorymap.Area{{Origin: 0xffff0000, Size: 0x100}})
	test.DemandEquality(t, len(gaps), 1)
	test.ExpectEquality(t, gaps[0].Memtop(), uint32(0xffffffff))
}

func TestMap(t *testing.T) {
	con, err := hardware.NewConsole(nil)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, con.Bus.IsSealed())
	test.ExpectEquality(t, len(con.Bus.Regions()), len(memorymap.RAMRegions))

	arm9 := con.ARM9.Port()
	arm11 := con.ARM11.Port()

	// generic IO either side of the named windows
	logger.Clear()
	v, err := arm9.Read(memorymap.NDMA.Origin-4, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0))
	test.ExpectSuccess(t, arm11.Write(memorymap.GPU.Memtop()+1, 4, 0x1234))
	test.ExpectEquality(t, con.IO1.Accessed(), 2)

	_, err = arm11.Read(memorymap.IO2.Origin, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, con.IO2.Accessed(), 1)

	// the unused area is not mapped
	var f bus.Fault
	_, err = arm9.Read(memorymap.Unused.Origin, 4)
	test.DemandSuccess(t, errors.As(err, &f))
	test.ExpectEquality(t, f.Kind, bus.Unmapped)

	// the ARM11 cannot see the private memory of the ARM9
	_, err = arm11.Read(memorymap.ARM9Internal.Origin, 4)
	test.DemandSuccess(t, errors.As(err, &f))
	test.ExpectEquality(t, f.Kind, bus.Unmapped)

	// the loader can see everything
	test.ExpectSuccess(t, con.Poke(memorymap.ARM9Internal.Origin, 4, 0x11223344))
	v, err = arm9.Read(memorymap.ARM9Internal.Origin, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x11223344))
}

func TestBoot(t *testing.T) {
	con, err := hardware.NewConsole(nil)
	test.DemandSuccess(t, err)

	img := boot.BootImage{
		Placements: []boot.Placement{
			{Label: "arm11", Address: memorymap.AXIWRAM.Origin, Data: words(0xeafffffe)},
		},
		ARM11: boot.NewEntryPoint(memorymap.AXIWRAM.Origin),
	}
	test.DemandSuccess(t, con.Boot(img))

	held9, held11 := con.Held()
	test.ExpectEquality(t, held9, true)
	test.ExpectEquality(t, held11, false)
	test.ExpectEquality(t, con.ARM11.PC(), memorymap.AXIWRAM.Origin)

	// the held ARM9 is not stepped
	o := con.Run(context.Background(), scheduler.StopCondition{MaxInstructions: 10})
	test.ExpectEquality(t, o.Reason, scheduler.InstructionBudgetExhausted)
	test.ExpectEquality(t, o.Instructions, uint64(10))
	test.ExpectEquality(t, con.ARM9.Instructions(), uint64(0))
	test.ExpectEquality(t, con.ARM11.Instructions(), uint64(10))
}

// the ARM9 starts an NDMA transfer and then polls the status register until
// the channel is complete. the transfer is in flight while the ARM9 runs
func TestDMA(t *testing.T) {
	con, err := hardware.NewConsole(nil)
	test.DemandSuccess(t, err)

	ch0 := memorymap.NDMA.Origin + 0x04
	src := memorymap.FCRAM.Origin
	dst := memorymap.FCRAM.Origin + 0x1000

	program := words(
		0xe59f0038, // ldr r0,[pc,#0x38] (channel base)
		0xe59f1038, // ldr r1,[pc,#0x38] (source)
		0xe59f2038, // ldr r2,[pc,#0x38] (destination)
		0xe5801000, // str r1,[r0]
		0xe5802004, // str r2,[r0,#4]
		0xe3a03040, // mov r3,#0x40
		0xe5803008, // str r3,[r0,#8]
		0xe3a03102, // mov r3,#0x80000000
		0xe5803018, // str r3,[r0,#0x18]
		0xe5904010, // ldr r4,[r0,#0x10] (poll)
		0xe3540003, // cmp r4,#3
		0x1afffffc, // bne poll
		0xeafffffe, // b .
		0, 0, 0, // padding
		ch0,
		src,
		dst,
	)
	base := memorymap.ARM9Internal.Origin

	data := make([]byte, 0x40)
	for i := range data {
		data[i] = byte(i)
	}

	img := boot.BootImage{
		Placements: []boot.Placement{
			{Label: "arm9", Address: base, Data: program},
			{Label: "data", Address: src, Data: data},
		},
		ARM9: boot.NewEntryPoint(base),
	}
	test.DemandSuccess(t, con.Boot(img))

	stop := base + 0x30
	o := con.Run(context.Background(), scheduler.StopCondition{ARM9: &stop, MaxInstructions: 1000})
	test.DemandEquality(t, o.Reason, scheduler.StoppedAtPC)
	test.ExpectEquality(t, o.Core, "ARM9")

	// sixteen words at one word per tick means the status was polled more
	// than once
	test.ExpectInequality(t, o.Instructions, uint64(13))

	got, err := con.Bus.Dump(dst, 0x40)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(got), string(data))

	s := con.Snapshot()
	test.DemandEquality(t, len(s.DMA) > 0, true)
	test.ExpectEquality(t, s.DMA[0].Engine, "NDMA")
	test.ExpectEquality(t, s.DMA[0].State, dma.Complete)
	test.ExpectEquality(t, s.DMA[0].Transferred, uint32(0x40))
	test.ExpectEquality(t, s.ARM9.Registers[4], uint32(3))
}

func TestDigestPrivateState(t *testing.T) {
	hash := func(con *hardware.Console) string {
		var dig digest.State
		dig.Update(con)
		return dig.Hash()
	}

	a, err := hardware.NewConsole(nil)
	test.DemandSuccess(t, err)
	b, err := hardware.NewConsole(nil)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, hash(a), hash(b))

	// memory private to the ARM9 is part of the digest
	b.ARM9.TCM.DTCM[0] = 1
	test.ExpectInequality(t, hash(a), hash(b))
	b.ARM9.TCM.DTCM[0] = 0
	b.ARM9.TCM.ITCM[0] = 1
	test.ExpectInequality(t, hash(a), hash(b))
	b.ARM9.TCM.ITCM[0] = 0
	test.DemandEquality(t, hash(a), hash(b))

	// as is the control register of either coprocessor
	b.ARM9.CP15.MCR(0, 1, 0, 0, 0x00052078)
	test.ExpectInequality(t, hash(a), hash(b))
	b.ARM9.CP15.Reset()
	b.ARM11.CP15.MCR(0, 13, 0, 3, 0x1234)
	test.ExpectInequality(t, hash(a), hash(b))
}
