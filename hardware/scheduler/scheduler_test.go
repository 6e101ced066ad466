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

package scheduler_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jetsetilly/threemu/digest"
	"github.com/jetsetilly/threemu/hardware"
	"github.com/jetsetilly/threemu/hardware/boot"
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/logger"
	"github.com/jetsetilly/threemu/test"
)

var (
	arm9Base  = memorymap.ARM9Internal.Origin
	arm11Base = memorymap.AXIWRAM.Origin
)

func words(w ...uint32) []byte {
	b := make([]byte, 0, len(w)*4)
	for _, v := range w {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return b
}

// counts to 256 in r0 and then spins at +0x10
var arm9Counter = words(
	0xe3a00000, // mov r0,#0
	0xe2800001, // loop: add r0,r0,#1
	0xe3500c01, // cmp r0,#0x100
	0x1afffffc, // bne loop
	0xeafffffe, // b .
)

// increments r1 forever
var arm11Counter = words(
	0xe3a01000, // mov r1,#0
	0xe2811002, // loop: add r1,r1,#2
	0xeafffffd, // b loop
)

// three instructions and then spins at +0x0c
var arm11Short = words(
	0xe3a01001, // mov r1,#1
	0xe3a02002, // mov r2,#2
	0xe3a03003, // mov r3,#3
	0xeafffffe, // b .
)

var spin = words(0xeafffffe)

func newConsole(t *testing.T, arm9 []byte, arm11 []byte) *hardware.Console {
	t.Helper()

	con, err := hardware.NewConsole(nil)
	test.DemandSuccess(t, err)

	var img boot.BootImage
	if arm9 != nil {
		img.Placements = append(img.Placements, boot.Placement{Label: "arm9", Address: arm9Base, Data: arm9})
		img.ARM9 = boot.NewEntryPoint(arm9Base)
	}
	if arm11 != nil {
		img.Placements = append(img.Placements, boot.Placement{Label: "arm11", Address: arm11Base, Data: arm11})
		img.ARM11 = boot.NewEntryPoint(arm11Base)
	}
	test.DemandSuccess(t, con.Boot(img))

	return con
}

func TestMinimalPass(t *testing.T) {
	con := newConsole(t, words(
		0xe3a00042, // mov r0,#0x42
		0xe59f1008, // ldr r1,[pc,#8]
		0xe5810000, // str r0,[r1]
		0xeafffffe, // b .
		0x00000000,
		memorymap.FCRAM.Origin,
	), nil)

	stop := arm9Base + 0x0c
	o := con.Run(context.Background(), scheduler.StopCondition{ARM9: &stop, MaxInstructions: 100000})
	test.ExpectEquality(t, o.Reason, scheduler.StoppedAtPC)
	test.ExpectEquality(t, o.Core, "ARM9")
	test.ExpectEquality(t, o.Instructions, uint64(3))
	test.ExpectEquality(t, o.Err, nil)
	test.DemandEquality(t, len(o.Reached), 1)
	test.ExpectEquality(t, o.Reached[0], "ARM9")

	v, err := con.Loader().Read(memorymap.FCRAM.Origin, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x42))
}

func TestBudget(t *testing.T) {
	con := newConsole(t, spin, spin)

	o := con.Run(context.Background(), scheduler.StopCondition{MaxInstructions: 1001})
	test.ExpectEquality(t, o.Reason, scheduler.InstructionBudgetExhausted)
	test.ExpectEquality(t, o.Instructions, uint64(1001))
	test.ExpectEquality(t, o.Rounds, uint64(500))
	test.ExpectEquality(t, o.Core, "")

	// the budget ran out after the ARM9 instruction of the final round
	test.ExpectEquality(t, con.ARM9.Instructions(), uint64(501))
	test.ExpectEquality(t, con.ARM11.Instructions(), uint64(500))

	// a target that is never reached does not change the outcome
	con = newConsole(t, spin, spin)
	stop := arm11Base + 0x100
	o = con.Run(context.Background(), scheduler.StopCondition{ARM11: &stop, MaxInstructions: 1000})
	test.ExpectEquality(t, o.Reason, scheduler.InstructionBudgetExhausted)
	test.ExpectEquality(t, o.Instructions, uint64(1000))
	test.ExpectEquality(t, len(o.Reached), 0)
}

func TestBeforeFirstRound(t *testing.T) {
	con := newConsole(t, spin, nil)

	// the ARM9 is already at its target
	stop := arm9Base
	o := con.Run(context.Background(), scheduler.StopCondition{ARM9: &stop, MaxInstructions: 10})
	test.ExpectEquality(t, o.Reason, scheduler.StoppedAtPC)
	test.ExpectEquality(t, o.Instructions, uint64(0))
	test.ExpectEquality(t, o.Rounds, uint64(0))
	test.ExpectEquality(t, con.ARM9.Instructions(), uint64(0))
}

func TestDeterminism(t *testing.T) {
	run := func() (*hardware.Console, scheduler.Outcome) {
		con := newConsole(t, arm9Counter, arm11Counter)
		o := con.Run(context.Background(), scheduler.StopCondition{MaxInstructions: 2000})
		return con, o
	}

	a, oa := run()
	b, ob := run()

	test.ExpectEquality(t, oa.Reason, scheduler.InstructionBudgetExhausted)
	test.ExpectEquality(t, oa.Instructions, ob.Instructions)
	test.ExpectEquality(t, oa.Rounds, ob.Rounds)
	test.ExpectEquality(t, a.ARM9.State(), b.ARM9.State())
	test.ExpectEquality(t, a.ARM11.State(), b.ARM11.State())

	var da digest.State
	var db digest.State
	da.Update(a)
	db.Update(b)
	test.ExpectEquality(t, da.Hash(), db.Hash())

	test.ExpectEquality(t, a.ARM9.Register(0), uint32(0x100))
	test.ExpectEquality(t, a.ARM11.Register(1), uint32(1000))
}

func TestFirstTarget(t *testing.T) {
	con := newConsole(t, arm9Counter, arm11Short)

	stop9 := arm9Base + 0x10
	stop11 := arm11Base + 0x0c
	o := con.Run(context.Background(), scheduler.StopCondition{ARM9: &stop9, ARM11: &stop11, MaxInstructions: 100000})
	test.ExpectEquality(t, o.Reason, scheduler.StoppedAtPC)
	test.ExpectEquality(t, o.Core, "ARM11")
	test.ExpectEquality(t, o.Instructions, uint64(6))
	test.ExpectEquality(t, o.Rounds, uint64(2))
}

func TestRequireAll(t *testing.T) {
	con := newConsole(t, arm9Counter, arm11Short)

	stop9 := arm9Base + 0x10
	stop11 := arm11Base + 0x0c
	o := con.Run(context.Background(), scheduler.StopCondition{ARM9: &stop9, ARM11: &stop11, MaxInstructions: 100000, RequireAll: true})
	test.ExpectEquality(t, o.Reason, scheduler.StoppedAtPC)
	test.ExpectEquality(t, o.Core, "")
	test.ExpectEquality(t, o.Instructions, uint64(769+3))
	test.DemandEquality(t, len(o.Reached), 2)
	test.ExpectEquality(t, o.Reached[0], "ARM9")
	test.ExpectEquality(t, o.Reached[1], "ARM11")

	// the parked ARM11 was not stepped
	test.ExpectEquality(t, con.ARM11.Instructions(), uint64(3))
	test.ExpectEquality(t, con.ARM11.PC(), stop11)
	test.ExpectEquality(t, con.ARM9.PC(), stop9)
}

func TestHeldTarget(t *testing.T) {
	con := newConsole(t, arm9Counter, nil)

	// the ARM11 is held so its target is dropped
	stop9 := arm9Base + 0x10
	stop11 := arm11Base
	o := con.Run(context.Background(), scheduler.StopCondition{ARM9: &stop9, ARM11: &stop11, MaxInstructions: 100000, RequireAll: true})
	test.ExpectEquality(t, o.Reason, scheduler.StoppedAtPC)
	test.ExpectEquality(t, o.Instructions, uint64(769))
}

func TestDecodeFault(t *testing.T) {
	// rev is not available on the ARM9
	con := newConsole(t, words(0xe3a00001, 0xe6bf1f30), spin)

	o := con.Run(context.Background(), scheduler.StopCondition{MaxInstructions: 100})
	test.ExpectEquality(t, o.Reason, scheduler.DecodeFault)
	test.ExpectEquality(t, o.Core, "ARM9")
	test.ExpectEquality(t, o.Instructions, uint64(2))
	test.ExpectSuccess(t, o.Reason.IsFault())

	var f arm.DecodeFault
	test.DemandSuccess(t, errors.As(o.Err, &f))
	test.ExpectEquality(t, f.Address, arm9Base+4)
	test.ExpectEquality(t, con.ARM9.PC(), arm9Base+4)
}

func TestBusFault(t *testing.T) {
	// the ARM11 branches to the pass address, which is unmapped
	con := newConsole(t, spin, words(
		0xe59f0000, // ldr r0,[pc]
		0xe12fff10, // bx r0
		memorymap.TestPass,
	))

	o := con.Run(context.Background(), scheduler.StopCondition{MaxInstructions: 100})
	test.ExpectEquality(t, o.Reason, scheduler.BusFault)
	test.ExpectEquality(t, o.Core, "ARM11")

	var f bus.Fault
	test.DemandSuccess(t, errors.As(o.Err, &f))
	test.ExpectEquality(t, f.Address, memorymap.TestPass)
	test.ExpectEquality(t, f.Kind, bus.Unmapped)
	test.ExpectEquality(t, con.ARM11.PC(), memorymap.TestPass)
}

// failingCore returns an error from Step() that is not an ARM fault
type failingCore struct{}

func (failingCore) PC() uint32 {
	return arm9Base
}

func (failingCore) Step() (arm.StepResult, error) {
	return arm.StepResult{PC: arm9Base}, errors.New("peripheral failure")
}

func TestCoreError(t *testing.T) {
	s := scheduler.NewScheduler(failingCore{}, nil, nil, scheduler.StopCondition{MaxInstructions: 10})
	o := s.Run(context.Background())
	test.ExpectEquality(t, o.Reason, scheduler.CoreError)
	test.ExpectEquality(t, o.Core, "ARM9")
	test.ExpectSuccess(t, o.Reason.IsFault())
	test.ExpectEquality(t, o.Err.Error(), "peripheral failure")
	test.ExpectEquality(t, o.Instructions, uint64(0))
}

func TestInterrupted(t *testing.T) {
	con := newConsole(t, spin, spin)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := con.Run(ctx, scheduler.StopCondition{})
	test.ExpectEquality(t, o.Reason, scheduler.Interrupted)
	test.ExpectSuccess(t, errors.Is(o.Err, context.Canceled))
	test.ExpectEquality(t, o.Instructions, uint64(0))
}

func TestRound(t *testing.T) {
	con := newConsole(t, arm9Counter, arm11Counter)
	s := con.NewScheduler(scheduler.StopCondition{MaxInstructions: 5})

	_, done := s.Check()
	test.ExpectEquality(t, done, false)

	_, done = s.Round()
	test.ExpectEquality(t, done, false)
	test.ExpectEquality(t, s.Instructions(), uint64(2))
	test.ExpectEquality(t, s.Rounds(), uint64(1))

	_, done = s.Round()
	test.ExpectEquality(t, done, false)

	o, done := s.Round()
	test.ExpectEquality(t, done, true)
	test.ExpectEquality(t, o.Reason, scheduler.InstructionBudgetExhausted)
	test.ExpectEquality(t, o.Instructions, uint64(5))

	// further rounds have no effect
	o, done = s.Round()
	test.ExpectEquality(t, done, true)
	test.ExpectEquality(t, s.Instructions(), uint64(5))
	test.ExpectEquality(t, o.Rounds, uint64(2))

	d, done := s.Done()
	test.ExpectEquality(t, done, true)
	test.ExpectEquality(t, d.Reason, o.Reason)
}

func TestTightLoop(t *testing.T) {
	con := newConsole(t, spin, arm11Counter)
	logger.Clear()

	o := con.Run(context.Background(), scheduler.StopCondition{MaxInstructions: 100})
	test.ExpectEquality(t, o.Reason, scheduler.InstructionBudgetExhausted)

	var loops []string
	logger.BorrowLog(func(entries []logger.Entry) {
		for _, e := range entries {
			if e.Tag == "scheduler" && strings.Contains(e.Detail, "tight loop") {
				loops = append(loops, e.Detail)
			}
		}
	})

	// logged once for the ARM9 and never for the ARM11
	test.DemandEquality(t, len(loops), 1)
	test.ExpectEquality(t, loops[0], "ARM9: tight loop at 08000000 after 1 instructions")
}

func TestReason(t *testing.T) {
	for r := scheduler.Running; r <= scheduler.CoreError; r++ {
		p, ok := scheduler.ParseReason(r.String())
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, p, r)
	}
	_, ok := scheduler.ParseReason("Finished")
	test.ExpectFailure(t, ok)

	stop := uint32(0x08000010)
	cond := scheduler.StopCondition{ARM9: &stop, MaxInstructions: 10, RequireAll: true}
	test.ExpectEquality(t, cond.String(), "ARM9 stop at 08000010 (all) budget 10")
	test.ExpectEquality(t, scheduler.StopCondition{}.String(), "no budget")
}
