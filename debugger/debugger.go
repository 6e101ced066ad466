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

package debugger

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/debugger/terminal/easyterm"
	"github.com/jetsetilly/threemu/debugger/terminal/easyterm/ansi"
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/logger"
	"github.com/jetsetilly/threemu/session"
)

// UserQuit is the error of the Interrupted outcome when the user quits.
const UserQuit = "debugger: user quit"

// number of log entries printed by the log key.
const logTail = 10

// core being stepped by the debugger.
type core struct {
	name string
	cpu  *arm.ARM
	held bool
	pen  string
}

// Debugger steps a session in response to key presses.
type Debugger struct {
	sess   *session.Session
	input  io.Reader
	output io.Writer

	// output ANSI color sequences
	color bool

	cores []core

	// repeat count for the next step key
	count int
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type.
func NewDebugger(sess *session.Session, input io.Reader, output io.Writer, color bool) *Debugger {
	dbg := &Debugger{
		sess:   sess,
		input:  input,
		output: output,
		color:  color,
	}

	held9, held11 := sess.Console.Held()
	dbg.cores = []core{
		{name: "ARM9", cpu: sess.Console.ARM9.ARM, held: held9, pen: "yellow"},
		{name: "ARM11", cpu: sess.Console.ARM11.ARM, held: held11, pen: "cyan"},
	}

	return dbg
}

func (dbg *Debugger) printf(pen string, format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	if dbg.color && pen != "" {
		s = fmt.Sprintf("%s%s%s", ansi.Pens[pen], s, ansi.NormalPen)
	}
	io.WriteString(dbg.output, s)
}

func (dbg *Debugger) prompt() {
	if dbg.color {
		io.WriteString(dbg.output, "\r"+ansi.ClearLine)
	}

	sched := dbg.sess.Scheduler()
	dbg.printf("", "[")
	for _, c := range dbg.cores {
		if c.held {
			dbg.printf(c.pen, " %s held", c.name)
		} else {
			dbg.printf(c.pen, " %s %08x", c.name, c.cpu.PC())
		}
	}
	dbg.printf("", " | round %d ]", sched.Rounds())
	if dbg.count > 0 {
		dbg.printf("", " %d", dbg.count)
	}
	dbg.printf("", " >> ")
}

func (dbg *Debugger) help() {
	dbg.printf("", "\n")
	dbg.printf("white", "s, space, return  step one round (prefix with a count)\n")
	dbg.printf("white", "r                 run until stopped\n")
	dbg.printf("white", "i                 registers\n")
	dbg.printf("white", "l                 recent log entries\n")
	dbg.printf("white", "q                 quit\n")
}

func (dbg *Debugger) registers() {
	dbg.printf("", "\n")
	for _, c := range dbg.cores {
		dbg.printf(c.pen, "%s\n", c.name)
		dbg.printf("", "%s\n", c.cpu.State().String())
	}
}

// the instruction at the PC of the core. reading through Dump() does not
// disturb the emulation
func (dbg *Debugger) fetch(c core) (uint32, bool, bool) {
	pc := c.cpu.PC()
	thumb := c.cpu.State().Thumb()

	width := uint32(4)
	if thumb {
		width = 2
	}

	b, err := dbg.sess.Console.Bus.Dump(pc, width)
	if err != nil {
		return 0, thumb, false
	}
	if thumb {
		return uint32(binary.LittleEndian.Uint16(b)), thumb, true
	}
	return binary.LittleEndian.Uint32(b), thumb, true
}

// step one round and print the instruction retired by each core
func (dbg *Debugger) step() (scheduler.Outcome, bool) {
	type pending struct {
		pc           uint32
		opcode       uint32
		thumb        bool
		ok           bool
		instructions uint64
	}

	var p [2]pending
	for i, c := range dbg.cores {
		p[i].pc = c.cpu.PC()
		p[i].opcode, p[i].thumb, p[i].ok = dbg.fetch(c)
		p[i].instructions = c.cpu.Instructions()
	}

	o, done := dbg.sess.Scheduler().Round()

	for i, c := range dbg.cores {
		if c.held || c.cpu.Instructions() == p[i].instructions {
			continue
		}
		if !p[i].ok {
			dbg.printf(c.pen, "%-5s %08x: ????????\n", c.name, p[i].pc)
			continue
		}
		dis := arm.Disassemble(c.cpu.Architecture(), p[i].opcode, p[i].thumb, p[i].pc)
		if p[i].thumb {
			dbg.printf(c.pen, "%-5s %08x: %04x      %s\n", c.name, p[i].pc, p[i].opcode, dis)
		} else {
			dbg.printf(c.pen, "%-5s %08x: %08x  %s\n", c.name, p[i].pc, p[i].opcode, dis)
		}
	}

	return o, done
}

func (dbg *Debugger) end(o scheduler.Outcome) (*session.Result, error) {
	pen := "green"
	if o.Reason != scheduler.StoppedAtPC {
		pen = "red"
	}
	dbg.printf(pen, "\n%s\n", o.String())
	return dbg.sess.Result(o)
}

// Run the debugger until the session ends or the user quits. An error
// reading the input ends the debugger with an error except for io.EOF, which
// is treated like a quit.
func (dbg *Debugger) Run(ctx context.Context) (*session.Result, error) {
	sched := dbg.sess.Scheduler()

	if o, done := sched.Check(); done {
		return dbg.end(o)
	}

	dbg.printf("white", "press h for help\n")

	quit := func() (*session.Result, error) {
		return dbg.end(scheduler.Outcome{
			Reason:       scheduler.Interrupted,
			Err:          curated.Errorf(UserQuit),
			Instructions: sched.Instructions(),
			Rounds:       sched.Rounds(),
		})
	}

	key := make([]byte, 1)

	for {
		dbg.prompt()

		n, err := dbg.input.Read(key)
		if err == io.EOF {
			return quit()
		}
		if err != nil {
			return nil, curated.Errorf("debugger: %v", err)
		}
		if n == 0 {
			continue
		}

		switch key[0] {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			dbg.count = dbg.count*10 + int(key[0]-'0')
			continue

		case 's', ' ', easyterm.KeyCarriageReturn, easyterm.KeyLineFeed:
			count := max(dbg.count, 1)
			dbg.count = 0
			dbg.printf("", "\n")
			for range count {
				if ctx.Err() != nil {
					return quit()
				}
				if o, done := dbg.step(); done {
					return dbg.end(o)
				}
			}

		case 'r':
			dbg.count = 0
			return dbg.end(sched.Run(ctx))

		case 'i':
			dbg.count = 0
			dbg.registers()

		case 'l':
			dbg.count = 0
			dbg.printf("", "\n")
			logger.Tail(dbg.output, logTail)

		case 'h', '?':
			dbg.count = 0
			dbg.help()

		case 'q', easyterm.KeyInterrupt:
			return quit()

		case easyterm.KeySuspend:
			if err := easyterm.SuspendProcess(); err != nil {
				logger.Logf(logger.Allow, "debugger", "suspend: %v", err)
			}

		case easyterm.KeyBackspace, 127:
			dbg.count /= 10

		case easyterm.KeyEsc:
			dbg.count = 0
		}
	}
}
