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
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/threemu/digest"
	"github.com/jetsetilly/threemu/hardware"
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/scheduler"
)

// Captured is the data of a Capture at the end of the session.
type Captured struct {
	Capture
	Data []byte
}

// Result of a session.
type Result struct {
	Reason scheduler.Reason

	// core that stopped at its target or faulted
	Core string

	// fault or context error
	Err error

	Instructions uint64
	Rounds       uint64

	// cores that were given a target and the cores that reached their target
	Targets []string
	Reached []string

	ARM9  arm.State
	ARM11 arm.State

	Captures []Captured
	DMA      []hardware.ChannelState

	// SHA-1 over the state of both cores and all RAM
	Digest string
	digest digest.State
}

// List of exit codes.
const (
	ExitStopped = 0
	ExitBudget  = 1
	ExitFault   = 2
)

// ExitCode returns the exit code of the process for the result.
func (res *Result) ExitCode() int {
	switch res.Reason {
	case scheduler.StoppedAtPC:
		if res.ReachedAll() {
			return ExitStopped
		}
		return ExitBudget
	case scheduler.InstructionBudgetExhausted, scheduler.Interrupted:
		return ExitBudget
	}
	return ExitFault
}

// ReachedAll returns true if every core that was given a target reached it.
func (res *Result) ReachedAll() bool {
	for _, t := range res.Targets {
		if !slices.Contains(res.Reached, t) {
			return false
		}
	}
	return true
}

// Read a value from the captured memory. Returns false if the address is not
// inside a captured range.
func (res *Result) Read(addr uint32, width int) (uint32, bool) {
	for _, c := range res.Captures {
		if addr < c.Address || uint64(addr)+uint64(width) > uint64(c.Address)+uint64(len(c.Data)) {
			continue
		}
		b := c.Data[addr-c.Address:]
		switch width {
		case 1:
			return uint32(b[0]), true
		case 2:
			return uint32(binary.LittleEndian.Uint16(b)), true
		case 4:
			return binary.LittleEndian.Uint32(b), true
		}
		return 0, false
	}
	return 0, false
}

// State returns the final state of the named core.
func (res *Result) State(core string) (arm.State, bool) {
	switch strings.ToUpper(core) {
	case "ARM9":
		return res.ARM9, true
	case "ARM11":
		return res.ARM11, true
	}
	return arm.State{}, false
}

func (res *Result) String() string {
	s := strings.Builder{}
	s.WriteString(res.Reason.String())
	if res.Core != "" {
		s.WriteString(fmt.Sprintf(" (%s)", res.Core))
	}
	s.WriteString(fmt.Sprintf(" after %d instructions in %d rounds\n", res.Instructions, res.Rounds))
	if res.Err != nil {
		s.WriteString(fmt.Sprintf("%v\n", res.Err))
	}
	s.WriteString(fmt.Sprintf("ARM9\n%s\n", res.ARM9.String()))
	s.WriteString(fmt.Sprintf("ARM11\n%s\n", res.ARM11.String()))
	for _, ch := range res.DMA {
		if ch.Transferred == 0 && ch.Err == nil {
			continue
		}
		s.WriteString(fmt.Sprintf("%s%d: %s (%d bytes)", ch.Engine, ch.Index, ch.State, ch.Transferred))
		if ch.Err != nil {
			s.WriteString(fmt.Sprintf(" %v", ch.Err))
		}
		s.WriteString("\n")
	}
	for _, c := range res.Captures {
		s.WriteString(fmt.Sprintf("%s: % x\n", c.Capture, c.Data))
	}
	s.WriteString(fmt.Sprintf("digest %s\n", res.Digest))
	return s.String()
}

// Memviz writes a graphviz representation of the result.
func (res *Result) Memviz(w io.Writer) {
	memviz.Map(w, res)
}
