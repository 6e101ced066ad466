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

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/dma"
	"github.com/jetsetilly/threemu/logger"
)

// Checking the context for cancellation on every round is expensive compared
// to the work done in a round. The context is checked once every
// PerformanceBrake rounds instead.
const PerformanceBrake = 100

// Sentinal error patterns.
const (
	NoRunnableCore = "scheduler: no core can run"
)

// Core is the interface to a core used by the scheduler.
type Core interface {
	PC() uint32
	Step() (arm.StepResult, error)
}

// StopCondition is the set of conditions that stop the scheduler. A nil
// target means that the core has no target. A MaxInstructions value of zero
// means there is no budget.
type StopCondition struct {
	ARM9  *uint32
	ARM11 *uint32

	MaxInstructions uint64

	// a core reaching its target is parked and the scheduler stops only when
	// every core with a target is parked
	RequireAll bool
}

func (cond StopCondition) String() string {
	s := strings.Builder{}
	if cond.ARM9 != nil {
		s.WriteString(fmt.Sprintf("ARM9 stop at %08x ", *cond.ARM9))
	}
	if cond.ARM11 != nil {
		s.WriteString(fmt.Sprintf("ARM11 stop at %08x ", *cond.ARM11))
	}
	if cond.RequireAll {
		s.WriteString("(all) ")
	}
	if cond.MaxInstructions > 0 {
		s.WriteString(fmt.Sprintf("budget %d", cond.MaxInstructions))
	} else {
		s.WriteString("no budget")
	}
	return strings.TrimSpace(s.String())
}

// Outcome describes how and when the scheduler stopped.
type Outcome struct {
	Reason Reason

	// the core that stopped at its target or faulted. empty if the reason
	// does not belong to a single core
	Core string

	// the fault for DecodeFault and BusFault. the context error for
	// Interrupted
	Err error

	// instructions retired by both cores and the number of completed rounds
	Instructions uint64
	Rounds       uint64

	// cores that reached their target
	Reached []string
}

func (o Outcome) String() string {
	s := strings.Builder{}
	s.WriteString(o.Reason.String())
	if o.Core != "" {
		s.WriteString(fmt.Sprintf(" (%s)", o.Core))
	}
	s.WriteString(fmt.Sprintf(" after %d instructions in %d rounds", o.Instructions, o.Rounds))
	if o.Err != nil {
		s.WriteString(fmt.Sprintf(": %v", o.Err))
	}
	return s.String()
}

type slot struct {
	name   string
	core   Core
	target *uint32
	parked bool

	// a tight loop has been logged for the core
	looping bool
}

// Scheduler drives the cores and the DMA engines.
type Scheduler struct {
	slots   [2]slot
	engines []dma.Engine
	cond    StopCondition

	instructions uint64
	rounds       uint64

	done    bool
	outcome Outcome
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. A nil core is held and never stepped.
func NewScheduler(arm9 Core, arm11 Core, engines []dma.Engine, cond StopCondition) *Scheduler {
	s := &Scheduler{
		slots: [2]slot{
			{name: "ARM9", core: arm9, target: cond.ARM9},
			{name: "ARM11", core: arm11, target: cond.ARM11},
		},
		engines: engines,
		cond:    cond,
	}

	// a held core can never reach its target
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.core == nil && sl.target != nil {
			logger.Logf(logger.Allow, "scheduler", "%s is held and will never reach %08x", sl.name, *sl.target)
			sl.target = nil
		}
	}

	return s
}

// Instructions returns the number of instructions retired so far.
func (s *Scheduler) Instructions() uint64 {
	return s.instructions
}

// Rounds returns the number of completed rounds.
func (s *Scheduler) Rounds() uint64 {
	return s.rounds
}

// Done returns true if the scheduler has stopped. The Outcome is returned
// with the result.
func (s *Scheduler) Done() (Outcome, bool) {
	return s.outcome, s.done
}

func (s *Scheduler) stop(reason Reason, core string, err error) (Outcome, bool) {
	s.done = true
	s.outcome = Outcome{
		Reason:       reason,
		Core:         core,
		Err:          err,
		Instructions: s.instructions,
		Rounds:       s.rounds,
	}
	for _, sl := range s.slots {
		if sl.parked {
			s.outcome.Reached = append(s.outcome.Reached, sl.name)
		}
	}
	return s.outcome, true
}

// park the core if it has reached its target
func (s *Scheduler) park(sl *slot) bool {
	if sl.core == nil || sl.target == nil || sl.parked {
		return false
	}
	if sl.core.PC() != *sl.target {
		return false
	}
	sl.parked = true
	return true
}

// check the stop condition. the slots argument is the core that has just
// retired an instruction, or every core when the check is made before the
// first round
func (s *Scheduler) check(slots ...*slot) (Outcome, bool) {
	for _, sl := range slots {
		if s.park(sl) && !s.cond.RequireAll {
			return s.stop(StoppedAtPC, sl.name, nil)
		}
	}

	if s.cond.RequireAll {
		targets := 0
		parked := 0
		for _, sl := range s.slots {
			if sl.target != nil {
				targets++
				if sl.parked {
					parked++
				}
			}
		}
		if targets > 0 && parked == targets {
			return s.stop(StoppedAtPC, "", nil)
		}
	}

	if s.cond.MaxInstructions > 0 && s.instructions >= s.cond.MaxInstructions {
		return s.stop(InstructionBudgetExhausted, "", nil)
	}

	return Outcome{}, false
}

// Check evaluates the stop condition without running any instructions. This
// is the check made before the first round.
func (s *Scheduler) Check() (Outcome, bool) {
	if s.done {
		return s.outcome, true
	}
	return s.check(&s.slots[0], &s.slots[1])
}

// Round runs a single round. Returns true if the scheduler stopped during the
// round. Calling Round() after the scheduler has stopped has no effect.
func (s *Scheduler) Round() (Outcome, bool) {
	if s.done {
		return s.outcome, true
	}

	stepped := false

	for i := range s.slots {
		sl := &s.slots[i]
		if sl.core == nil || sl.parked {
			continue
		}
		stepped = true

		r, err := sl.core.Step()
		if err != nil {
			var df arm.DecodeFault
			if errors.As(err, &df) {
				return s.stop(DecodeFault, sl.name, err)
			}
			var bf arm.BusFault
			if errors.As(err, &bf) {
				return s.stop(BusFault, sl.name, err)
			}
			return s.stop(CoreError, sl.name, err)
		}
		s.instructions++

		if r.Discontinuity && r.NextPC == r.PC && !sl.looping {
			sl.looping = true
			logger.Logf(logger.Allow, "scheduler", "%s: tight loop at %08x after %d instructions", sl.name, r.PC, s.instructions)
		}

		if o, ok := s.check(sl); ok {
			return o, true
		}
	}

	if !stepped {
		return s.stop(Interrupted, "", curated.Errorf(NoRunnableCore))
	}

	for _, e := range s.engines {
		e.Tick()
	}
	s.rounds++

	return Outcome{}, false
}

// Run the scheduler until the stop condition is met, a core faults or the
// context is done.
func (s *Scheduler) Run(ctx context.Context) Outcome {
	if o, ok := s.Check(); ok {
		return o
	}

	for {
		if s.rounds%PerformanceBrake == 0 {
			select {
			case <-ctx.Done():
				o, _ := s.stop(Interrupted, "", ctx.Err())
				return o
			default:
			}
		}

		if o, ok := s.Round(); ok {
			return o
		}
	}
}
