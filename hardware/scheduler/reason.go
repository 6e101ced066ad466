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

// Reason is the reason the scheduler stopped.
type Reason int

// List of valid Reason values.
const (
	Running Reason = iota
	StoppedAtPC
	InstructionBudgetExhausted
	DecodeFault
	BusFault
	Interrupted

	// an error from a core that is neither a decode fault nor a bus fault. for
	// example, a peripheral that fails a write for reasons of its own
	CoreError
)

func (r Reason) String() string {
	switch r {
	case Running:
		return "Running"
	case StoppedAtPC:
		return "StoppedAtPC"
	case InstructionBudgetExhausted:
		return "InstructionBudgetExhausted"
	case DecodeFault:
		return "DecodeFault"
	case BusFault:
		return "BusFault"
	case Interrupted:
		return "Interrupted"
	case CoreError:
		return "CoreError"
	}
	return "unknown reason"
}

// ParseReason is the inverse of Reason.String(). Returns false if the string
// is not a valid Reason.
func ParseReason(s string) (Reason, bool) {
	for r := Running; r <= CoreError; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return Running, false
}

// IsFault returns true if the reason is a fault of either core.
func (r Reason) IsFault() bool {
	return r == DecodeFault || r == BusFault || r == CoreError
}
