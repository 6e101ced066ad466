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

package hardware

import (
	"context"

	"github.com/jetsetilly/threemu/hardware/scheduler"
)

// NewScheduler creates a scheduler for the console. Cores that were held by
// the last call to Boot() are not given to the scheduler.
func (con *Console) NewScheduler(cond scheduler.StopCondition) *scheduler.Scheduler {
	var c9, c11 scheduler.Core
	if !con.heldARM9 {
		c9 = con.ARM9
	}
	if !con.heldARM11 {
		c11 = con.ARM11
	}
	return scheduler.NewScheduler(c9, c11, con.Engines(), cond)
}

// Run the console until the stop condition is met, a core faults or the
// context is done.
func (con *Console) Run(ctx context.Context, cond scheduler.StopCondition) scheduler.Outcome {
	return con.NewScheduler(cond).Run(ctx)
}
