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

// Package scheduler interleaves the two cores and the DMA engines.
//
// Execution proceeds in rounds. In each round the ARM9 executes one
// instruction, then the ARM11 executes one instruction, then every DMA engine
// is ticked once. The order never changes so two sessions with the same
// inputs retire the same instructions in the same order.
//
// The StopCondition is evaluated once before the first round and again after
// every instruction. A core with no entry point (a held core) is never
// stepped.
package scheduler
