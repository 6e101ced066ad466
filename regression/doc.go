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

// Package regression facilitates the regression testing of emulation code. By
// adding session results to a database, the sessions can be rerun
// automatically and checked for consistency.
//
// Each entry in the database describes a session: the boot image, the SD card,
// the stop condition and any pokes and memory captures. When the entry is
// added the session is run and the terminal reason and digest of the final
// machine state are recorded. Rerunning the entry must produce the same
// reason and digest.
//
// An entry can also name a Lua script. The script is copied into the
// regression scripts directory when the entry is added and is run after every
// session with a global table called result:
//
//	result.reason        terminal reason ("StoppedAtPC", "BusFault", etc.)
//	result.core          core that stopped or faulted
//	result.instructions  number of instructions executed
//	result.rounds        number of scheduler rounds
//	result.digest        digest of the final machine state
//	result.reached       array of cores that reached their target
//	result.arm9          table of registers: r0 to r15, cpsr and spsr
//	result.arm11         as above for the ARM11
//	result.read(a, w)    value of width w (default 4) at address a in the
//	                     captured memory. nil if not captured
//
// The script must return true for the regression to succeed. For example:
//
//	return result.reason == "StoppedAtPC" and result.read(0x20000000) == 0x600df00d
//
// Sessions are run in parallel with the number of concurrent sessions limited
// to the number of CPUs.
package regression
