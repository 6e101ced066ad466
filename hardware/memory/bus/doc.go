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

// Package bus is the single arbiter of the physical address space. Every
// load and store by either core, by the DMA engines and by the boot loader
// passes through a Port onto the Bus.
//
// The Bus is a table of non-overlapping entries. An entry is either a RAM
// region or a peripheral window. Entries are added before the Bus is sealed
// and never change afterwards.
//
// Each bus master gets its own Port. The Port carries the master's name and
// the access flag that the master must hold for an access to succeed. An
// access that hits no entry, or that hits an entry without the master's flag,
// results in a Fault. So does an access that runs past the end of its region.
// RAM accepts unaligned accesses but a peripheral window does not. The Fault records the
// master, the address and the kind of failure.
//
// Dump() reads a range of RAM without going through a Port. It does not touch
// peripherals and so has no side effects. It is intended for inspection of
// the memory once a session has finished.
package bus
