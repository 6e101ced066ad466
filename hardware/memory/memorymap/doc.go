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

// Package memorymap describes the physical address space shared by the two
// cores. The bus is built from these values at construction time.
//
// Every region has an Access value that says which of the two cores can see
// it. Bus masters other than the cores (the DMA engines and the loader) use
// the Access value of the core they belong to.
//
// The Summary() function returns a printable list of the named regions:
//
//	fmt.Print(memorymap.Summary())
package memorymap
