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

package memorymap

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Region is a named area of the address space and the cores that can see it.
type Region struct {
	Label  string
	Area   Area
	Access Access
}

// RAMRegions lists the RAM of the console.
var RAMRegions = []Region{
	{Label: "ARM9 WRAM", Area: ARM9PrivateWRAM, Access: ARM9},
	{Label: "ARM9 internal", Area: ARM9Internal, Access: ARM9},
	{Label: "VRAM", Area: VRAM, Access: Both},
	{Label: "AXI WRAM", Area: AXIWRAM, Access: Both},
	{Label: "FCRAM", Area: FCRAM, Access: Both},
}

// PeripheralRegions lists the register windows of the console. The generic
// IO windows that fill the gaps between the register windows are not
// included.
var PeripheralRegions = []Region{
	{Label: "NDMA", Area: NDMA, Access: ARM9},
	{Label: "SDMMC", Area: SDMMC, Access: Both},
	{Label: "XDMA", Area: XDMA, Access: ARM9},
	{Label: "GPU", Area: GPU, Access: ARM11},
	{Label: "bootrom", Area: Bootrom, Access: Both},
}

// Summary returns a single multiline string detailing all the named regions
// in address order. Useful for reference.
func Summary() string {
	all := slices.Concat(RAMRegions, PeripheralRegions)
	slices.SortFunc(all, func(a, b Region) int {
		return cmp.Compare(a.Area.Origin, b.Area.Origin)
	})

	s := strings.Builder{}
	for _, r := range all {
		s.WriteString(fmt.Sprintf("%s\t%-14s %s\n", r.Area.String(), r.Label, r.Access))
	}

	return s.String()
}
