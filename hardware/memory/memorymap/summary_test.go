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

package memorymap_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/test"
)

func TestSummary(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(memorymap.Summary()), "\n")
	test.DemandEquality(t, len(lines), len(memorymap.RAMRegions)+len(memorymap.PeripheralRegions))
	test.ExpectSuccess(t, strings.HasPrefix(lines[0], "01ff8000-01ffffff\tARM9 WRAM"))
	test.ExpectSuccess(t, strings.HasPrefix(lines[len(lines)-1], "ffff0000-ffffffff\tbootrom"))
	test.ExpectSuccess(t, strings.HasSuffix(lines[len(lines)-1], "ARM9+ARM11"))
}

func TestNoOverlap(t *testing.T) {
	all := append(append([]memorymap.Region{}, memorymap.RAMRegions...), memorymap.PeripheralRegions...)
	all = append(all, memorymap.Region{Label: "unused", Area: memorymap.Unused})

	for i, a := range all {
		for _, b := range all[i+1:] {
			overlap := a.Area.Contains(b.Area.Origin) || b.Area.Contains(a.Area.Origin)
			test.ExpectEquality(t, overlap, false, a.Label, b.Label)
		}
	}
}

func TestTestAddresses(t *testing.T) {
	for _, r := range append(memorymap.RAMRegions, memorymap.PeripheralRegions...) {
		test.ExpectEquality(t, r.Area.Contains(memorymap.TestPass), false, r.Label)
		test.ExpectEquality(t, r.Area.Contains(memorymap.TestFail), false, r.Label)
	}
	test.ExpectEquality(t, memorymap.ARM9Internal.Contains(memorymap.ARM9VectorTable), true)
	test.ExpectEquality(t, memorymap.AXIWRAM.Contains(memorymap.ARM11VectorTable+0x2f), true)
}

func TestAccess(t *testing.T) {
	test.ExpectEquality(t, memorymap.Both.Sees(memorymap.ARM9), true)
	test.ExpectEquality(t, memorymap.ARM9.Sees(memorymap.ARM11), false)
	test.ExpectEquality(t, memorymap.GPU.Contains(memorymap.GPU.Memtop()), true)
	test.ExpectEquality(t, memorymap.GPU.Contains(memorymap.GPU.Memtop()+1), false)
}
