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

package cp15_test

import (
	"testing"

	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/cpu/cp15"
	"github.com/jetsetilly/threemu/test"
)

func TestInterface(t *testing.T) {
	test.ExpectImplements[arm.Coprocessor](t, cp15.NewARM946())
	test.ExpectImplements[arm.Coprocessor](t, cp15.NewMPCore(0))
}

func TestARM946Reset(t *testing.T) {
	cp := cp15.NewARM946()
	test.ExpectSuccess(t, cp.HighVectors())
	test.ExpectFailure(t, cp.UnalignedAccess())
	test.ExpectEquality(t, cp.MRC(0, 0, 0, 0), uint32(0x41059461))

	_, _, enabled := cp.ITCM()
	test.ExpectFailure(t, enabled)
	_, _, enabled = cp.DTCM()
	test.ExpectFailure(t, enabled)
}

func TestTCMRegion(t *testing.T) {
	cp := cp15.NewARM946()

	// DTCM at 0xfff00000, 16KB
	cp.MCR(0, 9, 1, 0, 0xfff0000a)

	// ITCM at 0x00000000, 128MB (the 32KB of ITCM mirrored)
	cp.MCR(0, 9, 1, 1, 0x00000024)

	cp.MCR(0, 1, 0, 0, cp.MRC(0, 1, 0, 0)|cp15.ControlDTCM|cp15.ControlITCM)

	base, size, enabled := cp.DTCM()
	test.ExpectEquality(t, base, uint32(0xfff00000))
	test.ExpectEquality(t, size, uint32(16*1024))
	test.ExpectSuccess(t, enabled)

	base, size, enabled = cp.ITCM()
	test.ExpectEquality(t, base, uint32(0x00000000))
	test.ExpectEquality(t, size, uint32(128*1024*1024))
	test.ExpectSuccess(t, enabled)

	// region registers read back
	test.ExpectEquality(t, cp.MRC(0, 9, 1, 0), uint32(0xfff0000a))
}

func TestUnknownRegisters(t *testing.T) {
	cp := cp15.NewARM946()
	cp.MCR(0, 15, 0, 0, 0x1234)
	test.ExpectEquality(t, cp.MRC(0, 15, 0, 0), uint32(0))

	// wait for interrupt is accepted and does nothing
	cp.MCR(0, 7, 0, 4, 0)
}

func TestMPCore(t *testing.T) {
	cp := cp15.NewMPCore(1)
	test.ExpectSuccess(t, cp.HighVectors())
	test.ExpectFailure(t, cp.UnalignedAccess())
	test.ExpectEquality(t, cp.MRC(0, 0, 0, 5), uint32(1))

	cp.MCR(0, 1, 0, 0, cp.MRC(0, 1, 0, 0)|cp15.ControlUnaligned)
	test.ExpectSuccess(t, cp.UnalignedAccess())

	cp.MCR(0, 2, 0, 0, 0x1ff80000)
	test.ExpectEquality(t, cp.MRC(0, 2, 0, 0), uint32(0x1ff80000))

	cp.MCR(0, 13, 0, 3, 0xcafe)
	test.ExpectEquality(t, cp.MRC(0, 13, 0, 3), uint32(0xcafe))

	cp.MCR(0, 1, 0, 0, cp.MRC(0, 1, 0, 0)&^cp15.ControlHighVectors)
	test.ExpectFailure(t, cp.HighVectors())
}
