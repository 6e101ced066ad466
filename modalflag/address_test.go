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

package modalflag_test

import (
	"os"
	"testing"

	"github.com/jetsetilly/threemu/modalflag"
	"github.com/jetsetilly/threemu/test"
)

func TestParseAddress(t *testing.T) {
	v, err := modalflag.ParseAddress("0xF0000000")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0xf0000000))

	v, err = modalflag.ParseAddress("1234")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(1234))

	_, err = modalflag.ParseAddress("0x100000000")
	test.ExpectFailure(t, err)

	_, err = modalflag.ParseAddress("banana")
	test.ExpectFailure(t, err)
}

func TestAddressFlag(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"-arm9stop", "0x08000010", "firm.bin"})
	arm9 := md.AddAddress("arm9stop", "stop address")
	arm11 := md.AddAddress("arm11stop", "stop address")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, arm9.Valid())
	test.ExpectEquality(t, *arm9.Value(), uint32(0x08000010))
	test.ExpectFailure(t, arm11.Valid())
	test.ExpectEquality(t, arm11.Value(), nil)
	test.ExpectEquality(t, md.GetArg(0), "firm.bin")
}

func TestStringsFlag(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"-poke", "0x10000000=1", "-poke", "0x10000004/2=2", "firm.bin"})
	pokes := md.AddStrings("poke", "poke value")
	captures := md.AddStrings("capture", "capture range")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(*pokes), 2)
	test.ExpectEquality(t, (*pokes)[0], "0x10000000=1")
	test.ExpectEquality(t, (*pokes)[1], "0x10000004/2=2")
	test.ExpectEquality(t, pokes.String(), "0x10000000=1,0x10000004/2=2")
	test.ExpectEquality(t, len(*captures), 0)
	test.ExpectEquality(t, md.GetArg(0), "firm.bin")
}
