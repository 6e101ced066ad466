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

//go:build !windows

package easyterm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/threemu/test"
)

func TestWrite(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "output"))
	test.DemandSuccess(t, err)
	defer f.Close()

	et := EasyTerm{output: f}
	n, err := et.Write([]byte("step\nrun\n"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 9)

	// cleaning up a terminal that was never opened is allowed
	et.CleanUp()

	b, err := os.ReadFile(f.Name())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(b), "step\r\nrun\r\n")

	test.ExpectFailure(t, IsTerminal(f))
}

func TestInitialise(t *testing.T) {
	var et EasyTerm
	test.ExpectFailure(t, et.Initialise("/dev/tty", nil))
	test.ExpectFailure(t, et.Initialise(filepath.Join(t.TempDir(), "missing"), os.Stdout))
}
