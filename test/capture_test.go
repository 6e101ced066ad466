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

package test_test

import (
	"testing"

	"github.com/jetsetilly/threemu/test"
)

func TestCappedWriter(t *testing.T) {
	_, err := test.NewCappedWriter(0)
	test.ExpectFailure(t, err)

	w, err := test.NewCappedWriter(8)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, w.String(), "")

	n, err := w.Write([]byte("arm9"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 4)
	test.ExpectFailure(t, w.Truncated())

	// a write that crosses the cap is reported in full
	n, err = w.Write([]byte("arm11"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 5)
	test.ExpectEquality(t, w.String(), "arm9arm1")
	test.ExpectSuccess(t, w.Truncated())

	n, _ = w.Write([]byte("x"))
	test.ExpectEquality(t, n, 1)
	test.ExpectEquality(t, w.String(), "arm9arm1")

	w.Reset()
	test.ExpectEquality(t, w.String(), "")
	test.ExpectFailure(t, w.Truncated())
	w.Write([]byte("12345678"))
	test.ExpectEquality(t, w.String(), "12345678")
	test.ExpectFailure(t, w.Truncated())
}

func TestRingWriter(t *testing.T) {
	_, err := test.NewRingWriter(-1)
	test.ExpectFailure(t, err)

	r, err := test.NewRingWriter(10)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.String(), "")

	r.Write([]byte("abcde"))
	test.ExpectEquality(t, r.String(), "abcde")
	r.Write([]byte("fgh"))
	test.ExpectEquality(t, r.String(), "abcdefgh")

	// exactly full
	r.Write([]byte("ij"))
	test.ExpectEquality(t, r.String(), "abcdefghij")

	// oldest bytes are dropped
	r.Write([]byte("kl"))
	test.ExpectEquality(t, r.String(), "cdefghijkl")
	r.Write([]byte("mn"))
	test.ExpectEquality(t, r.String(), "efghijklmn")

	// partial fill followed by a wrap in the same write
	r.Reset()
	r.Write([]byte("abcdefgh"))
	r.Write([]byte("ijklm"))
	test.ExpectEquality(t, r.String(), "defghijklm")

	// a write of the ring size or more keeps only its own tail
	r.Write([]byte("1234567890"))
	test.ExpectEquality(t, r.String(), "1234567890")
	r.Write([]byte("1234567890ABC"))
	test.ExpectEquality(t, r.String(), "4567890ABC")

	r.Reset()
	test.ExpectEquality(t, r.String(), "")
	n, err := r.Write([]byte("1234567890ABC"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 13)
	test.ExpectEquality(t, r.String(), "4567890ABC")
}

func TestRingWriterLines(t *testing.T) {
	r, err := test.NewRingWriter(16)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(r.Lines()), 0)

	r.Write([]byte("step 1\nstep 2\nstep 3\n"))
	lines := r.Lines()
	test.DemandEquality(t, len(lines), 3)
	test.ExpectEquality(t, lines[0], "1")
	test.ExpectEquality(t, lines[2], "step 3")
}
