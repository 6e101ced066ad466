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

package regression_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/imageloader"
	"github.com/jetsetilly/threemu/regression"
	"github.com/jetsetilly/threemu/session"
	"github.com/jetsetilly/threemu/test"
)

func words(w ...uint32) []byte {
	b := make([]byte, 0, len(w)*4)
	for _, v := range w {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return b
}

// writes a known value to FCRAM and then spins
var minimal = words(
	0xe59f000c, // ldr r0,[pc,#12]
	0xe59f100c, // ldr r1,[pc,#12]
	0xe5810000, // str r0,[r1]
	0xeafffffe, // b .
	0x00000000,
	0x600df00d,
	memorymap.FCRAM.Origin,
)

// the resource directory is relative to the working directory in development
// builds. every test gets its own
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func newRegression(t *testing.T, dir string) *regression.SessionRegression {
	t.Helper()

	fn := filepath.Join(dir, "minimal.bin")
	test.DemandSuccess(t, os.WriteFile(fn, minimal, 0o644))

	stop := memorymap.ARM9Internal.Origin + 0x0c
	reg := regression.NewSessionRegression(imageloader.NewLoader(fn, "raw"))
	reg.Stop = scheduler.StopCondition{ARM9: &stop, MaxInstructions: 1000}
	reg.Captures = []session.Capture{{Address: memorymap.FCRAM.Origin, Length: 4}}
	reg.Pokes = []session.Poke{{Address: memorymap.FCRAM.Origin + 0x100, Width: 2, Value: 0xbeef}}
	reg.Notes = "minimal"
	return reg
}

func TestAddAndRun(t *testing.T) {
	dir := workspace(t)

	var out strings.Builder
	reg := newRegression(t, dir)
	test.DemandSuccess(t, regression.RegressAdd(context.Background(), &out, reg))
	test.ExpectSuccess(t, strings.Contains(out.String(), "added: [session] minimal"))
	test.ExpectEquality(t, reg.Reason, scheduler.StoppedAtPC)
	test.ExpectInequality(t, reg.Digest, "")
	test.ExpectInequality(t, reg.Image.Hash, "")

	out.Reset()
	test.ExpectSuccess(t, regression.RegressList(&out))
	test.ExpectSuccess(t, strings.HasPrefix(out.String(), "000 [session] minimal"))
	test.ExpectSuccess(t, strings.Contains(out.String(), "Total: 1"))

	out.Reset()
	n, err := regression.RegressRun(context.Background(), &out, true, nil)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 0)
	test.ExpectSuccess(t, strings.Contains(out.String(), "succeed: 000"))
	test.ExpectSuccess(t, strings.Contains(out.String(), "1 succeed, 0 fail, 0 skipped"))
}

func TestModifiedImage(t *testing.T) {
	dir := workspace(t)

	var out strings.Builder
	test.DemandSuccess(t, regression.RegressAdd(context.Background(), &out, newRegression(t, dir)))

	// change the value written to FCRAM. the hash of the image no longer
	// matches
	modified := append([]byte{}, minimal...)
	modified[20] = 0x0e
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "minimal.bin"), modified, 0o644))

	out.Reset()
	n, err := regression.RegressRun(context.Background(), &out, true, nil)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 1)
	test.ExpectSuccess(t, strings.Contains(out.String(), "ERROR: 000"))

	// the failure is remembered
	out.Reset()
	n, err = regression.RegressRun(context.Background(), &out, false, []string{"FAILS"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 1)

	// filtering on a key that is not the failing entry
	out.Reset()
	n, err = regression.RegressRun(context.Background(), &out, false, []string{"1"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 0)
	test.ExpectSuccess(t, strings.Contains(out.String(), "0 succeed, 0 fail, 1 skipped"))

	_, err = regression.RegressRun(context.Background(), &out, false, []string{"foo"})
	test.ExpectFailure(t, err)
}

func TestScript(t *testing.T) {
	dir := workspace(t)

	script := filepath.Join(dir, "check.lua")
	test.DemandSuccess(t, os.WriteFile(script, []byte(`
return result.reason == "StoppedAtPC" and
	result.core == "ARM9" and
	result.instructions == 3 and
	result.reached[1] == "ARM9" and
	result.arm9.r0 == 0x600df00d and
	result.read(0x20000000) == 0x600df00d and
	result.read(0x20000002, 2) == 0x600d and
	result.read(0x30000000) == nil
`), 0o644))

	reg := newRegression(t, dir)
	reg.Script = script

	var out strings.Builder
	test.DemandSuccess(t, regression.RegressAdd(context.Background(), &out, reg))

	// the script has been copied
	test.ExpectInequality(t, reg.Script, script)
	_, err := os.Stat(reg.Script)
	test.ExpectSuccess(t, err)

	out.Reset()
	n, err := regression.RegressRun(context.Background(), &out, true, nil)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 0)

	// deleting the entry removes the copy of the script
	out.Reset()
	test.ExpectSuccess(t, regression.RegressDelete(&out, strings.NewReader("y\n"), "0"))
	_, err = os.Stat(reg.Script)
	test.ExpectSuccess(t, os.IsNotExist(err))

	out.Reset()
	test.ExpectSuccess(t, regression.RegressList(&out))
	test.ExpectEquality(t, out.String(), "database is empty\n")
}

func TestFailingScript(t *testing.T) {
	dir := workspace(t)

	script := filepath.Join(dir, "check.lua")
	test.DemandSuccess(t, os.WriteFile(script, []byte(`return result.reason == "BusFault"`), 0o644))

	reg := newRegression(t, dir)
	reg.Script = script

	var out strings.Builder
	test.ExpectFailure(t, regression.RegressAdd(context.Background(), &out, reg))

	out.Reset()
	test.ExpectSuccess(t, regression.RegressList(&out))
	test.ExpectEquality(t, out.String(), "database is empty\n")

	// a script that fails to compile is an error
	test.DemandSuccess(t, os.WriteFile(script, []byte(`return (`), 0o644))
	reg = newRegression(t, dir)
	reg.Script = script
	test.ExpectFailure(t, regression.RegressAdd(context.Background(), &out, reg))
}

func TestNoBudget(t *testing.T) {
	dir := workspace(t)

	reg := newRegression(t, dir)
	reg.Stop.MaxInstructions = 0

	var out strings.Builder
	test.ExpectFailure(t, regression.RegressAdd(context.Background(), &out, reg))
}

func TestDeleteDeclined(t *testing.T) {
	dir := workspace(t)

	var out strings.Builder
	test.DemandSuccess(t, regression.RegressAdd(context.Background(), &out, newRegression(t, dir)))

	out.Reset()
	test.ExpectSuccess(t, regression.RegressDelete(&out, strings.NewReader("n\n"), "0"))
	test.ExpectFailure(t, regression.RegressDelete(&out, strings.NewReader("y\n"), "1"))
	test.ExpectFailure(t, regression.RegressDelete(&out, strings.NewReader("y\n"), "foo"))

	out.Reset()
	test.ExpectSuccess(t, regression.RegressList(&out))
	test.ExpectSuccess(t, strings.Contains(out.String(), "Total: 1"))
}
