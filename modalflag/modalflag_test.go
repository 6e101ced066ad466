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
	"strings"
	"testing"

	"github.com/jetsetilly/threemu/modalflag"
	"github.com/jetsetilly/threemu/test"
)

func TestNoModesNoFlags(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{})

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "")
	test.ExpectEquality(t, md.Path(), "")
}

func TestNoModes(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"-trace", "1", "2"})
	trace := md.AddBool("trace", false, "log every instruction")
	test.ExpectFailure(t, *trace)

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "")
	test.ExpectSuccess(t, *trace)
	test.ExpectEquality(t, len(md.RemainingArgs()), 2)
	test.ExpectEquality(t, md.GetArg(1), "2")
	test.ExpectEquality(t, md.GetArg(2), "")
}

func TestUnknownFlag(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"-arm12stop", "0"})

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseError)
	test.ExpectFailure(t, err)

	// with sub-modes the default mode is selected and the arguments are left
	// for that mode to parse
	md.NewArgs([]string{"-max", "10", "image.bin"})
	md.AddSubModes("run", "info")
	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "RUN")

	md.NewMode()
	budget := md.AddUint64("max", 0, "instruction budget")
	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, *budget, uint64(10))
	test.ExpectEquality(t, md.GetArg(0), "image.bin")
}

func TestSubModes(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"regress", "delete", "-yes", "3"})
	md.AddSubModes("RUN", "REGRESS")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "REGRESS")

	md.NewMode()
	md.AddSubModes("run", "list", "delete")
	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "DELETE")
	test.ExpectEquality(t, md.Path(), "REGRESS/DELETE")
	test.ExpectEquality(t, md.String(), "REGRESS/DELETE")

	md.NewMode()
	yes := md.AddBool("yes", false, "answer yes to confirmation")
	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, *yes)
	test.DemandEquality(t, len(md.RemainingArgs()), 1)
	test.ExpectEquality(t, md.GetArg(0), "3")
}

func TestDefaultSubMode(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"firm.bin"})
	md.AddSubModes("RUN", "INFO")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "RUN")

	// the argument was not a mode so it remains for the next mode
	md.NewMode()
	_, err = md.Parse()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.GetArg(0), "firm.bin")
}

func TestHelpEmpty(t *testing.T) {
	var out strings.Builder
	md := modalflag.Modes{Output: &out}
	md.NewArgs([]string{"-help"})

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, out.String(), "usage:\n")
}

func TestHelpFlags(t *testing.T) {
	var out strings.Builder
	md := modalflag.Modes{Output: &out, Program: "threemu"}
	md.NewArgs([]string{"-help"})
	md.AddBool("trace", true, "log every instruction")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	test.ExpectEquality(t, out.String(), "usage: threemu [flags]\n"+
		"  -trace\n"+
		"    \tlog every instruction (default true)\n")
}

func TestHelpModes(t *testing.T) {
	var out strings.Builder
	md := modalflag.Modes{Output: &out, Program: "threemu"}
	md.NewArgs([]string{"-help"})
	md.AddSubModes("RUN", "STEP", "INFO")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	test.ExpectEquality(t, out.String(), "usage: threemu [mode]\n"+
		"modes: RUN, STEP, INFO (default RUN)\n")
}

func TestHelpNestedMode(t *testing.T) {
	var out strings.Builder
	md := modalflag.Modes{Output: &out, Program: "threemu"}
	md.NewArgs([]string{"regress", "-help"})
	md.AddSubModes("RUN", "REGRESS")
	_, err := md.Parse()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "")

	md.NewMode()
	md.AddBool("verbose", false, "output more detail")
	md.AddSubModes("RUN", "LIST")
	md.AdditionalHelp("Runs every regression entry.")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	test.ExpectEquality(t, out.String(), "usage: threemu regress [flags] [mode]\n"+
		"  -verbose\n"+
		"    \toutput more detail\n"+
		"modes: RUN, LIST (default RUN)\n"+
		"\n"+
		"Runs every regression entry.\n")
}
