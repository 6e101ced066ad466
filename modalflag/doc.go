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

// Package modalflag parses command lines made of modes, each with its own
// flags. The threemu command line is an example:
//
//	threemu run -arm9stop 0x08000100 firm.bin
//	threemu regress add -notes "boot check" firm.bin
//
// Arguments are given once with NewArgs() and consumed a mode at a time.
// Every mode starts with NewMode(), adds its flags and sub-modes and then
// calls Parse():
//
//	md := &modalflag.Modes{Output: os.Stdout, Program: "threemu"}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "REGRESS")
//	if p, err := md.Parse(); p != modalflag.ParseContinue {
//		return err
//	}
//
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		budget := md.AddUint64("max", 0, "instruction budget")
//		...
//	}
//
// The first sub-mode is the default and is selected when the next argument
// names no mode. Sub-modes are matched without regard to case and Mode()
// returns them in upper case.
//
// A -help flag is understood by every mode. The help lists the flags and
// sub-modes of the current mode and Parse() returns ParseHelp.
//
// Address and Strings are flag values for 32bit addresses and repeatable
// flags.
package modalflag
