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

// Package debugger implements the interactive STEP mode. The session is
// advanced one scheduler round at a time, or a counted number of rounds, in
// response to single key presses. Every instruction retired during a round is
// disassembled and printed.
//
// Keys:
//
//	s, space, return   step one round. prefix with a number to step that
//	                   many rounds, eg. 100s
//	r                  run until the stop condition is met
//	i                  print the registers of both cores
//	l                  print the most recent log entries
//	h, ?               help
//	q, ctrl-c          quit
//
// The debugger reads keys from any io.Reader. The easyterm sub-package of the
// terminal package supplies a reader for a terminal in raw mode.
package debugger
