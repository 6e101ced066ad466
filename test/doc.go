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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The ExpectFailure and ExpectSuccess functions test for failure and success
// under generic conditions. The documentation for those functions describe the
// currently supported types.
//
// It is worth describing how the "Expect" functions handle the nil type
// because it is not obvious. The nil type is considered a success and
// consequently will cause ExpectFailure to fail and ExpectSuccess to succeed.
// This may not be how we want to interpret nil in all situations but because
// of how errors usually works (nil to indicate no error) we *need* to
// interpret nil in this way.
//
// ExpectEquality and ExpectInequality compare like-typed values. The Demand
// functions are the same as the Expect functions except that a failure is a
// testing fatality.
//
// All Expect and Demand functions accept an optional list of tags. The tags
// are printed at the start of a failure message, which is useful for
// identifying the failing iteration of a table driven test.
//
// CappedWriter captures the start of some output and RingWriter captures the
// end of it. Both are io.Writers that never report a short write, so they can
// stand in for a log or trace destination.
package test
