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

package modalflag

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// Modes parses a command line one mode at a time. Each mode has its own set
// of flags and an optional list of sub-modes, the first of which is the
// default.
type Modes struct {
	// help is written here. nothing is written if Output is nil
	Output io.Writer

	// Program is the first word of the usage line. it can be left empty
	Program string

	args []string
	next int

	// reset by every call to NewMode()
	flags *flag.FlagSet
	modes []string
	help  string

	// modes selected so far. never reset
	path []string
}

// String returns the selected modes separated by a slash.
func (md *Modes) String() string {
	return md.Path()
}

// Mode is the most recently selected mode.
func (md *Modes) Mode() string {
	if len(md.path) == 0 {
		return ""
	}
	return md.path[len(md.path)-1]
}

// Path returns the selected modes separated by a slash.
func (md *Modes) Path() string {
	return strings.Join(md.path, "/")
}

// NewArgs sets the command line to parse and starts the first mode.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.next = 0
	md.NewMode()
}

// NewMode discards the flags and sub-modes of the current mode. Arguments
// consumed by earlier calls to Parse() stay consumed.
func (md *Modes) NewMode() {
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.flags.SetOutput(io.Discard)
	md.flags.Usage = func() {}
	md.modes = md.modes[:0]
	md.help = ""
}

// AdditionalHelp is printed after the flag and sub-mode summary.
func (md *Modes) AdditionalHelp(help string) {
	md.help = help
}

// ParseResult says how the caller should proceed after Parse().
type ParseResult int

// List of valid ParseResult values.
const (
	// the flags have been set and, if sub-modes were added, Mode() has
	// changed
	ParseContinue ParseResult = iota

	// help has been written to Output. the caller should stop without
	// printing anything further
	ParseHelp

	// the error returned alongside should be reported
	ParseError
)

// Parse the arguments of the current mode.
//
// If sub-modes have been added then the first argument after the flags
// selects one of them. When that argument is not a sub-mode, or when the
// flags could not be parsed, the default sub-mode is selected and the
// arguments are left for the next mode to parse.
func (md *Modes) Parse() (ParseResult, error) {
	err := md.flags.Parse(md.args[md.next:])
	if errors.Is(err, flag.ErrHelp) {
		if md.Output != nil {
			io.WriteString(md.Output, md.usage())
		}
		return ParseHelp, nil
	}

	if len(md.modes) == 0 {
		if err != nil {
			return ParseError, err
		}
		return ParseContinue, nil
	}

	mode := md.modes[0]
	if err == nil {
		arg := strings.ToUpper(md.flags.Arg(0))
		for _, m := range md.modes {
			if m == arg {
				mode = m
				md.next = len(md.args) - md.flags.NArg() + 1
				break // for loop
			}
		}
	}
	md.path = append(md.path, mode)

	return ParseContinue, nil
}

// usage builds the help text for the current mode.
func (md *Modes) usage() string {
	var numFlags int
	md.flags.VisitAll(func(_ *flag.Flag) {
		numFlags++
	})

	var s strings.Builder

	s.WriteString("usage:")
	if md.Program != "" {
		s.WriteString(" ")
		s.WriteString(md.Program)
	}
	for _, m := range md.path {
		s.WriteString(" ")
		s.WriteString(strings.ToLower(m))
	}
	if numFlags > 0 {
		s.WriteString(" [flags]")
	}
	if len(md.modes) > 0 {
		s.WriteString(" [mode]")
	}
	s.WriteString("\n")

	if numFlags > 0 {
		md.flags.SetOutput(&s)
		md.flags.PrintDefaults()
		md.flags.SetOutput(io.Discard)
	}

	if len(md.modes) > 0 {
		fmt.Fprintf(&s, "modes: %s (default %s)\n", strings.Join(md.modes, ", "), md.modes[0])
	}

	if md.help != "" {
		s.WriteString("\n")
		s.WriteString(md.help)
		s.WriteString("\n")
	}

	return s.String()
}

// RemainingArgs are the arguments left after the flags and any sub-mode.
func (md *Modes) RemainingArgs() []string {
	return md.flags.Args()
}

// GetArg returns the numbered remaining argument or the empty string.
func (md *Modes) GetArg(i int) string {
	return md.flags.Arg(i)
}

// AddSubModes adds to the list of modes the next argument can select. The
// first mode ever added is the default. Comparison is case insensitive and
// Mode() always returns the upper case form.
func (md *Modes) AddSubModes(modes ...string) {
	for _, m := range modes {
		md.modes = append(md.modes, strings.ToUpper(m))
	}
}

// AddBool flag for next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddDuration flag for next call to Parse().
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// AddInt flag for next call to Parse().
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddString flag for next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddUint64 flag for next call to Parse().
func (md *Modes) AddUint64(name string, value uint64, usage string) *uint64 {
	return md.flags.Uint64(name, value, usage)
}
