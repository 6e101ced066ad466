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
	"fmt"
	"os"

	pterm "github.com/pkg/term"
	"golang.org/x/term"
)

// EasyTerm is the main container for posix terminals. Key presses are read
// from the controlling terminal, which can be put into raw mode.
type EasyTerm struct {
	tty    *pterm.Term
	output *os.File
}

// Initialise the terminal. The device is usually "/dev/tty".
func (et *EasyTerm) Initialise(device string, output *os.File) error {
	if output == nil {
		return fmt.Errorf("easyterm: an output file is required")
	}

	tty, err := pterm.Open(device)
	if err != nil {
		return fmt.Errorf("easyterm: %w", err)
	}

	et.tty = tty
	et.output = output

	return nil
}

// CleanUp restores the terminal to the mode it was in when the terminal was
// initialised and closes the device.
func (et *EasyTerm) CleanUp() {
	if et.tty == nil {
		return
	}
	_ = et.tty.Restore()
	_ = et.tty.Close()
	et.tty = nil
}

// RawMode puts terminal into raw mode.
func (et *EasyTerm) RawMode() error {
	return et.tty.SetRaw()
}

// CBreakMode puts terminal into cbreak mode.
func (et *EasyTerm) CBreakMode() error {
	return et.tty.SetCbreak()
}

// CanonicalMode restores the terminal to the mode it was in when it was
// initialised.
func (et *EasyTerm) CanonicalMode() error {
	return et.tty.Restore()
}

// Read implements the io.Reader interface. In raw mode every key press is
// returned as it is pressed.
func (et *EasyTerm) Read(p []byte) (int, error) {
	return et.tty.Read(p)
}

// Write implements the io.Writer interface. Newlines are converted to
// carriage-return/newline pairs because the terminal does not do that in raw
// mode.
func (et *EasyTerm) Write(p []byte) (int, error) {
	q := make([]byte, 0, len(p))
	for _, b := range p {
		if b == '\n' {
			q = append(q, '\r')
		}
		q = append(q, b)
	}
	if _, err := et.output.Write(q); err != nil {
		return 0, err
	}
	return len(p), nil
}

// IsTerminal returns true if the file is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
