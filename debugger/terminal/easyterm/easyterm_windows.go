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

//go:build windows

package easyterm

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// EasyTerm is not supported on windows.
type EasyTerm struct{}

// Initialise always fails on windows.
func (et *EasyTerm) Initialise(device string, output *os.File) error {
	return fmt.Errorf("easyterm: not supported on windows")
}

// CleanUp does nothing on windows.
func (et *EasyTerm) CleanUp() {}

// RawMode does nothing on windows.
func (et *EasyTerm) RawMode() error { return nil }

// CBreakMode does nothing on windows.
func (et *EasyTerm) CBreakMode() error { return nil }

// CanonicalMode does nothing on windows.
func (et *EasyTerm) CanonicalMode() error { return nil }

// Read implements the io.Reader interface.
func (et *EasyTerm) Read(p []byte) (int, error) { return 0, fmt.Errorf("easyterm: not supported on windows") }

// Write implements the io.Writer interface.
func (et *EasyTerm) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

