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

//go:build !release

package paths_test

import (
	"os"
	"strings"
	"testing"

	"github.com/jetsetilly/threemu/paths"
	"github.com/jetsetilly/threemu/test"
)

func TestPaths(t *testing.T) {
	// resource paths are relative to the working directory in development
	// builds so move to a temporary directory
	t.Chdir(t.TempDir())

	pth, err := paths.ResourcePath("foo/bar", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".threemu/foo/bar/baz")

	_, err = os.Stat(".threemu/foo/bar")
	test.ExpectSuccess(t, err)

	pth, err = paths.ResourcePath("foo/bar", "")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".threemu/foo/bar")

	pth, err = paths.ResourcePath("", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".threemu/baz")

	pth, err = paths.ResourcePath("", "")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".threemu")
}

func TestUniqueFilename(t *testing.T) {
	fn := paths.UniqueFilename("screenshot", "spin")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "screenshot_spin_"))

	fn = paths.UniqueFilename("screenshot", "  ")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "screenshot_2"))
}
