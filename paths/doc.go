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

// Package paths contains functions to prepare paths to threemu resources.
//
// The ResourcePath() function modifies the supplied resource string such that
// it is prepended with the appropriate config directory. For example, the
// following will return the path to the regression database.
//
//	d, err := paths.ResourcePath("", "regressionDB")
//
// In development builds the base resource path is ".threemu" in the current
// working directory. Release builds (built with the "release" tag) use the
// user's config directory as returned by os.UserConfigDir().
//
// In the example above, on a modern Linux system, the release build path will
// be:
//
//	/home/user/.config/threemu/regressionDB
//
// Any missing directories are created.
package paths
