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

package regression

import (
	"github.com/jetsetilly/threemu/imageloader"
	"github.com/jetsetilly/threemu/paths"
)

// create a unique filename from a Loader instance. used when saving scripts
// into the regressionScripts directory. calls paths.UniqueFilename() to
// maintain common formatting used in the project.
func uniqueFilename(prepend string, ld imageloader.Loader) (string, error) {
	f := paths.UniqueFilename(prepend, ld.ShortName())

	scrPth, err := paths.ResourcePath(regressionScripts, f)
	if err != nil {
		return "", err
	}

	return scrPth, nil
}
