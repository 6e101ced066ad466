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

package imageloader

import (
	"io"
	"os"
	"strings"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/filesystem"

	"github.com/jetsetilly/threemu/curated"
)

// Sentinal error patterns.
const (
	SDError = "imageloader: SD card: %v"
)

// read a file from the FAT filesystem of an SD card image. the filesystem is
// normally in the first partition but a card without a partition table can
// have the filesystem at the start of the card.
func readFromSD(image string, filename string) ([]byte, error) {
	d, err := diskfs.Open(image, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return nil, curated.Errorf(SDError, err)
	}
	defer d.File.Close()

	fs, err := d.GetFilesystem(1)
	if err != nil {
		fs, err = d.GetFilesystem(0)
		if err != nil {
			return nil, curated.Errorf(SDError, err)
		}
	}

	if fs.Type() != filesystem.TypeFat32 {
		return nil, curated.Errorf(SDError, "not a FAT filesystem")
	}

	f, err := fs.OpenFile("/"+strings.TrimLeft(filename, "/"), os.O_RDONLY)
	if err != nil {
		return nil, curated.Errorf(SDError, err)
	}
	if c, ok := f.(io.Closer); ok {
		defer c.Close()
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, curated.Errorf(SDError, err)
	}

	return data, nil
}
