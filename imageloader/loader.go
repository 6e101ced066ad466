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
	"bytes"
	"crypto/sha1"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/firm"
	"github.com/jetsetilly/threemu/hardware/boot"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
)

// Sentinal error patterns.
const (
	LoadError     = "imageloader: %v"
	UnexpectedSum = "imageloader: unexpected hash value"
	NotLoaded     = "imageloader: image has not been loaded"
	UnknownFormat = "imageloader: unknown format (%s)"
	UnknownCore   = "imageloader: unknown core (%s)"
)

// List of valid Format values.
const (
	FormatAuto = "AUTO"
	FormatFIRM = "FIRM"
	FormatELF  = "ELF"
	FormatRaw  = "RAW"
)

// List of valid Core values.
const (
	ARM9  = "ARM9"
	ARM11 = "ARM11"
)

// Loader is used to specify the boot image.
type Loader struct {
	// filename of image to load. if SDImage is not empty then this is a path
	// inside the SD card image
	Filename string

	// SD card image containing the boot image. empty string if the boot image
	// is a regular file
	SDImage string

	// empty string or "AUTO" indicates detection from the image data
	Format string

	// the core that receives the entry point of ELF and raw images. empty
	// string indicates the ARM9
	Core string

	// load address of raw images. zero indicates the default address for the
	// core
	Base uint32

	// expected hash of the loaded image. empty string indicates that the
	// hash is unknown and need not be validated. after a load operation the
	// value will be the hash of the loaded data
	Hash string

	// copy of the loaded data
	Data []byte
}

// NewLoader is the preferred method of initialisation for the Loader type.
//
// The format argument will be used to set the Format field, unless the
// argument is either "AUTO" or the empty string. In which case the file
// extension is used to set the field. Extensions that do not identify a
// format leave the field as "AUTO".
func NewLoader(filename string, format string) Loader {
	ld := Loader{
		Filename: filename,
		Format:   FormatAuto,
		Core:     ARM9,
	}

	format = strings.TrimSpace(strings.ToUpper(format))
	if format != FormatAuto && format != "" {
		ld.Format = format
		return ld
	}

	switch strings.ToUpper(path.Ext(filename)) {
	case ".FIRM":
		ld.Format = FormatFIRM
	case ".ELF", ".AXF":
		ld.Format = FormatELF
	}

	return ld
}

// FileExtensions is the list of file extensions that are recognised by the
// imageloader package.
var FileExtensions = [...]string{".FIRM", ".ELF", ".AXF", ".BIN"}

// ShortName returns a shortened version of the filename.
func (ld Loader) ShortName() string {
	s := path.Base(ld.Filename)
	return strings.TrimSuffix(s, path.Ext(ld.Filename))
}

// HasLoaded returns true if Load() has been successfully called.
func (ld Loader) HasLoaded() bool {
	return len(ld.Data) > 0
}

// Load the image data. Calling Load() on a Loader that has already loaded its
// data has no effect.
func (ld *Loader) Load() error {
	if len(ld.Data) > 0 {
		return nil
	}

	var err error
	if ld.SDImage != "" {
		ld.Data, err = readFromSD(ld.SDImage, ld.Filename)
	} else {
		ld.Data, err = os.ReadFile(ld.Filename)
	}
	if err != nil {
		ld.Data = nil
		return curated.Errorf(LoadError, err)
	}

	hash := fmt.Sprintf("%x", sha1.Sum(ld.Data))
	if ld.Hash != "" && ld.Hash != hash {
		ld.Data = nil
		return curated.Errorf(UnexpectedSum)
	}
	ld.Hash = hash

	if ld.Format == FormatAuto || ld.Format == "" {
		ld.Format = Detect(ld.Data)
	}

	return nil
}

// Detect the format of the image data.
func Detect(data []byte) string {
	switch {
	case firm.IsFIRM(data):
		return FormatFIRM
	case bytes.HasPrefix(data, []byte("\x7fELF")):
		return FormatELF
	}
	return FormatRaw
}

// BootImage interprets the loaded data according to the format.
func (ld Loader) BootImage() (boot.BootImage, error) {
	if !ld.HasLoaded() {
		return boot.BootImage{}, curated.Errorf(NotLoaded)
	}

	format := ld.Format
	if format == FormatAuto || format == "" {
		format = Detect(ld.Data)
	}

	switch format {
	case FormatFIRM:
		f, err := firm.Parse(ld.Data)
		if err != nil {
			return boot.BootImage{}, curated.Errorf(LoadError, err)
		}
		return f.BootImage(), nil
	case FormatELF:
		return ld.elf()
	case FormatRaw:
		return ld.raw()
	}

	return boot.BootImage{}, curated.Errorf(UnknownFormat, format)
}

// give the entry point to the selected core
func (ld Loader) entry(img *boot.BootImage, addr uint32) error {
	switch strings.ToUpper(ld.Core) {
	case ARM9, "":
		img.ARM9 = boot.NewEntryPoint(addr)
	case ARM11:
		img.ARM11 = boot.NewEntryPoint(addr)
	default:
		return curated.Errorf(UnknownCore, ld.Core)
	}
	return nil
}

func (ld Loader) raw() (boot.BootImage, error) {
	base := ld.Base
	if base == 0 {
		if strings.ToUpper(ld.Core) == ARM11 {
			base = memorymap.AXIWRAM.Origin
		} else {
			base = memorymap.ARM9Internal.Origin
		}
	}

	img := boot.BootImage{
		Placements: []boot.Placement{
			{Label: ld.ShortName(), Address: base, Data: ld.Data},
		},
	}
	if err := ld.entry(&img, base); err != nil {
		return boot.BootImage{}, err
	}
	return img, nil
}
