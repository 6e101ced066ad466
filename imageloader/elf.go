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
	"debug/elf"
	"fmt"
	"io"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/boot"
)

// Sentinal error patterns.
const (
	ELFError = "imageloader: ELF: %v"
)

// loadable segments are placed at their physical address. the part of the
// segment not present in the file is zero.
func (ld Loader) elf() (boot.BootImage, error) {
	ef, err := elf.NewFile(bytes.NewReader(ld.Data))
	if err != nil {
		return boot.BootImage{}, curated.Errorf(ELFError, err)
	}
	defer ef.Close()

	if ef.Class != elf.ELFCLASS32 || ef.Machine != elf.EM_ARM {
		return boot.BootImage{}, curated.Errorf(ELFError, "not a 32bit ARM executable")
	}
	if ef.Data != elf.ELFDATA2LSB {
		return boot.BootImage{}, curated.Errorf(ELFError, "not little endian")
	}

	var img boot.BootImage
	for i, p := range ef.Progs {
		if p.Type != elf.PT_LOAD || p.Memsz == 0 {
			continue
		}

		data := make([]byte, p.Memsz)
		if _, err := io.ReadFull(p.Open(), data[:p.Filesz]); err != nil {
			return boot.BootImage{}, curated.Errorf(ELFError, err)
		}

		img.Placements = append(img.Placements, boot.Placement{
			Label:   fmt.Sprintf("segment %d", i),
			Address: uint32(p.Paddr),
			Data:    data,
		})
	}

	if err := ld.entry(&img, uint32(ef.Entry)); err != nil {
		return boot.BootImage{}, err
	}
	return img, nil
}
