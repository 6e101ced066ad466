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

package firm

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/boot"
)

// Sentinal error patterns.
const (
	TooManySections = "firm: too many sections (%d)"
)

// Build a FIRM container from a boot image. The sections follow the header in
// the order of the placements and are copied with memcpy. Held cores have an
// entry point of zero.
//
// The signature is left empty.
func Build(img boot.BootImage) ([]byte, error) {
	if len(img.Placements) > NumSections {
		return nil, curated.Errorf(TooManySections, len(img.Placements))
	}

	data := make([]byte, HeaderSize, HeaderSize+img.Size())
	copy(data, Magic)
	if img.ARM11 != nil {
		binary.LittleEndian.PutUint32(data[offARM11Entry:], img.ARM11.Address)
	}
	if img.ARM9 != nil {
		binary.LittleEndian.PutUint32(data[offARM9Entry:], img.ARM9.Address)
	}

	for i, p := range img.Placements {
		h := data[offSections+i*sectionStride:]
		binary.LittleEndian.PutUint32(h[0x00:], uint32(len(data)))
		binary.LittleEndian.PutUint32(h[0x04:], p.Address)
		binary.LittleEndian.PutUint32(h[0x08:], uint32(len(p.Data)))
		binary.LittleEndian.PutUint32(h[0x0c:], uint32(CopyMemcpy))
		hash := sha256.Sum256(p.Data)
		copy(h[sectionHashOff:], hash[:])
		data = append(data, p.Data...)
	}

	return data, nil
}
