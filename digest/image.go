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

package digest

import (
	"crypto/sha1"
	"fmt"
	"image"
)

// Image is an implementation of the Digest interface. It generates a SHA-1
// value of an image. Only the visible pixels contribute to the value.
type Image struct {
	digest [sha1.Size]byte
}

// Hash implements digest.Digest interface.
func (dig Image) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements digest.Digest interface.
func (dig *Image) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// Update the digest with the image. The previous digest value is chained into
// the new value.
func (dig *Image) Update(img *image.RGBA) {
	h := sha1.New()
	h.Write(dig.digest[:])

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[i : i+b.Dx()*4])
	}

	copy(dig.digest[:], h.Sum(nil))
}
