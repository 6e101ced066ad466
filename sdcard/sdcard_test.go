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

package sdcard_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/sdcard"
	"github.com/jetsetilly/threemu/test"
)

func TestMemoryCard(t *testing.T) {
	c := sdcard.NewMemoryCard([]byte{0x01, 0x02, 0x03})
	defer c.Close()
	test.ExpectEquality(t, c.Blocks(), uint32(1))

	d, err := c.ReadBlock(0)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(d), sdcard.BlockSize)
	test.ExpectEquality(t, d[2], uint8(0x03))
	test.ExpectEquality(t, d[3], uint8(0x00))

	// returned block is a copy
	d[0] = 0xff
	d, _ = c.ReadBlock(0)
	test.ExpectEquality(t, d[0], uint8(0x01))
}

func TestBeyondEnd(t *testing.T) {
	c := sdcard.NewMemoryCard(make([]byte, sdcard.BlockSize*2))
	_, err := c.ReadBlock(2)
	test.ExpectSuccess(t, curated.Is(err, sdcard.BeyondEnd))
	err = c.WriteBlock(2, make([]byte, sdcard.BlockSize))
	test.ExpectSuccess(t, curated.Is(err, sdcard.BeyondEnd))
	err = c.WriteBlock(1, make([]byte, 10))
	test.ExpectSuccess(t, curated.Is(err, sdcard.BadBlockSize))
}

func TestWriteBlock(t *testing.T) {
	c := sdcard.NewMemoryCard(make([]byte, sdcard.BlockSize*4))
	blk := bytes.Repeat([]byte{0xa5}, sdcard.BlockSize)
	test.DemandSuccess(t, c.WriteBlock(3, blk))

	d, err := c.ReadBlock(3)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(d, blk))

	d, err = c.ReadBlock(2)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d[0], uint8(0x00))
}

func TestReaderAt(t *testing.T) {
	c := sdcard.NewMemoryCard([]byte("threemu"))
	test.ExpectImplements[io.ReaderAt](t, c)

	p := make([]byte, 4)
	n, err := c.ReadAt(p, 1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 4)
	test.ExpectEquality(t, string(p), "hree")

	n, err = c.ReadAt(p, sdcard.BlockSize-2)
	test.ExpectEquality(t, n, 2)
	test.ExpectEquality(t, err, io.EOF)
}

func TestFileCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sd.img")
	test.DemandSuccess(t, os.WriteFile(path, make([]byte, sdcard.BlockSize*8+100), 0o600))

	c, err := sdcard.Open(path, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Blocks(), uint32(8))

	blk := bytes.Repeat([]byte{0x3c}, sdcard.BlockSize)
	test.ExpectSuccess(t, c.WriteBlock(5, blk))
	test.DemandSuccess(t, c.Close())

	c, err = sdcard.Open(path, true)
	test.DemandSuccess(t, err)
	defer c.Close()
	test.ExpectSuccess(t, c.ReadOnly())

	d, err := c.ReadBlock(5)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(d, blk))

	test.ExpectSuccess(t, curated.Is(c.WriteBlock(5, blk), sdcard.ReadOnly))
}

func TestOpenMissing(t *testing.T) {
	_, err := sdcard.Open(filepath.Join(t.TempDir(), "missing.img"), true)
	test.ExpectSuccess(t, curated.Is(err, sdcard.OpenError))
}
