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

// Package sdcard implements the virtual SD card. The card is a store of
// fixed size blocks backed by a disk image file or by memory.
//
// The card is never accessed by the emulated cores directly. It is read and
// written by the SD/MMC controller and by the image loader.
package sdcard

import (
	"io"
	"os"

	"github.com/jetsetilly/threemu/curated"
)

// BlockSize is the size in bytes of every block on the card.
const BlockSize = 512

// Sentinal error patterns.
const (
	OpenError    = "sdcard: %v"
	BeyondEnd    = "sdcard: block %d is beyond the end of the card (%d blocks)"
	BadBlockSize = "sdcard: block data must be %d bytes (%d)"
	ReadOnly     = "sdcard: card is read only"
	IOError      = "sdcard: block %d: %v"
)

// the backing store of a card
type backing interface {
	io.ReaderAt
	io.WriterAt
}

// Card is a block addressable store.
type Card struct {
	name     string
	store    backing
	file     *os.File
	blocks   uint32
	readOnly bool
}

// Open a disk image as an SD card. The size of the image is rounded down to a
// whole number of blocks.
func Open(path string, readOnly bool) (*Card, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, curated.Errorf(OpenError, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, curated.Errorf(OpenError, err)
	}

	return &Card{
		name:     path,
		store:    f,
		file:     f,
		blocks:   uint32(st.Size() / BlockSize),
		readOnly: readOnly,
	}, nil
}

// NewMemoryCard creates a card in memory from the data, which is padded with
// zero bytes to a whole number of blocks. The data is copied.
func NewMemoryCard(data []byte) *Card {
	n := (len(data) + BlockSize - 1) / BlockSize
	m := make(memory, n*BlockSize)
	copy(m, data)
	return &Card{
		name:   "memory",
		store:  m,
		blocks: uint32(n),
	}
}

func (c *Card) String() string {
	return c.name
}

// Close the card. Memory cards can be closed safely.
func (c *Card) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// Blocks returns the number of blocks on the card.
func (c *Card) Blocks() uint32 {
	return c.blocks
}

// ReadOnly returns true if writes to the card will fail.
func (c *Card) ReadOnly() bool {
	return c.readOnly
}

// ReadBlock returns a copy of the block at the index.
func (c *Card) ReadBlock(index uint32) ([]byte, error) {
	if index >= c.blocks {
		return nil, curated.Errorf(BeyondEnd, index, c.blocks)
	}
	d := make([]byte, BlockSize)
	if _, err := c.store.ReadAt(d, int64(index)*BlockSize); err != nil {
		return nil, curated.Errorf(IOError, index, err)
	}
	return d, nil
}

// WriteBlock replaces the block at the index. The data must be exactly one
// block in length.
func (c *Card) WriteBlock(index uint32, data []byte) error {
	if index >= c.blocks {
		return curated.Errorf(BeyondEnd, index, c.blocks)
	}
	if len(data) != BlockSize {
		return curated.Errorf(BadBlockSize, BlockSize, len(data))
	}
	if c.readOnly {
		return curated.Errorf(ReadOnly)
	}
	if _, err := c.store.WriteAt(data, int64(index)*BlockSize); err != nil {
		return curated.Errorf(IOError, index, err)
	}
	return nil
}

// ReadAt implements the io.ReaderAt interface over the entire card.
func (c *Card) ReadAt(p []byte, off int64) (int, error) {
	size := int64(c.blocks) * BlockSize
	if off >= size {
		return 0, io.EOF
	}
	if off+int64(len(p)) > size {
		n, err := c.store.ReadAt(p[:size-off], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return c.store.ReadAt(p, off)
}

// memory backed store
type memory []byte

func (m memory) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m)) {
		return 0, io.EOF
	}
	n := copy(p, m[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m memory) WriteAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > int64(len(m)) {
		return 0, io.ErrShortWrite
	}
	return copy(m[off:], p), nil
}
