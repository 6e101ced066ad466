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

// Package firm parses FIRM containers. A FIRM container is a 512 byte header
// followed by up to four sections of code and data. The header gives the load
// address of each section and the entry points of both cores.
//
// The RSA signature of the header is not checked. The SHA-256 hash of each
// section is checked but a mismatch is only logged.
package firm

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/boot"
	"github.com/jetsetilly/threemu/logger"
)

// Sentinal error patterns.
const (
	TooSmall     = "firm: data is too small for header (%d bytes)"
	BadMagic     = "firm: not a FIRM container"
	SectionRange = "firm: section %d (offset %#x size %#x) is outside the container"
)

// Magic is the first four bytes of every FIRM container.
var Magic = []byte("FIRM")

// HeaderSize is the size of the header. The header is also the minimum size
// of a FIRM container.
const HeaderSize = 0x200

// NumSections is the number of section headers in the header.
const NumSections = 4

// header layout.
const (
	offPriority    = 0x004
	offARM11Entry  = 0x008
	offARM9Entry   = 0x00c
	offSections    = 0x040
	sectionStride  = 0x30
	offSignature   = 0x100
	signatureSize  = 0x100
	sectionHashOff = 0x10
)

// CopyMethod is the method the boot ROM uses to copy a section into memory.
// It has no effect on how the section is placed by the emulator.
type CopyMethod uint32

// List of valid CopyMethod values.
const (
	CopyNDMA CopyMethod = iota
	CopyXDMA
	CopyMemcpy
)

func (m CopyMethod) String() string {
	switch m {
	case CopyNDMA:
		return "NDMA"
	case CopyXDMA:
		return "XDMA"
	case CopyMemcpy:
		return "memcpy"
	}
	return fmt.Sprintf("method(%d)", uint32(m))
}

// Section is a section header.
type Section struct {
	Offset  uint32
	Address uint32
	Size    uint32
	Method  CopyMethod
	Hash    [sha256.Size]byte
}

func (s Section) String() string {
	if s.Size == 0 {
		return "unused"
	}
	return fmt.Sprintf("offset %#08x -> %08x-%08x (%s)", s.Offset, s.Address, s.Address+s.Size-1, s.Method)
}

// Firm is a parsed FIRM container.
type Firm struct {
	Priority   uint32
	ARM11Entry uint32
	ARM9Entry  uint32
	Sections   [NumSections]Section
	Signature  [signatureSize]byte

	data []byte
}

// IsFIRM returns true if the data starts with the FIRM magic value.
func IsFIRM(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// Parse the data as a FIRM container. The data is not copied and should not
// be changed after parsing.
func Parse(data []byte) (*Firm, error) {
	if len(data) < HeaderSize {
		return nil, curated.Errorf(TooSmall, len(data))
	}
	if !IsFIRM(data) {
		return nil, curated.Errorf(BadMagic)
	}

	f := &Firm{
		Priority:   binary.LittleEndian.Uint32(data[offPriority:]),
		ARM11Entry: binary.LittleEndian.Uint32(data[offARM11Entry:]),
		ARM9Entry:  binary.LittleEndian.Uint32(data[offARM9Entry:]),
		data:       data,
	}

	for i := range f.Sections {
		h := data[offSections+i*sectionStride:]
		s := &f.Sections[i]
		s.Offset = binary.LittleEndian.Uint32(h[0x00:])
		s.Address = binary.LittleEndian.Uint32(h[0x04:])
		s.Size = binary.LittleEndian.Uint32(h[0x08:])
		s.Method = CopyMethod(binary.LittleEndian.Uint32(h[0x0c:]))
		copy(s.Hash[:], h[sectionHashOff:])

		if s.Size == 0 {
			continue
		}
		if uint64(s.Offset)+uint64(s.Size) > uint64(len(data)) {
			return nil, curated.Errorf(SectionRange, i, s.Offset, s.Size)
		}
	}

	copy(f.Signature[:], data[offSignature:])

	return f, nil
}

// SectionData returns the contents of a section. Returns nil for unused
// sections.
func (f *Firm) SectionData(i int) []byte {
	s := f.Sections[i]
	if s.Size == 0 {
		return nil
	}
	return f.data[s.Offset : s.Offset+s.Size]
}

// VerifySection returns true if the contents of the section match the hash in
// the section header.
func (f *Firm) VerifySection(i int) bool {
	return sha256.Sum256(f.SectionData(i)) == f.Sections[i].Hash
}

// BootImage returns the boot image described by the container. Unused
// sections are skipped. An entry point of zero means the core is held.
func (f *Firm) BootImage() boot.BootImage {
	var img boot.BootImage

	for i, s := range f.Sections {
		if s.Size == 0 {
			continue
		}
		if !f.VerifySection(i) {
			logger.Logf(logger.Allow, "firm", "section %d hash mismatch", i)
		}
		img.Placements = append(img.Placements, boot.Placement{
			Label:   fmt.Sprintf("section %d", i),
			Address: s.Address,
			Data:    f.SectionData(i),
		})
	}

	if f.ARM9Entry != 0 {
		img.ARM9 = boot.NewEntryPoint(f.ARM9Entry)
	}
	if f.ARM11Entry != 0 {
		img.ARM11 = boot.NewEntryPoint(f.ARM11Entry)
	}

	return img
}

func (f *Firm) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("priority: %d\n", f.Priority))
	s.WriteString(fmt.Sprintf("ARM9 entry: %08x\n", f.ARM9Entry))
	s.WriteString(fmt.Sprintf("ARM11 entry: %08x\n", f.ARM11Entry))
	for i, sec := range f.Sections {
		s.WriteString(fmt.Sprintf("section %d: %s", i, sec))
		if sec.Size > 0 && !f.VerifySection(i) {
			s.WriteString(" [hash mismatch]")
		}
		s.WriteString("\n")
	}
	return s.String()
}
