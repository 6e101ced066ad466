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

// Package sdmmc implements the SD/MMC host controller. The controller has two
// ports. Port 0 is connected to the virtual SD card and port 1 is connected
// to an empty NAND.
//
// Commands are executed synchronously when the CMD register is written. Data
// is moved through the 16bit FIFO or the 32bit FIFO one access at a time and
// the card is read or written whenever a complete block has passed through
// the FIFO.
//
// The state of the card is kept separately from the STATUS registers and is
// reported in R1 responses only.
package sdmmc

import (
	"fmt"

	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/logger"
)

const label = "SDMMC"

// sectorSize is the unit of addressing of the card. Block lengths other than
// the sector size are supported but each block still occupies a single
// sector.
const sectorSize = 512

// Card is the storage connected to the SD port.
type Card interface {
	ReadBlock(index uint32) ([]byte, error)
	WriteBlock(index uint32, data []byte) error
}

// cards that can report their write protection.
type writeProtected interface {
	ReadOnly() bool
}

// List of valid port numbers.
const (
	PortSD   = 0
	PortNAND = 1
)

// State of the card as reported in R1 responses.
type State int

// List of valid State values.
const (
	Idle State = iota
	Ready
	Identify
	Standby
	Transfer
	Data
	Receive
	Program
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Identify:
		return "identify"
	case Standby:
		return "standby"
	case Transfer:
		return "transfer"
	case Data:
		return "data"
	case Receive:
		return "receive"
	case Program:
		return "program"
	}
	return "unknown"
}

// a data transfer in progress
type transfer struct {
	write bool

	// first sector and the number of the current block relative to it
	sector uint32
	block  uint32

	// number of blocks still to pass through the FIFO including the current
	// block
	remaining uint32

	buffer []byte
	pos    int
}

// SDMMC implements the bus.Peripheral interface.
type SDMMC struct {
	card Card

	state  State
	appCmd bool

	cmd      uint16
	portsel  uint16
	cmdarg0  uint16
	cmdarg1  uint16
	stop     uint16
	blkcount uint16
	resp     [8]uint16
	status0  uint16
	status1  uint16
	irqmask0 uint16
	irqmask1 uint16
	clkctl   uint16
	blklen   uint16
	opt      uint16
	errdet0  uint16
	errdet1  uint16
	datactl  uint16
	reset    uint16

	data32irq    uint16
	data32blklen uint16
	data32blkcnt uint16

	xfer transfer
}

// NewSDMMC is the preferred method of initialisation for the SDMMC type. The
// card can be nil, in which case the SD port behaves as though an empty card
// is inserted.
func NewSDMMC(card Card) *SDMMC {
	return &SDMMC{card: card}
}

func (s *SDMMC) String() string {
	return fmt.Sprintf("%s: port %d, card %s, status %04x %04x", label, s.portsel, s.state, s.status0, s.status1)
}

// Label implements the bus.Peripheral interface.
func (s *SDMMC) Label() string {
	return label
}

// Reset the controller and the card state.
func (s *SDMMC) Reset() {
	*s = SDMMC{card: s.card}
}

// CardState returns the current state of the card.
func (s *SDMMC) CardState() State {
	return s.state
}

// Read implements the bus.Peripheral interface.
func (s *SDMMC) Read(addr uint32, width int) (uint32, error) {
	off := addr - memorymap.SDMMC.Origin

	if off >= reg32Base {
		base := off &^ 0x03
		if base == regDATA32FIFO {
			if width != 4 {
				logger.Logf(logger.Allow, label, "%dbit read of 32bit FIFO ignored", width*8)
				return 0, nil
			}
			return s.readFIFO(4), nil
		}
		v := s.read32(base) >> ((off & 0x03) * 8)
		return v & widthMask(width), nil
	}

	switch width {
	case 4:
		lo := s.read16(off)
		hi := s.read16(off + 2)
		return uint32(lo) | uint32(hi)<<16, nil
	case 2:
		return uint32(s.read16(off)), nil
	}

	base := off &^ 0x01
	if base == regFIFO16 {
		logger.Logf(logger.Allow, label, "8bit read of 16bit FIFO ignored")
		return 0, nil
	}
	return uint32(s.read16(base)>>((off&0x01)*8)) & 0xff, nil
}

// Write implements the bus.Peripheral interface.
func (s *SDMMC) Write(addr uint32, width int, value uint32) error {
	off := addr - memorymap.SDMMC.Origin

	if off >= reg32Base {
		base := off &^ 0x03
		if base == regDATA32FIFO {
			if width != 4 {
				logger.Logf(logger.Allow, label, "%dbit write to 32bit FIFO ignored", width*8)
				return nil
			}
			s.writeFIFO(4, value)
			return nil
		}
		shift := (off & 0x03) * 8
		mask := widthMask(width) << shift
		s.write32(base, s.read32(base)&^mask|(value<<shift)&mask)
		return nil
	}

	switch width {
	case 4:
		s.write16(off, uint16(value))
		s.write16(off+2, uint16(value>>16))
		return nil
	case 2:
		s.write16(off, uint16(value))
		return nil
	}

	base := off &^ 0x01
	if base == regFIFO16 {
		logger.Logf(logger.Allow, label, "8bit write to 16bit FIFO ignored")
		return nil
	}
	v, _ := s.peek16(base)
	shift := (off & 0x01) * 8
	mask := uint16(0xff) << shift
	s.write16(base, v&^mask|(uint16(value)<<shift)&mask)
	return nil
}

// peek16 returns the stored value of a 16bit register without side effects.
// returns false if the offset is not a register.
func (s *SDMMC) peek16(off uint32) (uint16, bool) {
	switch off {
	case regCMD:
		return s.cmd, true
	case regPORTSEL:
		return s.portsel, true
	case regCMDARG0:
		return s.cmdarg0, true
	case regCMDARG1:
		return s.cmdarg1, true
	case regSTOP:
		return s.stop, true
	case regBLKCOUNT:
		return s.blkcount, true
	case regSTATUS0:
		return s.status0, true
	case regSTATUS1:
		return s.status1, true
	case regIRQMASK0:
		return s.irqmask0, true
	case regIRQMASK1:
		return s.irqmask1, true
	case regCLKCTL:
		return s.clkctl, true
	case regBLKLEN:
		return s.blklen, true
	case regOPT:
		return s.opt, true
	case regERRORDETAIL0:
		return s.errdet0, true
	case regERRORDETAIL1:
		return s.errdet1, true
	case regDATACTL:
		return s.datactl, true
	case regRESET:
		return s.reset, true
	}
	if off >= regRESP0 && off <= regRESP7 {
		return s.resp[(off-regRESP0)/2], true
	}
	return 0, false
}

func (s *SDMMC) read16(off uint32) uint16 {
	switch off {
	case regSTATUS0:
		v := s.status0 | Stat0CardInserted
		if wp, ok := s.card.(writeProtected); !ok || !wp.ReadOnly() {
			v |= Stat0WriteProtect
		}
		return v
	case regFIFO16:
		return uint16(s.readFIFO(2))
	}

	v, ok := s.peek16(off)
	if !ok {
		logger.Logf(logger.Allow, label, "read of unknown register %#03x", off)
	}
	return v
}

func (s *SDMMC) write16(off uint32, v uint16) {
	switch off {
	case regCMD:
		s.cmd = v
		s.command(uint8(v & 0x3f))
	case regPORTSEL:
		s.portsel = v
	case regCMDARG0:
		s.cmdarg0 = v
	case regCMDARG1:
		s.cmdarg1 = v
	case regSTOP:
		s.stop = v
	case regBLKCOUNT:
		s.blkcount = v
	case regSTATUS0:
		// status bits are acknowledged by writing zero to them
		s.status0 &= v
	case regSTATUS1:
		s.status1 &= v
	case regIRQMASK0:
		s.irqmask0 = v
	case regIRQMASK1:
		s.irqmask1 = v
	case regCLKCTL:
		s.clkctl = v
	case regBLKLEN:
		s.blklen = v
	case regOPT:
		s.opt = v
	case regERRORDETAIL0:
		s.errdet0 = v
	case regERRORDETAIL1:
		s.errdet1 = v
	case regFIFO16:
		s.writeFIFO(2, uint32(v))
	case regDATACTL:
		s.datactl = v
	case regRESET:
		s.reset = v
	default:
		if off >= regRESP0 && off <= regRESP7 {
			s.resp[(off-regRESP0)/2] = v
			return
		}
		logger.Logf(logger.Allow, label, "write to unknown register %#03x (%04x)", off, v)
	}
}

func (s *SDMMC) read32(off uint32) uint32 {
	switch off {
	case regDATA32IRQ:
		v := s.data32irq
		if s.status1&Stat1RxReady != 0 {
			v |= data32RxReady
		}
		if s.status1&Stat1TxReq == 0 {
			v |= data32TxNotReq
		}
		return uint32(v)
	case regDATA32BLKLEN:
		return uint32(s.data32blklen)
	case regDATA32BLKCNT:
		return uint32(s.data32blkcnt)
	}
	logger.Logf(logger.Allow, label, "read of unknown register %#03x", off)
	return 0
}

func (s *SDMMC) write32(off uint32, v uint32) {
	switch off {
	case regDATA32IRQ:
		s.data32irq = uint16(v) &^ (data32RxReady | data32TxNotReq)
	case regDATA32BLKLEN:
		s.data32blklen = uint16(v)
	case regDATA32BLKCNT:
		s.data32blkcnt = uint16(v)
	default:
		logger.Logf(logger.Allow, label, "write to unknown register %#03x (%08x)", off, v)
	}
}

func widthMask(width int) uint32 {
	switch width {
	case 1:
		return 0xff
	case 2:
		return 0xffff
	}
	return 0xffffffff
}
