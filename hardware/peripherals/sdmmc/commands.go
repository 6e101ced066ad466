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

package sdmmc

import (
	"github.com/jetsetilly/threemu/logger"
)

func (s *SDMMC) command(idx uint8) {
	s.status1 |= Stat1CmdBusy
	arg := uint32(s.cmdarg1)<<16 | uint32(s.cmdarg0)

	if s.appCmd {
		s.appCmd = false
		s.applicationCommand(idx, arg)
		return
	}

	switch idx {
	case 0:
		s.state = Idle
		s.response32(cardReady)
	case 1:
		s.response32(ocr)
	case 2:
		if s.portsel == PortNAND {
			s.response128(nandCID)
		} else {
			s.response128(sdCID)
		}
		if s.state == Ready {
			s.state = Identify
		}
	case 3:
		s.response32(rca | s.r1())
		if s.state == Identify {
			s.state = Standby
		}
	case 7:
		// selecting with a zero address deselects the card
		s.response32(s.r1())
		if arg != 0 && s.state == Standby {
			s.state = Transfer
		} else if arg == 0 && s.state == Transfer {
			s.state = Standby
		}
	case 8:
		s.response32(ifCond)
	case 9:
		s.response128(csd)
	case 10:
		s.response128(nandCID)
	case 12:
		s.response32(s.r1())
		s.xfer = transfer{}
		switch s.state {
		case Data, Receive:
			s.state = Transfer
		case Transfer:
			s.state = Standby
		}
	case 13:
		s.response32(s.r1())
	case 16:
	case 17:
		s.startRead(arg, 1)
	case 18:
		s.startRead(arg, s.blockCount())
	case 24:
		s.startWrite(arg, 1)
	case 25:
		s.startWrite(arg, s.blockCount())
	case 55:
		s.appCmd = true
		s.response32(s.r1())
	default:
		logger.Logf(logger.Allow, label, "unsupported command CMD%d (arg %08x)", idx, arg)
	}

	s.commandEnd()
}

func (s *SDMMC) applicationCommand(idx uint8, arg uint32) {
	switch idx {
	case 6:
		s.response32(s.r1())
	case 13:
		s.response32(s.r1())
		s.startRegisterRead(make([]byte, sdStatusSize))
	case 41:
		v := uint32(ocr)
		if s.portsel != PortNAND {
			v |= ocrSDHC
		}
		s.response32(v)
		if s.state == Idle {
			s.state = Ready
		}
	case 42:
		s.response32(s.r1())
	case 51:
		s.response32(s.r1())
		s.startRegisterRead(append([]byte{}, scr...))
	default:
		logger.Logf(logger.Allow, label, "unsupported command ACMD%d (arg %08x)", idx, arg)
	}

	s.commandEnd()
}

func (s *SDMMC) commandEnd() {
	s.status1 &^= Stat1CmdBusy
	s.status0 |= Stat0CmdRespEnd
}

func (s *SDMMC) r1() uint32 {
	var r uint32
	if s.appCmd {
		r |= r1AppCmd
	}
	r |= uint32(s.state) << r1StateShift
	if s.xfer.remaining == 0 {
		r |= r1ReadyForData
	}
	return r
}

func (s *SDMMC) response32(v uint32) {
	s.resp[0] = uint16(v)
	s.resp[1] = uint16(v >> 16)
}

func (s *SDMMC) response128(v [4]uint32) {
	for i, w := range v {
		s.resp[i*2] = uint16(w)
		s.resp[i*2+1] = uint16(w >> 16)
	}
}

// the block length and count used by the multiple block commands. the
// registers of the 32bit FIFO take precedence when the block length has been
// set.
func (s *SDMMC) blockCount() uint32 {
	if s.data32blklen > 0 {
		return uint32(s.data32blkcnt)
	}
	return uint32(s.blkcount)
}

func (s *SDMMC) blockLength() int {
	l := int(s.blklen)
	if s.data32blklen > 0 {
		l = int(s.data32blklen)
	}
	if l == 0 {
		return sectorSize
	}
	return l
}

func (s *SDMMC) startRead(sector uint32, blocks uint32) {
	s.xfer = transfer{
		sector:    sector,
		remaining: blocks,
		buffer:    make([]byte, s.blockLength()),
	}
	s.state = Data

	logger.Logf(logger.Allow, label, "read %d blocks from sector %#x on port %d", blocks, sector, s.portsel)

	if blocks == 0 {
		s.response32(s.r1())
		s.dataEnd()
		return
	}

	s.load()
	s.response32(s.r1())
	s.status1 |= Stat1RxReady
}

func (s *SDMMC) startWrite(sector uint32, blocks uint32) {
	s.xfer = transfer{
		write:     true,
		sector:    sector,
		remaining: blocks,
		buffer:    make([]byte, s.blockLength()),
	}
	s.state = Receive

	logger.Logf(logger.Allow, label, "write %d blocks to sector %#x on port %d", blocks, sector, s.portsel)

	if blocks == 0 {
		s.response32(s.r1())
		s.dataEnd()
		return
	}

	s.response32(s.r1())
	s.status1 |= Stat1TxReq
}

// the data of a card register is read through the FIFO in the same way as a
// single block.
func (s *SDMMC) startRegisterRead(data []byte) {
	s.xfer = transfer{
		sector:    0,
		remaining: 1,
		buffer:    data,
	}
	s.status1 |= Stat1RxReady
}

func (s *SDMMC) dataEnd() {
	s.xfer = transfer{}
	s.status0 |= Stat0DataEnd
	s.state = Transfer
}

func (s *SDMMC) readFIFO(n int) uint32 {
	x := &s.xfer
	if x.write || x.pos+n > len(x.buffer) {
		logger.Logf(logger.Allow, label, "FIFO read with no data available")
		return 0
	}

	var v uint32
	for i := range n {
		v |= uint32(x.buffer[x.pos+i]) << (8 * i)
	}
	x.pos += n

	if x.pos >= len(x.buffer) {
		x.remaining--
		x.block++
		x.pos = 0
		if x.remaining == 0 {
			s.dataEnd()
		} else {
			s.load()
			s.status1 |= Stat1RxReady
		}
	}

	return v
}

func (s *SDMMC) writeFIFO(n int, v uint32) {
	x := &s.xfer
	if !x.write || x.pos+n > len(x.buffer) {
		logger.Logf(logger.Allow, label, "FIFO write with no transfer in progress (%08x)", v)
		return
	}

	for i := range n {
		x.buffer[x.pos+i] = uint8(v >> (8 * i))
	}
	x.pos += n

	if x.pos >= len(x.buffer) {
		s.store()
		x.remaining--
		x.block++
		x.pos = 0
		if x.remaining == 0 {
			s.dataEnd()
		} else {
			clear(x.buffer)
			s.status1 |= Stat1TxReq
		}
	}
}

// load the current block of a read transfer into the buffer. reads from the
// NAND or from an empty SD port are zero.
func (s *SDMMC) load() {
	x := &s.xfer
	clear(x.buffer)

	if s.portsel != PortSD || s.card == nil {
		return
	}

	sector := x.sector + x.block
	d, err := s.card.ReadBlock(sector)
	if err != nil {
		logger.Logf(logger.Allow, label, "read of sector %#x: %v", sector, err)
		return
	}
	copy(x.buffer, d)
}

// store the buffer of a write transfer to the current block. blocks shorter
// than a sector are merged with the existing sector data.
func (s *SDMMC) store() {
	x := &s.xfer

	if s.portsel != PortSD || s.card == nil {
		return
	}

	sector := x.sector + x.block
	d := x.buffer
	if len(d) != sectorSize {
		d = make([]byte, sectorSize)
		if e, err := s.card.ReadBlock(sector); err == nil {
			copy(d, e)
		}
		copy(d, x.buffer)
	}

	if err := s.card.WriteBlock(sector, d); err != nil {
		logger.Logf(logger.Allow, label, "write of sector %#x: %v", sector, err)
	}
}
