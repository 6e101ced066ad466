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

// register offsets from the start of the window. registers below reg32Base
// are 16bit and registers from reg32Base are 32bit.
const (
	regCMD          = 0x00
	regPORTSEL      = 0x02
	regCMDARG0      = 0x04
	regCMDARG1      = 0x06
	regSTOP         = 0x08
	regBLKCOUNT     = 0x0a
	regRESP0        = 0x0c
	regRESP7        = 0x1a
	regSTATUS0      = 0x1c
	regSTATUS1      = 0x1e
	regIRQMASK0     = 0x20
	regIRQMASK1     = 0x22
	regCLKCTL       = 0x24
	regBLKLEN       = 0x26
	regOPT          = 0x28
	regERRORDETAIL0 = 0x2c
	regERRORDETAIL1 = 0x2e
	regFIFO16       = 0x30
	regDATACTL      = 0xd8
	regRESET        = 0xe0
	reg32Base       = 0x100
	regDATA32IRQ    = 0x100
	regDATA32BLKLEN = 0x104
	regDATA32BLKCNT = 0x108
	regDATA32FIFO   = 0x10c
)

// bits of the STATUS0 register.
const (
	Stat0CmdRespEnd   = 0x0001
	Stat0DataEnd      = 0x0004
	Stat0CardInserted = 0x0020
	Stat0WriteProtect = 0x0080
)

// bits of the STATUS1 register.
const (
	Stat1RxReady = 0x0100
	Stat1TxReq   = 0x0200
	Stat1CmdBusy = 0x4000
)

// bits of DATA32_IRQ that reflect the FIFO status.
const (
	data32RxReady  = 0x0100
	data32TxNotReq = 0x0200
)

// application commands are flagged in bit 5 of the R1 response
const r1AppCmd = 0x20

// ready for data bit of the R1 response
const r1ReadyForData = 0x100

// the card state occupies bits 9 to 12 of the R1 response
const r1StateShift = 9

// operating conditions register. the SDHC bit is only reported by the SD
// card in response to ACMD41.
const (
	ocr     = 0x80ff8080
	ocrSDHC = 0x40000000
)

// registers returned by the identification commands.
var (
	sdCID   = [4]uint32{0xd71c65cd, 0x4445147b, 0x4d324731, 0x00150100}
	nandCID = [4]uint32{}
	csd     = [4]uint32{0xe9964040, 0xdff6db7f, 0x2a0f5901, 0x3f269001}
	scr     = []byte{0x00, 0x00, 0x00, 0x2a, 0x01, 0x00, 0x00, 0x00}
)

// size of the ACMD13 status block
const sdStatusSize = 64

// response to CMD0
const cardReady = 0x200

// check pattern returned by CMD8
const ifCond = 0x1aa

// relative card address returned by CMD3
const rca = 0x00010000
