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

package arm

import (
	"fmt"
	"math/bits"
	"strings"
)

// Disassemble returns a single line of disassembly for the opcode. The pc
// argument is the address of the instruction and is used to resolve branch
// targets. Opcodes that the interpreter does not support disassemble as
// data.
//
// The disassembly is for display purposes only and does not attempt to
// reproduce the exact syntax of any assembler.
func Disassemble(arch Architecture, opcode uint32, thumb bool, pc uint32) string {
	if thumb {
		return disasmThumb(arch, uint16(opcode), pc)
	}
	return disasmARM(arch, opcode, pc)
}

func regName(r uint32) string {
	switch r {
	case rSP:
		return "SP"
	case rLR:
		return "LR"
	case rPC:
		return "PC"
	}
	return fmt.Sprintf("R%d", r)
}

func regListString(list uint32) string {
	s := strings.Builder{}
	s.WriteRune('{')
	first := true
	for i := uint32(0); i < 16; i++ {
		if list&(1<<i) != 0 {
			if !first {
				s.WriteString(", ")
			}
			s.WriteString(regName(i))
			first = false
		}
	}
	s.WriteRune('}')
	return s.String()
}

func disasmARM(arch Architecture, opcode uint32, pc uint32) string {
	cond := conditionSuffix[opcode>>28]
	rn := (opcode >> 16) & 0x0f
	rd := (opcode >> 12) & 0x0f
	rm := opcode & 0x0f

	if opcode>>28 == 0b1111 {
		if opcode&0x0e000000 == 0x0a000000 {
			offset := uint32(int32(opcode<<8) >> 6)
			if opcode&0x01000000 == 0x01000000 {
				offset += 2
			}
			return fmt.Sprintf("BLX $%08x", pc+8+offset)
		}
		if opcode&0x0d70f000 == 0x0550f000 {
			return fmt.Sprintf("PLD [%s]", regName(rn))
		}
		if arch.isV6() {
			switch {
			case opcode&0x0ff10020 == 0x01000000:
				return "CPS"
			case opcode&0x0ffffdff == 0x01010000:
				if opcode&0x200 == 0x200 {
					return "SETEND BE"
				}
				return "SETEND LE"
			case opcode == 0xf57ff01f:
				return "CLREX"
			case opcode&0x0e5fffe0 == 0x084d0500:
				return fmt.Sprintf("SRS #%s", Mode(opcode&0x1f))
			case opcode&0x0e50ffff == 0x08100a00:
				return fmt.Sprintf("RFE %s", regName(rn))
			}
		}
		return fmt.Sprintf("DCD $%08x", opcode)
	}

	switch (opcode >> 25) & 0x07 {
	case 0b000, 0b001:
		immediate := opcode&0x02000000 == 0x02000000
		if !immediate && opcode&0xf0 == 0x90 {
			switch (opcode >> 23) & 0x03 {
			case 0b00:
				if opcode&0x00200000 == 0x00200000 {
					return fmt.Sprintf("MLA%s %s, %s, %s, %s", cond, regName(rn), regName(rm), regName((opcode>>8)&0x0f), regName(rd))
				}
				return fmt.Sprintf("MUL%s %s, %s, %s", cond, regName(rn), regName(rm), regName((opcode>>8)&0x0f))
			case 0b01:
				op := [4]string{"UMULL", "UMLAL", "SMULL", "SMLAL"}[(opcode>>21)&0x03]
				return fmt.Sprintf("%s%s %s, %s, %s, %s", op, cond, regName(rd), regName(rn), regName(rm), regName((opcode>>8)&0x0f))
			case 0b10:
				b := ""
				if opcode&0x00400000 == 0x00400000 {
					b = "B"
				}
				return fmt.Sprintf("SWP%s%s %s, %s, [%s]", cond, b, regName(rd), regName(rm), regName(rn))
			case 0b11:
				op := [8]string{"STREX", "LDREX", "STREXD", "LDREXD", "STREXB", "LDREXB", "STREXH", "LDREXH"}[(opcode>>20)&0x07]
				return fmt.Sprintf("%s%s %s, [%s]", op, cond, regName(rd), regName(rn))
			}
		}
		if !immediate && opcode&0x90 == 0x90 {
			load := opcode&0x00100000 == 0x00100000
			var op string
			switch (opcode >> 5) & 0x03 {
			case 0b01:
				op = "STRH"
				if load {
					op = "LDRH"
				}
			case 0b10:
				op = "LDRD"
				if load {
					op = "LDRSB"
				}
			case 0b11:
				op = "STRD"
				if load {
					op = "LDRSH"
				}
			}
			return fmt.Sprintf("%s%s %s, [%s, ...]", op, cond, regName(rd), regName(rn))
		}
		if opcode&0x01900000 == 0x01000000 {
			if immediate {
				if opcode&0x000f0000 == 0 && arch.isV6() {
					return [5]string{"NOP", "YIELD", "WFE", "WFI", "SEV"}[min(opcode&0xff, 4)]
				}
				return fmt.Sprintf("MSR%s #$%x", cond, opcode&0xfff)
			}
			switch (opcode >> 4) & 0x0f {
			case 0b0000:
				psr := "CPSR"
				if opcode&0x00400000 == 0x00400000 {
					psr = "SPSR"
				}
				if opcode&0x00200000 == 0x00200000 {
					return fmt.Sprintf("MSR%s %s, %s", cond, psr, regName(rm))
				}
				return fmt.Sprintf("MRS%s %s, %s", cond, regName(rd), psr)
			case 0b0001:
				if opcode&0x00600000 == 0x00600000 {
					return fmt.Sprintf("CLZ%s %s, %s", cond, regName(rd), regName(rm))
				}
				return fmt.Sprintf("BX%s %s", cond, regName(rm))
			case 0b0011:
				return fmt.Sprintf("BLX%s %s", cond, regName(rm))
			case 0b0101:
				op := [4]string{"QADD", "QSUB", "QDADD", "QDSUB"}[(opcode>>21)&0x03]
				return fmt.Sprintf("%s%s %s, %s, %s", op, cond, regName(rd), regName(rm), regName(rn))
			case 0b0111:
				return fmt.Sprintf("BKPT #$%04x", ((opcode>>4)&0xfff0)|(opcode&0x0f))
			}
			if opcode&0x90 == 0x80 {
				op := [4]string{"SMLA", "SMLAW", "SMLAL", "SMUL"}[(opcode>>21)&0x03]
				return fmt.Sprintf("%s%s %s, %s, %s", op, cond, regName(rn), regName(rm), regName((opcode>>8)&0x0f))
			}
			return fmt.Sprintf("DCD $%08x", opcode)
		}

		op := (opcode >> 21) & 0x0f
		s := ""
		if opcode&0x00100000 == 0x00100000 && (op < dpTST || op > dpCMN) {
			s = "S"
		}

		var operand string
		if immediate {
			imm := bits.RotateLeft32(opcode&0xff, -int((opcode&0xf00)>>7))
			operand = fmt.Sprintf("#$%x", imm)
		} else if opcode&0x10 == 0x10 {
			operand = fmt.Sprintf("%s, %s %s", regName(rm), shiftMnemonic[(opcode>>5)&0x03], regName((opcode>>8)&0x0f))
		} else if amount := (opcode >> 7) & 0x1f; amount != 0 || (opcode>>5)&0x03 != shiftLSL {
			operand = fmt.Sprintf("%s, %s #%d", regName(rm), shiftMnemonic[(opcode>>5)&0x03], amount)
		} else {
			operand = regName(rm)
		}

		switch op {
		case dpMOV, dpMVN:
			return fmt.Sprintf("%s%s%s %s, %s", dataProcessingMnemonic[op], cond, s, regName(rd), operand)
		case dpTST, dpTEQ, dpCMP, dpCMN:
			return fmt.Sprintf("%s%s %s, %s", dataProcessingMnemonic[op], cond, regName(rn), operand)
		}
		return fmt.Sprintf("%s%s%s %s, %s, %s", dataProcessingMnemonic[op], cond, s, regName(rd), regName(rn), operand)

	case 0b010, 0b011:
		if opcode&0x02000010 == 0x02000010 {
			return fmt.Sprintf("MEDIA%s $%08x", cond, opcode)
		}
		op := "STR"
		if opcode&0x00100000 == 0x00100000 {
			op = "LDR"
		}
		if opcode&0x00400000 == 0x00400000 {
			op += "B"
		}
		sign := "-"
		if opcode&0x00800000 == 0x00800000 {
			sign = ""
		}
		var offset string
		if opcode&0x02000000 == 0 {
			offset = fmt.Sprintf("#%s$%x", sign, opcode&0xfff)
		} else {
			offset = fmt.Sprintf("%s%s", sign, regName(rm))
		}
		if opcode&0x01000000 == 0 {
			return fmt.Sprintf("%s%s %s, [%s], %s", op, cond, regName(rd), regName(rn), offset)
		}
		wb := ""
		if opcode&0x00200000 == 0x00200000 {
			wb = "!"
		}
		return fmt.Sprintf("%s%s %s, [%s, %s]%s", op, cond, regName(rd), regName(rn), offset, wb)

	case 0b100:
		op := "STM"
		if opcode&0x00100000 == 0x00100000 {
			op = "LDM"
		}
		op += [4]string{"DA", "IA", "DB", "IB"}[(opcode>>23)&0x03]
		wb := ""
		if opcode&0x00200000 == 0x00200000 {
			wb = "!"
		}
		user := ""
		if opcode&0x00400000 == 0x00400000 {
			user = "^"
		}
		return fmt.Sprintf("%s%s %s%s, %s%s", op, cond, regName(rn), wb, regListString(opcode&0xffff), user)

	case 0b101:
		op := "B"
		if opcode&0x01000000 == 0x01000000 {
			op = "BL"
		}
		offset := uint32(int32(opcode<<8) >> 6)
		return fmt.Sprintf("%s%s $%08x", op, cond, pc+8+offset)

	case 0b111:
		if opcode&0x01000000 == 0x01000000 {
			return fmt.Sprintf("SWI%s #$%06x", cond, opcode&0xffffff)
		}
		if opcode&0x10 == 0x10 {
			op := "MCR"
			if opcode&0x00100000 == 0x00100000 {
				op = "MRC"
			}
			return fmt.Sprintf("%s%s p%d, %d, %s, c%d, c%d, %d", op, cond, (opcode>>8)&0x0f, (opcode>>21)&0x07,
				regName(rd), rn, rm, (opcode>>5)&0x07)
		}
	}

	return fmt.Sprintf("DCD $%08x", opcode)
}

func disasmThumb(arch Architecture, opcode uint16, pc uint32) string {
	lo := func(r uint16) string {
		return regName(uint32(r & 0x07))
	}

	switch {
	case opcode&0xf800 == 0xf800:
		return fmt.Sprintf("BL (suffix) #$%03x", uint32(opcode&0x7ff)<<1)
	case opcode&0xf800 == 0xf000:
		return fmt.Sprintf("BL (prefix) #$%03x", opcode&0x7ff)
	case opcode&0xf800 == 0xe800:
		return fmt.Sprintf("BLX (suffix) #$%03x", uint32(opcode&0x7ff)<<1)
	case opcode&0xf800 == 0xe000:
		offset := uint32(int32(int16(opcode<<5)) >> 4)
		return fmt.Sprintf("B $%08x", pc+4+offset)
	case opcode&0xff00 == 0xdf00:
		return fmt.Sprintf("SWI #$%02x", opcode&0xff)
	case opcode&0xf000 == 0xd000:
		offset := uint32(int32(int8(opcode&0xff))) << 1
		return fmt.Sprintf("B%s $%08x", conditionSuffix[(opcode>>8)&0x0f], pc+4+offset)
	case opcode&0xf000 == 0xc000:
		op := "STMIA"
		if opcode&0x0800 == 0x0800 {
			op = "LDMIA"
		}
		return fmt.Sprintf("%s %s!, %s", op, lo(opcode>>8), regListString(uint32(opcode&0xff)))
	case opcode&0xf600 == 0xb400:
		list := uint32(opcode & 0xff)
		if opcode&0x0800 == 0x0800 {
			if opcode&0x100 == 0x100 {
				list |= 1 << rPC
			}
			return fmt.Sprintf("POP %s", regListString(list))
		}
		if opcode&0x100 == 0x100 {
			list |= 1 << rLR
		}
		return fmt.Sprintf("PUSH %s", regListString(list))
	case opcode&0xff00 == 0xb000:
		if opcode&0x80 == 0x80 {
			return fmt.Sprintf("SUB SP, #$%x", uint32(opcode&0x7f)<<2)
		}
		return fmt.Sprintf("ADD SP, #$%x", uint32(opcode&0x7f)<<2)
	case opcode&0xff00 == 0xbe00:
		return fmt.Sprintf("BKPT #$%02x", opcode&0xff)
	case opcode&0xff00 == 0xb200 && arch.isV6():
		op := [4]string{"SXTH", "SXTB", "UXTH", "UXTB"}[(opcode>>6)&0x03]
		return fmt.Sprintf("%s %s, %s", op, lo(opcode), lo(opcode>>3))
	case opcode&0xff00 == 0xba00 && arch.isV6():
		op := [4]string{"REV", "REV16", "???", "REVSH"}[(opcode>>6)&0x03]
		return fmt.Sprintf("%s %s, %s", op, lo(opcode), lo(opcode>>3))
	case opcode&0xfff7 == 0xb650 && arch.isV6():
		return "SETEND"
	case opcode&0xffe8 == 0xb660 && arch.isV6():
		return "CPS"
	case opcode&0xf000 == 0xa000:
		src := "PC"
		if opcode&0x0800 == 0x0800 {
			src = "SP"
		}
		return fmt.Sprintf("ADD %s, %s, #$%x", lo(opcode>>8), src, uint32(opcode&0xff)<<2)
	case opcode&0xf000 == 0x9000:
		op := "STR"
		if opcode&0x0800 == 0x0800 {
			op = "LDR"
		}
		return fmt.Sprintf("%s %s, [SP, #$%x]", op, lo(opcode>>8), uint32(opcode&0xff)<<2)
	case opcode&0xf000 == 0x8000:
		op := "STRH"
		if opcode&0x0800 == 0x0800 {
			op = "LDRH"
		}
		return fmt.Sprintf("%s %s, [%s, #$%x]", op, lo(opcode), lo(opcode>>3), uint32((opcode>>6)&0x1f)<<1)
	case opcode&0xe000 == 0x6000:
		op := "STR"
		if opcode&0x0800 == 0x0800 {
			op = "LDR"
		}
		offset := uint32((opcode >> 6) & 0x1f)
		if opcode&0x1000 == 0x1000 {
			op += "B"
		} else {
			offset <<= 2
		}
		return fmt.Sprintf("%s %s, [%s, #$%x]", op, lo(opcode), lo(opcode>>3), offset)
	case opcode&0xf200 == 0x5200:
		op := [4]string{"STRH", "LDSB", "LDRH", "LDSH"}[((opcode>>10)&0x01)|((opcode>>10)&0x02)]
		return fmt.Sprintf("%s %s, [%s, %s]", op, lo(opcode), lo(opcode>>3), lo(opcode>>6))
	case opcode&0xf200 == 0x5000:
		op := [4]string{"STR", "STRB", "LDR", "LDRB"}[(opcode>>10)&0x03]
		return fmt.Sprintf("%s %s, [%s, %s]", op, lo(opcode), lo(opcode>>3), lo(opcode>>6))
	case opcode&0xf800 == 0x4800:
		return fmt.Sprintf("LDR %s, [PC, #$%x]", lo(opcode>>8), uint32(opcode&0xff)<<2)
	case opcode&0xfc00 == 0x4400:
		rd := uint32(opcode&0x07) | uint32(opcode&0x80)>>4
		rs := uint32(opcode>>3) & 0x0f
		switch (opcode >> 8) & 0x03 {
		case 0b00:
			return fmt.Sprintf("ADD %s, %s", regName(rd), regName(rs))
		case 0b01:
			return fmt.Sprintf("CMP %s, %s", regName(rd), regName(rs))
		case 0b10:
			return fmt.Sprintf("MOV %s, %s", regName(rd), regName(rs))
		}
		if opcode&0x80 == 0x80 {
			return fmt.Sprintf("BLX %s", regName(rs))
		}
		return fmt.Sprintf("BX %s", regName(rs))
	case opcode&0xfc00 == 0x4000:
		op := [16]string{"AND", "EOR", "LSL", "LSR", "ASR", "ADC", "SBC", "ROR",
			"TST", "NEG", "CMP", "CMN", "ORR", "MUL", "BIC", "MVN"}[(opcode>>6)&0x0f]
		return fmt.Sprintf("%s %s, %s", op, lo(opcode), lo(opcode>>3))
	case opcode&0xe000 == 0x2000:
		op := [4]string{"MOV", "CMP", "ADD", "SUB"}[(opcode>>11)&0x03]
		return fmt.Sprintf("%s %s, #$%02x", op, lo(opcode>>8), opcode&0xff)
	case opcode&0xf800 == 0x1800:
		op := "ADD"
		if opcode&0x0200 == 0x0200 {
			op = "SUB"
		}
		if opcode&0x0400 == 0x0400 {
			return fmt.Sprintf("%s %s, %s, #%d", op, lo(opcode), lo(opcode>>3), (opcode>>6)&0x07)
		}
		return fmt.Sprintf("%s %s, %s, %s", op, lo(opcode), lo(opcode>>3), lo(opcode>>6))
	case opcode&0xe000 == 0x0000:
		op := shiftMnemonic[(opcode>>11)&0x03]
		return fmt.Sprintf("%s %s, %s, #%d", op, lo(opcode), lo(opcode>>3), (opcode>>6)&0x1f)
	}

	return fmt.Sprintf("DCW $%04x", opcode)
}
