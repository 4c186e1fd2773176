/*
   RV64I base integer instruction handlers: upper-immediate, control
   transfer, loads/stores, and the OP-IMM/OP/OP-IMM-32/OP-32 ALU
   families.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package hart

import (
	"github.com/rcornwell/rvsim/internal/decode"
	"github.com/rcornwell/rvsim/internal/trap"
)

func excLoadMisaligned() *trap.Cause {
	c := trap.Exception(trap.LoadMisaligned)
	return &c
}

func excStoreMisaligned() *trap.Cause {
	c := trap.Exception(trap.StoreMisaligned)
	return &c
}

func execLUI(h *Hart, enc uint32) *trap.Cause {
	h.Regs.Write(decode.Rd(enc), decode.Sext(decode.ImmU(enc), 32))
	h.PC += 4
	return nil
}

func execAUIPC(h *Hart, enc uint32) *trap.Cause {
	h.Regs.Write(decode.Rd(enc), h.PC+decode.Sext(decode.ImmU(enc), 32))
	h.PC += 4
	return nil
}

func execJAL(h *Hart, enc uint32) *trap.Cause {
	link := h.PC + 4
	target := h.PC + decode.Sext(decode.ImmJ(enc), 21)
	h.Regs.Write(decode.Rd(enc), link)
	h.PC = target
	return nil
}

func execJALR(h *Hart, enc uint32) *trap.Cause {
	link := h.PC + 4
	target := (h.Regs.Read(decode.Rs1(enc)) + decode.Sext(decode.ImmI(enc), 12)) &^ 1
	h.Regs.Write(decode.Rd(enc), link)
	h.PC = target
	return nil
}

func execBranch(h *Hart, enc uint32) *trap.Cause {
	a := h.Regs.Read(decode.Rs1(enc))
	b := h.Regs.Read(decode.Rs2(enc))
	var taken bool
	switch decode.Funct3(enc) {
	case f3BEQ:
		taken = a == b
	case f3BNE:
		taken = a != b
	case f3BLT:
		taken = int64(a) < int64(b)
	case f3BGE:
		taken = int64(a) >= int64(b)
	case f3BLTU:
		taken = a < b
	case f3BGEU:
		taken = a >= b
	}
	if taken {
		h.PC += decode.Sext(decode.ImmB(enc), 13)
	} else {
		h.PC += 4
	}
	return nil
}

func execLoad(h *Hart, enc uint32) *trap.Cause {
	addr := h.Regs.Read(decode.Rs1(enc)) + decode.Sext(decode.ImmI(enc), 12)
	var size int
	var signExtendWidth uint
	switch decode.Funct3(enc) {
	case f3B:
		size, signExtendWidth = 1, 8
	case f3H:
		size, signExtendWidth = 2, 16
	case f3W:
		size, signExtendWidth = 4, 32
	case f3D:
		size, signExtendWidth = 8, 0
	case f3BU:
		size = 1
	case f3HU:
		size = 2
	case f3WU:
		size = 4
	default:
		c := trap.Exception(trap.IllegalInstruction)
		return &c
	}
	v, cause := h.loadVirtual(addr, size)
	if cause != nil {
		return cause
	}
	if signExtendWidth != 0 {
		v = decode.Sext(v, signExtendWidth)
	}
	h.Regs.Write(decode.Rd(enc), v)
	h.PC += 4
	return nil
}

func execStore(h *Hart, enc uint32) *trap.Cause {
	addr := h.Regs.Read(decode.Rs1(enc)) + decode.Sext(decode.ImmS(enc), 12)
	var size int
	switch decode.Funct3(enc) {
	case f3B:
		size = 1
	case f3H:
		size = 2
	case f3W:
		size = 4
	case f3D:
		size = 8
	default:
		c := trap.Exception(trap.IllegalInstruction)
		return &c
	}
	if cause := h.storeVirtual(addr, size, h.Regs.Read(decode.Rs2(enc))); cause != nil {
		return cause
	}
	h.PC += 4
	return nil
}

func execOpImm(h *Hart, enc uint32) *trap.Cause {
	rs1 := h.Regs.Read(decode.Rs1(enc))
	imm := decode.Sext(decode.ImmI(enc), 12)
	var result uint64
	switch decode.Funct3(enc) {
	case f3ADDI:
		result = rs1 + imm
	case f3SLTI:
		result = boolToU64(int64(rs1) < int64(imm))
	case f3SLTIU:
		result = boolToU64(rs1 < imm)
	case f3XORI:
		result = rs1 ^ imm
	case f3ORI:
		result = rs1 | imm
	case f3ANDI:
		result = rs1 & imm
	case f3SLLI:
		result = rs1 << (imm & 0x3f)
	case f3SRLI:
		if (enc>>30)&1 != 0 { // SRAI: bit 30 set
			result = uint64(int64(rs1) >> (imm & 0x3f))
		} else {
			result = rs1 >> (imm & 0x3f)
		}
	}
	h.Regs.Write(decode.Rd(enc), result)
	h.PC += 4
	return nil
}

func execOp(h *Hart, enc uint32) *trap.Cause {
	if decode.Funct7(enc) == funct7MExt {
		return execMulDiv(h, enc)
	}
	rs1 := h.Regs.Read(decode.Rs1(enc))
	rs2 := h.Regs.Read(decode.Rs2(enc))
	alt := decode.Funct7(enc) == funct7Alt
	var result uint64
	switch decode.Funct3(enc) {
	case f3ADDI: // ADD/SUB
		if alt {
			result = rs1 - rs2
		} else {
			result = rs1 + rs2
		}
	case f3SLLI: // SLL
		result = rs1 << (rs2 & 0x3f)
	case f3SLTI: // SLT
		result = boolToU64(int64(rs1) < int64(rs2))
	case f3SLTIU: // SLTU
		result = boolToU64(rs1 < rs2)
	case f3XORI: // XOR
		result = rs1 ^ rs2
	case f3SRLI: // SRL/SRA
		if alt {
			result = uint64(int64(rs1) >> (rs2 & 0x3f))
		} else {
			result = rs1 >> (rs2 & 0x3f)
		}
	case f3ORI: // OR
		result = rs1 | rs2
	case f3ANDI: // AND
		result = rs1 & rs2
	}
	h.Regs.Write(decode.Rd(enc), result)
	h.PC += 4
	return nil
}

func execOpImm32(h *Hart, enc uint32) *trap.Cause {
	rs1 := uint32(h.Regs.Read(decode.Rs1(enc)))
	shamt := decode.Rs2(enc) // imm[4:0], same bit position as rs2
	var result32 uint32
	switch decode.Funct3(enc) {
	case f3ADDI: // ADDIW
		imm := uint32(decode.Sext(decode.ImmI(enc), 12))
		result32 = rs1 + imm
	case f3SLLI: // SLLIW
		result32 = rs1 << (shamt & 0x1f)
	case f3SRLI: // SRLIW/SRAIW
		if decode.Funct7(enc) == funct7Alt {
			result32 = uint32(int32(rs1) >> (shamt & 0x1f))
		} else {
			result32 = rs1 >> (shamt & 0x1f)
		}
	default:
		c := trap.Exception(trap.IllegalInstruction)
		return &c
	}
	h.Regs.Write(decode.Rd(enc), decode.Sext(uint64(result32), 32))
	h.PC += 4
	return nil
}

func execOp32(h *Hart, enc uint32) *trap.Cause {
	if decode.Funct7(enc) == funct7MExt {
		return execMulDiv32(h, enc)
	}
	rs1 := uint32(h.Regs.Read(decode.Rs1(enc)))
	rs2 := uint32(h.Regs.Read(decode.Rs2(enc)))
	alt := decode.Funct7(enc) == funct7Alt
	var result32 uint32
	switch decode.Funct3(enc) {
	case f3ADDI: // ADDW/SUBW
		if alt {
			result32 = rs1 - rs2
		} else {
			result32 = rs1 + rs2
		}
	case f3SLLI: // SLLW
		result32 = rs1 << (rs2 & 0x1f)
	case f3SRLI: // SRLW/SRAW
		if alt {
			result32 = uint32(int32(rs1) >> (rs2 & 0x1f))
		} else {
			result32 = rs1 >> (rs2 & 0x1f)
		}
	default:
		c := trap.Exception(trap.IllegalInstruction)
		return &c
	}
	h.Regs.Write(decode.Rd(enc), decode.Sext(uint64(result32), 32))
	h.PC += 4
	return nil
}

func execMiscMem(h *Hart, _ uint32) *trap.Cause {
	// FENCE / FENCE.I: single-hart, no pipeline or TLB to flush.
	h.PC += 4
	return nil
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
