/*
   Base opcode-field constants (encoding bits 6..0) for the instruction
   formats this hart decodes.

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

const (
	opLUI     = 0x37
	opAUIPC   = 0x17
	opJAL     = 0x6F
	opJALR    = 0x67
	opBranch  = 0x63
	opLoad    = 0x03
	opStore   = 0x23
	opImm     = 0x13
	opImm32   = 0x1B
	opOp      = 0x33
	opOp32    = 0x3B
	opMiscMem = 0x0F
	opSystem  = 0x73
	opAmo     = 0x2F
)

// funct3 values within the Branch opcode.
const (
	f3BEQ  = 0
	f3BNE  = 1
	f3BLT  = 4
	f3BGE  = 5
	f3BLTU = 6
	f3BGEU = 7
)

// funct3 values within the Load/Store opcodes.
const (
	f3B  = 0
	f3H  = 1
	f3W  = 2
	f3D  = 3
	f3BU = 4
	f3HU = 5
	f3WU = 6
)

// funct3 values within OP-IMM / OP (base integer ops).
const (
	f3ADDI  = 0
	f3SLLI  = 1
	f3SLTI  = 2
	f3SLTIU = 3
	f3XORI  = 4
	f3SRLI  = 5 // SRAI shares this funct3, distinguished by funct7 bit 30
	f3ORI   = 6
	f3ANDI  = 7
)

// funct7 (RV32-style, top 7 bits of a 32-bit-shift-amount encoding) and
// funct6 (RV64 6-bit shift amount) top-bit values distinguishing srl/sra.
const (
	funct7Base = 0x00
	funct7Alt  = 0x20 // SUB, SRA, SRAI, SRAIW, SRAW
	funct7MExt = 0x01 // M-extension MUL/DIV/REM family
)

// funct3 values for CSR instructions (SYSTEM opcode).
const (
	f3CSRRW  = 1
	f3CSRRS  = 2
	f3CSRRC  = 3
	f3CSRRWI = 5
	f3CSRRSI = 6
	f3CSRRCI = 7
)
