/*
   Decode table construction: every supported instruction's
   (match, mask, handler) triple, built once per hart at construction
   time.

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

import "github.com/rcornwell/rvsim/internal/decode"

// opF3 builds a (match, mask) pair for an instruction identified by
// opcode and funct3 alone (OP-IMM, Load, Store, Branch, JALR, CSR).
func opF3(op, f3 uint32) (match, mask uint32) {
	return op | f3<<12, 0x707f
}

// opF3F7 additionally pins the full 7-bit funct7 field (OP, OP-32,
// M-extension, OP-IMM-32 shifts).
func opF3F7(op, f3, f7 uint32) (match, mask uint32) {
	return op | f3<<12 | f7<<25, 0xfe00707f
}

// opF3F5 pins a 5-bit funct5 in the top bits, wildcarding aq/rl (AMO).
func opF3F5(op, f3, f5 uint32) (match, mask uint32) {
	return op | f3<<12 | f5<<27, 0xf800707f
}

// opOnly builds a (match, mask) pair keyed on the opcode field alone
// (LUI, AUIPC, JAL).
func opOnly(op uint32) (match, mask uint32) {
	return op, 0x7f
}

func buildTable() *decode.Table {
	var patterns []decode.Pattern

	add := func(match, mask uint32, fn handlerFunc) {
		patterns = append(patterns, decode.Pattern{Match: match, Mask: mask, Handler: fn})
	}

	// Upper-immediate and control transfer.
	addOnly := func(op uint32, fn handlerFunc) {
		m, k := opOnly(op)
		add(m, k, fn)
	}
	addOnly(opLUI, execLUI)
	addOnly(opAUIPC, execAUIPC)
	addOnly(opJAL, execJAL)

	addF3 := func(op, f3 uint32, fn handlerFunc) {
		m, k := opF3(op, f3)
		add(m, k, fn)
	}
	addF3(opJALR, 0, execJALR)

	for _, f3 := range []uint32{f3BEQ, f3BNE, f3BLT, f3BGE, f3BLTU, f3BGEU} {
		addF3(opBranch, f3, execBranch)
	}
	for _, f3 := range []uint32{f3B, f3H, f3W, f3D, f3BU, f3HU, f3WU} {
		addF3(opLoad, f3, execLoad)
	}
	for _, f3 := range []uint32{f3B, f3H, f3W, f3D} {
		addF3(opStore, f3, execStore)
	}
	for _, f3 := range []uint32{f3ADDI, f3SLTI, f3SLTIU, f3XORI, f3ORI, f3ANDI} {
		addF3(opImm, f3, execOpImm)
	}
	// SLLI/SRLI/SRAI: funct3 alone disambiguates SLLI; SRLI/SRAI share
	// f3SRLI and are told apart inside execOpImm by encoding bit 30
	// (the shamt field's width leaves funct7 partially overlapping the
	// RV64 6-bit shift amount, so a table-level funct7 pin would be
	// wrong here).
	addF3(opImm, f3SLLI, execOpImm)
	addF3(opImm, f3SRLI, execOpImm)
	addF3(opMiscMem, 0, execMiscMem)
	addF3(opMiscMem, 1, execMiscMem)

	addF3F7 := func(op, f3, f7 uint32, fn handlerFunc) {
		m, k := opF3F7(op, f3, f7)
		add(m, k, fn)
	}
	baseAlu := []uint32{f3ADDI, f3SLLI, f3SLTI, f3SLTIU, f3XORI, f3SRLI, f3ORI, f3ANDI}
	for _, f3 := range baseAlu {
		addF3F7(opOp, f3, funct7Base, execOp)
	}
	addF3F7(opOp, f3ADDI, funct7Alt, execOp) // SUB
	addF3F7(opOp, f3SRLI, funct7Alt, execOp) // SRA
	for _, f3 := range []uint32{f3MUL, f3MULH, f3MULHSU, f3MULHU, f3DIV, f3DIVU, f3REM, f3REMU} {
		addF3F7(opOp, f3, funct7MExt, execOp)
	}

	// ADDIW carries an arbitrary 12-bit immediate, not a funct7-shaped
	// field; decode it directly off funct3 alone. SLLIW/SRLIW/SRAIW use
	// a 5-bit shamt leaving the full funct7 field clean to pin.
	addF3(opImm32, f3ADDI, execOpImm32)
	addF3F7(opImm32, f3SLLI, funct7Base, execOpImm32)
	addF3F7(opImm32, f3SRLI, funct7Base, execOpImm32)
	addF3F7(opImm32, f3SRLI, funct7Alt, execOpImm32) // SRAIW

	for _, f3 := range []uint32{f3ADDI, f3SLLI, f3SRLI} {
		addF3F7(opOp32, f3, funct7Base, execOp32)
	}
	addF3F7(opOp32, f3ADDI, funct7Alt, execOp32) // SUBW
	addF3F7(opOp32, f3SRLI, funct7Alt, execOp32) // SRAW
	for _, f3 := range []uint32{f3MUL, f3DIV, f3DIVU, f3REM, f3REMU} {
		addF3F7(opOp32, f3, funct7MExt, execOp32)
	}

	// Atomics: funct3=010 selects the .W width; funct5 selects the op.
	addF3F5 := func(f5 uint32, fn handlerFunc) {
		m, k := opF3F5(opAmo, f3W, f5)
		add(m, k, fn)
	}
	for _, f5 := range []uint32{amoAdd, amoSwap, amoXor, amoOr, amoAnd, amoMin, amoMax, amoMinu, amoMaxu, amoLR, amoSC} {
		addF3F5(f5, execAmo)
	}

	// CSR instructions: funct3 alone disambiguates, operands vary.
	for _, f3 := range []uint32{f3CSRRW, f3CSRRS, f3CSRRC, f3CSRRWI, f3CSRRSI, f3CSRRCI} {
		addF3(opSystem, f3, execCSR)
	}

	exact := func(v uint32, fn handlerFunc) {
		add(v, 0xffffffff, fn)
	}
	exact(0x00000073, execEcall)
	exact(0x00100073, execEbreak)
	exact(0x10200073, execSret)
	exact(0x30200073, execMret)
	exact(0x10500073, execWfi)
	add(0x12000073, 0xfe007fff, execSfenceVMA)

	return decode.NewTable(patterns)
}
