/*
   Zicsr instruction handlers: CSRRW/S/C and their zero-extended-
   immediate variants.

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

// CSR handlers do not gate accessibility by privilege: spec.md §4.2
// leaves this unchecked, an explicit Open Question decision (see
// DESIGN.md).
func execCSR(h *Hart, enc uint32) *trap.Cause {
	idx := uint16(decode.ImmI(enc))
	rd := decode.Rd(enc)
	rs1 := decode.Rs1(enc)
	funct3 := decode.Funct3(enc)

	var operand uint64
	zimm := uint64(rs1) // the 5-bit rs1 field doubles as a zero-extended immediate
	switch funct3 {
	case f3CSRRWI, f3CSRRSI, f3CSRRCI:
		operand = zimm
	default:
		operand = h.Regs.Read(rs1)
	}

	old := h.CSR.Read(idx)
	h.Regs.Write(rd, old)

	switch funct3 {
	case f3CSRRW, f3CSRRWI:
		h.CSR.Write(idx, operand)
	case f3CSRRS, f3CSRRSI:
		if rs1 != 0 {
			h.CSR.Write(idx, old|operand)
		}
	case f3CSRRC, f3CSRRCI:
		if rs1 != 0 {
			h.CSR.Write(idx, old&^operand)
		}
	}
	h.PC += 4
	return nil
}
