/*
   RV64M multiply/divide instruction handlers.

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
	"math/bits"

	"github.com/rcornwell/rvsim/internal/decode"
	"github.com/rcornwell/rvsim/internal/trap"
)

// funct3 values for the M-extension, shared between OP and OP-32.
const (
	f3MUL    = 0
	f3MULH   = 1
	f3MULHSU = 2
	f3MULHU  = 3
	f3DIV    = 4
	f3DIVU   = 5
	f3REM    = 6
	f3REMU   = 7
)

func execMulDiv(h *Hart, enc uint32) *trap.Cause {
	rs1 := h.Regs.Read(decode.Rs1(enc))
	rs2 := h.Regs.Read(decode.Rs2(enc))
	var result uint64
	switch decode.Funct3(enc) {
	case f3MUL:
		result = rs1 * rs2
	case f3MULH:
		result = mulhSigned(rs1, rs2)
	case f3MULHU:
		hi, _ := bits.Mul64(rs1, rs2)
		result = hi
	case f3MULHSU:
		result = mulhSignedUnsigned(rs1, rs2)
	case f3DIV:
		result = divSigned(rs1, rs2)
	case f3DIVU:
		if rs2 == 0 {
			result = ^uint64(0)
		} else {
			result = rs1 / rs2
		}
	case f3REM:
		result = remSigned(rs1, rs2)
	case f3REMU:
		if rs2 == 0 {
			result = rs1
		} else {
			result = rs1 % rs2
		}
	}
	h.Regs.Write(decode.Rd(enc), result)
	h.PC += 4
	return nil
}

func execMulDiv32(h *Hart, enc uint32) *trap.Cause {
	rs1 := int32(uint32(h.Regs.Read(decode.Rs1(enc))))
	rs2 := int32(uint32(h.Regs.Read(decode.Rs2(enc))))
	var result32 uint32
	switch decode.Funct3(enc) {
	case f3MUL:
		result32 = uint32(rs1 * rs2)
	case f3DIV:
		if rs2 == 0 {
			result32 = 0xFFFFFFFF
		} else {
			// Go defines x / -1 for x == MinInt32 as wrapping to x,
			// matching spec.md's "not special-cased" division rule.
			result32 = uint32(rs1 / rs2)
		}
	case f3DIVU:
		u1, u2 := uint32(rs1), uint32(rs2)
		if u2 == 0 {
			result32 = 0xFFFFFFFF
		} else {
			result32 = u1 / u2
		}
	case f3REM:
		if rs2 == 0 {
			result32 = uint32(rs1)
		} else {
			result32 = uint32(rs1 % rs2)
		}
	case f3REMU:
		u1, u2 := uint32(rs1), uint32(rs2)
		if u2 == 0 {
			result32 = u1
		} else {
			result32 = u1 % u2
		}
	default:
		c := trap.Exception(trap.IllegalInstruction)
		return &c
	}
	h.Regs.Write(decode.Rd(enc), decode.Sext(uint64(result32), 32))
	h.PC += 4
	return nil
}

// mulhSigned computes the upper 64 bits of the signed 128-bit product
// of a and b, both interpreted as signed XLEN-wide values.
func mulhSigned(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	if int64(b) < 0 {
		hi -= a
	}
	return hi
}

// mulhSignedUnsigned computes the upper 64 bits of the product of
// signed a and unsigned b.
func mulhSignedUnsigned(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	return hi
}

// divSigned implements RV64 signed division: division by zero yields
// all-ones; INT_MIN/-1 overflow is not special-cased (spec.md §4.2).
func divSigned(a, b uint64) uint64 {
	if b == 0 {
		return ^uint64(0)
	}
	return uint64(int64(a) / int64(b))
}

// remSigned implements RV64 signed remainder: remainder on division by
// zero equals the dividend.
func remSigned(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return uint64(int64(a) % int64(b))
}
