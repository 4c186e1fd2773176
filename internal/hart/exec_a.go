/*
   RV64A atomic instruction handlers: AMO*.W read-modify-write, and
   LR.W/SC.W built on a single-hart reservation set.

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

// funct5 values (encoding bits 31..27) selecting the atomic operation.
const (
	amoLR   = 0x02
	amoSC   = 0x03
	amoSwap = 0x01
	amoAdd  = 0x00
	amoXor  = 0x04
	amoOr   = 0x08
	amoAnd  = 0x0C
	amoMin  = 0x10
	amoMax  = 0x14
	amoMinu = 0x18
	amoMaxu = 0x1C
)

func execAmo(h *Hart, enc uint32) *trap.Cause {
	addr := h.Regs.Read(decode.Rs1(enc))
	if addr&0x3 != 0 {
		return excLoadMisaligned()
	}
	funct5 := (enc >> 27) & 0x1f

	if funct5 == amoLR {
		v, cause := h.loadVirtual(addr, 4)
		if cause != nil {
			return cause
		}
		h.reservedAddr = addr
		h.reservedValid = true
		h.Regs.Write(decode.Rd(enc), decode.Sext(v, 32))
		h.PC += 4
		return nil
	}

	if funct5 == amoSC {
		var result uint64 = 1 // failure
		if h.reservedValid && h.reservedAddr == addr {
			if cause := h.storeVirtual(addr, 4, h.Regs.Read(decode.Rs2(enc))); cause != nil {
				return cause
			}
			result = 0
		}
		h.reservedValid = false
		h.Regs.Write(decode.Rd(enc), result)
		h.PC += 4
		return nil
	}

	old, cause := h.loadVirtual(addr, 4)
	if cause != nil {
		return cause
	}
	oldW := uint32(old)
	rs2 := uint32(h.Regs.Read(decode.Rs2(enc)))

	var newW uint32
	switch funct5 {
	case amoSwap:
		newW = rs2
	case amoAdd:
		newW = oldW + rs2
	case amoXor:
		newW = oldW ^ rs2
	case amoOr:
		newW = oldW | rs2
	case amoAnd:
		newW = oldW & rs2
	case amoMin:
		if int32(oldW) < int32(rs2) {
			newW = oldW
		} else {
			newW = rs2
		}
	case amoMax:
		if int32(oldW) > int32(rs2) {
			newW = oldW
		} else {
			newW = rs2
		}
	case amoMinu:
		if oldW < rs2 {
			newW = oldW
		} else {
			newW = rs2
		}
	case amoMaxu:
		if oldW > rs2 {
			newW = oldW
		} else {
			newW = rs2
		}
	default:
		c := trap.Exception(trap.IllegalInstruction)
		return &c
	}

	if cause := h.storeVirtual(addr, 4, uint64(newW)); cause != nil {
		return cause
	}
	h.Regs.Write(decode.Rd(enc), decode.Sext(old, 32))
	h.PC += 4
	return nil
}
