/*
   Instruction field extraction for the standard RISC-V R/I/S/B/U/J
   encodings.

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

package decode

// Opcode returns the low 7 bits of encoding, used to bucket the pattern
// table.
func Opcode(encoding uint32) uint32 { return encoding & 0x7f }

// Rd, Rs1, Rs2 extract the destination/source register fields common to
// every format that carries them.
func Rd(enc uint32) uint32  { return (enc >> 7) & 0x1f }
func Rs1(enc uint32) uint32 { return (enc >> 15) & 0x1f }
func Rs2(enc uint32) uint32 { return (enc >> 20) & 0x1f }
func Funct3(enc uint32) uint32 { return (enc >> 12) & 0x7 }
func Funct7(enc uint32) uint32 { return (enc >> 25) & 0x7f }

// ImmI extracts the 12-bit I-type immediate, unsign-extended.
func ImmI(enc uint32) uint64 {
	return uint64(enc >> 20)
}

// ImmS extracts the 12-bit S-type immediate, unsign-extended.
func ImmS(enc uint32) uint64 {
	return uint64(((enc >> 25) << 5) | ((enc >> 7) & 0x1f))
}

// ImmB extracts the 13-bit B-type immediate (bit 0 is always 0),
// unsign-extended.
func ImmB(enc uint32) uint64 {
	bit11 := (enc >> 7) & 0x1
	bit4_1 := (enc >> 8) & 0xf
	bit10_5 := (enc >> 25) & 0x3f
	bit12 := (enc >> 31) & 0x1
	return uint64((bit12 << 12) | (bit11 << 11) | (bit10_5 << 5) | (bit4_1 << 1))
}

// ImmU extracts the 32-bit U-type immediate, already left-shifted into
// bits 31..12 with the low 12 bits zero.
func ImmU(enc uint32) uint64 {
	return uint64(enc & 0xFFFFF000)
}

// ImmJ extracts the 21-bit J-type immediate (bit 0 is always 0),
// unsign-extended.
func ImmJ(enc uint32) uint64 {
	bit19_12 := (enc >> 12) & 0xff
	bit11 := (enc >> 20) & 0x1
	bit10_1 := (enc >> 21) & 0x3ff
	bit20 := (enc >> 31) & 0x1
	return uint64((bit20 << 20) | (bit19_12 << 12) | (bit11 << 11) | (bit10_1 << 1))
}

// Sext sign-extends value, treating bit width-1 as the sign bit, to a
// full 64-bit XLEN value. Applying Sext twice with the same width is
// idempotent: the second call observes a value whose bits above
// width-1 already replicate the sign, so re-extension is a no-op.
func Sext(value uint64, width uint) uint64 {
	shift := 64 - width
	return uint64(int64(value<<shift) >> shift)
}
