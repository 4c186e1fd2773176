/*
   Typed views over mtvec/stvec and satp.

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

package csr

// TrapMode is the low two bits of mtvec/stvec.
type TrapMode uint8

const (
	Direct TrapMode = iota
	Vectored
)

// TrapVector decomposes a raw mtvec/stvec cell into base and mode.
type TrapVector struct {
	Base uint64
	Mode TrapMode
}

func decodeTrapVector(v uint64) TrapVector {
	mode := TrapMode(v & 0b11)
	if mode != Vectored {
		mode = Direct
	}
	return TrapVector{Base: v &^ 0b11, Mode: mode}
}

// Mtvec returns the decoded machine-mode trap vector.
func (f *File) Mtvec() TrapVector { return decodeTrapVector(f.regs[Mtvec]) }

// Stvec returns the decoded supervisor-mode trap vector.
func (f *File) Stvec() TrapVector { return decodeTrapVector(f.regs[Stvec]) }

// EntryPC computes the PC the trap engine jumps to for a trap with the
// given cause code, given whether it is an interrupt.
func (tv TrapVector) EntryPC(cause uint64, isInterrupt bool) uint64 {
	if tv.Mode == Vectored && isInterrupt {
		return tv.Base + 4*cause
	}
	return tv.Base
}

// SatpMode enumerates the address translation schemes satp can select.
type SatpMode uint8

const (
	Bare SatpMode = 0
	Sv32 SatpMode = 1 // synthetic: real Sv32 encodes mode in bit 31 only
	Sv39 SatpMode = 8
	Sv48 SatpMode = 9
	Sv57 SatpMode = 10
	Sv64 SatpMode = 11
)

// SatpFields is the decoded view of the satp CSR for XLEN=64 encoding
// (mode in bits 60..64, ASID in 44..60, PPN in 0..44).
type SatpFields struct {
	Mode SatpMode
	ASID uint64
	PPN  uint64
}

// SatpView decodes the raw satp cell under the XLEN=64 layout.
func (f *File) SatpView() SatpFields {
	v := f.regs[Satp]
	return SatpFields{
		Mode: SatpMode(v >> 60),
		ASID: (v >> 44) & 0xFFFF,
		PPN:  v & 0xFFF_FFFF_FFFF,
	}
}
