/*
   CSR bank - raw 4096-slot control/status register storage with typed
   bitfield views layered over it.

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

// Package csr implements the hart's 4096-slot control/status register
// file. Typed views (mstatus, mip/mie, mtvec/stvec, satp, ...) always
// round-trip through the raw cell: read typed, mutate, write raw bits.
package csr

import "github.com/rcornwell/rvsim/internal/debugopt"

// Index constants for CSRs this simulator interprets specially. All
// other indices are plain 64-bit storage.
const (
	Sstatus = 0x100
	Sie     = 0x104
	Stvec   = 0x105
	Sepc    = 0x141
	Scause  = 0x142
	Stval   = 0x143
	Sip     = 0x144
	Satp    = 0x180
	Mstatus = 0x300
	Medeleg = 0x302
	Mideleg = 0x303
	Mie     = 0x304
	Mtvec   = 0x305
	Mepc    = 0x341
	Mcause  = 0x342
	Mtval   = 0x343
	Mip     = 0x344
	TimeCSR = 0xC01
)

// mstatus/sstatus bit positions.
const (
	StatusSIE      = 1
	StatusMIE      = 3
	StatusSPIE     = 5
	StatusMPIE     = 7
	StatusSPP      = 8
	StatusMPPShift = 11
	StatusMPPMask  = 0x3
	StatusSUM      = 18
	StatusMXR      = 19
	StatusTVM      = 20
	StatusTW       = 21
	StatusTSR      = 22
	StatusSD       = 63
)

// mip/mie bit positions.
const (
	IntSSoft  = 1
	IntMSoft  = 3
	IntSTimer = 5
	IntMTimer = 7
	IntSExt   = 9
	IntMExt   = 11
)

// File is the 4096-slot raw CSR array.
type File struct {
	regs [4096]uint64
}

// Read returns the raw 64-bit contents of CSR idx.
func (f *File) Read(idx uint16) uint64 {
	return f.regs[idx&0xFFF]
}

// Write stores value into CSR idx, unchecked, except for the special
// masking rule on Sie (0x104): only bits enabled by mideleg are updated
// in mie, preserving the rest.
func (f *File) Write(idx uint16, value uint64) {
	idx &= 0xFFF
	if idx == Sie {
		mask := f.regs[Mideleg]
		f.regs[Mie] = (f.regs[Mie] &^ mask) | (value & mask)
		debugopt.Debugf(debugopt.CSR, "sie write %#x masked by mideleg=%#x -> mie=%#x", value, mask, f.regs[Mie])
		return
	}
	f.regs[idx] = value
}

// bit reports whether bit position p of v is set.
func bit(v uint64, p uint) bool {
	return (v>>p)&1 != 0
}

// setBit returns v with bit position p set to on.
func setBit(v uint64, p uint, on bool) uint64 {
	if on {
		return v | (1 << p)
	}
	return v &^ (1 << p)
}
