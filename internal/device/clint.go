/*
   CLINT - core-local interruptor: msip, mtime, mtimecmp.

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

package device

const (
	msipOff     = 0
	mtimecmpOff = 0x4000
	mtimeOff    = 0xBFF8
)

// CLINT holds the three core-local interrupt registers. mtime/mtimecmp
// drive the timer interrupt; msip drives the machine software interrupt.
// Reflecting the pending bits into mip is the hart driver's job (its tick step),
// since CLINT has no access to the CSR bank.
type CLINT struct {
	msip     uint64
	mtimecmp uint64
	mtime    uint64
}

// NewCLINT returns a CLINT with all registers zeroed.
func NewCLINT() *CLINT {
	return &CLINT{}
}

// regAt returns the register backing byte offset off and the offset at
// which that register starts, or ok=false if off addresses no register.
func (c *CLINT) regAt(off uint64) (reg uint64, base uint64, ok bool) {
	switch {
	case off >= msipOff && off < msipOff+4:
		return c.msip, msipOff, true
	case off >= mtimecmpOff && off < mtimecmpOff+8:
		return c.mtimecmp, mtimecmpOff, true
	case off >= mtimeOff && off < mtimeOff+8:
		return c.mtime, mtimeOff, true
	default:
		return 0, 0, false
	}
}

func (c *CLINT) Load(addr uint64, size int) (uint64, Fault) {
	off := addr - ClintBase
	reg, base, ok := c.regAt(off)
	if !ok {
		return 0, LoadFault
	}
	shift := (off - base) * 8
	return (reg >> shift) & sizeMask(size), NoFault
}

func (c *CLINT) Store(addr uint64, size int, value uint64) Fault {
	off := addr - ClintBase
	reg, base, ok := c.regAt(off)
	if !ok {
		return StoreFault
	}
	shift := (off - base) * 8
	mask := sizeMask(size) << shift
	reg = (reg &^ mask) | ((value << shift) & mask)
	switch base {
	case msipOff:
		c.msip = reg
	case mtimecmpOff:
		c.mtimecmp = reg
	case mtimeOff:
		c.mtime = reg
	}
	return NoFault
}

func sizeMask(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * size)) - 1
}

// MSIP reports whether the machine-software-interrupt bit is set.
func (c *CLINT) MSIP() bool { return c.msip&1 != 0 }

// MTime returns the current mtime value.
func (c *CLINT) MTime() uint64 { return c.mtime }

// MTimeCmp returns the current mtimecmp value.
func (c *CLINT) MTimeCmp() uint64 { return c.mtimecmp }

// Increment advances mtime by one tick, per the hart driver's timer tick.
func (c *CLINT) Increment() {
	c.mtime++
}
