/*
   Integer register file: 32 XLEN-wide registers with the zero-register
   rule.

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

// XLENMask64 masks a result to the modeled 64-bit XLEN.
const XLENMask64 = ^uint64(0)

// RegFile is the 32-register XLEN-wide integer file. Register 0 always
// reads 0; writes to it are silently ignored.
type RegFile struct {
	regs [32]uint64
}

// Read returns the value of register id, or 0 for id==0.
func (r *RegFile) Read(id uint32) uint64 {
	if id == 0 {
		return 0
	}
	return r.regs[id&0x1f]
}

// Write stores value into register id, masked to XLEN; writes to
// register 0 are ignored.
func (r *RegFile) Write(id uint32, value uint64) {
	if id == 0 {
		return
	}
	r.regs[id&0x1f] = value & XLENMask64
}
