/*
   DRAM - flat guest memory backing store.

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

// DRAM is a flat byte array addressed relative to DramBase, loaded from the
// kernel binary and zero-padded out to DramSize.
type DRAM struct {
	mem [DramSize]byte
}

// NewDRAM creates DRAM with image loaded at the start, zero-padded beyond it.
func NewDRAM(image []byte) *DRAM {
	d := &DRAM{}
	n := copy(d.mem[:], image)
	_ = n
	return d
}

func (d *DRAM) Load(addr uint64, size int) (uint64, Fault) {
	off := addr - DramBase
	if off+uint64(size) > DramSize {
		return 0, LoadFault
	}
	var value uint64
	for i := 0; i < size; i++ {
		value |= uint64(d.mem[off+uint64(i)]) << (8 * i)
	}
	return value, NoFault
}

func (d *DRAM) Store(addr uint64, size int, value uint64) Fault {
	off := addr - DramBase
	if off+uint64(size) > DramSize {
		return StoreFault
	}
	for i := 0; i < size; i++ {
		d.mem[off+uint64(i)] = byte(value >> (8 * i))
	}
	return NoFault
}
