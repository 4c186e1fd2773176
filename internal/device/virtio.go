/*
   Virtio - narrow stub exposing only the interfaces the hart core
   consumes. The virtqueue wire protocol is out of scope for this
   simulator; the attached disk image is kept in memory but no block
   data is transferred to or from the guest.

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

const virtioSize = 0x1000

// Virtio is a minimal block device stub. Config/queue registers pass
// through a flat register file; IsInterrupting/Initialize/DiskAccess are
// the only behavior the hart core depends on.
type Virtio struct {
	regs         [virtioSize]byte
	disk         []byte
	interrupting bool
}

// NewVirtio returns an uninitialized virtio device (no disk attached).
func NewVirtio() *Virtio {
	return &Virtio{}
}

// Initialize attaches a disk image. Passing nil leaves the device present
// but diskless.
func (v *Virtio) Initialize(image []byte) {
	v.disk = image
}

func (v *Virtio) Load(addr uint64, size int) (uint64, Fault) {
	off := addr - VirtioBase
	if off+uint64(size) > virtioSize {
		return 0, LoadFault
	}
	var value uint64
	for i := 0; i < size; i++ {
		value |= uint64(v.regs[off+uint64(i)]) << (8 * i)
	}
	return value, NoFault
}

func (v *Virtio) Store(addr uint64, size int, value uint64) Fault {
	off := addr - VirtioBase
	if off+uint64(size) > virtioSize {
		return StoreFault
	}
	for i := 0; i < size; i++ {
		v.regs[off+uint64(i)] = byte(value >> (8 * i))
	}
	// A write to the queue notify register requests a disk transfer; the
	// guest driver is the only writer of this convention-defined offset.
	if off == queueNotifyOff {
		v.interrupting = true
	}
	return NoFault
}

const queueNotifyOff = 0x50

// IsInterrupting reports whether the guest has written the queue notify
// register and the request has not yet been handled by DiskAccess.
func (v *Virtio) IsInterrupting() bool {
	return v.interrupting
}

// DiskAccess handles a pending queue notification by clearing the
// interrupting flag; it reads and writes no guest memory and no disk
// data. loadDoubleWord and storeByte are supplied by the bus so virtio
// never needs to see the rest of the device map.
func (v *Virtio) DiskAccess(loadDoubleWord func(addr uint64) (uint64, Fault), storeByte func(addr uint64, value byte) Fault) {
	v.interrupting = false
	// Full descriptor-ring walking is out of scope (spec non-goal); this
	// stub only clears the interrupt so the guest driver's poll loop can
	// make progress without ever being handed real data.
	_ = loadDoubleWord
	_ = storeByte
}
