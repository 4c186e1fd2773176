/*
   Bus - sole owner of every memory-mapped device, dispatching loads and
   stores by address range (Base inclusive, End exclusive).

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

// Package bus routes loads and stores from the hart to the device that
// owns the targeted address range. No device is reachable except
// through a Bus.
package bus

import (
	"github.com/rcornwell/rvsim/internal/debugopt"
	"github.com/rcornwell/rvsim/internal/device"
)

// Bus owns DRAM and every peripheral and dispatches accesses by address.
type Bus struct {
	DRAM   *device.DRAM
	CLINT  *device.CLINT
	PLIC   *device.PLIC
	UART   *device.UART
	Virtio *device.Virtio
}

// New constructs a Bus over the given kernel image, with UART wired to
// the supplied console streams.
func New(kernelImage []byte, console *device.UART) *Bus {
	return &Bus{
		DRAM:   device.NewDRAM(kernelImage),
		CLINT:  device.NewCLINT(),
		PLIC:   device.NewPLIC(),
		UART:   console,
		Virtio: device.NewVirtio(),
	}
}

// Load reads size bytes at addr, routing to whichever device owns that
// address, or returns LoadFault if nothing claims it.
func (b *Bus) Load(addr uint64, size int) (uint64, device.Fault) {
	switch {
	case addr >= device.ClintBase && addr < device.ClintEnd:
		return b.CLINT.Load(addr, size)
	case addr >= device.PlicBase && addr < device.PlicEnd:
		return b.PLIC.Load(addr, size)
	case addr >= device.UartBase && addr < device.UartEnd:
		return b.UART.Load(addr, size)
	case addr >= device.VirtioBase && addr < device.VirtioEnd:
		return b.Virtio.Load(addr, size)
	case addr >= device.DramBase && addr < device.DramEnd:
		return b.DRAM.Load(addr, size)
	default:
		return 0, device.LoadFault
	}
}

// Store writes the low size bytes of value at addr, routing the same way
// as Load.
func (b *Bus) Store(addr uint64, size int, value uint64) device.Fault {
	switch {
	case addr >= device.ClintBase && addr < device.ClintEnd:
		return b.CLINT.Store(addr, size, value)
	case addr >= device.PlicBase && addr < device.PlicEnd:
		return b.PLIC.Store(addr, size, value)
	case addr >= device.UartBase && addr < device.UartEnd:
		return b.UART.Store(addr, size, value)
	case addr >= device.VirtioBase && addr < device.VirtioEnd:
		return b.Virtio.Store(addr, size, value)
	case addr >= device.DramBase && addr < device.DramEnd:
		return b.DRAM.Store(addr, size, value)
	default:
		return device.StoreFault
	}
}

// LoadDoubleWord and StoreByte adapt Bus to the narrow callback shape
// virtio's disk stub expects, so virtio never needs to see the device
// interface directly.
func (b *Bus) LoadDoubleWord(addr uint64) (uint64, device.Fault) {
	return b.Load(addr, 8)
}

func (b *Bus) StoreByte(addr uint64, value byte) device.Fault {
	return b.Store(addr, 1, uint64(value))
}

// PollInterrupts latches the UART/virtio external lines into the PLIC
// pending bitmap; CLINT lines are not polled here. Called once per hart step,
// mirroring the teacher's per-cycle device poll in the channel driver.
func (b *Bus) PollInterrupts() {
	if b.UART.IsInterrupting() {
		debugopt.Debugf(debugopt.Device, "uart irq=%d pending", device.UartIRQ)
		b.PLIC.UpdatePending(device.UartIRQ)
	}
	if b.Virtio.IsInterrupting() {
		debugopt.Debugf(debugopt.Device, "virtio irq=%d pending", device.VirtioIRQ)
		b.PLIC.UpdatePending(device.VirtioIRQ)
		b.Virtio.DiskAccess(b.LoadDoubleWord, b.StoreByte)
	}
}

// Tick advances CLINT's mtime by one, per the hart driver's timer tick.
func (b *Bus) Tick() {
	b.CLINT.Increment()
}
