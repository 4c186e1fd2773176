/*
   Memory-mapped device interface and address map definitions.

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

// Package device holds the memory-mapped device interface shared by every
// peripheral on the bus, and the address ranges that route an access to
// one of them.
package device

// Fault is returned by a device when an access can't be satisfied: either
// the address is out of the device's range, or the width isn't one the
// device supports.
type Fault int

const (
	// NoFault indicates the access succeeded.
	NoFault Fault = iota
	// LoadFault indicates a read could not be satisfied.
	LoadFault
	// StoreFault indicates a write could not be satisfied.
	StoreFault
)

// MMIO is implemented by every device reachable from the bus.
type MMIO interface {
	// Load reads size bytes (1, 2, 4, or 8) at addr, little-endian.
	Load(addr uint64, size int) (uint64, Fault)
	// Store writes the low size bytes of value at addr, little-endian.
	Store(addr uint64, size int, value uint64) Fault
}

// Address ranges in hexadecimal per the system memory map. The bus routes
// addr to a device when Base <= addr < End; the End address itself is not
// routed to the device and faults.
const (
	ClintBase uint64 = 0x0200_0000
	ClintEnd  uint64 = 0x0201_0000

	PlicBase uint64 = 0x0C00_0000
	PlicEnd  uint64 = 0x0C20_8000

	UartBase uint64 = 0x1000_0000
	UartEnd  uint64 = 0x1000_0100

	VirtioBase uint64 = 0x1000_1000
	VirtioEnd  uint64 = 0x1000_2000

	DramBase uint64 = 0x8000_0000
	DramSize uint64 = 128 * 1024 * 1024
	DramEnd  uint64 = DramBase + DramSize
)

// PLIC source IRQ numbers used by the two external-interrupt-capable devices.
const (
	UartIRQ   = 10
	VirtioIRQ = 1
)
