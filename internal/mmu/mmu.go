/*
   MMU - Sv32/Sv39 page-table walks with huge-page support, and Bare-mode
   identity translation.

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

// Package mmu translates guest virtual addresses to physical addresses
// by walking Sv32/Sv39 page tables through the bus, or passing them
// through unchanged in Bare mode.
package mmu

import (
	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/debugopt"
	"github.com/rcornwell/rvsim/internal/trap"
)

// Access identifies the kind of memory reference being translated, so a
// failed walk can raise the matching page-fault exception.
type Access int

const (
	AccessLoad Access = iota
	AccessStore
	AccessFetch
)

func (a Access) faultCode() uint64 {
	switch a {
	case AccessLoad:
		return trap.LoadPageFault
	case AccessStore:
		return trap.StorePageFault
	default:
		return trap.InstructionPageFault
	}
}

// PTEReader reads an 8-byte page-table entry from physical address addr,
// reporting ok=false if the bus could not satisfy the read.
type PTEReader func(addr uint64) (uint64, bool)

// MMU owns exactly one translation source (a page-table-entry reader
// over physical memory) and the CSR file it reads satp from.
type MMU struct {
	Read PTEReader
	CSR  *csr.File
}

// New returns an MMU reading page-table entries through read.
func New(csrFile *csr.File, read PTEReader) *MMU {
	return &MMU{Read: read, CSR: csrFile}
}

const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
)

// level describes one radix level of a page-table walk: where in the
// virtual address its VPN field sits, and how many bits it spans.
type level struct {
	vpnShift uint
	vpnBits  uint
}

var sv32Levels = []level{
	{vpnShift: 12, vpnBits: 10},
	{vpnShift: 22, vpnBits: 10},
}

var sv39Levels = []level{
	{vpnShift: 12, vpnBits: 9},
	{vpnShift: 21, vpnBits: 9},
	{vpnShift: 30, vpnBits: 9},
}

// Translate converts vaddr to a physical address for the given access
// kind, per spec.md §4.4. satp.mode == Bare is the identity. Sv32 and
// Sv39 both walk a radix page table; other modes are recognized by
// SatpView but not walked (spec non-goal).
func (m *MMU) Translate(access Access, vaddr uint64) (uint64, *trap.Cause) {
	satp := m.CSR.SatpView()
	switch satp.Mode {
	case csr.Sv39:
		return m.walk(sv39Levels, 8, satp.PPN, vaddr, access)
	case csr.Sv32:
		// Sv32 PTEs are 4 bytes wide (spec.md §3), half the stride of
		// Sv39's 8-byte entries.
		return m.walk(sv32Levels, 4, satp.PPN, vaddr, access)
	default:
		return vaddr, nil
	}
}

func (m *MMU) walk(levels []level, pteSize uint64, rootPPN uint64, vaddr uint64, access Access) (uint64, *trap.Cause) {
	fault := func() (uint64, *trap.Cause) {
		c := trap.Exception(access.faultCode())
		debugopt.Debugf(debugopt.MMU, "translation fault: access=%d vaddr=%#x", access, vaddr)
		return 0, &c
	}

	a := rootPPN * 4096
	i := len(levels) - 1
	var pte uint64
	for {
		lvl := levels[i]
		vpn := (vaddr >> lvl.vpnShift) & ((1 << lvl.vpnBits) - 1)
		entryAddr := a + vpn*pteSize

		v, ok := m.Read(entryAddr)
		if !ok {
			return fault()
		}
		pte = v
		if pteSize == 4 {
			pte &= 0xFFFF_FFFF // the high half belongs to the next entry
		}

		if pte&pteV == 0 || (pte&pteR == 0 && pte&pteW != 0) {
			return fault()
		}
		if pte&(pteR|pteX) != 0 {
			break // leaf
		}
		a = pteToPPN(pte) * 4096
		i--
		if i < 0 {
			return fault()
		}
	}

	switch access {
	case AccessLoad:
		if pte&pteR == 0 {
			return fault()
		}
	case AccessStore:
		if pte&pteW == 0 {
			return fault()
		}
	case AccessFetch:
		if pte&pteX == 0 {
			return fault()
		}
	}

	offset := vaddr & 0xFFF
	ppn := pteToPPN(pte)

	if i == 0 {
		return (ppn << 12) | offset, nil
	}
	return composeSuperpage(len(levels), ppn, vaddr, i, offset), nil
}

// pteToPPN extracts the full PPN field (bits 10..54) from a PTE.
func pteToPPN(pte uint64) uint64 {
	return pte >> 10
}

// composeSuperpage builds the physical address for a leaf found above
// level 0, splicing the leaf's high PPN bits with the low-order virtual
// page numbers per spec.md §4.4 step 7. At a non-zero leaf level the
// low VPN fields below that level are assumed zero in the PTE's PPN and
// are instead taken from the virtual address.
func composeSuperpage(numLevels int, ppn uint64, vaddr uint64, leafLevel int, offset uint64) uint64 {
	vpn0 := (vaddr >> 12) & 0x1FF

	if numLevels == 2 { // Sv32 megapage: leafLevel == 1, 4 MiB
		vpn0 := (vaddr >> 12) & 0x3FF
		return ((ppn >> 10) << 22) | (vpn0 << 12) | offset
	}

	if leafLevel == 1 { // Sv39, 2 MiB
		return ((ppn >> 9) << 21) | (vpn0 << 12) | offset
	}
	// leafLevel == 2, 1 GiB
	vpn1 := (vaddr >> 21) & 0x1FF
	return ((ppn >> 18) << 30) | (vpn1 << 21) | (vpn0 << 12) | offset
}
