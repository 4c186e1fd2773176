/*
   Hart state: privilege, registers, CSR file, MMU, and bus, wired
   together into the per-step driver loop.

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

// Package hart implements the privileged execution core: the register
// file, the RV64I/M/A/Zicsr/Zifencei instruction handlers, and the
// one-step fetch/decode/execute/trap/timer driver loop.
package hart

import (
	"github.com/rcornwell/rvsim/internal/bus"
	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/decode"
	"github.com/rcornwell/rvsim/internal/device"
	"github.com/rcornwell/rvsim/internal/mmu"
	"github.com/rcornwell/rvsim/internal/trap"
)

// handlerFunc implements one instruction's semantics. On success it
// returns nil, having already advanced PC (to pc+4, or to a computed
// control-transfer target). On failure it returns the exception to
// raise; PC is left unmodified so the trap engine can stack the
// faulting pc.
type handlerFunc func(h *Hart, enc uint32) *trap.Cause

// Hart is one simulated RISC-V hart: its architectural state plus the
// MMU and bus it owns exclusively.
type Hart struct {
	Regs RegFile
	PC   uint64
	Priv csr.Privilege
	CSR  csr.File
	Bus  *bus.Bus
	MMU  *mmu.MMU

	table *decode.Table

	// reservation implements LR.W/SC.W as a single reservation set: the
	// address of the last LR.W, valid until any store (this hart's or,
	// in a multi-hart design, another's) invalidates it. See DESIGN.md
	// for why this shape rather than the unimplemented original.
	reservedAddr  uint64
	reservedValid bool
}

// New constructs a hart with the initial state of spec.md §6: Machine
// privilege, PC at DRAM base, x2 (sp) at the top of DRAM, everything
// else zero.
func New(b *bus.Bus) *Hart {
	h := &Hart{
		Bus:  b,
		Priv: csr.Machine,
	}
	h.PC = device.DramBase
	h.Regs.Write(2, device.DramBase+device.DramSize)
	h.MMU = mmu.New(&h.CSR, h.readPTE)
	h.table = buildTable()
	return h
}

// readPTE reads an 8-byte page-table entry from physical memory,
// adapting the bus's (value, Fault) shape to the MMU's (value, ok).
func (h *Hart) readPTE(addr uint64) (uint64, bool) {
	v, fault := h.Bus.Load(addr, 8)
	return v, fault == 0
}

// fetch reads the 32-bit instruction at the current PC, translated
// through the MMU as an instruction fetch.
func (h *Hart) fetch() (uint32, *trap.Cause) {
	paddr, cause := h.MMU.Translate(mmu.AccessFetch, h.PC)
	if cause != nil {
		return 0, cause
	}
	v, fault := h.Bus.Load(paddr, 4)
	if fault != 0 {
		c := trap.Exception(trap.InstructionFault)
		return 0, &c
	}
	return uint32(v), nil
}

// loadVirtual reads size bytes at the virtual address vaddr.
func (h *Hart) loadVirtual(vaddr uint64, size int) (uint64, *trap.Cause) {
	paddr, cause := h.MMU.Translate(mmu.AccessLoad, vaddr)
	if cause != nil {
		return 0, cause
	}
	v, fault := h.Bus.Load(paddr, size)
	if fault != 0 {
		c := trap.Exception(trap.LoadFault)
		return 0, &c
	}
	return v, nil
}

// storeVirtual writes the low size bytes of value at virtual address vaddr.
func (h *Hart) storeVirtual(vaddr uint64, size int, value uint64) *trap.Cause {
	paddr, cause := h.MMU.Translate(mmu.AccessStore, vaddr)
	if cause != nil {
		return cause
	}
	if fault := h.Bus.Store(paddr, size, value); fault != 0 {
		c := trap.Exception(trap.StoreFault)
		return &c
	}
	// Any store invalidates this hart's reservation if it covers the
	// reserved word; conservatively drop the reservation on any store.
	h.reservedValid = false
	return nil
}
