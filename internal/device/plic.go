/*
   PLIC - platform-level interrupt controller.

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
	plicSourceOff    = 0x0000
	plicSourceEnd    = 0x0fff
	plicPendingOff   = 0x1000
	plicPendingEnd   = 0x107f
	plicEnableOff    = 0x2000
	plicEnableEnd    = 0x20ff
	plicContextOff   = 0x200000
	plicContextEnd   = 0x201007
	plicContextSize  = 0x1000
	plicNumSources   = 1024
	plicWordsPerCtx  = 32 // enable words per context (1024 sources / 32 bits)
	plicSupervisorCx = 1  // only context 1 (supervisor) claims interrupts in this design
)

// PLIC routes device interrupt lines to the hart. It implements the subset
// of the RISC-V PLIC spec this simulator exercises: 1024 source
// priorities, a pending bitmap, an enable bitmap for two contexts, and a
// per-context threshold/claim pair. Only 4-byte accesses are supported.
type PLIC struct {
	priority  [plicNumSources]uint32
	pending   [plicNumSources / 32]uint32
	enable    [2 * plicWordsPerCtx]uint32
	threshold [2]uint32
	claim     [2]uint32
}

// NewPLIC returns a PLIC with every register zeroed.
func NewPLIC() *PLIC {
	return &PLIC{}
}

func (p *PLIC) Load(addr uint64, size int) (uint64, Fault) {
	if size != 4 {
		return 0, LoadFault
	}
	off := addr - PlicBase
	switch {
	case off <= plicSourceEnd && off%4 == 0:
		return uint64(p.priority[off/4]), NoFault
	case off >= plicPendingOff && off <= plicPendingEnd && (off-plicPendingOff)%4 == 0:
		return uint64(p.pending[(off-plicPendingOff)/4]), NoFault
	case off >= plicEnableOff && off <= plicEnableEnd && (off-plicEnableOff)%4 == 0:
		return uint64(p.enable[(off-plicEnableOff)/4]), NoFault
	case off >= plicContextOff && off <= plicContextEnd:
		ctx, reg, ok := p.contextReg(off)
		if !ok {
			return 0, LoadFault
		}
		if reg == 0 {
			return uint64(p.threshold[ctx]), NoFault
		}
		return uint64(p.claim[ctx]), NoFault
	default:
		return 0, LoadFault
	}
}

func (p *PLIC) Store(addr uint64, size int, value uint64) Fault {
	if size != 4 {
		return StoreFault
	}
	v := uint32(value)
	off := addr - PlicBase
	switch {
	case off <= plicSourceEnd && off%4 == 0:
		p.priority[off/4] = v
	case off >= plicPendingOff && off <= plicPendingEnd && (off-plicPendingOff)%4 == 0:
		p.pending[(off-plicPendingOff)/4] = v
	case off >= plicEnableOff && off <= plicEnableEnd && (off-plicEnableOff)%4 == 0:
		p.enable[(off-plicEnableOff)/4] = v
	case off >= plicContextOff && off <= plicContextEnd:
		ctx, reg, ok := p.contextReg(off)
		if !ok {
			return StoreFault
		}
		if reg == 0 {
			p.threshold[ctx] = v
		} else {
			p.clearPending(uint64(v))
		}
	default:
		return StoreFault
	}
	return NoFault
}

// contextReg decomposes a context-region offset into (context, register
// offset within context) where register 0 is threshold and 4 is claim.
func (p *PLIC) contextReg(off uint64) (ctx int, reg uint64, ok bool) {
	rel := off - plicContextOff
	c := rel / plicContextSize
	if c > 1 {
		return 0, 0, false
	}
	r := rel % plicContextSize
	if r != 0 && r != 4 {
		return 0, 0, false
	}
	return int(c), r, true
}

// UpdatePending sets the pending bit for irq and, if enabled on the
// supervisor context, latches it into that context's claim register.
func (p *PLIC) UpdatePending(irq uint32) {
	p.pending[irq/32] |= 1 << (irq % 32)
	p.updateClaim(irq)
}

func (p *PLIC) clearPending(irq uint64) {
	p.pending[irq/32] &^= 1 << (irq % 32)
	p.updateClaim(0)
}

func (p *PLIC) updateClaim(irq uint32) {
	if irq == 0 || p.enabled(plicSupervisorCx, irq) {
		p.claim[plicSupervisorCx] = irq
	}
}

func (p *PLIC) enabled(ctx int, irq uint32) bool {
	word := int(irq/32) + ctx*plicWordsPerCtx
	bit := irq % 32
	return (p.enable[word]>>bit)&1 == 1
}
