/*
   Hart driver: the one-step fetch/decode/execute/trap/timer loop.

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

import (
	"fmt"

	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/trap"
)

// Halted is returned by OneStep when a fatal exception (spec.md §4.3)
// has aborted the simulator.
type Halted struct {
	Cause  trap.Cause
	PC     uint64
	Opcode uint32
}

func (h *Halted) Error() string {
	if h.Cause.Code == trap.IllegalInstruction {
		return fmt.Sprintf("illegal instruction %#08x at pc %#x", h.Opcode, h.PC)
	}
	return fmt.Sprintf("fatal exception %d at pc %#x", h.Cause.Code, h.PC)
}

// OneStep runs a single hart cycle: execute, deliver any non-fatal
// trap, and tick the timer. It returns a *Halted error if the
// simulator must abort (spec.md §4.3's fatal-exception list).
func (h *Hart) OneStep() error {
	cause, opcode := h.execute()
	if cause != nil {
		if cause.IsFatal() {
			return &Halted{Cause: *cause, PC: h.PC, Opcode: opcode}
		}
		priv, pc := trap.Deliver(&h.CSR, h.Priv, h.PC, *cause)
		h.Priv = priv
		h.PC = pc
	}
	h.tick()
	return nil
}

// execute fetches, decodes, checks for a pending interrupt (which
// preempts the decoded instruction without effect), and otherwise runs
// the instruction's handler. The interrupt check runs between decode
// and execute, not before fetch, matching the reference implementation's
// one_step (fetch, decode, take_interrupt, exec).
func (h *Hart) execute() (*trap.Cause, uint32) {
	enc, cause := h.fetch()
	if cause != nil {
		return cause, enc
	}

	handle, ok := h.table.Decode(enc)
	if !ok {
		c := trap.Exception(trap.IllegalInstruction)
		return &c, enc
	}

	if cause, ok := h.checkInterrupts(); ok {
		return &cause, enc
	}

	fn := handle.(handlerFunc)
	return fn(h, enc), enc
}

// checkInterrupts polls the bus's interrupting devices, folds a pending
// UART/virtio line into mip.SExt, and arbitrates. Folding the external
// line into mip is done here because bus has no CSR access; the bus
// itself only knows about the PLIC's pending bit, mirroring the
// reference implementation's check_external_interrupts (called from
// within take_interrupt, which does have CSR access).
func (h *Hart) checkInterrupts() (trap.Cause, bool) {
	h.Bus.PollInterrupts()

	if h.Bus.UART.IsInterrupting() || h.Bus.Virtio.IsInterrupting() {
		mip := h.CSR.MipView()
		mip.SExt = true
		h.CSR.SetMip(mip)
	}

	return trap.Arbitrate(&h.CSR, h.Priv)
}

// tick advances CLINT's mtime, folds msip/mtimecmp into mip, and
// increments the time CSR, per spec.md §4.3 "Timer tick".
func (h *Hart) tick() {
	h.Bus.Tick()

	mip := h.CSR.MipView()
	mip.MSoft = h.Bus.CLINT.MSIP()
	mip.MTimer = h.Bus.CLINT.MTime() >= h.Bus.CLINT.MTimeCmp()
	h.CSR.SetMip(mip)

	h.CSR.Write(csr.TimeCSR, h.CSR.Read(csr.TimeCSR)+1)
}
