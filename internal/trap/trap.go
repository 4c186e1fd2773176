/*
   Trap engine - synchronous exceptions and asynchronous interrupts,
   cause codes, delegation, mstatus stacking, and trap-entry vectoring.

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

// Package trap implements cause codes, the delegation/entry algorithm,
// and the fatal-exception list for the hart's trap delivery path.
package trap

import (
	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/debugopt"
)

// Cause identifies an exception or interrupt. The code is the bare
// cause number; Interrupt marks whether it traps through mideleg (true)
// or medeleg (false) and whether the top cause bit is set on entry.
type Cause struct {
	Code      uint64
	Interrupt bool
}

// Exception cause codes, spec.md §4.3.
const (
	InstructionMisaligned = 0
	InstructionFault      = 1
	IllegalInstruction    = 2
	Breakpoint            = 3
	LoadMisaligned        = 4
	LoadFault             = 5
	StoreMisaligned       = 6
	StoreFault            = 7
	UserEnvCall           = 8
	SupervisorEnvCall     = 9
	MachineEnvCall        = 11
	InstructionPageFault  = 12
	LoadPageFault         = 13
	StorePageFault        = 15
)

// Interrupt cause codes, spec.md §4.3.
const (
	USoftInterrupt  = 0
	SSoftInterrupt  = 1
	MSoftInterrupt  = 3
	UTimerInterrupt = 4
	STimerInterrupt = 5
	MTimerInterrupt = 7
	UExtInterrupt   = 8
	SExtInterrupt   = 9
	MExtInterrupt   = 11
)

// Exception constructs a synchronous-exception Cause.
func Exception(code uint64) Cause { return Cause{Code: code} }

// Interrupt constructs an asynchronous-interrupt Cause.
func Interrupt(code uint64) Cause { return Cause{Code: code, Interrupt: true} }

// IsFatal reports whether this exception aborts the simulator rather
// than being delivered through the trap engine. A simulator convenience
// per spec.md §4.3, not an architectural rule.
func (c Cause) IsFatal() bool {
	if c.Interrupt {
		return false
	}
	switch c.Code {
	case InstructionFault, IllegalInstruction, InstructionMisaligned,
		LoadFault, StorePageFault, StoreMisaligned:
		return true
	}
	return false
}

// Deliver runs the delegation/stacking/entry algorithm of spec.md §4.3
// against file, given the hart's current privilege and PC, and returns
// the new privilege and PC the hart driver should resume at.
func Deliver(file *csr.File, cur csr.Privilege, pc uint64, cause Cause) (csr.Privilege, uint64) {
	target := csr.Machine
	if cur != csr.Machine && delegated(file, cause) {
		target = csr.Supervisor
	}

	encodedCause := cause.Code
	if cause.Interrupt {
		encodedCause |= 1 << 63
	}

	// sstatus and mstatus are independent storage cells (csr.Sstatus vs
	// csr.Mstatus); a Supervisor-delegated trap stacks into sstatus only,
	// never touching mstatus, matching the reference implementation's
	// handle_trap.
	if target == csr.Supervisor {
		status := file.SstatusView()
		file.Write(csr.Sepc, pc)
		file.Write(csr.Scause, encodedCause)
		file.Write(csr.Stval, 0)
		status.SPIE = status.SIE
		status.SIE = false
		if cur == csr.User {
			status.SPP = csr.User
		} else {
			status.SPP = csr.Supervisor
		}
		file.SetSstatus(status)
	} else {
		status := file.StatusView()
		file.Write(csr.Mepc, pc)
		file.Write(csr.Mcause, encodedCause)
		file.Write(csr.Mtval, 0)
		status.MPIE = status.MIE
		status.MIE = false
		status.MPP = cur
		file.SetStatus(status)
	}

	var vec csr.TrapVector
	if target == csr.Supervisor {
		vec = file.Stvec()
	} else {
		vec = file.Mtvec()
	}
	debugopt.Debugf(debugopt.Trap, "trap delivered: cause=%d interrupt=%v from=%v target=%v pc=%#x", cause.Code, cause.Interrupt, cur, target, pc)
	return target, vec.EntryPC(cause.Code, cause.Interrupt)
}

// delegated reports whether cause should be routed to Supervisor rather
// than Machine, per medeleg/mideleg.
func delegated(file *csr.File, cause Cause) bool {
	if cause.Code >= 64 {
		return false
	}
	if cause.Interrupt {
		return file.Read(csr.Mideleg)&(1<<cause.Code) != 0
	}
	return file.Read(csr.Medeleg)&(1<<cause.Code) != 0
}

// priority order, highest first, per spec.md §4.3 step 3.
var priorityOrder = []uint64{
	MExtInterrupt, MSoftInterrupt, MTimerInterrupt,
	SExtInterrupt, SSoftInterrupt, STimerInterrupt,
}

// Arbitrate runs the interrupt-arbitration algorithm: gate by the
// current privilege's global enable, compute mip&mie, and take the
// highest-priority pending bit, clearing it in mip. Returns ok=false if
// nothing is both pending, enabled, and unmasked by the current
// privilege's global-interrupt-enable bit.
func Arbitrate(file *csr.File, cur csr.Privilege) (cause Cause, ok bool) {
	// Supervisor's global-enable gate lives in the independent sstatus
	// cell, not mstatus, matching the reference implementation's
	// take_interrupt (csrs.sstatus().sie() vs csrs.mstatus().mie()).
	switch cur {
	case csr.Supervisor:
		if !file.SstatusView().SIE {
			return Cause{}, false
		}
	case csr.Machine:
		if !file.StatusView().MIE {
			return Cause{}, false
		}
	}

	pending := file.Read(csr.Mip) & file.Read(csr.Mie)
	for _, code := range priorityOrder {
		if pending&(1<<code) != 0 {
			file.Write(csr.Mip, file.Read(csr.Mip)&^(1<<code))
			return Interrupt(code), true
		}
	}
	return Cause{}, false
}

// Return runs MRET/SRET: restores PC, privilege and the global-enable
// bit from the matching trap CSRs, per spec.md §4.2.
func Return(file *csr.File, fromMachine bool) (newPriv csr.Privilege, newPC uint64) {
	if fromMachine {
		status := file.StatusView()
		newPriv = status.MPP
		status.MIE = status.MPIE
		status.MPIE = true
		status.MPP = csr.User
		newPC = file.Read(csr.Mepc)
		file.SetStatus(status)
	} else {
		status := file.SstatusView()
		newPriv = status.SPP
		status.SIE = status.SPIE
		status.SPIE = true
		status.SPP = csr.User
		newPC = file.Read(csr.Sepc)
		file.SetSstatus(status)
	}
	return newPriv, newPC
}
