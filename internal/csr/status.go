/*
   Typed view over mstatus/sstatus.

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

package csr

// Privilege is one of the three modes this simulator models.
type Privilege uint8

const (
	User Privilege = iota
	Supervisor
	Machine
)

// Status is the decoded view shared by the mstatus and sstatus cells;
// each cell is an independent raw register, but the same bit layout
// (and hence the same typed view) backs both.
type Status struct {
	SIE, MIE     bool
	SPIE, MPIE   bool
	SPP          Privilege // User or Supervisor only
	MPP          Privilege
	SUM, MXR     bool
	TVM, TW, TSR bool
	SD           bool
}

// statusAt decodes the raw cell at idx (Mstatus or Sstatus) into a
// Status. mstatus and sstatus are independent storage cells in this
// simulator, exactly as in the reference implementation's Csrs array
// (csrs.rs): a delegated trap stacks into sstatus, never mstatus, and
// vice versa.
func (f *File) statusAt(idx uint16) Status {
	v := f.regs[idx]
	return Status{
		SIE:  bit(v, StatusSIE),
		MIE:  bit(v, StatusMIE),
		SPIE: bit(v, StatusSPIE),
		MPIE: bit(v, StatusMPIE),
		SPP:  Privilege(boolToUint(bit(v, StatusSPP))),
		MPP:  Privilege((v >> StatusMPPShift) & StatusMPPMask),
		SUM:  bit(v, StatusSUM),
		MXR:  bit(v, StatusMXR),
		TVM:  bit(v, StatusTVM),
		TW:   bit(v, StatusTW),
		TSR:  bit(v, StatusTSR),
		SD:   bit(v, StatusSD),
	}
}

// setStatusAt encodes s back into the raw cell at idx, preserving bits
// this view does not model.
func (f *File) setStatusAt(idx uint16, s Status) {
	v := f.regs[idx]
	v = setBit(v, StatusSIE, s.SIE)
	v = setBit(v, StatusMIE, s.MIE)
	v = setBit(v, StatusSPIE, s.SPIE)
	v = setBit(v, StatusMPIE, s.MPIE)
	v = setBit(v, StatusSPP, s.SPP == Supervisor)
	v &^= uint64(StatusMPPMask) << StatusMPPShift
	v |= (uint64(s.MPP) & StatusMPPMask) << StatusMPPShift
	v = setBit(v, StatusSUM, s.SUM)
	v = setBit(v, StatusMXR, s.MXR)
	v = setBit(v, StatusTVM, s.TVM)
	v = setBit(v, StatusTW, s.TW)
	v = setBit(v, StatusTSR, s.TSR)
	v = setBit(v, StatusSD, s.SD)
	f.regs[idx] = v
}

// StatusView decodes the raw mstatus cell into a Status.
func (f *File) StatusView() Status { return f.statusAt(Mstatus) }

// SetStatus encodes s back into the raw mstatus cell, preserving bits
// this view does not model.
func (f *File) SetStatus(s Status) { f.setStatusAt(Mstatus, s) }

// SstatusView decodes the raw sstatus cell into a Status. sstatus is a
// storage cell independent of mstatus; it is the one a Supervisor-
// delegated trap stacks into.
func (f *File) SstatusView() Status { return f.statusAt(Sstatus) }

// SetSstatus encodes s back into the raw sstatus cell, preserving bits
// this view does not model.
func (f *File) SetSstatus(s Status) { f.setStatusAt(Sstatus, s) }

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Mip/Mie typed accessors: the pending/enable interrupt bit pairs.
type Interrupts struct {
	SSoft, MSoft   bool
	STimer, MTimer bool
	SExt, MExt     bool
}

func decodeInterrupts(v uint64) Interrupts {
	return Interrupts{
		SSoft:  bit(v, IntSSoft),
		MSoft:  bit(v, IntMSoft),
		STimer: bit(v, IntSTimer),
		MTimer: bit(v, IntMTimer),
		SExt:   bit(v, IntSExt),
		MExt:   bit(v, IntMExt),
	}
}

func encodeInterrupts(i Interrupts) uint64 {
	var v uint64
	v = setBit(v, IntSSoft, i.SSoft)
	v = setBit(v, IntMSoft, i.MSoft)
	v = setBit(v, IntSTimer, i.STimer)
	v = setBit(v, IntMTimer, i.MTimer)
	v = setBit(v, IntSExt, i.SExt)
	v = setBit(v, IntMExt, i.MExt)
	return v
}

// MipView decodes the pending-interrupt bits.
func (f *File) MipView() Interrupts { return decodeInterrupts(f.regs[Mip]) }

// SetMip encodes i back into mip.
func (f *File) SetMip(i Interrupts) { f.regs[Mip] = encodeInterrupts(i) }

// MieView decodes the interrupt-enable bits.
func (f *File) MieView() Interrupts { return decodeInterrupts(f.regs[Mie]) }

// SetMie encodes i back into mie.
func (f *File) SetMie(i Interrupts) { f.regs[Mie] = encodeInterrupts(i) }
