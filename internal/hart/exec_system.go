/*
   Privileged system instruction handlers: ECALL/EBREAK, MRET/SRET,
   WFI, SFENCE.VMA.

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
	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/trap"
)

func execEcall(h *Hart, _ uint32) *trap.Cause {
	var code uint64
	switch h.Priv {
	case csr.User:
		code = trap.UserEnvCall
	case csr.Supervisor:
		code = trap.SupervisorEnvCall
	default:
		code = trap.MachineEnvCall
	}
	c := trap.Exception(code)
	return &c
}

func execEbreak(h *Hart, _ uint32) *trap.Cause {
	c := trap.Exception(trap.Breakpoint)
	return &c
}

func execMret(h *Hart, _ uint32) *trap.Cause {
	priv, pc := trap.Return(&h.CSR, true)
	h.Priv = priv
	h.PC = pc
	return nil
}

func execSret(h *Hart, _ uint32) *trap.Cause {
	priv, pc := trap.Return(&h.CSR, false)
	h.Priv = priv
	h.PC = pc
	return nil
}

// execWfi is unspecified by the design this hart follows; WFI is a
// no-op, matching FENCE's single-hart treatment.
func execWfi(h *Hart, _ uint32) *trap.Cause {
	h.PC += 4
	return nil
}

func execSfenceVMA(h *Hart, _ uint32) *trap.Cause {
	h.PC += 4
	return nil
}
