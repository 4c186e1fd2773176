/*
   UART - minimal 16550 console, with a background reader goroutine
   delivering standard input bytes to the receive holding register.

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

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

const (
	uartSize = 0x100

	uartRHR = 0 // Receive holding register.
	uartTHR = 0 // Transmit holding register (same offset as RHR).
	uartLSR = 5 // Line status register.

	uartLSRRx uint8 = 1      // Data available to read.
	uartLSRTx uint8 = 1 << 5 // Transmitter empty, ready for next byte.
)

// UART is a minimal 16550 subset: only byte-wide accesses to a 256-byte
// register file, with RHR/THR/LSR given special behavior and everything
// else passed through untouched.
type UART struct {
	mu   sync.Mutex
	cond *sync.Cond
	regs [uartSize]byte

	interrupting atomic.Bool

	out io.Writer
}

// NewUART starts the background reader goroutine over in, writing
// transmitted bytes to out, and returns the UART.
func NewUART(in io.Reader, out io.Writer) *UART {
	u := &UART{out: out}
	u.cond = sync.NewCond(&u.mu)
	u.regs[uartLSR] |= uartLSRTx

	go u.readLoop(in)
	return u
}

func (u *UART) readLoop(in io.Reader) {
	r := bufio.NewReader(in)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		u.mu.Lock()
		for u.regs[uartLSR]&uartLSRRx != 0 {
			u.cond.Wait()
		}
		u.regs[uartRHR] = b
		u.regs[uartLSR] |= uartLSRRx
		u.interrupting.Store(true)
		u.mu.Unlock()
	}
}

func (u *UART) Load(addr uint64, size int) (uint64, Fault) {
	if size != 1 {
		return 0, LoadFault
	}
	off := addr - UartBase
	if off >= uartSize {
		return 0, LoadFault
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if off == uartRHR {
		u.regs[uartLSR] &^= uartLSRRx
		u.cond.Signal()
	}
	return uint64(u.regs[off]), NoFault
}

func (u *UART) Store(addr uint64, size int, value uint64) Fault {
	if size != 1 {
		return StoreFault
	}
	off := addr - UartBase
	if off >= uartSize {
		return StoreFault
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if off == uartTHR {
		fmt.Fprintf(u.out, "%c", byte(value))
		if f, ok := u.out.(interface{ Flush() error }); ok {
			_ = f.Flush()
		} else if f, ok := u.out.(interface{ Sync() error }); ok {
			_ = f.Sync()
		}
	} else {
		u.regs[off] = byte(value)
	}
	return NoFault
}

// IsInterrupting reports and clears the pending-interrupt edge: a swap to
// false, so the hart driver observes each receive exactly once.
func (u *UART) IsInterrupting() bool {
	return u.interrupting.Swap(false)
}
