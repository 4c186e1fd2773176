package hart

import (
	"io"
	"strings"
	"testing"

	"github.com/rcornwell/rvsim/internal/bus"
	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/device"
	"github.com/rcornwell/rvsim/internal/trap"
)

func newTestHart(t *testing.T) *Hart {
	t.Helper()
	console := device.NewUART(strings.NewReader(""), io.Discard)
	b := bus.New(nil, console)
	return New(b)
}

// encodeR builds an R-type encoding (OP, OP-32, AMO-without-funct5 shape).
func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encodeI builds an I-type encoding (OP-IMM, LOAD, JALR, CSR).
func encodeI(opcode, rd, funct3, rs1 uint32, imm12 uint32) uint32 {
	return (imm12&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func TestRegisterZeroAlwaysReadsZero(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(0, 0xDEAD)
	if got := h.Regs.Read(0); got != 0 {
		t.Fatalf("x0 = %#x, want 0", got)
	}
}

func TestAddiBasic(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(1, 5)
	pc := h.PC
	// ADDI x2, x1, 10
	enc := encodeI(opImm, 2, f3ADDI, 1, 10)
	if cause := execOpImm(h, enc); cause != nil {
		t.Fatalf("unexpected cause: %+v", cause)
	}
	if got := h.Regs.Read(2); got != 15 {
		t.Fatalf("x2 = %d, want 15", got)
	}
	if h.PC != pc+4 {
		t.Fatalf("PC = %#x, want %#x", h.PC, pc+4)
	}
}

func TestSrliSraiDisambiguation(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(1, uint64(0xF)<<60) // top nibble set, rest zero: negative value

	// SRLI x2, x1, 4 (funct7 = 0)
	enc := encodeI(opImm, 2, f3SRLI, 1, 4)
	execOpImm(h, enc)
	if got := h.Regs.Read(2); got>>60 != 0 {
		t.Fatalf("SRLI leaked sign bits: %#x", got)
	}

	// SRAI x3, x1, 4 (funct7 bit 30 i.e. imm bit 10 set -> imm = 0x400|4)
	enc = encodeI(opImm, 3, f3SRLI, 1, 0x400|4)
	execOpImm(h, enc)
	if got := h.Regs.Read(3); got>>60 == 0 {
		t.Fatalf("SRAI did not sign-extend: %#x", got)
	}
}

func TestAddSubDisambiguation(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(1, 10)
	h.Regs.Write(2, 3)

	add := encodeR(opOp, 3, f3ADDI, 1, 2, funct7Base)
	execOp(h, add)
	if got := h.Regs.Read(3); got != 13 {
		t.Fatalf("ADD = %d, want 13", got)
	}

	sub := encodeR(opOp, 4, f3ADDI, 1, 2, funct7Alt)
	execOp(h, sub)
	if got := h.Regs.Read(4); got != 7 {
		t.Fatalf("SUB = %d, want 7", got)
	}
}

func TestXlenMaskOnAddw(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(1, 0x7FFFFFFF)
	h.Regs.Write(2, 1)
	// ADDW x3, x1, x2 -> 32-bit overflow to negative, sign-extended to 64.
	enc := encodeR(opOp32, 3, f3ADDI, 1, 2, funct7Base)
	execOp32(h, enc)
	got := h.Regs.Read(3)
	if got != 0xFFFFFFFF80000000 {
		t.Fatalf("ADDW result = %#x, want sign-extended 0x80000000", got)
	}
}

func TestDivByZero(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(1, 42)
	h.Regs.Write(2, 0)

	div := encodeR(opOp, 3, f3DIV, 1, 2, funct7MExt)
	execMulDiv(h, div)
	if got := h.Regs.Read(3); got != ^uint64(0) {
		t.Fatalf("DIV by zero = %#x, want all-ones", got)
	}

	rem := encodeR(opOp, 4, f3REM, 1, 2, funct7MExt)
	execMulDiv(h, rem)
	if got := h.Regs.Read(4); got != 42 {
		t.Fatalf("REM by zero = %d, want dividend 42", got)
	}

	divu := encodeR(opOp, 5, f3DIVU, 1, 2, funct7MExt)
	execMulDiv(h, divu)
	if got := h.Regs.Read(5); got != ^uint64(0) {
		t.Fatalf("DIVU by zero = %#x, want all-ones", got)
	}
}

func TestMulhSigned(t *testing.T) {
	h := newTestHart(t)
	a, b := int64(-2), int64(-3)
	h.Regs.Write(1, uint64(a))
	h.Regs.Write(2, uint64(b))
	// MULH x3, x1, x2: (-2)*(-3) = 6, upper 64 bits of signed 128-bit
	// product of two small negatives is 0.
	enc := encodeR(opOp, 3, f3MULH, 1, 2, funct7MExt)
	execMulDiv(h, enc)
	if got := h.Regs.Read(3); got != 0 {
		t.Fatalf("MULH = %#x, want 0", got)
	}
}

func TestCsrrwRoundTrip(t *testing.T) {
	h := newTestHart(t)
	h.CSR.Write(0x341, 0x1234) // mepc, arbitrary scratch CSR
	h.Regs.Write(1, 0x5678)

	// CSRRW x2, mepc, x1
	enc := encodeI(opSystem, 2, f3CSRRW, 1, 0x341)
	execCSR(h, enc)

	if got := h.Regs.Read(2); got != 0x1234 {
		t.Fatalf("rd = %#x, want old csr value 0x1234", got)
	}
	if got := h.CSR.Read(0x341); got != 0x5678 {
		t.Fatalf("csr = %#x, want new value 0x5678", got)
	}
}

func TestCsrrsNopWhenRs1Zero(t *testing.T) {
	h := newTestHart(t)
	h.CSR.Write(0x341, 0xABCD)

	// CSRRS x2, mepc, x0 (rs1 field is 0): read-only, must not modify the CSR.
	enc := encodeI(opSystem, 2, f3CSRRS, 0, 0x341)
	execCSR(h, enc)

	if got := h.Regs.Read(2); got != 0xABCD {
		t.Fatalf("rd = %#x, want 0xabcd", got)
	}
	if got := h.CSR.Read(0x341); got != 0xABCD {
		t.Fatalf("csr modified by a read-only CSRRS: %#x", got)
	}
}

func TestLrScSuccessAndFailure(t *testing.T) {
	h := newTestHart(t)
	addr := uint64(device.DramBase + 0x100)
	h.Regs.Write(1, addr)
	h.Regs.Write(2, 0x42)

	lr := encodeR(opAmo, 3, 2 /*funct3=W*/, 1, 0, amoLR<<2)
	if cause := execAmo(h, lr); cause != nil {
		t.Fatalf("LR.W unexpected cause: %+v", cause)
	}
	if !h.reservedValid || h.reservedAddr != addr {
		t.Fatalf("expected a valid reservation at %#x", addr)
	}

	sc := encodeR(opAmo, 4, 2, 1, 2, amoSC<<2)
	if cause := execAmo(h, sc); cause != nil {
		t.Fatalf("SC.W unexpected cause: %+v", cause)
	}
	if got := h.Regs.Read(4); got != 0 {
		t.Fatalf("SC.W result = %d, want 0 (success)", got)
	}
	if h.reservedValid {
		t.Fatal("reservation should be cleared after SC.W")
	}

	// A second SC.W with no live reservation must fail (write 1).
	sc2 := encodeR(opAmo, 5, 2, 1, 2, amoSC<<2)
	execAmo(h, sc2)
	if got := h.Regs.Read(5); got != 1 {
		t.Fatalf("SC.W without reservation = %d, want 1 (failure)", got)
	}
}

func TestAmoAddReadModifyWrite(t *testing.T) {
	h := newTestHart(t)
	addr := uint64(device.DramBase + 0x200)
	h.Regs.Write(1, addr)
	h.Regs.Write(2, 10)

	// Seed memory with 5 via a plain store.
	h.storeVirtual(addr, 4, 5)

	amoadd := encodeR(opAmo, 3, 2, 1, 2, amoAdd<<2)
	if cause := execAmo(h, amoadd); cause != nil {
		t.Fatalf("AMOADD.W unexpected cause: %+v", cause)
	}
	if got := h.Regs.Read(3); got != 5 {
		t.Fatalf("AMOADD.W rd (old value) = %d, want 5", got)
	}
	v, _ := h.loadVirtual(addr, 4)
	if v != 15 {
		t.Fatalf("memory after AMOADD.W = %d, want 15", v)
	}
}

func TestAmoMisalignedFault(t *testing.T) {
	h := newTestHart(t)
	h.Regs.Write(1, device.DramBase+1) // not 4-byte aligned
	enc := encodeR(opAmo, 2, 2, 1, 0, amoLR<<2)
	cause := execAmo(h, enc)
	if cause == nil {
		t.Fatal("expected a misalignment fault")
	}
}

func TestMretRestoresPrivilegeAndPC(t *testing.T) {
	h := newTestHart(t)
	h.CSR.Write(0x341, 0x8000_4000) // mepc
	status := h.CSR.StatusView()
	status.MPIE = true
	status.MPP = csr.Supervisor
	h.CSR.SetStatus(status)

	execMret(h, 0)
	if h.PC != 0x8000_4000 {
		t.Fatalf("PC after mret = %#x, want mepc", h.PC)
	}
	if h.Priv != csr.Supervisor {
		t.Fatalf("privilege after mret = %v, want Supervisor (prior MPP)", h.Priv)
	}
}

func TestEcallCauseByPrivilege(t *testing.T) {
	h := newTestHart(t)
	for _, tc := range []struct {
		priv csr.Privilege
		want uint64
	}{
		{csr.User, trap.UserEnvCall},
		{csr.Supervisor, trap.SupervisorEnvCall},
		{csr.Machine, trap.MachineEnvCall},
	} {
		h.Priv = tc.priv
		cause := execEcall(h, 0)
		if cause == nil {
			t.Fatal("ecall must always trap")
		}
		if cause.Code != tc.want {
			t.Fatalf("ecall from privilege %v: cause = %d, want %d", tc.priv, cause.Code, tc.want)
		}
	}
}
