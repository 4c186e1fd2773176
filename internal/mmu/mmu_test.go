package mmu

import (
	"testing"

	"github.com/rcornwell/rvsim/internal/csr"
	"github.com/rcornwell/rvsim/internal/trap"
)

// fakeMem is a tiny byte-addressable physical memory backing a PTEReader,
// letting tests build page tables by hand.
type fakeMem struct {
	words map[uint64]uint64
}

func newFakeMem() *fakeMem { return &fakeMem{words: make(map[uint64]uint64)} }

func (m *fakeMem) read(addr uint64) (uint64, bool) {
	v, ok := m.words[addr]
	return v, ok
}

func (m *fakeMem) setPTE(addr, ppn uint64, flags uint64) {
	m.words[addr] = (ppn << 10) | flags
}

func TestBareModeIdentity(t *testing.T) {
	var f csr.File // satp defaults to Bare (mode 0)
	m := New(&f, func(uint64) (uint64, bool) { t.Fatal("should not read PTEs in Bare mode"); return 0, false })

	got, cause := m.Translate(AccessLoad, 0x8000_1234)
	if cause != nil {
		t.Fatalf("unexpected fault: %+v", cause)
	}
	if got != 0x8000_1234 {
		t.Fatalf("got %#x, want identity", got)
	}
}

func TestSv394KiBWalk(t *testing.T) {
	var f csr.File
	mem := newFakeMem()

	rootPPN := uint64(0x1000)
	l2PPN := uint64(0x1001)
	l1PPN := uint64(0x1002)
	leafPPN := uint64(0x55)

	vaddr := uint64(0x12345 << 12)
	vpn2 := (vaddr >> 30) & 0x1FF
	vpn1 := (vaddr >> 21) & 0x1FF
	vpn0 := (vaddr >> 12) & 0x1FF

	mem.setPTE(rootPPN*4096+vpn2*8, l2PPN, pteV)
	mem.setPTE(l2PPN*4096+vpn1*8, l1PPN, pteV)
	mem.setPTE(l1PPN*4096+vpn0*8, leafPPN, pteV|pteR|pteW)

	f.Write(csr.Satp, uint64(csr.Sv39)<<60|rootPPN)
	m := New(&f, mem.read)

	got, cause := m.Translate(AccessLoad, vaddr|0x123)
	if cause != nil {
		t.Fatalf("unexpected fault: %+v", cause)
	}
	want := leafPPN<<12 | 0x123
	if got != want {
		t.Fatalf("got %#x, want %#x", got, want)
	}
}

func TestSv39PermissionFaults(t *testing.T) {
	var f csr.File
	mem := newFakeMem()
	rootPPN := uint64(0x2000)
	vaddr := uint64(0x1000)
	vpn2 := (vaddr >> 30) & 0x1FF
	// A single-level leaf at the root for simplicity: mark readable only.
	mem.setPTE(rootPPN*4096+vpn2*8, 0x99, pteV|pteR)

	f.Write(csr.Satp, uint64(csr.Sv39)<<60|rootPPN)
	m := New(&f, mem.read)

	if _, cause := m.Translate(AccessStore, vaddr); cause == nil {
		t.Fatal("expected store-to-readonly-page fault")
	} else if cause.Code != trap.StorePageFault {
		t.Fatalf("cause = %d, want StorePageFault", cause.Code)
	}

	if _, cause := m.Translate(AccessFetch, vaddr); cause == nil {
		t.Fatal("expected fetch-from-non-executable-page fault")
	} else if cause.Code != trap.InstructionPageFault {
		t.Fatalf("cause = %d, want InstructionPageFault", cause.Code)
	}

	if _, cause := m.Translate(AccessLoad, vaddr); cause != nil {
		t.Fatalf("unexpected load fault: %+v", cause)
	}
}

func TestSv39InvalidPTEFaults(t *testing.T) {
	var f csr.File
	mem := newFakeMem() // no entries at all: every walk misses

	f.Write(csr.Satp, uint64(csr.Sv39)<<60|0x3000)
	m := New(&f, mem.read)

	if _, cause := m.Translate(AccessLoad, 0x1000); cause == nil {
		t.Fatal("expected a fault walking an empty page table")
	} else if cause.Code != trap.LoadPageFault {
		t.Fatalf("cause = %d, want LoadPageFault", cause.Code)
	}
}

func TestSv39TwoMiBSuperpage(t *testing.T) {
	var f csr.File
	mem := newFakeMem()
	rootPPN := uint64(0x4000)
	l2PPN := uint64(0x4001)

	vaddr := uint64(0x123) << 21 // 2 MiB aligned
	vpn2 := (vaddr >> 30) & 0x1FF
	vpn1 := (vaddr >> 21) & 0x1FF

	mem.setPTE(rootPPN*4096+vpn2*8, l2PPN, pteV)
	leafPPN := uint64(0x7 << 9) // low 9 bits (ppn[0]) zero, as required for a valid superpage
	mem.setPTE(l2PPN*4096+vpn1*8, leafPPN, pteV|pteR|pteW)

	f.Write(csr.Satp, uint64(csr.Sv39)<<60|rootPPN)
	m := New(&f, mem.read)

	got, cause := m.Translate(AccessLoad, vaddr|0x456)
	if cause != nil {
		t.Fatalf("unexpected fault: %+v", cause)
	}
	want := ((leafPPN >> 9) << 21) | (vaddr & (0x1FF << 12)) | 0x456
	if got != want {
		t.Fatalf("got %#x, want %#x", got, want)
	}
}

func TestSv32MegapageWalk(t *testing.T) {
	var f csr.File
	mem := newFakeMem()
	rootPPN := uint64(0x5000)

	vaddr := uint64(0x321) << 22 // 4 MiB aligned
	vpn1 := (vaddr >> 22) & 0x3FF
	leafPPN := uint64(0x9 << 10) // low 10 bits (ppn[0]) zero, as required for a valid megapage

	mem.setPTE(rootPPN*4096+vpn1*4, leafPPN, pteV|pteR|pteW)

	f.Write(csr.Satp, uint64(csr.Sv32)<<60|rootPPN)
	m := New(&f, mem.read)

	got, cause := m.Translate(AccessLoad, vaddr|0x789)
	if cause != nil {
		t.Fatalf("unexpected fault: %+v", cause)
	}
	want := ((leafPPN >> 10) << 22) | (vaddr & (0x3FF << 12)) | 0x789
	if got != want {
		t.Fatalf("got %#x, want %#x", got, want)
	}
}
