package trap

import (
	"testing"

	"github.com/rcornwell/rvsim/internal/csr"
)

func TestIsFatalClassification(t *testing.T) {
	fatal := []Cause{
		Exception(InstructionFault),
		Exception(IllegalInstruction),
		Exception(InstructionMisaligned),
		Exception(LoadFault),
		Exception(StorePageFault),
		Exception(StoreMisaligned),
	}
	for _, c := range fatal {
		if !c.IsFatal() {
			t.Errorf("expected cause %d fatal", c.Code)
		}
	}

	notFatal := []Cause{
		Exception(Breakpoint),
		Exception(UserEnvCall),
		Exception(LoadPageFault),
		Interrupt(MTimerInterrupt),
	}
	for _, c := range notFatal {
		if c.IsFatal() {
			t.Errorf("expected cause %d (interrupt=%v) non-fatal", c.Code, c.Interrupt)
		}
	}
}

func TestDeliverDelegatesToSupervisorWhenMedelegSet(t *testing.T) {
	var f csr.File
	f.Write(csr.Medeleg, 1<<LoadPageFault)
	f.Write(csr.Stvec, 0x8020_0000)

	priv, pc := Deliver(&f, csr.User, 0x8000_1000, Exception(LoadPageFault))
	if priv != csr.Supervisor {
		t.Fatalf("expected delegated trap to land in Supervisor, got %v", priv)
	}
	if pc != 0x8020_0000 {
		t.Fatalf("pc = %#x, want stvec base", pc)
	}
	if got := f.Read(csr.Sepc); got != 0x8000_1000 {
		t.Fatalf("sepc = %#x, want 0x80001000", got)
	}
	if got := f.Read(csr.Scause); got != LoadPageFault {
		t.Fatalf("scause = %d, want %d", got, LoadPageFault)
	}
}

func TestDeliverFallsBackToMachineWhenNotDelegated(t *testing.T) {
	var f csr.File
	f.Write(csr.Mtvec, 0x8010_0000)

	priv, pc := Deliver(&f, csr.User, 0x8000_1000, Exception(IllegalInstruction))
	if priv != csr.Machine {
		t.Fatalf("expected undelegated trap to land in Machine, got %v", priv)
	}
	if pc != 0x8010_0000 {
		t.Fatalf("pc = %#x, want mtvec base", pc)
	}
}

func TestDeliverVectoredInterruptEntry(t *testing.T) {
	var f csr.File
	f.Write(csr.Mtvec, 0x8010_0000|1) // vectored

	_, pc := Deliver(&f, csr.Machine, 0x8000_0004, Interrupt(MTimerInterrupt))
	want := uint64(0x8010_0000) + 4*MTimerInterrupt
	if pc != want {
		t.Fatalf("pc = %#x, want %#x", pc, want)
	}
}

func TestDeliverStatusStacking(t *testing.T) {
	var f csr.File
	f.Write(csr.Mtvec, 0x8010_0000)
	status := csr.Status{MIE: true}
	f.SetStatus(status)

	Deliver(&f, csr.Machine, 0x8000_0000, Exception(Breakpoint))

	out := f.StatusView()
	if out.MIE {
		t.Fatalf("MIE should be cleared on trap entry")
	}
	if !out.MPIE {
		t.Fatalf("MPIE should capture the prior MIE (true)")
	}
	if out.MPP != csr.Machine {
		t.Fatalf("MPP = %v, want Machine (prior privilege)", out.MPP)
	}
}

func TestArbitratePriorityOrder(t *testing.T) {
	var f csr.File
	f.SetStatus(csr.Status{MIE: true})
	// Pending and enabled: both MSoft and MTimer; MExt would win but is
	// not set here, so MSoft (higher than MTimer) should be chosen.
	f.Write(csr.Mie, 1<<MSoftInterrupt|1<<MTimerInterrupt)
	f.Write(csr.Mip, 1<<MSoftInterrupt|1<<MTimerInterrupt)

	cause, ok := Arbitrate(&f, csr.Machine)
	if !ok {
		t.Fatal("expected an arbitrated interrupt")
	}
	if cause.Code != MSoftInterrupt {
		t.Fatalf("cause = %d, want MSoftInterrupt (%d)", cause.Code, MSoftInterrupt)
	}
	// The claimed bit should now be cleared from mip.
	if f.Read(csr.Mip)&(1<<MSoftInterrupt) != 0 {
		t.Fatal("expected claimed interrupt cleared from mip")
	}
}

func TestArbitrateGatedByGlobalEnable(t *testing.T) {
	var f csr.File
	// MIE clear: no interrupt should be taken even though pending&enabled.
	f.Write(csr.Mie, 1<<MTimerInterrupt)
	f.Write(csr.Mip, 1<<MTimerInterrupt)

	_, ok := Arbitrate(&f, csr.Machine)
	if ok {
		t.Fatal("expected no interrupt while MIE is clear")
	}
}

func TestMretRoundTrip(t *testing.T) {
	var f csr.File
	f.Write(csr.Mepc, 0x8000_2000)
	f.SetStatus(csr.Status{MPIE: true, MPP: csr.Supervisor})

	priv, pc := Return(&f, true)
	if priv != csr.Supervisor {
		t.Fatalf("priv = %v, want Supervisor (prior MPP)", priv)
	}
	if pc != 0x8000_2000 {
		t.Fatalf("pc = %#x, want mepc", pc)
	}
	out := f.StatusView()
	if !out.MIE {
		t.Fatal("MIE should be set from prior MPIE")
	}
	if !out.MPIE {
		t.Fatal("MPIE should be set to 1 after mret")
	}
	if out.MPP != csr.User {
		t.Fatal("MPP should reset to User after mret")
	}
}

func TestSretRoundTrip(t *testing.T) {
	var f csr.File
	f.Write(csr.Sepc, 0x8000_3000)
	f.SetSstatus(csr.Status{SPIE: true, SPP: csr.User})

	priv, pc := Return(&f, false)
	if priv != csr.User {
		t.Fatalf("priv = %v, want User (prior SPP)", priv)
	}
	if pc != 0x8000_3000 {
		t.Fatalf("pc = %#x, want sepc", pc)
	}
	out := f.SstatusView()
	if !out.SIE {
		t.Fatal("SIE should be set from prior SPIE")
	}
	if out.SPP != csr.User {
		t.Fatal("SPP should reset to User after sret")
	}
}

func TestDeliverStacksIntoSstatusNotMstatus(t *testing.T) {
	var f csr.File
	f.Write(csr.Medeleg, 1<<Breakpoint)
	f.Write(csr.Stvec, 0x8020_0000)
	f.SetStatus(csr.Status{MIE: true})
	f.SetSstatus(csr.Status{SIE: true})

	Deliver(&f, csr.Supervisor, 0x8000_0000, Exception(Breakpoint))

	if out := f.SstatusView(); out.SIE || !out.SPIE {
		t.Fatalf("sstatus = %+v, want SIE cleared and SPIE holding prior SIE", out)
	}
	if out := f.StatusView(); !out.MIE {
		t.Fatal("mstatus must be untouched by a Supervisor-delegated trap")
	}
}

func TestArbitrateUsesSstatusForSupervisorGating(t *testing.T) {
	var f csr.File
	f.Write(csr.Mie, 1<<STimerInterrupt)
	f.Write(csr.Mip, 1<<STimerInterrupt)
	f.SetStatus(csr.Status{MIE: false})
	f.SetSstatus(csr.Status{SIE: false})

	if _, ok := Arbitrate(&f, csr.Supervisor); ok {
		t.Fatal("expected no interrupt while sstatus.SIE is clear, regardless of mstatus")
	}

	f.SetSstatus(csr.Status{SIE: true})
	cause, ok := Arbitrate(&f, csr.Supervisor)
	if !ok || cause.Code != STimerInterrupt {
		t.Fatalf("expected STimerInterrupt once sstatus.SIE is set, got ok=%v cause=%+v", ok, cause)
	}
}
