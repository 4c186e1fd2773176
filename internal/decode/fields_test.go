package decode

import "testing"

func TestSextRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		width uint
		want  uint64
	}{
		{"positive 12-bit", 0x123, 12, 0x123},
		{"negative 12-bit", 0xFFF, 12, 0xFFFFFFFFFFFFFFFF},
		{"negative 13-bit branch offset", 0x1FFE, 13, 0xFFFFFFFFFFFFFFFE},
		{"positive 21-bit jal offset", 0x0FF000, 21, 0x0FF000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sext(tt.value, tt.width)
			if got != tt.want {
				t.Fatalf("Sext(%#x, %d) = %#x, want %#x", tt.value, tt.width, got, tt.want)
			}
			// Applying Sext a second time with the same width must be a
			// no-op: the high bits already replicate the sign.
			again := Sext(got, tt.width)
			if again != got {
				t.Fatalf("Sext not idempotent: got %#x then %#x", got, again)
			}
		})
	}
}

func TestImmIExtractsLow12Bits(t *testing.T) {
	// ADDI x1, x2, -1: imm field all ones.
	enc := uint32(0xFFF10093)
	if got := ImmI(enc); got != 0xFFF {
		t.Fatalf("ImmI = %#x, want 0xfff", got)
	}
}

func TestImmBBit0AlwaysZero(t *testing.T) {
	// A branch encoding with most immediate bits set (imm[12], imm[9:5]
	// and imm[4:1]); the B format has no imm[0], so bit 0 must stay 0.
	var enc uint32 = 0<<7 | f3BitsForTest<<12 | 0x1f<<25 | 0x1f<<8 | 1<<31 | 0x63
	imm := ImmB(enc)
	if imm&1 != 0 {
		t.Fatalf("ImmB low bit set: %#x", imm)
	}
}

const f3BitsForTest = 0
