package decode

import "testing"

func TestTableMatchesByOpcodeAndMask(t *testing.T) {
	tbl := NewTable([]Pattern{
		{Match: 0x00000037, Mask: 0x7f, Handler: "LUI"},
		{Match: 0x00000013, Mask: 0x707f, Handler: "ADDI"},
	})

	h, ok := tbl.Decode(0xDEAD0037) // any LUI encoding
	if !ok || h.(string) != "LUI" {
		t.Fatalf("expected LUI match, got %v ok=%v", h, ok)
	}

	h, ok = tbl.Decode(0x00000013) // ADDI x0, x0, 0
	if !ok || h.(string) != "ADDI" {
		t.Fatalf("expected ADDI match, got %v ok=%v", h, ok)
	}
}

func TestTableCachesNegativeResults(t *testing.T) {
	tbl := NewTable(nil)
	_, ok := tbl.Decode(0xFFFFFFFF)
	if ok {
		t.Fatal("expected no match against an empty table")
	}
	// Second lookup should hit the cached negative result and still
	// report no match.
	_, ok = tbl.Decode(0xFFFFFFFF)
	if ok {
		t.Fatal("cached negative result should still report no match")
	}
	if _, hit, found := tbl.cache.get(0xFFFFFFFF); !found || hit {
		t.Fatalf("expected a cached negative entry, got found=%v hit=%v", found, hit)
	}
}

func TestTableCacheEvictsLRU(t *testing.T) {
	tbl := NewTable([]Pattern{
		{Match: 0, Mask: 0, Handler: "ANY"}, // matches everything
	})
	// Fill the cache past capacity with distinct encodings; the first
	// inserted entry is the least recently used and must be evicted,
	// and re-decoding it is still a hit since the pattern matches
	// everything.
	for i := uint32(0); i < cacheCapacity+10; i++ {
		if _, ok := tbl.Decode(i << 7); !ok {
			t.Fatalf("encoding %d: expected a match", i)
		}
	}
	if n := tbl.cache.order.Len(); n != cacheCapacity {
		t.Fatalf("cache holds %d entries, want %d", n, cacheCapacity)
	}
	if _, _, found := tbl.cache.get(0); found {
		t.Fatal("expected the first inserted entry to be evicted")
	}
	if _, ok := tbl.Decode(0); !ok {
		t.Fatal("re-decoding an evicted encoding: expected a match")
	}
}
