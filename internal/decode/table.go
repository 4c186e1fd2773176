/*
   Decode pattern table: built once at start-up, bucketed by the 7-bit
   opcode field, linear-scanned within a bucket.

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

// Package decode builds the instruction pattern table once at start-up
// and matches 32-bit encodings against it through a bounded cache. The
// handler a pattern carries is opaque to this package (an any payload
// supplied by the caller) so decode has no dependency on hart state.
package decode

import "github.com/rcornwell/rvsim/internal/debugopt"

// Pattern is one entry of the table: encoding&Mask==Match identifies
// the instruction, and Handler is the caller-supplied payload returned
// on a hit (typically a closure implementing the instruction).
type Pattern struct {
	Match   uint32
	Mask    uint32
	Handler any
}

// cacheCapacity is the bounded LRU decode cache size, spec.md §4.1.
const cacheCapacity = 127

// Table is an immutable, start-of-day-built pattern table plus a
// fixed-capacity LRU cache the hart mutates on every decode. A Table is
// not safe for concurrent use; it is owned by exactly one hart.
type Table struct {
	buckets [128][]Pattern
	cache   *lruCache
}

// NewTable buckets patterns by their implied opcode (Match&0x7f) and
// returns a Table ready to decode. Patterns within a bucket are scanned
// in the order given; the first match wins, so callers must list more
// specific masks (full-encoding SYSTEM instructions, etc.) before the
// generic patterns they would otherwise collide with.
func NewTable(patterns []Pattern) *Table {
	t := &Table{cache: newLRUCache(cacheCapacity)}
	for _, p := range patterns {
		op := p.Match & 0x7f
		t.buckets[op] = append(t.buckets[op], p)
	}
	return t
}

// Decode returns the handler matching encoding, or ok=false if no
// pattern matches (the hart treats this as IllegalInstruction). Results,
// including misses, are cached.
func (t *Table) Decode(encoding uint32) (any, bool) {
	if h, hit, found := t.cache.get(encoding); found {
		return h, hit
	}

	op := Opcode(encoding)
	for _, p := range t.buckets[op] {
		if encoding&p.Mask == p.Match {
			t.cache.put(encoding, p.Handler, true)
			return p.Handler, true
		}
	}
	debugopt.Debugf(debugopt.Decode, "no pattern matches encoding %#08x", encoding)
	t.cache.put(encoding, nil, false)
	return nil, false
}
