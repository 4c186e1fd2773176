/*
   Bounded LRU decode cache: encoding -> decode result, including
   negative (no-match) results.

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

package decode

import "container/list"

type cacheEntry struct {
	encoding uint32
	handler  any
	hit      bool
}

// lruCache is a fixed-capacity least-recently-used cache keyed by raw
// instruction encoding. It is local to one Table and needs no locking.
type lruCache struct {
	capacity int
	order    *list.List // front = most recently used
	index    map[uint32]*list.Element
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[uint32]*list.Element, capacity),
	}
}

// get reports (handler, hit, found). found is false on a cache miss;
// hit distinguishes a cached positive match from a cached negative one.
func (c *lruCache) get(encoding uint32) (any, bool, bool) {
	el, ok := c.index[encoding]
	if !ok {
		return nil, false, false
	}
	c.order.MoveToFront(el)
	e := el.Value.(*cacheEntry)
	return e.handler, e.hit, true
}

func (c *lruCache) put(encoding uint32, handler any, hit bool) {
	if el, ok := c.index[encoding]; ok {
		el.Value.(*cacheEntry).handler = handler
		el.Value.(*cacheEntry).hit = hit
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*cacheEntry).encoding)
		}
	}
	el := c.order.PushFront(&cacheEntry{encoding: encoding, handler: handler, hit: hit})
	c.index[encoding] = el
}
