// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package intern deduplicates shared payloads.
//
// A Table maps payload content to one arena block. It never holds a reference
// of its own: the table is the block's arena.Owner, so every Retain and
// Release of an interned block runs under the table mutex, and the entry is
// deleted in the same critical section that drops the last reference.
package intern

import (
	"sync"

	"smolbuf/internal/arena"
	"smolbuf/internal/pkg/unsafe"
)

type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

type Table struct {
	heap *arena.Arena

	mu      sync.Mutex
	entries map[string]arena.Handle
	hits    int64
	misses  int64
}

var _ arena.Owner = (*Table)(nil)

func New(heap *arena.Arena) *Table {
	return &Table{
		heap:    heap,
		entries: make(map[string]arena.Handle),
	}
}

// Intern returns a handle to the block holding payload, allocating it on the
// first call. The caller owns one reference to the returned handle.
func (t *Table) Intern(payload []byte) arena.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.entries[string(payload)]; ok {
		t.hits++
		t.heap.Incr(h)
		return h
	}

	t.misses++
	h := t.heap.Alloc(payload, t)
	// the key aliases the block payload, which is immutable and outlives the entry.
	t.entries[unsafe.Str(t.heap.View(h))] = h

	return h
}

func (t *Table) Retain(h arena.Handle) {
	t.mu.Lock()
	t.heap.Incr(h)
	t.mu.Unlock()
}

func (t *Table) Release(h arena.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := unsafe.Str(t.heap.View(h))
	if !t.heap.Decr(h) {
		return
	}

	// after Reset the key may belong to a newer block.
	if cur, ok := t.entries[key]; ok && cur == h {
		delete(t.entries, key)
	}
}

// Lookup reports whether payload is interned, without adding a reference.
func (t *Table) Lookup(payload []byte) bool {
	t.mu.Lock()
	_, ok := t.entries[string(payload)]
	t.mu.Unlock()

	return ok
}

func (t *Table) Len() int {
	t.mu.Lock()
	n := len(t.entries)
	t.mu.Unlock()

	return n
}

func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Stats{Entries: len(t.entries), Hits: t.hits, Misses: t.misses}
}

// Reset forgets every entry. Values interned before stay valid and are freed
// when their last reference goes away.
func (t *Table) Reset() {
	t.mu.Lock()
	t.entries = make(map[string]arena.Handle)
	t.hits, t.misses = 0, 0
	t.mu.Unlock()
}
