// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package arena holds the reference counted payload blocks behind shared values.
//
// Values are pointer-free words, so they refer to a block by Handle, an index
// into a paged slot table. The table keeps the payload reachable for the
// garbage collector until the last reference is released.
//
// Allocation and freeing are serialized by the arena mutex. Reference counts
// are plain integers unless built with `-tags smolbuf_atomic`: a block and all
// of its clones belong to one goroutine at a time. Blocks with an Owner route
// Retain and Release through the owner, which serializes them itself.
package arena

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"smolbuf/internal/pkg/as"
)

const (
	pageBits = 10
	pageSize = 1 << pageBits
	maxPages = 1 << 14

	// MaxBlocks is the number of blocks that can be live in one arena.
	MaxBlocks = pageSize * maxPages
)

// Handle identifies a block. The low 32 bits are slot+1, the high 32 bits the
// generation of the slot when the block was allocated. A handle kept past the
// free of its block no longer matches the slot and is rejected. The zero
// Handle is never valid.
type Handle uint64

func newHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot+1))
}

func (h Handle) slot() uint32 {
	s := uint32(h)
	if s == 0 {
		panic(fmt.Sprintf("arena: invalid handle %#x", uint64(h)))
	}

	return s - 1
}

func (h Handle) gen() uint32 {
	return uint32(h >> 32)
}

// Owner takes over reference counting of the blocks allocated with it.
// It must call Incr and Decr while holding whatever lock protects its state.
type Owner interface {
	Retain(h Handle)
	Release(h Handle)
}

type block struct {
	data  []byte
	owner Owner
	refs  refcount
	// bumped on every free
	gen uint32
}

type page [pageSize]block

// Stats is a snapshot of arena counters.
type Stats struct {
	Allocs    int64
	Frees     int64
	Live      int64
	LiveBytes int64
}

// Arena is a block allocator. The zero value is not usable, use New.
type Arena struct {
	pages [maxPages]*page

	mu   sync.Mutex
	free []uint32
	next uint32

	allocs    atomic.Int64
	frees     atomic.Int64
	liveBytes atomic.Int64
}

func New() *Arena {
	return &Arena{}
}

func (a *Arena) block(h Handle) *block {
	s := h.slot()
	p := a.pages[s>>pageBits]
	if p == nil {
		panic(fmt.Sprintf("arena: handle %d points to an unallocated page", h))
	}

	b := &p[s&(pageSize-1)]
	if b.gen != h.gen() || b.data == nil {
		panic(fmt.Sprintf("arena: handle %#x refers to a freed block", uint64(h)))
	}

	return b
}

// Alloc copies payload into a new block with a reference count of one.
// owner may be nil.
func (a *Arena) Alloc(payload []byte, owner Owner) Handle {
	data := make([]byte, len(payload))
	copy(data, payload)

	return a.insert(data, owner)
}

// AllocStatic is Alloc without the copy. payload must never be modified.
func (a *Arena) AllocStatic(payload []byte) Handle {
	return a.insert(payload[:len(payload):len(payload)], nil)
}

func (a *Arena) insert(data []byte, owner Owner) Handle {
	if data == nil {
		data = []byte{}
	}

	a.mu.Lock()
	s := a.takeSlot()
	b := &a.pages[s>>pageBits][s&(pageSize-1)]
	b.data = data
	b.owner = owner
	b.refs.store(1)
	h := newHandle(s, b.gen)
	a.mu.Unlock()

	a.allocs.Inc()
	a.liveBytes.Add(int64(len(data)))

	return h
}

// takeSlot must be called with a.mu held.
func (a *Arena) takeSlot() uint32 {
	if n := len(a.free); n > 0 {
		s := a.free[n-1]
		a.free = a.free[:n-1]
		return s
	}

	if a.next >= MaxBlocks {
		panic("arena: out of block slots")
	}

	s := a.next
	a.next++

	if a.pages[s>>pageBits] == nil {
		a.pages[s>>pageBits] = new(page)
	}

	return s
}

// Retain adds a reference to h.
func (a *Arena) Retain(h Handle) {
	b := a.block(h)
	if b.owner != nil {
		b.owner.Retain(h)
		return
	}

	incr(b)
}

// Release drops a reference to h and frees the block with the last one.
func (a *Arena) Release(h Handle) {
	b := a.block(h)
	if b.owner != nil {
		b.owner.Release(h)
		return
	}

	a.decr(h, b)
}

// Incr adds a reference without consulting the owner.
func (a *Arena) Incr(h Handle) {
	incr(a.block(h))
}

// Decr drops a reference without consulting the owner and reports whether
// the block was freed.
func (a *Arena) Decr(h Handle) bool {
	return a.decr(h, a.block(h))
}

func incr(b *block) {
	// a count that wraps means the reference graph is already corrupt.
	if n := b.refs.add(1); n <= 1 {
		panic(fmt.Sprintf("arena: reference count overflow or retain of a dead block (%d)", n))
	}
}

func (a *Arena) decr(h Handle, b *block) bool {
	n := b.refs.add(-1)
	if n > 0 {
		return false
	}

	if n < 0 {
		panic("arena: block released more times than it was retained")
	}

	size := len(b.data)

	a.mu.Lock()
	b.data = nil
	b.owner = nil
	b.gen++
	a.free = append(a.free, h.slot())
	a.mu.Unlock()

	a.frees.Inc()
	a.liveBytes.Sub(int64(size))

	return true
}

// View returns the payload of h. The slice must not be modified.
func (a *Arena) View(h Handle) []byte {
	return a.block(h).data
}

// Refs returns the current reference count of h.
func (a *Arena) Refs(h Handle) int {
	return as.Int(a.block(h).refs.load())
}

func (a *Arena) Stats() Stats {
	allocs, frees := a.allocs.Load(), a.frees.Load()
	return Stats{
		Allocs:    allocs,
		Frees:     frees,
		Live:      allocs - frees,
		LiveBytes: a.liveBytes.Load(),
	}
}
