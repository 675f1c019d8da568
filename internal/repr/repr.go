// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package repr is the engine behind every value type: a word that is either
// an inline payload or a handle to a shared arena block.
//
// Construction picks the case from the payload length alone. A payload that
// fits inline is always stored inline, so the zero-length value and every
// short value never allocate.
package repr

import (
	"bytes"

	"github.com/cespare/xxhash/v2"

	"smolbuf/internal/arena"
	"smolbuf/internal/layout"
	"smolbuf/internal/pkg/unsafe"
)

var heap = arena.New()

// Heap returns the process wide arena holding shared payloads.
func Heap() *arena.Arena {
	return heap
}

// Repr is one value. Copying a Repr with assignment does not add a
// reference, use Clone for a second owner.
type Repr[W layout.Word] struct {
	w W
}

// New stores payload inline when it fits and in a new shared block otherwise.
func New[W layout.Word](payload []byte) Repr[W] {
	return NewOwned[W](payload, nil)
}

// NewOwned is New with an arena owner for the shared case.
func NewOwned[W layout.Word](payload []byte, owner arena.Owner) Repr[W] {
	var r Repr[W]
	if len(payload) <= layout.Cap[W]() {
		layout.PackInline(&r.w, payload)
		return r
	}

	h := heap.Alloc(payload, owner)
	layout.PackShared(&r.w, uint64(h), len(payload))

	return r
}

// NewStatic is New that references payload instead of copying it into a
// shared block. payload must never be modified.
func NewStatic[W layout.Word](payload []byte) Repr[W] {
	var r Repr[W]
	if len(payload) <= layout.Cap[W]() {
		layout.PackInline(&r.w, payload)
		return r
	}

	h := heap.AllocStatic(payload)
	layout.PackShared(&r.w, uint64(h), len(payload))

	return r
}

// Adopt wraps a handle whose reference the caller hands over.
func Adopt[W layout.Word](h arena.Handle) Repr[W] {
	var r Repr[W]
	layout.PackShared(&r.w, uint64(h), len(heap.View(h)))
	return r
}

// Niche returns the reserved word that no constructor produces.
func Niche[W layout.Word]() Repr[W] {
	var r Repr[W]
	layout.PackNiche(&r.w)
	return r
}

func (r *Repr[W]) IsNiche() bool {
	return layout.TagOf(&r.w) == layout.Niche
}

// FlipTag toggles between the stored and the optional encoding of r.
func (r *Repr[W]) FlipTag() {
	layout.FlipTag(&r.w)
}

func (r *Repr[W]) IsShared() bool {
	return layout.TagOf(&r.w) == layout.Shared
}

func (r *Repr[W]) handle() arena.Handle {
	return arena.Handle(layout.Handle(&r.w))
}

// Bytes returns the payload. For inline values the slice aliases r and is
// only valid while r is not overwritten.
func (r *Repr[W]) Bytes() []byte {
	if layout.TagOf(&r.w) == layout.Shared {
		return heap.View(r.handle())
	}

	return layout.InlineBytes(&r.w)
}

// String returns the payload as a string. Shared payloads are never written
// after construction, so they are returned without a copy.
func (r *Repr[W]) String() string {
	if r.IsShared() {
		return unsafe.Str(heap.View(r.handle()))
	}

	return string(layout.InlineBytes(&r.w))
}

func (r *Repr[W]) Len() int {
	return layout.Len(&r.w)
}

// RefCount returns the reference count of a shared value, 0 for inline values.
func (r *Repr[W]) RefCount() int {
	if !r.IsShared() {
		return 0
	}

	return heap.Refs(r.handle())
}

// Clone returns a second owner of the payload without copying it.
func (r *Repr[W]) Clone() Repr[W] {
	if r.IsShared() {
		heap.Retain(r.handle())
	}

	return *r
}

// Release drops the reference held by r and resets it to the empty value.
// Releasing an inline or already released value does nothing.
func (r *Repr[W]) Release() {
	if r.IsShared() {
		heap.Release(r.handle())
	}

	*r = Repr[W]{}
}

// SameBlock reports whether both values share one arena block.
func SameBlock[W layout.Word](a, b *Repr[W]) bool {
	return a.IsShared() && b.IsShared() && a.handle() == b.handle()
}

// Convert re-encodes r for another word size. The payload is shared when
// both sides are shared and copied otherwise.
func Convert[To, From layout.Word](r *Repr[From]) Repr[To] {
	n := r.Len()
	if n <= layout.Cap[To]() {
		var out Repr[To]
		layout.PackInline(&out.w, r.Bytes())
		return out
	}

	if r.IsShared() {
		h := r.handle()
		heap.Retain(h)

		var out Repr[To]
		layout.PackShared(&out.w, uint64(h), n)

		return out
	}

	return New[To](r.Bytes())
}

// Equal compares payloads. Identical words are equal without reading the payload.
func Equal[W layout.Word](a, b *Repr[W]) bool {
	if a.w == b.w {
		return true
	}

	if a.Len() != b.Len() {
		return false
	}

	return bytes.Equal(a.Bytes(), b.Bytes())
}

// Compare orders payloads byte-lexicographically.
func Compare[W layout.Word](a, b *Repr[W]) int {
	if a.w == b.w {
		return 0
	}

	return bytes.Compare(a.Bytes(), b.Bytes())
}

// Hash hashes the payload only, so equal payloads hash equally whatever case
// stores them.
func Hash[W layout.Word](r *Repr[W]) uint64 {
	return xxhash.Sum64(r.Bytes())
}
