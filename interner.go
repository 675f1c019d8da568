// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf

import (
	"sync"

	"github.com/samber/lo"

	"smolbuf/internal/intern"
	"smolbuf/internal/layout"
	"smolbuf/internal/pkg/unsafe"
	"smolbuf/internal/repr"
)

type (
	Interner16 = Interner[[16]byte]
	Interner24 = Interner[[24]byte]

	// InternStats is a snapshot of interner counters.
	InternStats = intern.Stats
)

// Interner deduplicates text values that do not fit inline: equal content
// interned twice shares one block. The interner does not keep values alive,
// an entry goes away with the last reference to its block.
//
// All methods are safe for concurrent use, and so are Clone and Release of
// the values it returns.
type Interner[W layout.Word] struct {
	t *intern.Table
}

func NewInterner[W layout.Word]() *Interner[W] {
	return &Interner[W]{t: intern.New(repr.Heap())}
}

func NewInterner16() *Interner16 { return NewInterner[[16]byte]() }
func NewInterner24() *Interner24 { return NewInterner[[24]byte]() }

var (
	default16 = sync.OnceValue(NewInterner16)
	default24 = sync.OnceValue(NewInterner24)
)

// DefaultInterner16 returns the process wide interner for Str16, created on first use.
func DefaultInterner16() *Interner16 { return default16() }

// DefaultInterner24 returns the process wide interner for Str24, created on first use.
func DefaultInterner24() *Interner24 { return default24() }

// Intern returns s as a Str sharing the block of any live value with the same
// content. Content that fits inline is returned inline without a lookup.
func (i *Interner[W]) Intern(s string) (Str[W], error) {
	return i.InternBytes(unsafe.Bytes(s))
}

// MustIntern is Intern for input known to be valid UTF-8.
func (i *Interner[W]) MustIntern(s string) Str[W] {
	return lo.Must(i.Intern(s))
}

func (i *Interner[W]) InternBytes(b []byte) (Str[W], error) {
	if err := validUTF8(b); err != nil {
		return Str[W]{}, err
	}

	if len(b) <= layout.Cap[W]() {
		return Str[W]{r: repr.New[W](b)}, nil
	}

	return Str[W]{r: repr.Adopt[W](i.t.Intern(b))}, nil
}

// Contains reports whether content equal to s is currently interned.
func (i *Interner[W]) Contains(s string) bool {
	return i.t.Lookup(unsafe.Bytes(s))
}

// Len returns the number of live interned blocks.
func (i *Interner[W]) Len() int {
	return i.t.Len()
}

// Reset forgets every entry. Values interned before stay valid.
func (i *Interner[W]) Reset() {
	i.t.Reset()
}

func (i *Interner[W]) Stats() InternStats {
	return i.t.Stats()
}
