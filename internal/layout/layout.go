// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package layout owns the bit layout shared by every value type.
//
// A value is a fixed size word, 16 or 24 bytes. The last byte is the tag:
//
//	inline:  [payload ... zero padding][len]      len in 0..Cap
//	shared:  [handle u64le][length][0x80]          handle != 0
//	niche:   [........................][0xFF]      never built by a constructor
//
// For the 16 byte word the shared length takes bytes 8..15 (56 bits), for the
// 24 byte word it takes bytes 8..16. The all-zero word is the empty inline
// value. Nothing outside this package reads raw word bytes.
package layout

import (
	"encoding/binary"
	"fmt"

	"smolbuf/internal/pkg/as"
	"smolbuf/internal/pkg/assert"
	"smolbuf/internal/pkg/unsafe"
)

// Word is the storage of a value.
type Word interface {
	[16]byte | [24]byte
}

type Tag uint8

const (
	Inline Tag = iota
	Shared
	Niche
)

func (t Tag) String() string {
	switch t {
	case Inline:
		return "inline"
	case Shared:
		return "shared"
	case Niche:
		return "niche"
	}

	return fmt.Sprintf("Tag(%d)", uint8(t))
}

const (
	sharedTag byte = 0x80
	nicheTag  byte = 0xFF

	handleEnd = 8
	lenEnd    = 16
)

// Cap is the inline capacity of W, one byte less than the word.
func Cap[W Word]() int {
	var w W
	return len(unsafe.Words(&w)) - 1
}

// Size is the size of W in bytes.
func Size[W Word]() int {
	return Cap[W]() + 1
}

// MaxLen is the largest payload a shared word of W can describe.
func MaxLen[W Word]() uint64 {
	bits := (min(lenEnd, Size[W]()-1) - handleEnd) * 8
	if bits >= 64 {
		return 1<<63 - 1
	}

	return 1<<bits - 1
}

func tagByte(b []byte) byte {
	return b[len(b)-1]
}

// TagOf reports which case w holds. It panics on a tag no constructor produces.
func TagOf[W Word](w *W) Tag {
	b := unsafe.Words(w)
	switch t := tagByte(b); {
	case int(t) < len(b):
		return Inline
	case t == sharedTag:
		return Shared
	case t == nicheTag:
		return Niche
	default:
		panic(fmt.Sprintf("layout: invalid tag byte %#x", t))
	}
}

// PackInline stores payload inside w. Bytes after the payload are zeroed so
// equal inline values have equal words.
func PackInline[W Word](w *W, payload []byte) {
	b := unsafe.Words(w)
	if len(payload) > len(b)-1 {
		panic(fmt.Sprintf("layout: %d bytes do not fit inline capacity %d", len(payload), len(b)-1))
	}

	n := copy(b, payload)
	clear(b[n : len(b)-1])
	b[len(b)-1] = as.Uint8(n)
}

// PackShared stores an arena handle and the payload length in w.
// Payloads that fit inline must never be packed as shared.
func PackShared[W Word](w *W, handle uint64, n int) {
	b := unsafe.Words(w)
	if n <= len(b)-1 {
		panic(fmt.Sprintf("layout: %d bytes fit inline and must not be shared", n))
	}
	if handle == 0 {
		panic("layout: zero handle")
	}

	ln := as.Uint64(n)
	if ln > MaxLen[W]() {
		panic(fmt.Sprintf("layout: shared length %d overflows the length field", n))
	}

	clear(b)
	binary.LittleEndian.PutUint64(b[:handleEnd], handle)
	putUintN(b[handleEnd:min(lenEnd, len(b)-1)], ln)
	b[len(b)-1] = sharedTag
}

// PackNiche stores the reserved pattern in w.
func PackNiche[W Word](w *W) {
	b := unsafe.Words(w)
	clear(b)
	b[len(b)-1] = nicheTag
}

// FlipTag inverts the tag byte. Applied to a stored word it moves the zero
// word onto the niche, which lets an optional wrapper use its zero value as
// "absent". Applying it twice is the identity.
func FlipTag[W Word](w *W) {
	b := unsafe.Words(w)
	b[len(b)-1] ^= nicheTag
}

// Len returns the payload length for inline and shared words.
func Len[W Word](w *W) int {
	b := unsafe.Words(w)
	t := tagByte(b)
	if int(t) < len(b) {
		return int(t)
	}

	assert.Equal(t, sharedTag, "layout: Len on a word that is neither inline nor shared")

	return as.Int(uintN(b[handleEnd:min(lenEnd, len(b)-1)]))
}

// InlineBytes returns the payload of an inline word, aliasing w.
func InlineBytes[W Word](w *W) []byte {
	b := unsafe.Words(w)
	n := int(tagByte(b))
	assert.True(n < len(b), "layout: InlineBytes on a non-inline word")

	return b[:n:n]
}

// Handle returns the arena handle of a shared word.
func Handle[W Word](w *W) uint64 {
	b := unsafe.Words(w)
	assert.Equal(tagByte(b), sharedTag, "layout: Handle on a non-shared word")

	return binary.LittleEndian.Uint64(b[:handleEnd])
}

func putUintN(dst []byte, v uint64) {
	for i := range dst {
		dst[i] = byte(v >> (8 * i))
	}
}

func uintN(src []byte) uint64 {
	var v uint64
	for i, c := range src {
		v |= uint64(c) << (8 * i)
	}

	return v
}
