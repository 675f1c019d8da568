// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package smolbuf provides small immutable strings and byte buffers that are
// cheap to copy.
//
// A value is a fixed size word of 16 or 24 bytes. Payloads of up to 15 (or 23)
// bytes live inside the word and never allocate. Longer payloads live in one
// reference counted block that every clone shares.
//
// Values follow an explicit ownership discipline: Clone adds an owner,
// Release drops one. Plain assignment copies the word without adding an
// owner. A value and its clones must be cloned and released by one goroutine
// at a time unless the module is built with `-tags smolbuf_atomic`. Interned
// values can be cloned and released from any goroutine.
package smolbuf

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/trim21/errgo"

	"smolbuf/internal/arena"
	"smolbuf/internal/repr"
)

// ErrInvalidUTF8 is returned when a text value is built from bytes that are
// not valid UTF-8.
var ErrInvalidUTF8 = errors.New("smolbuf: invalid UTF-8")

type (
	Str16 = Str[[16]byte]
	Str24 = Str[[24]byte]
	Buf16 = Buf[[16]byte]
	Buf24 = Buf[[24]byte]

	// ArenaStats counts the shared blocks allocated and freed so far.
	ArenaStats = arena.Stats
)

const (
	// Cap16 is the inline capacity of the 16 byte values.
	Cap16 = 15
	// Cap24 is the inline capacity of the 24 byte values.
	Cap24 = 23
)

// HeapStats returns the counters of the arena that holds shared payloads.
func HeapStats() ArenaStats {
	return repr.Heap().Stats()
}

func validUTF8(b []byte) error {
	if utf8.Valid(b) {
		return nil
	}

	return errgo.Wrap(ErrInvalidUTF8, fmt.Sprintf("bad sequence at byte %d", invalidAt(b)))
}

func invalidAt(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}

	return len(b)
}
