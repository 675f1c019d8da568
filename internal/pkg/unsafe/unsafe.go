// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package unsafe holds the few zero-copy casts the value types rely on.
//
// Callers must only cast memory that is never written again: arena payloads
// and inline words that are immutable after construction.
package unsafe

import (
	"unsafe"
)

// Bytes returns the bytes of s without copying. The result must not be modified.
func Bytes(s string) []byte {
	d := unsafe.StringData(s)
	return unsafe.Slice(d, len(s))
}

// Str returns b as a string without copying.
func Str(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	d := unsafe.SliceData(b)
	return unsafe.String(d, len(b))
}

// Words returns the storage of a fixed size byte array as a slice.
// The slice aliases *w.
func Words[W ~[16]byte | ~[24]byte](w *W) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(w)), unsafe.Sizeof(*w))
}
