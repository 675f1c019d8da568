// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf

import (
	"bytes"
	"fmt"
	"io"

	"smolbuf/internal/layout"
	"smolbuf/internal/pkg/unsafe"
	"smolbuf/internal/repr"
)

// Buf is an immutable byte sequence stored in a W sized word.
// Use the Buf16 and Buf24 aliases.
//
// The zero value is empty. Buf is not comparable with ==, use Equal.
type Buf[W layout.Word] struct {
	_ [0]func()
	r repr.Repr[W]
}

// NewBuf builds a Buf from a copy of b.
func NewBuf[W layout.Word](b []byte) Buf[W] {
	return Buf[W]{r: repr.New[W](b)}
}

// BufFromString builds a Buf holding the bytes of s.
func BufFromString[W layout.Word](s string) Buf[W] {
	return NewBuf[W](unsafe.Bytes(s))
}

func NewBuf16(b []byte) Buf16 { return NewBuf[[16]byte](b) }
func NewBuf24(b []byte) Buf24 { return NewBuf[[24]byte](b) }

func Buf16FromString(s string) Buf16 { return BufFromString[[16]byte](s) }
func Buf24FromString(s string) Buf24 { return BufFromString[[24]byte](s) }

// View returns the content without copying. The result must not be modified
// and is valid while b is live and not overwritten.
func (b *Buf[W]) View() []byte {
	return b.r.Bytes()
}

// Bytes returns a copy of the content.
func (b Buf[W]) Bytes() []byte {
	return append([]byte{}, b.r.Bytes()...)
}

// String returns the content as a string.
func (b Buf[W]) String() string {
	return b.r.String()
}

func (b Buf[W]) Len() int {
	return b.r.Len()
}

func (b Buf[W]) IsEmpty() bool {
	return b.r.Len() == 0
}

func (b Buf[W]) IsShared() bool {
	return b.r.IsShared()
}

func (b Buf[W]) RefCount() int {
	return b.r.RefCount()
}

// Clone returns a new owner of the same content.
func (b Buf[W]) Clone() Buf[W] {
	return Buf[W]{r: b.r.Clone()}
}

// Release drops the reference held by b and sets it to empty.
func (b *Buf[W]) Release() {
	b.r.Release()
}

// AsStr returns the content as text sharing the same block, or an error
// matching ErrInvalidUTF8.
func (b Buf[W]) AsStr() (Str[W], error) {
	if err := validUTF8(b.r.Bytes()); err != nil {
		return Str[W]{}, err
	}

	return Str[W]{r: b.r.Clone()}, nil
}

func (b Buf[W]) Widen() Buf24 {
	return Buf24{r: repr.Convert[[24]byte](&b.r)}
}

func (b Buf[W]) Narrow() Buf16 {
	return Buf16{r: repr.Convert[[16]byte](&b.r)}
}

func (b Buf[W]) Equal(o Buf[W]) bool {
	return repr.Equal(&b.r, &o.r)
}

func (b Buf[W]) EqualBytes(v []byte) bool {
	return bytes.Equal(b.r.Bytes(), v)
}

func (b Buf[W]) Compare(o Buf[W]) int {
	return repr.Compare(&b.r, &o.r)
}

func (b Buf[W]) Less(o Buf[W]) bool {
	return b.Compare(o) < 0
}

func (b Buf[W]) Hash() uint64 {
	return repr.Hash(&b.r)
}

func (b *Buf[W]) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.r.Bytes())
	return int64(n), err
}

// Format implements fmt.Formatter. Verbs apply to the content as a []byte,
// so %s prints it raw, %x in hex and %q quoted.
func (b Buf[W]) Format(state fmt.State, verb rune) {
	fmt.Fprintf(state, fmt.FormatString(state, verb), b.r.Bytes())
}

func (b Buf[W]) flipped() Buf[W] {
	b.r.FlipTag()
	return b
}

func (b Buf[W]) niche() bool {
	return b.r.IsNiche()
}

func (b Buf[W]) drop() {
	b.r.Release()
}
