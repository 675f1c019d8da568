// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf

import (
	"fmt"
	"io"

	"github.com/samber/lo"

	"smolbuf/internal/layout"
	"smolbuf/internal/pkg/unsafe"
	"smolbuf/internal/repr"
)

// Str is immutable UTF-8 text stored in a W sized word.
// Use the Str16 and Str24 aliases.
//
// The zero value is the empty string. Str is not comparable with ==, use Equal.
type Str[W layout.Word] struct {
	_ [0]func()
	r repr.Repr[W]
}

// NewStr builds a Str from s. It fails with ErrInvalidUTF8 when s is not valid UTF-8.
func NewStr[W layout.Word](s string) (Str[W], error) {
	return StrFromBytes[W](unsafe.Bytes(s))
}

// StrFromBytes builds a Str from a copy of b.
func StrFromBytes[W layout.Word](b []byte) (Str[W], error) {
	if err := validUTF8(b); err != nil {
		return Str[W]{}, err
	}

	return Str[W]{r: repr.New[W](b)}, nil
}

// MustStr is NewStr for input known to be valid, it panics otherwise.
func MustStr[W layout.Word](s string) Str[W] {
	return lo.Must(NewStr[W](s))
}

// NewStaticStr is NewStr without copying s into the shared block, which
// references the string data directly. Meant for literals and other strings
// that stay reachable anyway.
func NewStaticStr[W layout.Word](s string) (Str[W], error) {
	b := unsafe.Bytes(s)
	if err := validUTF8(b); err != nil {
		return Str[W]{}, err
	}

	return Str[W]{r: repr.NewStatic[W](b)}, nil
}

func NewStr16(s string) (Str16, error) { return NewStr[[16]byte](s) }
func NewStr24(s string) (Str24, error) { return NewStr[[24]byte](s) }

func Str16FromBytes(b []byte) (Str16, error) { return StrFromBytes[[16]byte](b) }
func Str24FromBytes(b []byte) (Str24, error) { return StrFromBytes[[24]byte](b) }

func MustStr16(s string) Str16 { return MustStr[[16]byte](s) }
func MustStr24(s string) Str24 { return MustStr[[24]byte](s) }

func NewStaticStr16(s string) (Str16, error) { return NewStaticStr[[16]byte](s) }
func NewStaticStr24(s string) (Str24, error) { return NewStaticStr[[24]byte](s) }

// View returns the content without copying. The result is valid while s is
// live and not overwritten.
func (s *Str[W]) View() string {
	return unsafe.Str(s.r.Bytes())
}

// String returns the content. Inline content is copied, shared content is not.
func (s Str[W]) String() string {
	return s.r.String()
}

// Bytes returns a copy of the content.
func (s Str[W]) Bytes() []byte {
	return append([]byte{}, s.r.Bytes()...)
}

// Len returns the length in bytes.
func (s Str[W]) Len() int {
	return s.r.Len()
}

func (s Str[W]) IsEmpty() bool {
	return s.r.Len() == 0
}

// IsShared reports whether the content lives in a shared block.
func (s Str[W]) IsShared() bool {
	return s.r.IsShared()
}

// RefCount returns the number of owners of a shared block, 0 for inline values.
func (s Str[W]) RefCount() int {
	return s.r.RefCount()
}

// Clone returns a new owner of the same content. It never copies a shared payload.
func (s Str[W]) Clone() Str[W] {
	return Str[W]{r: s.r.Clone()}
}

// Release drops the reference held by s and sets it to the empty string.
// It is safe to call on an empty or already released value.
func (s *Str[W]) Release() {
	s.r.Release()
}

// AsBuf returns the content as a byte buffer sharing the same block.
func (s Str[W]) AsBuf() Buf[W] {
	return Buf[W]{r: s.r.Clone()}
}

// Widen returns the content as a Str24. A shared block is shared, not copied.
func (s Str[W]) Widen() Str24 {
	return Str24{r: repr.Convert[[24]byte](&s.r)}
}

// Narrow returns the content as a Str16. Content of 16 to 23 bytes is inline
// in a Str24 and has to be copied into a new block.
func (s Str[W]) Narrow() Str16 {
	return Str16{r: repr.Convert[[16]byte](&s.r)}
}

// Equal reports whether both values hold the same content.
func (s Str[W]) Equal(o Str[W]) bool {
	return repr.Equal(&s.r, &o.r)
}

func (s Str[W]) EqualString(v string) bool {
	return string(s.r.Bytes()) == v
}

// Compare orders values byte by byte, which for UTF-8 is code point order.
func (s Str[W]) Compare(o Str[W]) int {
	return repr.Compare(&s.r, &o.r)
}

func (s Str[W]) Less(o Str[W]) bool {
	return s.Compare(o) < 0
}

// Hash returns a hash of the content. Equal values hash equally.
func (s Str[W]) Hash() uint64 {
	return repr.Hash(&s.r)
}

// WriteTo implements io.WriterTo.
func (s *Str[W]) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.r.Bytes())
	return int64(n), err
}

// Format implements fmt.Formatter.
func (s Str[W]) Format(state fmt.State, verb rune) {
	fmt.Fprintf(state, fmt.FormatString(state, verb), s.r.String())
}

func (s Str[W]) flipped() Str[W] {
	s.r.FlipTag()
	return s
}

func (s Str[W]) niche() bool {
	return s.r.IsNiche()
}

func (s Str[W]) drop() {
	s.r.Release()
}
