// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf

import (
	"io"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/valyala/bytebufferpool"

	"smolbuf/internal/layout"
	"smolbuf/internal/pkg/mempool"
	"smolbuf/internal/repr"
)

type (
	Builder16 = Builder[[16]byte]
	Builder24 = Builder[[24]byte]
)

var _ io.Writer = (*Builder16)(nil)
var _ io.StringWriter = (*Builder24)(nil)

// Builder assembles a value from parts. Content that ends up fitting inline
// never leaves the builder's own array, longer content moves to a pooled
// buffer. The zero value is ready to use.
//
// Call Reset when done to return the pooled buffer.
type Builder[W layout.Word] struct {
	scratch [Cap24]byte
	n       int
	spill   *bytebufferpool.ByteBuffer
}

func (b *Builder[W]) Write(p []byte) (int, error) {
	if b.spill == nil && b.n+len(p) <= layout.Cap[W]() {
		b.n += copy(b.scratch[b.n:], p)
		return len(p), nil
	}

	if b.spill == nil {
		b.spill = mempool.Get()
		_, _ = b.spill.Write(b.scratch[:b.n])
	}

	return b.spill.Write(p)
}

func (b *Builder[W]) WriteString(s string) (int, error) {
	if b.spill == nil && b.n+len(s) <= layout.Cap[W]() {
		b.n += copy(b.scratch[b.n:], s)
		return len(s), nil
	}

	if b.spill == nil {
		b.spill = mempool.Get()
		_, _ = b.spill.Write(b.scratch[:b.n])
	}

	return b.spill.WriteString(s)
}

func (b *Builder[W]) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

func (b *Builder[W]) WriteRune(r rune) (int, error) {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	return b.Write(enc[:n])
}

func (b *Builder[W]) Len() int {
	if b.spill != nil {
		return b.spill.Len()
	}

	return b.n
}

func (b *Builder[W]) content() []byte {
	if b.spill != nil {
		return b.spill.B
	}

	return b.scratch[:b.n]
}

// Str returns the content built so far as text.
func (b *Builder[W]) Str() (Str[W], error) {
	return StrFromBytes[W](b.content())
}

// Buf returns the content built so far.
func (b *Builder[W]) Buf() Buf[W] {
	return Buf[W]{r: repr.New[W](b.content())}
}

// Reset empties the builder and returns its pooled buffer.
func (b *Builder[W]) Reset() {
	if b.spill != nil {
		mempool.Put(b.spill)
		b.spill = nil
	}

	b.n = 0
}

// Concat joins parts into one value.
func Concat[W layout.Word](parts ...string) (Str[W], error) {
	var b Builder[W]
	defer b.Reset()

	for _, p := range parts {
		_, _ = b.WriteString(p)
	}

	return b.Str()
}

// FromRunes encodes runes as UTF-8. Invalid runes become U+FFFD.
func FromRunes[W layout.Word](runes []rune) Str[W] {
	var b Builder[W]
	defer b.Reset()

	for _, r := range runes {
		_, _ = b.WriteRune(r)
	}

	return lo.Must(b.Str())
}

func Concat16(parts ...string) (Str16, error) { return Concat[[16]byte](parts...) }
func Concat24(parts ...string) (Str24, error) { return Concat[[24]byte](parts...) }

func FromRunes16(runes []rune) Str16 { return FromRunes[[16]byte](runes) }
func FromRunes24(runes []rune) Str24 { return FromRunes[[24]byte](runes) }
