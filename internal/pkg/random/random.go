// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package random generates payloads for tests and synthetic corpora.
package random

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/colega/zeropool"

	"smolbuf/internal/pkg/unsafe"
)

var p = zeropool.New(func() *bufio.Reader {
	return bufio.NewReader(rand.Reader)
})

const base64UrlSafeChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

// URLSafeStr generate a cryptographically secure url safe string in given length.
// result is not a valid base64 string or base64url string
// entropy = 64^size
func URLSafeStr(size int) string {
	r := Bytes(size)

	for i, rb := range r {
		// len(base64UrlSafeChars) % 64 == 0 so it's not bias
		r[i] = base64UrlSafeChars[rb%64]
	}

	return unsafe.Str(r)
}

const printable = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
const printableCharsLength = byte(len(printable))
const printableMaxByte = byte(255 - (256 % len(printable)))

func PrintableBytes(size int) []byte {
	reader := p.Get()
	defer p.Put(reader)

	b := make([]byte, size)
	if size == 0 {
		return b
	}

	r := make([]byte, size+size/2) // storage for random bytes.
	i := 0

	for {
		_, err := io.ReadFull(reader, r)
		if err != nil {
			panic("unexpected error happened when reading from bufio.NewReader(crypto/rand.Reader)")
		}
		for _, rb := range r {
			if rb > printableMaxByte { // Skip this number to avoid modulo bias.
				continue
			}
			b[i] = printable[rb%printableCharsLength]
			i++
			if i == size {
				return b
			}
		}
	}
}

// Bytes generate a cryptographically secure random bytes.
// Will panic if it can't read from 'crypto/rand'.
// entropy = 256^size
func Bytes(size int) []byte {
	reader := p.Get()
	defer p.Put(reader)

	r := make([]byte, size)
	_, err := io.ReadFull(reader, r)
	if err != nil {
		panic(fmt.Sprintf("unexpected error happened when reading from bufio.NewReader(crypto/rand.Reader) %+v", err))
	}

	return r
}

// Intn returns a number in [0, n). It panics if n <= 0.
func Intn(n int) int {
	if n <= 0 {
		panic("random: Intn with n <= 0")
	}

	return int(binary.LittleEndian.Uint64(Bytes(8)) % uint64(n))
}

// rune ranges by encoded width, surrogates excluded from the 3 byte range.
var widths = [...][2]rune{
	{0x20, 0x7E},
	{0x80, 0x7FF},
	{0xE000, 0xFFFF},
	{0x10000, utf8.MaxRune},
}

// Source is a seedable number source, *math/rand.Rand implements it.
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int { return Intn(n) }

// UTF8 returns valid UTF-8 text of exactly size bytes, mixing runes of every
// encoded width.
func UTF8(size int) string {
	return UTF8From(cryptoSource{}, size)
}

// UTF8From is UTF8 drawing from src, so the same seed gives the same text.
func UTF8From(src Source, size int) string {
	b := make([]byte, 0, size)
	for len(b) < size {
		w := 1 + src.Intn(min(4, size-len(b)))
		lo, hi := widths[w-1][0], widths[w-1][1]
		b = utf8.AppendRune(b, lo+rune(src.Intn(int(hi-lo+1))))
	}

	return unsafe.Str(b)
}
