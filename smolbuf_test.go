// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf_test

import (
	"math/rand"
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"smolbuf"
	"smolbuf/internal/pkg/random"
)

// text generates valid UTF-8 of up to size bytes for testing/quick.
type text string

func (text) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(text(random.UTF8From(r, r.Intn(size+1))))
}

func TestValueSizes(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, 16, unsafe.Sizeof(smolbuf.Str16{}))
	require.EqualValues(t, 16, unsafe.Sizeof(smolbuf.Buf16{}))
	require.EqualValues(t, 24, unsafe.Sizeof(smolbuf.Str24{}))
	require.EqualValues(t, 24, unsafe.Sizeof(smolbuf.Buf24{}))

	require.Equal(t, unsafe.Sizeof(smolbuf.Str16{}), unsafe.Sizeof(smolbuf.Option[smolbuf.Str16]{}))
	require.Equal(t, unsafe.Sizeof(smolbuf.Buf16{}), unsafe.Sizeof(smolbuf.Option[smolbuf.Buf16]{}))
	require.Equal(t, unsafe.Sizeof(smolbuf.Str24{}), unsafe.Sizeof(smolbuf.Option[smolbuf.Str24]{}))
	require.Equal(t, unsafe.Sizeof(smolbuf.Buf24{}), unsafe.Sizeof(smolbuf.Option[smolbuf.Buf24]{}))
}

func TestEndToEnd(t *testing.T) {
	before := smolbuf.HeapStats()

	hello := smolbuf.MustStr16("hello")
	require.False(t, hello.IsShared())
	require.Equal(t, 5, hello.Len())

	s := smolbuf.MustStr16("a 24-character string!!!")
	require.True(t, s.IsShared())
	require.Equal(t, 24, s.Len())

	wide := smolbuf.MustStr24("a 24-character string!!!")
	require.True(t, wide.IsShared(), "24 bytes exceed the 23 byte inline capacity")
	wide.Release()

	clones := make([]smolbuf.Str16, 1000)
	for i := range clones {
		clones[i] = s.Clone()
	}

	require.Equal(t, 1001, s.RefCount())

	for i := range clones {
		clones[i].Release()
	}

	require.Equal(t, 1, s.RefCount())
	require.Equal(t, "a 24-character string!!!", s.View())

	mid := smolbuf.HeapStats()
	require.EqualValues(t, 2, mid.Allocs-before.Allocs)
	require.EqualValues(t, 1, mid.Live-before.Live)

	s.Release()

	after := smolbuf.HeapStats()
	require.EqualValues(t, 2, after.Frees-before.Frees)
	require.Equal(t, before.Live, after.Live)
	require.Equal(t, before.LiveBytes, after.LiveBytes)
}

func TestInlineConstructionDoesNotAllocate(t *testing.T) {
	b := []byte("fifteen bytes!!")
	require.Len(t, b, smolbuf.Cap16)

	allocs := testing.AllocsPerRun(100, func() {
		v := smolbuf.NewBuf16(b)
		c := v.Clone()
		c.Release()
		v.Release()
	})
	require.Zero(t, allocs)

	allocs = testing.AllocsPerRun(100, func() {
		v := smolbuf.MustStr24("twenty-three bytes long")
		_ = v.Len()
	})
	require.Zero(t, allocs)
}

func TestInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := smolbuf.Str16FromBytes([]byte{0xFF})
	require.ErrorIs(t, err, smolbuf.ErrInvalidUTF8)

	_, err = smolbuf.NewStr24("valid prefix then \xc3\x28")
	require.ErrorIs(t, err, smolbuf.ErrInvalidUTF8)

	require.Panics(t, func() {
		smolbuf.MustStr16("\xff")
	})

	b := smolbuf.NewBuf16([]byte{0xFF, 0xFE})
	_, err = b.AsStr()
	require.ErrorIs(t, err, smolbuf.ErrInvalidUTF8)
}
