// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf_test

import (
	"bytes"
	"fmt"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smolbuf"
)

func TestBufRoundTrip(t *testing.T) {
	t.Parallel()

	roundTrip := func(in []byte) bool {
		b16 := smolbuf.NewBuf16(in)
		b24 := smolbuf.NewBuf24(in)
		defer b16.Release()
		defer b24.Release()

		return bytes.Equal(b16.View(), in) &&
			bytes.Equal(b24.Bytes(), in) &&
			b16.IsShared() == (len(in) > smolbuf.Cap16) &&
			b24.IsShared() == (len(in) > smolbuf.Cap24)
	}

	require.NoError(t, quick.Check(roundTrip, nil))
}

func TestBufThreshold(t *testing.T) {
	t.Parallel()

	for n := range 40 {
		payload := bytes.Repeat([]byte{0}, n)

		b16 := smolbuf.NewBuf16(payload)
		b24 := smolbuf.NewBuf24(payload)

		assert.Equal(t, n > 15, b16.IsShared(), "Buf16 len %d", n)
		assert.Equal(t, n > 23, b24.IsShared(), "Buf24 len %d", n)
		assert.Equal(t, n, b16.Len())
		assert.Equal(t, n == 0, b24.IsEmpty())

		b16.Release()
		b24.Release()
	}
}

func TestBufCopyIsIndependent(t *testing.T) {
	t.Parallel()

	src := []byte("source bytes that are modified later")
	b := smolbuf.NewBuf16(src)
	defer b.Release()

	src[0] = 'X'
	out := b.Bytes()
	out[1] = 'Y'

	require.Equal(t, "source bytes that are modified later", b.String())
}

func TestBufEquality(t *testing.T) {
	t.Parallel()

	equal := func(in []byte) bool {
		a := smolbuf.NewBuf16(in)
		b := smolbuf.NewBuf16(in)
		w := a.Widen()
		defer a.Release()
		defer b.Release()
		defer w.Release()

		return a.Equal(b) && a.Hash() == b.Hash() && a.Hash() == w.Hash() &&
			a.EqualBytes(in) && a.Compare(b) == 0 && !a.Less(b)
	}

	require.NoError(t, quick.Check(equal, nil))
}

func TestBufOrdering(t *testing.T) {
	t.Parallel()

	order := func(x, y []byte) bool {
		a := smolbuf.NewBuf24(x)
		b := smolbuf.NewBuf24(y)
		defer a.Release()
		defer b.Release()

		return a.Compare(b) == bytes.Compare(x, y)
	}

	require.NoError(t, quick.Check(order, nil))
}

func TestBufFormat(t *testing.T) {
	t.Parallel()

	b := smolbuf.NewBuf16([]byte{0xde, 0xad, 0xbe, 0xef})

	assert.Equal(t, "deadbeef", fmt.Sprintf("%x", b))
	assert.Equal(t, `"\xde\xad\xbe\xef"`, fmt.Sprintf("%q", b))
	assert.Equal(t, "[222 173 190 239]", fmt.Sprintf("%v", b))
}

func TestBufFromString(t *testing.T) {
	t.Parallel()

	b := smolbuf.Buf24FromString("built from a string, not a slice")
	defer b.Release()

	require.True(t, b.IsShared())
	require.Equal(t, "built from a string, not a slice", b.String())
}
