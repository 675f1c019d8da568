// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package as_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"smolbuf/internal/pkg/as"
)

func TestUint8(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint8(15), as.Uint8(15))
	require.Equal(t, uint8(255), as.Uint8(uint64(255)))

	require.Panics(t, func() {
		as.Uint8(256)
	})
	require.Panics(t, func() {
		as.Uint8(-1)
	})
}

func TestUint32(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint32(5), as.Uint32(int8(5)))
	require.Equal(t, uint32(5), as.Uint32(int16(5)))
	require.Equal(t, uint32(5), as.Uint32(int32(5)))
	require.Equal(t, uint32(5), as.Uint32(int64(5)))
	require.Equal(t, uint32(5), as.Uint32(int(5)))
	require.Equal(t, uint32(5), as.Uint32(uint8(5)))
	require.Equal(t, uint32(5), as.Uint32(uint16(5)))
	require.Equal(t, uint32(5), as.Uint32(uint64(5)))
	require.Equal(t, uint32(5), as.Uint32(uint(5)))

	require.Panics(t, func() {
		as.Uint32(math.MaxUint32 + 1)
	})
}

func TestUint64(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint64(5), as.Uint64(int8(5)))
	require.Equal(t, uint64(5), as.Uint64(int(5)))
	require.Equal(t, uint64(5), as.Uint64(uint32(5)))

	require.Panics(t, func() {
		as.Uint64(-1)
	})
}

func TestInt(t *testing.T) {
	t.Parallel()

	require.Equal(t, 7, as.Int(uint64(7)))
	require.Equal(t, -7, as.Int(int64(-7)))

	require.Panics(t, func() {
		as.Int(uint64(math.MaxUint64))
	})
}
