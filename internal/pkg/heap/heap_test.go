// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smolbuf/internal/pkg/heap"
)

type count int

func (c count) Less(o count) bool { return c < o }

func TestPopOrder(t *testing.T) {
	t.Parallel()

	h := heap.FromSlice([]count{5, 3, 8, 1, 9, 2})
	h.Push(4)

	var got []count
	for h.Len() > 0 {
		got = append(got, h.Pop())
	}

	require.Equal(t, []count{1, 2, 3, 4, 5, 8, 9}, got)
}

func TestPushBounded(t *testing.T) {
	t.Parallel()

	h := heap.New[count]()
	for _, c := range []count{7, 1, 9, 3, 9, 4, 10, 2} {
		h.PushBounded(c, 3)
	}

	require.Equal(t, 3, h.Len())
	require.Equal(t, count(9), h.Peek())
	require.Equal(t, []count{10, 9, 9}, h.Sorted())
	require.Zero(t, h.Len())

	h.PushBounded(1, 0)
	require.Zero(t, h.Len())
}
