// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package arena_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smolbuf/internal/arena"
)

func TestAllocCopiesPayload(t *testing.T) {
	t.Parallel()

	a := arena.New()
	payload := []byte("a payload longer than any inline capacity")

	h := a.Alloc(payload, nil)
	require.NotZero(t, h)

	payload[0] = 'X'
	require.Equal(t, "a payload longer than any inline capacity", string(a.View(h)))
	require.Equal(t, 1, a.Refs(h))
}

func TestAllocStaticReferencesPayload(t *testing.T) {
	t.Parallel()

	a := arena.New()
	payload := []byte("a payload the caller keeps unchanged")

	h := a.AllocStatic(payload)
	require.Same(t, &payload[0], &a.View(h)[0])
	require.Equal(t, 1, a.Refs(h))
	require.EqualValues(t, len(payload), a.Stats().LiveBytes)

	a.Release(h)
	require.EqualValues(t, 0, a.Stats().Live)
	require.EqualValues(t, 0, a.Stats().LiveBytes)
}

func TestRefCountLifecycle(t *testing.T) {
	t.Parallel()

	a := arena.New()
	h := a.Alloc([]byte("a 24-character string!!!"), nil)

	const clones = 1000
	for range clones {
		a.Retain(h)
	}

	require.Equal(t, clones+1, a.Refs(h))
	s := a.Stats()
	require.EqualValues(t, 1, s.Allocs, "cloning must not allocate a new block")
	require.EqualValues(t, 1, s.Live)

	for range clones {
		a.Release(h)
	}

	require.Equal(t, 1, a.Refs(h))
	require.Equal(t, "a 24-character string!!!", string(a.View(h)))

	a.Release(h)

	s = a.Stats()
	require.EqualValues(t, 1, s.Allocs)
	require.EqualValues(t, 1, s.Frees)
	require.EqualValues(t, 0, s.Live)
	require.EqualValues(t, 0, s.LiveBytes)
}

func TestSlotReuse(t *testing.T) {
	t.Parallel()

	a := arena.New()
	h1 := a.Alloc([]byte("first block payload"), nil)
	a.Release(h1)

	h2 := a.Alloc([]byte("second block payload"), nil)
	require.Equal(t, uint32(h1), uint32(h2), "a freed slot is handed out again")
	require.NotEqual(t, h1, h2, "with a new generation")
	require.Equal(t, "second block payload", string(a.View(h2)))
	require.Equal(t, 1, a.Refs(h2))
}

func TestStaleHandleIsRejected(t *testing.T) {
	t.Parallel()

	a := arena.New()
	stale := a.Alloc([]byte("first block payload"), nil)
	a.Release(stale)

	h := a.Alloc([]byte("second payload, someone else's"), nil)

	require.Panics(t, func() { a.View(stale) })
	require.Panics(t, func() { a.Retain(stale) })
	require.Panics(t, func() { a.Release(stale) })
	require.Panics(t, func() { a.Refs(stale) })

	require.Equal(t, 1, a.Refs(h))
	require.Equal(t, "second payload, someone else's", string(a.View(h)))
	a.Release(h)
	require.EqualValues(t, 0, a.Stats().Live)
}

func TestInvalidHandlePanics(t *testing.T) {
	t.Parallel()

	a := arena.New()
	require.Panics(t, func() { a.View(0) })
	require.Panics(t, func() { a.View(arena.Handle(1) << 32) })
	require.Panics(t, func() { a.View(5) }, "slot on a page that was never allocated")
}

func TestReleaseAfterFreePanics(t *testing.T) {
	t.Parallel()

	a := arena.New()
	h := a.Alloc([]byte("payload"), nil)
	a.Release(h)

	require.Panics(t, func() {
		a.Release(h)
	})
}

type recordingOwner struct {
	a        *arena.Arena
	retained int
	released int
	freed    []arena.Handle
}

func (o *recordingOwner) Retain(h arena.Handle) {
	o.retained++
	o.a.Incr(h)
}

func (o *recordingOwner) Release(h arena.Handle) {
	o.released++
	if o.a.Decr(h) {
		o.freed = append(o.freed, h)
	}
}

func TestOwnerReceivesRefCounting(t *testing.T) {
	t.Parallel()

	a := arena.New()
	o := &recordingOwner{a: a}

	h := a.Alloc([]byte("owned payload bytes"), o)
	a.Retain(h)
	a.Release(h)
	a.Release(h)

	assert.Equal(t, 1, o.retained)
	assert.Equal(t, 2, o.released)
	assert.Equal(t, []arena.Handle{h}, o.freed)
	assert.EqualValues(t, 0, a.Stats().Live)
}

func TestConcurrentAlloc(t *testing.T) {
	t.Parallel()

	a := arena.New()

	const workers = 8
	const perWorker = 3000

	var wg sync.WaitGroup
	handles := make([][]arena.Handle, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				handles[w] = append(handles[w], a.Alloc([]byte("concurrently allocated payload"), nil))
			}
		}()
	}
	wg.Wait()

	seen := make(map[arena.Handle]bool)
	for _, hs := range handles {
		for _, h := range hs {
			require.False(t, seen[h], "handle %d handed out twice", h)
			seen[h] = true
		}
	}

	require.EqualValues(t, workers*perWorker, a.Stats().Live)

	for _, hs := range handles {
		for _, h := range hs {
			a.Release(h)
		}
	}

	require.EqualValues(t, 0, a.Stats().Live)
}
