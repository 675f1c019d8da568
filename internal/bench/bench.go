// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package bench builds a corpus of keys as small values and measures what
// the representation saved compared to one allocation per key.
package bench

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
	"github.com/trim21/errgo"

	"smolbuf"
	"smolbuf/internal/intern"
	"smolbuf/internal/layout"
	"smolbuf/internal/metrics"
)

// chunk is the number of keys one pool task builds.
const chunk = 1024

var ErrUnknownClass = errors.New("class must be 16 or 24")

type Options struct {
	Class   int
	Intern  bool
	Workers int
}

type Result struct {
	Keys     int
	Inline   int64
	Shared   int64
	Payload  int64
	Distinct int

	// Heap is the arena activity caused by the run, measured before values are released.
	Heap   smolbuf.ArenaStats
	Intern intern.Stats
	// Counts holds how often each key occurred.
	Counts map[string]int
}

// Run builds every key with opts.Workers goroutines, then releases them.
func Run(ctx context.Context, opts Options, keys []string, progress *metrics.Progress) (Result, error) {
	if progress == nil {
		progress = metrics.NewProgress()
	}

	switch opts.Class {
	case 16:
		return run[[16]byte](ctx, opts, keys, progress, smolbuf.DefaultInterner16())
	case 24:
		return run[[24]byte](ctx, opts, keys, progress, smolbuf.DefaultInterner24())
	}

	return Result{}, errgo.Wrap(ErrUnknownClass, "bench")
}

func run[W layout.Word](
	ctx context.Context,
	opts Options,
	keys []string,
	progress *metrics.Progress,
	in *smolbuf.Interner[W],
) (Result, error) {
	pool, err := ants.NewPool(max(opts.Workers, 1), ants.WithPreAlloc(true))
	if err != nil {
		return Result{}, errgo.Wrap(err, "failed to create worker pool")
	}
	defer pool.Release()

	values := make([]smolbuf.Str[W], len(keys))
	counts := xsync.NewMapOf[string, int]()

	before := smolbuf.HeapStats()
	internBefore := in.Stats()

	build := func(i int) error {
		var v smolbuf.Str[W]
		var err error
		if opts.Intern {
			v, err = in.Intern(keys[i])
		} else {
			v, err = smolbuf.NewStr[W](keys[i])
		}
		if err != nil {
			return errgo.Wrap(err, "key "+quoteKey(keys[i]))
		}

		values[i] = v
		progress.Observe(v.Len(), v.IsShared())
		counts.Compute(keys[i], func(n int, _ bool) (int, bool) {
			return n + 1, false
		})

		return nil
	}

	err = forEach(ctx, pool, len(keys), build)

	heap := smolbuf.HeapStats()
	res := Result{
		Keys: len(keys),
		Heap: smolbuf.ArenaStats{
			Allocs:    heap.Allocs - before.Allocs,
			Frees:     heap.Frees - before.Frees,
			Live:      heap.Live - before.Live,
			LiveBytes: heap.LiveBytes - before.LiveBytes,
		},
		Counts: make(map[string]int, counts.Size()),
	}

	if opts.Intern {
		st := in.Stats()
		res.Intern = intern.Stats{
			Entries: st.Entries,
			Hits:    st.Hits - internBefore.Hits,
			Misses:  st.Misses - internBefore.Misses,
		}
	}

	for i := range values {
		if values[i].IsShared() {
			res.Shared++
		} else {
			res.Inline++
		}
		res.Payload += int64(values[i].Len())
	}

	counts.Range(func(k string, n int) bool {
		res.Counts[k] = n
		return true
	})
	res.Distinct = len(res.Counts)

	// every value has a single owner, any worker may release it once building is done.
	_ = forEach(context.WithoutCancel(ctx), pool, len(values), func(i int) error {
		values[i].Release()
		return nil
	})

	log.Debug().Int("keys", len(keys)).Int64("shared", res.Shared).Msg("bench done")

	return res, err
}

// forEach calls f for every index in [0, n), split in chunks over pool.
func forEach(ctx context.Context, pool *ants.Pool, n int, f func(i int) error) error {
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() { firstErr = err })
	}

	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)

		err := pool.Submit(func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			for i := lo; i < hi; i++ {
				if err := f(i); err != nil {
					fail(err)
					return
				}
			}
		})
		if err != nil {
			wg.Done()
			fail(errgo.Wrap(err, "failed to submit task"))
			break
		}
	}

	wg.Wait()

	return firstErr
}

func quoteKey(k string) string {
	if len(k) > 64 {
		k = k[:64] + "..."
	}

	return strconv.Quote(k)
}
