// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

//go:build !smolbuf_atomic

package arena

// AtomicRefs reports whether reference counts use atomic updates.
const AtomicRefs = false

type refcount struct {
	n int64
}

func (r *refcount) load() int64 { return r.n }

func (r *refcount) store(v int64) { r.n = v }

func (r *refcount) add(d int64) int64 {
	r.n += d
	return r.n
}
