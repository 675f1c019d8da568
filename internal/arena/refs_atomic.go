// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

//go:build smolbuf_atomic

package arena

import (
	"go.uber.org/atomic"
)

// AtomicRefs reports whether reference counts use atomic updates.
const AtomicRefs = true

type refcount struct {
	n atomic.Int64
}

func (r *refcount) load() int64 { return r.n.Load() }

func (r *refcount) store(v int64) { r.n.Store(v) }

func (r *refcount) add(d int64) int64 { return r.n.Add(d) }
