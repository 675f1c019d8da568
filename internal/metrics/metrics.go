// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package metrics exposes arena, interner and load progress counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/puzpuzpuz/xsync/v3"

	"smolbuf/internal/arena"
	"smolbuf/internal/intern"
)

// Progress counts values built by concurrent workers.
type Progress struct {
	Values *xsync.Counter
	Inline *xsync.Counter
	Shared *xsync.Counter
	Bytes  *xsync.Counter
}

func NewProgress() *Progress {
	return &Progress{
		Values: xsync.NewCounter(),
		Inline: xsync.NewCounter(),
		Shared: xsync.NewCounter(),
		Bytes:  xsync.NewCounter(),
	}
}

// Observe records one value of n bytes.
func (p *Progress) Observe(n int, shared bool) {
	p.Values.Inc()
	p.Bytes.Add(int64(n))
	if shared {
		p.Shared.Inc()
	} else {
		p.Inline.Inc()
	}
}

// Sources are read on every scrape.
type Sources struct {
	Heap     func() arena.Stats
	Interner func() intern.Stats
	Progress *Progress
}

func counter(name, help string, f func() float64) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, f)
}

func gauge(name, help string, f func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, f)
}

// NewRegistry returns a registry with the go runtime collectors and every
// non-nil source.
func NewRegistry(src Sources) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if h := src.Heap; h != nil {
		reg.MustRegister(
			counter("smolbuf_arena_allocs_total", "shared blocks allocated", func() float64 {
				return float64(h().Allocs)
			}),
			counter("smolbuf_arena_frees_total", "shared blocks freed", func() float64 {
				return float64(h().Frees)
			}),
			gauge("smolbuf_arena_live_blocks", "shared blocks currently referenced", func() float64 {
				return float64(h().Live)
			}),
			gauge("smolbuf_arena_live_bytes", "payload bytes held by live blocks", func() float64 {
				return float64(h().LiveBytes)
			}),
		)
	}

	if in := src.Interner; in != nil {
		reg.MustRegister(
			gauge("smolbuf_intern_entries", "live interned blocks", func() float64 {
				return float64(in().Entries)
			}),
			counter("smolbuf_intern_hits_total", "intern calls that reused a block", func() float64 {
				return float64(in().Hits)
			}),
			counter("smolbuf_intern_misses_total", "intern calls that allocated a block", func() float64 {
				return float64(in().Misses)
			}),
		)
	}

	if p := src.Progress; p != nil {
		reg.MustRegister(
			counter("smolbuf_values_total", "values built", func() float64 {
				return float64(p.Values.Value())
			}),
			counter("smolbuf_values_inline_total", "values built inline", func() float64 {
				return float64(p.Inline.Value())
			}),
			counter("smolbuf_values_shared_total", "values built in a shared block", func() float64 {
				return float64(p.Shared.Value())
			}),
			counter("smolbuf_payload_bytes_total", "payload bytes of every value built", func() float64 {
				return float64(p.Bytes.Value())
			}),
		)
	}

	return reg
}
