// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package mempool pools the scratch memory of builders and corpus scanners.
package mempool

import (
	"github.com/colega/zeropool"
	"github.com/docker/go-units"
	"github.com/valyala/bytebufferpool"
)

// ScanBufferSize is the size of the slices handed out by GetSlice.
const ScanBufferSize = 64 * units.KiB

var pool = zeropool.New(func() []byte {
	return make([]byte, ScanBufferSize)
})

// GetSlice returns a slice with len and cap ScanBufferSize.
func GetSlice() []byte {
	return pool.Get()[:ScanBufferSize]
}

func PutSlice(slice []byte) {
	if cap(slice) < ScanBufferSize {
		return
	}

	pool.Put(slice[:0])
}

// Get returns an empty buffer for content that outgrew an inline scratch array.
func Get() *bytebufferpool.ByteBuffer {
	return bytebufferpool.Get()
}

// Put returns b to the pool. b must not be used afterward.
func Put(b *bytebufferpool.ByteBuffer) {
	bytebufferpool.Put(b)
}
