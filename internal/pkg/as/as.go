// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package as converts between integer types and panics when the value doesn't fit.
package as

import (
	"fmt"
	"math"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func overflow[T integer](v T, target string) {
	panic(fmt.Sprintf("as: %d overflows %s", v, target))
}

func Uint8[T integer](v T) uint8 {
	if v < 0 || uint64(v) > math.MaxUint8 {
		overflow(v, "uint8")
	}

	return uint8(v)
}

func Uint32[T integer](v T) uint32 {
	if v < 0 || uint64(v) > math.MaxUint32 {
		overflow(v, "uint32")
	}

	return uint32(v)
}

func Uint64[T integer](v T) uint64 {
	if v < 0 {
		overflow(v, "uint64")
	}

	return uint64(v)
}

// Int converts v to int, used when a packed length is handed back to slicing code.
func Int[T integer](v T) int {
	if v < 0 {
		if int64(v) < math.MinInt {
			overflow(v, "int")
		}

		return int(v)
	}

	if uint64(v) > math.MaxInt {
		overflow(v, "int")
	}

	return int(v)
}
