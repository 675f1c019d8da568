//go:build !release

// Package assert holds invariant checks for the value layout and the arena.
// They are compiled out with `-tags release`.
package assert

const Enabled = true

func panicMessage(msg []string) {
	if len(msg) == 0 {
		panic("assert failed")
	}

	panic(msg[0])
}

func Equal[T comparable](v1, v2 T, msg ...string) {
	if !(v1 == v2) {
		panicMessage(msg)
	}
}

func NotEqual[T comparable](v1, v2 T, msg ...string) {
	if !(v1 != v2) {
		panicMessage(msg)
	}
}

func True(cond bool, msg ...string) {
	if !cond {
		panicMessage(msg)
	}
}
