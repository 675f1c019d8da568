//go:build release

package assert

const Enabled = false

func Equal[T comparable](v1, v2 T, msg ...string)    {}
func NotEqual[T comparable](v1, v2 T, msg ...string) {}
func True(cond bool, msg ...string)                  {}
