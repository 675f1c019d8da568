// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf

import (
	"encoding/json"

	"github.com/zeebo/bencode"
)

// Value is satisfied by the four value types.
type Value[T any] interface {
	Str16 | Str24 | Buf16 | Buf24

	flipped() T
	niche() bool
	drop()
}

var _ json.Marshaler = Option[Str16]{}
var _ json.Unmarshaler = (*Option[Str16])(nil)
var _ bencode.Marshaler = Option[Buf24]{}
var _ bencode.Unmarshaler = (*Option[Buf24])(nil)

// Option is a value that may be absent. It has the same size as T: the
// absent state uses a tag byte no value ever carries.
//
// The zero Option is None.
type Option[T Value[T]] struct {
	// v holds the value with its tag byte inverted, so the zero word is None.
	v T
}

// Some wraps v. The Option takes over the reference held by v.
func Some[T Value[T]](v T) Option[T] {
	return Option[T]{v: v.flipped()}
}

func None[T Value[T]]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present. The value borrows the
// reference held by o, Clone it to keep it after o is released.
func (o Option[T]) Get() (T, bool) {
	v := o.v.flipped()
	if v.niche() {
		var zero T
		return zero, false
	}

	return v, true
}

func (o Option[T]) IsSome() bool {
	_, ok := o.Get()
	return ok
}

// Or returns the value if present and def otherwise.
func (o Option[T]) Or(def T) T {
	if v, ok := o.Get(); ok {
		return v
	}

	return def
}

// Release drops the held value, if any, and sets o to None.
func (o *Option[T]) Release() {
	if v, ok := o.Get(); ok {
		v.drop()
	}

	*o = Option[T]{}
}

var nullBytes = []byte("null")

func (o Option[T]) MarshalJSON() ([]byte, error) {
	v, ok := o.Get()
	if !ok {
		return nullBytes, nil
	}

	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	o.Release()
	if string(data) == "null" {
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*o = Some(v)
	return nil
}

// MarshalBencode encodes an absent value as the empty value, bencode has no null.
func (o Option[T]) MarshalBencode() ([]byte, error) {
	v, _ := o.Get()
	return bencode.EncodeBytes(v)
}

func (o *Option[T]) UnmarshalBencode(data []byte) error {
	o.Release()

	var v T
	if err := bencode.DecodeBytes(data, &v); err != nil {
		return err
	}

	*o = Some(v)
	return nil
}
