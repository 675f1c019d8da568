// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/trim21/errgo"
	"github.com/zeebo/bencode"
	"gopkg.in/yaml.v3"

	"smolbuf/internal/repr"
)

var _ json.Marshaler = Str16{}
var _ json.Unmarshaler = (*Str16)(nil)
var _ encoding.TextMarshaler = Str24{}
var _ encoding.TextUnmarshaler = (*Str24)(nil)
var _ yaml.Marshaler = Buf16{}
var _ yaml.Unmarshaler = (*Buf16)(nil)
var _ bencode.Marshaler = Buf24{}
var _ bencode.Unmarshaler = (*Buf24)(nil)

// Decoding replaces the previous content only on success. The old reference
// is released.
func (s *Str[W]) set(b []byte) error {
	v, err := StrFromBytes[W](b)
	if err != nil {
		return err
	}

	s.Release()
	*s = v

	return nil
}

func (b *Buf[W]) set(p []byte) {
	b.Release()
	b.r = repr.New[W](p)
}

func (s Str[W]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.r.String())
}

// UnmarshalJSON rejects invalid UTF-8 and unpaired surrogate escapes,
// encoding/json would replace both with U+FFFD.
func (s *Str[W]) UnmarshalJSON(data []byte) error {
	if err := validUTF8(data); err != nil {
		return err
	}

	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return errgo.Wrap(err, "failed to decode text")
	}

	if err := checkSurrogates(data); err != nil {
		return err
	}

	return s.set([]byte(v))
}

// checkSurrogates walks the escapes of a well-formed JSON string literal.
func checkSurrogates(data []byte) error {
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			continue
		}

		i++
		if data[i] != 'u' {
			continue
		}

		r1 := hexRune(data[i+1 : i+5])
		i += 4
		if !utf16.IsSurrogate(r1) {
			continue
		}

		if i+6 < len(data) && data[i+1] == '\\' && data[i+2] == 'u' {
			if r := utf16.DecodeRune(r1, hexRune(data[i+3:i+7])); r != utf8.RuneError {
				i += 6
				continue
			}
		}

		return errgo.Wrap(ErrInvalidUTF8, "unpaired surrogate escape at byte "+strconv.Itoa(i-5))
	}

	return nil
}

func hexRune(b []byte) rune {
	n, _ := strconv.ParseUint(string(b), 16, 32)
	return rune(n)
}

func (s Str[W]) MarshalText() ([]byte, error) {
	return s.Bytes(), nil
}

func (s *Str[W]) UnmarshalText(text []byte) error {
	return s.set(text)
}

func (s Str[W]) MarshalYAML() (any, error) {
	return s.r.String(), nil
}

func (s *Str[W]) UnmarshalYAML(value *yaml.Node) error {
	var v string
	if err := value.Decode(&v); err != nil {
		return errgo.Wrap(err, "failed to decode text")
	}

	return s.set([]byte(v))
}

func (s Str[W]) MarshalBencode() ([]byte, error) {
	return bencode.EncodeBytes(s.r.String())
}

func (s *Str[W]) UnmarshalBencode(data []byte) error {
	var v string
	if err := bencode.DecodeBytes(data, &v); err != nil {
		return errgo.Wrap(err, "failed to decode text")
	}

	return s.set([]byte(v))
}

// MarshalJSON encodes the content as base64, like a []byte.
func (b Buf[W]) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.r.Bytes())
}

func (b *Buf[W]) UnmarshalJSON(data []byte) error {
	var v []byte
	if err := json.Unmarshal(data, &v); err != nil {
		return errgo.Wrap(err, "failed to decode bytes")
	}

	b.set(v)
	return nil
}

// MarshalText encodes the content as standard base64, like MarshalJSON.
func (b Buf[W]) MarshalText() ([]byte, error) {
	return base64.StdEncoding.AppendEncode(nil, b.r.Bytes()), nil
}

func (b *Buf[W]) UnmarshalText(text []byte) error {
	v, err := base64.StdEncoding.AppendDecode(nil, text)
	if err != nil {
		return errgo.Wrap(err, "failed to decode bytes")
	}

	b.set(v)
	return nil
}

func (b Buf[W]) MarshalYAML() (any, error) {
	return b.r.String(), nil
}

func (b *Buf[W]) UnmarshalYAML(value *yaml.Node) error {
	var v string
	if err := value.Decode(&v); err != nil {
		return errgo.Wrap(err, "failed to decode bytes")
	}

	b.set([]byte(v))
	return nil
}

func (b Buf[W]) MarshalBencode() ([]byte, error) {
	return bencode.EncodeBytes(b.r.String())
}

func (b *Buf[W]) UnmarshalBencode(data []byte) error {
	var v string
	if err := bencode.DecodeBytes(data, &v); err != nil {
		return errgo.Wrap(err, "failed to decode bytes")
	}

	b.set([]byte(v))
	return nil
}
