// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package smolbuf_test

import (
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/bencode"
	"gopkg.in/yaml.v3"

	"smolbuf"
)

type record struct {
	Key   smolbuf.Str16 `json:"key" toml:"key" yaml:"key" bencode:"key"`
	Label smolbuf.Str24 `json:"label" toml:"label" yaml:"label" bencode:"label"`
	Raw   smolbuf.Buf16 `json:"raw" toml:"raw" yaml:"raw" bencode:"raw"`
}

func newRecord() record {
	return record{
		Key:   smolbuf.MustStr16("short"),
		Label: smolbuf.MustStr24("a label that is too long to be inline"),
		Raw:   smolbuf.NewBuf16([]byte("raw bytes spill over")),
	}
}

func (r *record) release() {
	r.Key.Release()
	r.Label.Release()
	r.Raw.Release()
}

func requireSameRecord(t *testing.T, want, got record) {
	t.Helper()
	require.True(t, want.Key.Equal(got.Key), "key %q != %q", want.Key, got.Key)
	require.True(t, want.Label.Equal(got.Label), "label %q != %q", want.Label, got.Label)
	require.True(t, want.Raw.Equal(got.Raw), "raw %q != %q", want.Raw, got.Raw)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	in := newRecord()
	defer in.release()

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"key":"short","label":"a label that is too long to be inline","raw":"cmF3IGJ5dGVzIHNwaWxsIG92ZXI="}`, string(raw))

	var out record
	require.NoError(t, json.Unmarshal(raw, &out))
	defer out.release()

	requireSameRecord(t, in, out)
	require.True(t, out.Label.IsShared())
}

func TestJSONReplacesPreviousValue(t *testing.T) {
	t.Parallel()

	s := smolbuf.MustStr16("previous value that was shared")
	keep := s.Clone()
	defer keep.Release()

	require.NoError(t, json.Unmarshal([]byte(`"new"`), &s))
	require.Equal(t, "new", s.String())
	require.Equal(t, 1, keep.RefCount())

	require.Error(t, json.Unmarshal([]byte(`42`), &s))
	require.Equal(t, "new", s.String(), "a failed decode keeps the old value")
}

func TestTOML(t *testing.T) {
	t.Parallel()

	in := newRecord()
	defer in.release()

	raw, err := toml.Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, toml.Unmarshal(raw, &out))
	defer out.release()

	requireSameRecord(t, in, out)
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	var s smolbuf.Str24
	require.ErrorIs(t, s.UnmarshalText([]byte{'a', 0xFF}), smolbuf.ErrInvalidUTF8)

	var b smolbuf.Buf24
	require.NoError(t, b.UnmarshalText([]byte("Yf8=")))
	require.Equal(t, []byte{'a', 0xFF}, b.Bytes())

	require.Error(t, b.UnmarshalText([]byte("not base64!")))
	require.Equal(t, []byte{'a', 0xFF}, b.Bytes())
}

func TestTOMLBinaryBuf(t *testing.T) {
	t.Parallel()

	type doc struct {
		B smolbuf.Buf16 `toml:"b"`
	}

	in := doc{B: smolbuf.NewBuf16([]byte{0xFF, 'x'})}
	raw, err := toml.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(raw), "/3g=")

	var out doc
	require.NoError(t, toml.Unmarshal(raw, &out))
	require.True(t, in.B.Equal(out.B))
}

func TestJSONRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"\"ab\xffcd\"",
		`"lone \ud800 surrogate"`,
		`"low first \udc00\ud800"`,
		`"high then plain \ud800\u0041"`,
	}

	for _, in := range inputs {
		s := smolbuf.MustStr16("kept")
		require.ErrorIs(t, json.Unmarshal([]byte(in), &s), smolbuf.ErrInvalidUTF8, in)
		require.Equal(t, "kept", s.String())

		var o smolbuf.Option[smolbuf.Str24]
		require.ErrorIs(t, json.Unmarshal([]byte(in), &o), smolbuf.ErrInvalidUTF8, in)
		require.False(t, o.IsSome())
	}

	var s smolbuf.Str24
	require.NoError(t, json.Unmarshal([]byte(`"pair \ud83d\ude00 and \\ud800 escaped"`), &s))
	require.Equal(t, "pair \U0001F600 and \\ud800 escaped", s.String())
	s.Release()
}

func TestYAML(t *testing.T) {
	t.Parallel()

	in := newRecord()
	defer in.release()

	raw, err := yaml.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(raw), "key: short")

	var out record
	require.NoError(t, yaml.Unmarshal(raw, &out))
	defer out.release()

	requireSameRecord(t, in, out)
}

func TestBencode(t *testing.T) {
	t.Parallel()

	in := newRecord()
	defer in.release()

	raw, err := bencode.EncodeBytes(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, bencode.DecodeBytes(raw, &out))
	defer out.release()

	requireSameRecord(t, in, out)

	v, err := bencode.EncodeBytes(smolbuf.MustStr16("spam"))
	require.NoError(t, err)
	require.Equal(t, "4:spam", string(v))
}
