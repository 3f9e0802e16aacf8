// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	Name string
	N    int
	Tags []string
}

func allCodecs() []Codec[result] {
	return []Codec[result]{Gob[result](), JSON[result](), YAML[result](), CBOR[result]()}
}

func TestCodecs_RoundTrip(t *testing.T) {
	want := result{Name: "square", N: 16, Tags: []string{"a", "b"}}

	for _, c := range allCodecs() {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Encode(want)
			require.NoError(t, err)
			require.NotEmpty(t, b)

			got := c.Decode(b)
			require.True(t, got.OK(), "decode failed: %v", got.Err)
			assert.Equal(t, want, got.Value)
			assert.NoError(t, got.Err)
		})
	}
}

func TestCodecs_EmptyIsTruncated(t *testing.T) {
	for _, c := range allCodecs() {
		t.Run(c.Name(), func(t *testing.T) {
			got := c.Decode(nil)
			assert.False(t, got.OK())
			assert.Equal(t, StatusTruncated, got.Status)
			assert.Error(t, got.Err)

			got = c.Decode([]byte{})
			assert.Equal(t, StatusTruncated, got.Status)
		})
	}
}

func TestCodecs_CutPayloadIsTruncated(t *testing.T) {
	in := result{Name: "a fairly long name to cut in half", N: 1 << 20, Tags: []string{"x", "y", "z"}}

	for _, c := range allCodecs() {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Encode(in)
			require.NoError(t, err)

			for _, n := range []int{1, len(b) / 2, len(b) - 1} {
				got := c.Decode(b[:n])
				assert.Equal(t, StatusTruncated, got.Status, "cut at %d of %d", n, len(b))
				assert.Zero(t, got.Value)
			}
		})
	}
}

func TestCodecs_WrongTypeIsCorrupt(t *testing.T) {
	tests := []struct {
		name string
		enc  func() ([]byte, error)
		dec  Codec[int]
	}{
		{name: "gob", enc: func() ([]byte, error) { return Gob[string]().Encode("sixteen") }, dec: Gob[int]()},
		{name: "json", enc: func() ([]byte, error) { return JSON[string]().Encode("sixteen") }, dec: JSON[int]()},
		{name: "yaml", enc: func() ([]byte, error) { return YAML[string]().Encode("sixteen") }, dec: YAML[int]()},
		{name: "cbor", enc: func() ([]byte, error) { return CBOR[string]().Encode("sixteen") }, dec: CBOR[int]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.enc()
			require.NoError(t, err)

			got := tt.dec.Decode(b)
			assert.Equal(t, StatusCorrupt, got.Status)
			assert.Error(t, got.Err)
		})
	}
}

func TestJSON_InvalidDocument(t *testing.T) {
	got := JSON[result]().Decode([]byte("{\"Name\": \n"))
	assert.Equal(t, StatusCorrupt, got.Status)
}

func TestYAML_InvalidDocument(t *testing.T) {
	got := YAML[result]().Decode([]byte("Name: [unclosed\n...\n"))
	assert.Equal(t, StatusCorrupt, got.Status)
}

func TestByName(t *testing.T) {
	for _, name := range Names {
		c, err := ByName[int](name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := ByName[int]("")
	require.NoError(t, err)
	assert.Equal(t, "gob", c.Name())

	_, err = ByName[int]("pickle")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "truncated", StatusTruncated.String())
	assert.Equal(t, "corrupt", StatusCorrupt.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
