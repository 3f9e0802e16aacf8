// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/gob"
)

type gobCodec[T any] struct{}

// Gob returns the encoding/gob codec. It is the default.
func Gob[T any]() Codec[T] {
	return gobCodec[T]{}
}

func (gobCodec[T]) Name() string { return "gob" }

func (gobCodec[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec[T]) Decode(b []byte) Decoded[T] {
	if len(b) == 0 {
		return truncated[T](nil)
	}
	var v T
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return classify[T](err)
	}
	return ok(v)
}
