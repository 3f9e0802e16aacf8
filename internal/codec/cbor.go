// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/fxamacker/cbor/v2"
)

type cborCodec[T any] struct{}

// CBOR returns the RFC 8949 codec.
func CBOR[T any]() Codec[T] {
	return cborCodec[T]{}
}

func (cborCodec[T]) Name() string { return "cbor" }

func (cborCodec[T]) Encode(v T) ([]byte, error) {
	return cbor.Marshal(v)
}

func (cborCodec[T]) Decode(b []byte) Decoded[T] {
	if len(b) == 0 {
		return truncated[T](nil)
	}
	var v T
	if err := cbor.Unmarshal(b, &v); err != nil {
		return classify[T](err)
	}
	return ok(v)
}
