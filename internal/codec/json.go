// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid json document")

type jsonCodec[T any] struct{}

// JSON returns a codec writing one JSON document followed by a newline. A
// payload without the newline was cut short.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Name() string { return "json" }

func (jsonCodec[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (jsonCodec[T]) Decode(b []byte) Decoded[T] {
	if len(b) == 0 || b[len(b)-1] != '\n' {
		return truncated[T](nil)
	}
	if !gjson.ValidBytes(b) {
		return corrupt[T](errInvalidJSON)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return corrupt[T](err)
	}
	return ok(v)
}
