// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// docEnd is the YAML end-of-document marker. A YAML prefix is usually valid
// YAML itself, so the marker is the only way to see a cut.
var docEnd = []byte("...\n")

type yamlCodec[T any] struct{}

// YAML returns a codec writing one YAML document closed by "...".
func YAML[T any]() Codec[T] {
	return yamlCodec[T]{}
}

func (yamlCodec[T]) Name() string { return "yaml" }

func (yamlCodec[T]) Encode(v T) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, docEnd...), nil
}

func (yamlCodec[T]) Decode(b []byte) Decoded[T] {
	if !bytes.HasSuffix(b, docEnd) {
		return truncated[T](nil)
	}
	var v T
	if err := yaml.Unmarshal(b, &v); err != nil {
		return corrupt[T](err)
	}
	return ok(v)
}
