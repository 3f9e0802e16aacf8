// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnknownCodec is returned by ByName for unsupported codec names.
var ErrUnknownCodec = errors.New("unknown codec")

// Status is the outcome of a Decode.
type Status int

const (
	StatusOK Status = iota
	// StatusTruncated means the payload ended early: an empty file, a crashed
	// writer, or a reader racing a writer.
	StatusTruncated
	// StatusCorrupt means the payload is complete but not decodable as T.
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTruncated:
		return "truncated"
	case StatusCorrupt:
		return "corrupt"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Decoded carries a decoded value or the reason there isn't one.
type Decoded[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK reports whether Value holds a decoded payload.
func (d Decoded[T]) OK() bool {
	return d.Status == StatusOK
}

// Codec serializes values of type T for a cache entry.
type Codec[T any] interface {
	Name() string
	Encode(v T) ([]byte, error)
	Decode(b []byte) Decoded[T]
}

// Names lists the codecs understood by ByName.
var Names = []string{"gob", "json", "yaml", "cbor"}

// ByName returns the codec registered under name.
func ByName[T any](name string) (Codec[T], error) {
	switch name {
	case "gob", "":
		return Gob[T](), nil
	case "json":
		return JSON[T](), nil
	case "yaml":
		return YAML[T](), nil
	case "cbor":
		return CBOR[T](), nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownCodec, name, Names)
}

func ok[T any](v T) Decoded[T] {
	return Decoded[T]{Value: v, Status: StatusOK}
}

func truncated[T any](err error) Decoded[T] {
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return Decoded[T]{Status: StatusTruncated, Err: err}
}

func corrupt[T any](err error) Decoded[T] {
	return Decoded[T]{Status: StatusCorrupt, Err: err}
}

// classify maps a stream decoder error onto a Decoded failure.
func classify[T any](err error) Decoded[T] {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return truncated[T](err)
	}
	return corrupt[T](err)
}
