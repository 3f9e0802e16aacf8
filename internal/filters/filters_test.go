// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/ttlmemo/internal/cacheutil"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func entries() []cacheutil.Entry {
	return []cacheutil.Entry{
		{Name: "exec.ls-aaaa", Path: "/c/exec.ls-aaaa", Size: 300, ModTime: t0, Fresh: true},
		{Name: "exec.df-bbbb", Path: "/c/exec.df-bbbb", Size: 20, ModTime: t0.Add(-time.Hour)},
		{Name: "exec.ls-cccc", Path: "/c/exec.ls-cccc", Size: 4000, ModTime: t0.Add(-2 * time.Hour)},
		{Name: "square-dddd", Path: "/c/square-dddd", Size: 20, ModTime: t0.Add(time.Minute), Fresh: true},
	}
}

func names(es []cacheutil.Entry) []string {
	var out []string
	for _, e := range es {
		out = append(out, e.Name)
	}
	return out
}

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Filter
	}{
		{
			name: "empty spec",
			spec: "",
		},
		{
			name: "single exact match",
			spec: "name=exec.ls-aaaa",
			want: []Filter{{Key: "name", Operand: "=", Target: "exec.ls-aaaa"}},
		},
		{
			name: "negated prefix",
			spec: "name!^exec.",
			want: []Filter{{Key: "name", Operand: "^", Target: "exec.", Negate: true}},
		},
		{
			name: "multiple with invalid skipped",
			spec: "size>10,bogus,fresh=true",
			want: []Filter{
				{Key: "size", Operand: ">", Target: "10"},
				{Key: "fresh", Operand: "=", Target: "true"},
			},
		},
		{
			name:      "custom delimiter",
			spec:      "size>10;name/^exec\\.(ls|df)",
			delimiter: ";",
			want: []Filter{
				{Key: "size", Operand: ">", Target: "10"},
				{Key: "name", Operand: "/", Target: "^exec\\.(ls|df)"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv("TTLMEMO_FILTER_DELIM", tt.delimiter)
			}
			assert.Equal(t, tt.want, BuildFilters(tt.spec))
		})
	}
}

func TestCheckOperands(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		filter Filter
		want   bool
	}{
		{"string equal", "abc", Filter{Operand: "=", Target: "abc"}, true},
		{"string not equal", "abc", Filter{Operand: "=", Target: "abc", Negate: true}, false},
		{"string fold", "ABC", Filter{Operand: "~", Target: "abc"}, true},
		{"string prefix", "exec.ls", Filter{Operand: "^", Target: "exec."}, true},
		{"string contains", "exec.ls-aaaa", Filter{Operand: "@", Target: "ls-"}, true},
		{"string regex", "exec.ls-aaaa", Filter{Operand: "/", Target: "-a+$"}, true},
		{"string bad regex", "x", Filter{Operand: "/", Target: "("}, false},
		{"number greater", 5.0, Filter{Operand: ">", Target: "4"}, true},
		{"number less negated", 5.0, Filter{Operand: "<", Target: "4", Negate: true}, true},
		{"number bad target", 5.0, Filter{Operand: "=", Target: "five"}, false},
		{"number bad operand", 5.0, Filter{Operand: "^", Target: "5"}, false},
		{"contains slice", []any{"a", "b"}, Filter{Operand: "@", Target: "b"}, true},
		{"contains map negated", map[string]any{"a": 1}, Filter{Operand: "@", Target: "a", Negate: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			switch v := tt.value.(type) {
			case string:
				got = checkStringOperand(v, tt.filter)
			case float64:
				got = checkNumericOperand(v, tt.filter)
			default:
				got = checkContainsOperand(v, tt.filter)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFloat64(t *testing.T) {
	for _, v := range []any{int(3), int8(3), int16(3), int32(3), int64(3), uint(3), uint8(3), uint16(3), uint32(3), uint64(3), float32(3), float64(3)} {
		got, ok := toFloat64(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 3.0, got, "%T", v)
	}
	_, ok := toFloat64("3")
	assert.False(t, ok)
}

func TestFilterEntries(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"no filter", "", []string{"exec.ls-aaaa", "exec.df-bbbb", "exec.ls-cccc", "square-dddd"}},
		{"prefix", "name^exec.ls", []string{"exec.ls-aaaa", "exec.ls-cccc"}},
		{"fresh only", "fresh=true", []string{"exec.ls-aaaa", "square-dddd"}},
		{"size", "size>100", []string{"exec.ls-aaaa", "exec.ls-cccc"}},
		{"combined", "name^exec.,size<1000", []string{"exec.ls-aaaa", "exec.df-bbbb"}},
		{"negated regex", "name!/^exec", []string{"square-dddd"}},
		{"unknown key ignored", "owner=me,fresh=false", []string{"exec.df-bbbb", "exec.ls-cccc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterEntries(entries(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSortEntries(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []string
		wantErr bool
	}{
		{"none", "", []string{"exec.ls-aaaa", "exec.df-bbbb", "exec.ls-cccc", "square-dddd"}, false},
		{"name", "name", []string{"exec.df-bbbb", "exec.ls-aaaa", "exec.ls-cccc", "square-dddd"}, false},
		{"size desc", "-size", []string{"exec.ls-cccc", "exec.ls-aaaa", "exec.df-bbbb", "square-dddd"}, false},
		{"size then name desc", "size,-name", []string{"square-dddd", "exec.df-bbbb", "exec.ls-aaaa", "exec.ls-cccc"}, false},
		{"modified", "modified", []string{"exec.ls-cccc", "exec.df-bbbb", "exec.ls-aaaa", "square-dddd"}, false},
		{"fresh desc then name", "-fresh,name", []string{"exec.ls-aaaa", "square-dddd", "exec.df-bbbb", "exec.ls-cccc"}, false},
		{"unknown", "owner", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := entries()
			err := SortEntries(es, tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(es))
		})
	}
}
