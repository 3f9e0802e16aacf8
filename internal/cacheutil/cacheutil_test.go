// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Setenv("TTLMEMO_CACHE_DIR", "/tmp/somewhere")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/somewhere", dir)

	t.Setenv("TTLMEMO_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	dir, ok = Dir()
	assert.True(t, ok)
	assert.Equal(t, "ttlmemo", filepath.Base(dir))
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: true},
		{value: "1", want: true},
		{value: "true", want: true},
		{value: "0", want: false},
		{value: "false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TTLMEMO_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "a", "b")
	t.Setenv("TTLMEMO_CACHE_DIR", base)

	dir, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, dir)
	assert.DirExists(t, base)
}

func TestEnsureBaseDir_Disabled(t *testing.T) {
	base := filepath.Join(t.TempDir(), "a")
	t.Setenv("TTLMEMO_CACHE_DIR", base)
	t.Setenv("TTLMEMO_CACHE", "0")

	_, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoDirExists(t, base)
}

func TestEnsureDir_Failure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	ok, err := EnsureDir(filepath.Join(file, "sub"))
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEntryPathAndStat(t *testing.T) {
	dir := t.TempDir()

	p, ok := EntryPath(dir, "exec.ls-abc")
	assert.False(t, ok)
	assert.Equal(t, filepath.Join(dir, "exec.ls-abc"), p)

	_, ok = Stat(dir, "exec.ls-abc")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(p, []byte("payload"), 0o600))

	_, ok = EntryPath(dir, "exec.ls-abc")
	assert.True(t, ok)

	e, ok := Stat(dir, "exec.ls-abc")
	require.True(t, ok)
	assert.Equal(t, int64(7), e.Size)
	assert.Equal(t, "exec.ls-abc", e.Name)
	assert.Equal(t, p, e.Path)
	assert.False(t, e.ModTime.IsZero())

	_, ok = Stat(dir, ".")
	assert.False(t, ok, "directories are not entries")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("bb"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("a"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	old := now.Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "b"), old, old))

	entries, err := List(dir, time.Minute, now)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a", entries[0].Name)
	assert.True(t, entries[0].Fresh)
	assert.Equal(t, int64(1), entries[0].Size)

	assert.Equal(t, "b", entries[1].Name)
	assert.False(t, entries[1].Fresh)

	entries, err = List(dir, 0, now)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.Fresh, "no ttl, no freshness")
	}
}

func TestList_MissingDir(t *testing.T) {
	entries, err := List(filepath.Join(t.TempDir(), "nope"), time.Minute, time.Now())
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
