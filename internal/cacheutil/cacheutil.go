// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"
)

// Entry describes a cache entry file on disk.
// Name is the encoded key, which is also the file name.
type Entry struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modified" yaml:"modified"`
	Fresh   bool      `json:"fresh" yaml:"fresh"`
}

// Dir resolves the base cache directory.
// Precedence:
//  1. TTLMEMO_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/ttlmemo
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("TTLMEMO_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "ttlmemo"), true
	}
	return "", false
}

// Enabled returns true unless TTLMEMO_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("TTLMEMO_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureDir creates dir if caching is enabled. Returns whether it is usable.
func EnsureDir(dir string) (bool, error) {
	if !Enabled() || dir == "" {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return false, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return true, nil
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	usable, err := EnsureDir(base)
	return base, usable, err
}

// EntryPath returns the path of the entry named encoded beneath dir and
// whether a file currently exists there.
func EntryPath(dir, encoded string) (string, bool) {
	p := filepath.Join(dir, encoded)
	if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
		return p, true
	}
	return p, false
}

// Stat describes the entry named encoded beneath dir without reading it.
func Stat(dir, encoded string) (*Entry, bool) {
	p := filepath.Join(dir, encoded)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return &Entry{
		Name:    encoded,
		Path:    p,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}

// List returns the entries in dir sorted by name. Fresh is set when ttl is
// positive and now is before ModTime+ttl. A missing dir is an empty cache.
func List(dir string, ttl time.Duration, now time.Time) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	var entries []Entry
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed since ReadDir.
			log.WithError(err).Debugf("skipping cache entry %s", de.Name())
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Fresh:   ttl > 0 && now.Before(info.ModTime().Add(ttl)),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
