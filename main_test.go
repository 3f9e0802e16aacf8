//go:build !windows

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealMain_ExitCodes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("TTLMEMO_CACHE_DIR", filepath.Join(home, "cache"))
	t.Setenv("TTLMEMO_LOG", "error")

	tests := []struct {
		name string
		cfg  string
		args []string
		want int
	}{
		{"success", "", []string{"run", "--", "true"}, 0},
		{"wrapped exit code", "", []string{"run", "--", "sh", "-c", "exit 4"}, 4},
		{"command failure", "", []string{"run"}, 2},
		{"missing config", filepath.Join(home, "nope.yaml"), []string{"ls"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TTLMEMO_CFG", tt.cfg)
			got := realMain(append([]string{"ttlmemo"}, tt.args...))
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := os.Stat(filepath.Join(home, "cache"))
	assert.NoError(t, err)
}
