// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filelock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "entry")
}

func TestWithLock_Success(t *testing.T) {
	lock := New(entry(t), 0)

	executed := false
	err := lock.WithLock(context.Background(), func() error {
		executed = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, executed, "function should have been executed")
}

func TestWithLock_FnError(t *testing.T) {
	lock := New(entry(t), 0)

	expectedErr := errors.New("test error")
	err := lock.WithLock(context.Background(), func() error {
		return expectedErr
	})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the function's error")
}

func TestWithRLock_SharedHoldersCoexist(t *testing.T) {
	path := entry(t)
	ctx := context.Background()

	err := New(path, 0).WithRLock(ctx, func() error {
		return New(path, 50*time.Millisecond).WithRLock(ctx, func() error {
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestWithLock_ExcludesOthers(t *testing.T) {
	path := entry(t)
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- New(path, 0).WithLock(ctx, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := New(path, 50*time.Millisecond).WithRLock(ctx, func() error {
		t.Error("shared lock acquired while exclusive lock held")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, ErrLock)

	err = New(path, 50*time.Millisecond).WithLock(ctx, func() error {
		t.Error("exclusive lock acquired twice")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)

	// Free again once the holder is gone.
	err = New(path, time.Second).WithLock(ctx, func() error { return nil })
	assert.NoError(t, err)
}

func TestWithLock_ReleasedAfterFnError(t *testing.T) {
	path := entry(t)
	ctx := context.Background()

	_ = New(path, 0).WithRLock(ctx, func() error { return errors.New("boom") })

	err := New(path, 50*time.Millisecond).WithLock(ctx, func() error { return nil })
	assert.NoError(t, err)
}

func TestWithLock_ReleasedAfterPanic(t *testing.T) {
	path := entry(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = New(path, 0).WithLock(ctx, func() error { panic("boom") })
	})

	err := New(path, 50*time.Millisecond).WithLock(ctx, func() error { return nil })
	assert.NoError(t, err)
}

func TestWithLock_MissingDirectory(t *testing.T) {
	lock := New(filepath.Join(t.TempDir(), "nope", "entry"), 0)

	err := lock.WithLock(context.Background(), func() error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLock)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}

func TestErrLockTimeout_IsErrLock(t *testing.T) {
	assert.True(t, errors.Is(ErrLockTimeout, ErrLock))
}
