// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filelock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/gofrs/flock"
)

// RetryDelay is the polling interval used for bounded waits.
const RetryDelay = 10 * time.Millisecond

var (
	// ErrLock wraps every failure to acquire a lock.
	ErrLock = errors.New("lock failed")
	// ErrLockTimeout is returned when a bounded wait runs out.
	ErrLockTimeout = fmt.Errorf("%w: wait timed out", ErrLock)
)

// Lock is an advisory lock on the file at Path. The file itself is locked, so
// every process opening the same path contends for the same lock.
type Lock struct {
	Path    string
	Timeout time.Duration
}

// New returns a Lock on path. A zero timeout blocks until the lock is free.
func New(path string, timeout time.Duration) *Lock {
	return &Lock{Path: path, Timeout: timeout}
}

// WithLock runs fn while holding an exclusive lock.
func (l *Lock) WithLock(ctx context.Context, fn func() error) error {
	return l.with(ctx, false, fn)
}

// WithRLock runs fn while holding a shared lock.
func (l *Lock) WithRLock(ctx context.Context, fn func() error) error {
	return l.with(ctx, true, fn)
}

func (l *Lock) with(ctx context.Context, shared bool, fn func() error) error {
	fl := flock.New(l.Path, flock.SetPermissions(0o600)) //nolint:mnd

	if err := l.acquire(ctx, fl, shared); err != nil {
		return err
	}

	defer func() {
		if err := fl.Unlock(); err != nil {
			log.WithError(err).Debugf("failed to unlock %s", l.Path)
		}
	}()

	return fn()
}

func (l *Lock) acquire(ctx context.Context, fl *flock.Flock, shared bool) error {
	if l.Timeout <= 0 {
		var err error
		if shared {
			err = fl.RLock()
		} else {
			err = fl.Lock()
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrLock, l.Path, err)
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = fl.TryRLockContext(waitCtx, RetryDelay)
	} else {
		locked, err = fl.TryLockContext(waitCtx, RetryDelay)
	}

	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return fmt.Errorf("%w: %s after %s", ErrLockTimeout, l.Path, l.Timeout)
	case err != nil:
		return fmt.Errorf("%w: %s: %w", ErrLock, l.Path, err)
	case !locked:
		return fmt.Errorf("%w: %s after %s", ErrLockTimeout, l.Path, l.Timeout)
	}
	return nil
}
