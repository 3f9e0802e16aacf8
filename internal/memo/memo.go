// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/staranto/ttlmemo/internal/cachekey"
	"github.com/staranto/ttlmemo/internal/codec"
	"github.com/staranto/ttlmemo/internal/filelock"
)

// EntryPerm is the mode of newly created entry files.
const EntryPerm = 0o600

var (
	// ErrInvalidConfig is returned by New for unusable settings.
	ErrInvalidConfig = errors.New("invalid cache config")
	// ErrStorage wraps filesystem failures the cache cannot recover from.
	ErrStorage = errors.New("cache storage failure")
	// ErrEncode wraps a failure to serialize a computed result.
	ErrEncode = errors.New("cache encode failure")
)

// Config is the resource handle shared by every call of one Coordinator.
type Config struct {
	// Dir holds the entry files. It must exist.
	Dir string
	// TTL is how long an entry stays fresh after it was last written.
	TTL time.Duration
	// LockTimeout bounds each lock wait. Zero waits forever.
	LockTimeout time.Duration
	// Observer receives diagnostics. Defaults to a LogObserver.
	Observer Observer
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Config) validate() error {
	if c.Dir == "" {
		return fmt.Errorf("%w: cache directory is empty", ErrInvalidConfig)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidConfig, c.TTL)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("%w: lock timeout must not be negative, got %s", ErrInvalidConfig, c.LockTimeout)
	}
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidConfig, c.Dir)
	}
	return nil
}

// ComputeFunc is the wrapped computation.
type ComputeFunc[A, R any] func(ctx context.Context, args A) (R, error)

// entryLock is the scoped locking the coordinator needs from filelock.
type entryLock interface {
	WithLock(ctx context.Context, fn func() error) error
	WithRLock(ctx context.Context, fn func() error) error
}

// Coordinator memoizes one computation. It is safe for concurrent use.
type Coordinator[A, R any] struct {
	id    cachekey.Identity
	fn    ComputeFunc[A, R]
	codec codec.Codec[R]
	cfg   Config
	lock  func(path string) entryLock
}

// New returns a Coordinator caching fn under id.
func New[A, R any](
	id cachekey.Identity,
	fn ComputeFunc[A, R],
	c codec.Codec[R],
	cfg Config,
) (*Coordinator[A, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil computation", ErrInvalidConfig)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: nil codec", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Observer == nil {
		cfg.Observer = LogObserver{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	co := &Coordinator[A, R]{id: id, fn: fn, codec: c, cfg: cfg}
	co.lock = func(path string) entryLock {
		return filelock.New(path, cfg.LockTimeout)
	}
	return co, nil
}

// Wrap returns fn with the cache in front of it.
func Wrap[A, R any](
	id cachekey.Identity,
	fn ComputeFunc[A, R],
	c codec.Codec[R],
	cfg Config,
) (ComputeFunc[A, R], error) {
	co, err := New(id, fn, c, cfg)
	if err != nil {
		return nil, err
	}
	return co.GetOrCompute, nil
}

// Entry returns the key and entry path for args without touching the cache.
func (c *Coordinator[A, R]) Entry(args A) (cachekey.Key, string, error) {
	key, err := cachekey.Derive(c.id, args)
	if err != nil {
		return cachekey.Key{}, "", err
	}
	return key, filepath.Join(c.cfg.Dir, key.Encoded), nil
}

// GetOrCompute returns the cached result for args, computing and persisting
// it when the entry is missing, stale or unreadable. Errors from the
// computation are returned unchanged and never cached.
func (c *Coordinator[A, R]) GetOrCompute(ctx context.Context, args A) (R, error) {
	var zero R

	key, path, err := c.Entry(args)
	if err != nil {
		return zero, err
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return c.create(ctx, args, key, path)
	case err != nil:
		return zero, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if c.fresh(info.ModTime()) {
		if v, ok, err := c.read(ctx, key, path); err != nil || ok {
			return v, err
		}
	} else {
		c.emit(EventExpired, key, path, nil)
	}

	return c.regenerate(ctx, args, key, path)
}

func (c *Coordinator[A, R]) fresh(mtime time.Time) bool {
	return c.cfg.Now().Before(mtime.Add(c.cfg.TTL))
}

// read decodes the entry under a shared lock. ok is false when the entry has
// to be regenerated.
func (c *Coordinator[A, R]) read(ctx context.Context, key cachekey.Key, path string) (v R, ok bool, err error) {
	var got codec.Decoded[R]

	err = c.lock(path).WithRLock(ctx, func() error {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got = c.codec.Decode(b)
		return nil
	})

	switch {
	case errors.Is(err, filelock.ErrLockTimeout):
		c.emit(EventLockBusy, key, path, err)
		return v, false, nil
	case err != nil:
		return v, false, fmt.Errorf("%w: %w", ErrStorage, err)
	case !got.OK():
		c.emit(EventCorrupt, key, path, fmt.Errorf("%s %s payload: %w", got.Status, c.codec.Name(), got.Err))
		return v, false, nil
	}

	c.emit(EventHit, key, path, nil)
	return got.Value, true, nil
}

// create handles a miss. Only the process whose exclusive create succeeds
// writes the entry.
func (c *Coordinator[A, R]) create(ctx context.Context, args A, key cachekey.Key, path string) (R, error) {
	var zero R

	c.emit(EventMiss, key, path, nil)

	v, b, err := c.compute(ctx, args)
	if err != nil {
		return zero, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, EntryPerm)
	if errors.Is(err, fs.ErrExist) {
		c.emit(EventRaceLost, key, path, nil)
		return v, nil
	}
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer f.Close()

	err = c.lock(path).WithLock(ctx, func() error {
		return overwrite(f, b)
	})
	switch {
	case errors.Is(err, filelock.ErrLock):
		c.emit(EventLockAbandoned, key, path, err)
		return v, nil
	case err != nil:
		return zero, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	c.emit(EventStored, key, path, nil)
	return v, nil
}

// regenerate recomputes and overwrites an existing entry.
func (c *Coordinator[A, R]) regenerate(ctx context.Context, args A, key cachekey.Key, path string) (R, error) {
	var zero R

	v, b, err := c.compute(ctx, args)
	if err != nil {
		return zero, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, EntryPerm)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer f.Close()

	err = c.lock(path).WithLock(ctx, func() error {
		return overwrite(f, b)
	})
	switch {
	case errors.Is(err, filelock.ErrLockTimeout):
		c.emit(EventLockBusy, key, path, err)
		return v, nil
	case err != nil:
		return zero, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	c.emit(EventStored, key, path, nil)
	return v, nil
}

// compute runs the computation and encodes its result before any file is
// touched.
func (c *Coordinator[A, R]) compute(ctx context.Context, args A) (v R, b []byte, err error) {
	v, err = c.fn(ctx, args)
	if err != nil {
		return v, nil, err
	}
	b, err = c.codec.Encode(v)
	if err != nil {
		return v, nil, fmt.Errorf("%w: %s: %w", ErrEncode, c.codec.Name(), err)
	}
	return v, b, nil
}

// overwrite replaces the whole content of f with b. The caller holds the
// exclusive lock.
func overwrite(f *os.File, b []byte) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		return err
	}
	return nil
}

func (c *Coordinator[A, R]) emit(kind EventKind, key cachekey.Key, path string, err error) {
	c.cfg.Observer.Observe(Event{
		Kind:     kind,
		Identity: c.id,
		Key:      key.Clear,
		Path:     path,
		Err:      err,
	})
}

// LogObserver reports events through apex/log.
type LogObserver struct {
	Logger log.Interface
}

// Observe implements Observer.
func (o LogObserver) Observe(e Event) {
	l := o.Logger
	if l == nil {
		l = log.Log
	}

	switch e.Kind {
	case EventMiss:
		l.Debugf("cache miss: %s", e.Path)
	case EventHit:
		l.Debugf("cache hit: %s", e.Path)
	case EventStored:
		l.Debugf("cache stored: %s", e.Path)
	case EventExpired:
		l.Infof("cache expired, regenerate cache for %s", e.Path)
	case EventCorrupt:
		l.WithError(e.Err).Warnf("cache invalid, regenerate cache for %s", e.Path)
	case EventRaceLost:
		l.Warnf("cache file %s is already created", e.Path)
	case EventLockAbandoned:
		l.WithError(e.Err).Warnf("cache write abandoned for %s", e.Path)
	case EventLockBusy:
		l.WithError(e.Err).Warnf("cache busy, skipping %s", e.Path)
	}
}
