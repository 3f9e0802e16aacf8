// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package memo memoizes an expensive, deterministic computation on disk so
// that independent processes calling it with the same arguments share one
// result until its TTL runs out.
//
// Each call maps to a single entry file under Config.Dir. The file's mtime is
// the freshness clock. Readers hold a shared advisory lock while decoding and
// writers hold an exclusive one while rewriting, so a reader never decodes a
// half-written payload on filesystems that honor flock. Stale, truncated and
// corrupt entries are regenerated in place; losing a race to create a new
// entry just returns the locally computed value. None of these are errors for
// the caller. They are reported to the configured Observer.
//
// Two processes missing on the same key at the same time may both run the
// computation. Only one of their payloads survives on disk.
package memo
