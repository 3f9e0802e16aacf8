// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package codec provides the payload encoders used for cache entries. Decode
// never fails with a bare error; it reports an explicit Status so callers can
// tell a truncated or corrupt payload from a good one.
package codec
