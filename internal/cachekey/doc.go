// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cachekey derives stable, filesystem-safe cache keys from a
// computation identity and the arguments of a single call.
package cachekey
