// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package filelock provides scoped shared and exclusive advisory locks on a
// single file. The lock is released on every exit path of the locked block.
package filelock
