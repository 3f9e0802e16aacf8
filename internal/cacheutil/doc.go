// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cacheutil resolves the cache directory and inspects entries in it
// without taking part in the locking protocol.
package cacheutil
