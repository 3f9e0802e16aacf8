// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output renders cache listings and key reports as text tables, JSON
// or YAML.
package output
