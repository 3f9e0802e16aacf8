// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package filters selects and orders cache listings using --filter and --sort
// expressions.
package filters
