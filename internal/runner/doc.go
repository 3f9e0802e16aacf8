// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package runner runs external commands as memoized computations. A command's
// captured output is the cached result; its argv, and optionally its working
// directory, selected environment variables and stdin, are the arguments.
package runner
