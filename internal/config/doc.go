// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package config loads the optional ttlmemo.yaml file and answers dotted-key
// lookups against it.
package config
