// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		validator FlagValidatorType
		wantErr   bool
	}{
		{"jammed ok", "value", JammedFlagValidator, false},
		{"jammed", "--ttl", JammedFlagValidator, true},
		{"output text", "text", OutputValidator, false},
		{"output yaml", "yaml", OutputValidator, false},
		{"output raw", "raw", OutputValidator, true},
		{"codec cbor", "cbor", CodecValidator, false},
		{"codec xml", "xml", CodecValidator, true},
		{"positive", time.Second, PositiveDurationValidator, false},
		{"positive zero", time.Duration(0), PositiveDurationValidator, true},
		{"non-negative zero", time.Duration(0), NonNegativeDurationValidator, false},
		{"non-negative", -time.Second, NonNegativeDurationValidator, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagValidators_Chain(t *testing.T) {
	assert.NoError(t, FlagValidators("json", JammedFlagValidator, OutputValidator))
	assert.Error(t, FlagValidators("--json", JammedFlagValidator, OutputValidator))
	assert.NoError(t, FlagValidators("anything"))
}
