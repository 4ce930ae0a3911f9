// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		envSet bool
		want   string
	}{
		{name: "environment variable set", key: "APIGATE_TEST_STRING", value: "from-env", envSet: true, want: "from-env"},
		{name: "environment variable not set", key: "APIGATE_TEST_STRING_UNSET", want: "default"},
		{name: "environment variable empty", key: "APIGATE_TEST_STRING_EMPTY", envSet: true, want: "default"},
		{name: "sensitive variable", key: "APIGATE_TEST_PASSWORD", value: "secret123", envSet: true, want: "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv(tt.key, tt.value)
			}
			assert.Equal(t, tt.want, ParseString(tt.key, "default"))
		})
	}
}

func TestParseTypedValues(t *testing.T) {
	t.Setenv("APIGATE_TEST_INT", "42")
	t.Setenv("APIGATE_TEST_INT_BAD", "forty")
	t.Setenv("APIGATE_TEST_DUR", "250ms")
	t.Setenv("APIGATE_TEST_DUR_BAD", "soon")
	t.Setenv("APIGATE_TEST_BOOL", "yes")
	t.Setenv("APIGATE_TEST_BOOL_BAD", "maybe")
	t.Setenv("APIGATE_TEST_FLOAT", "0.25")

	assert.Equal(t, 42, ParseInt("APIGATE_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("APIGATE_TEST_INT_BAD", 1))
	assert.Equal(t, 250*time.Millisecond, ParseDuration("APIGATE_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, ParseDuration("APIGATE_TEST_DUR_BAD", time.Second))
	assert.True(t, ParseBool("APIGATE_TEST_BOOL", false))
	assert.True(t, ParseBool("APIGATE_TEST_BOOL_BAD", true))
	assert.InDelta(t, 0.25, ParseFloat("APIGATE_TEST_FLOAT", 1), 1e-9)
	assert.InDelta(t, 1.0, ParseFloat("APIGATE_TEST_FLOAT_UNSET", 1), 1e-9)
}
