package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "sub-second", d: 450 * time.Millisecond, want: "450ms"},
		{name: "zero", d: 0, want: "0ms"},
		{name: "seconds", d: 3 * time.Second, want: "3s"},
		{name: "rounded", d: 2*time.Second + 345*time.Millisecond, want: "2.3s"},
		{name: "minutes", d: 90 * time.Second, want: "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", padRight("abc", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 5))
	assert.Equal(t, "abc", padRight("abc", 3))
}

func TestPadRightWideRunes(t *testing.T) {
	// Fullwidth characters occupy two columns each.
	padded := padRight("テスト", 8)
	assert.Equal(t, "テスト  ", padded)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "too-long-s...", truncate("too-long-string", 10))
}
