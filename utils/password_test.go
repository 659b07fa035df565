package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pw := GeneratePassword(16)
		assert.Len(t, pw, 16)
		assert.True(t, strings.ContainsAny(pw, pwLower), "has lowercase: %s", pw)
		assert.True(t, strings.ContainsAny(pw, pwUpper), "has uppercase: %s", pw)
		assert.True(t, strings.ContainsAny(pw, pwDigits), "has digit: %s", pw)
		assert.True(t, strings.ContainsAny(pw, pwSymbols), "has symbol: %s", pw)
		assert.False(t, seen[pw], "passwords must not repeat")
		seen[pw] = true
	}
}

func TestGeneratePasswordMinimumLength(t *testing.T) {
	assert.Len(t, GeneratePassword(4), 12)
}
