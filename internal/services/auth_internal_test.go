package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 255))
	assert.Equal(t, "abc", truncate("abcdef", 3))

	// "é" is two bytes; a cut at an odd byte must back off to the rune start
	assert.Equal(t, "éé", truncate("ééé", 5))
	assert.Equal(t, "", truncate("日本", 2))

	ua := "Mozilla/5.0 " + strings.Repeat("Ünïcödé-Браузер ", 40)
	cut := truncate(ua, 255)
	assert.LessOrEqual(t, len(cut), 255)
	assert.True(t, utf8.ValidString(cut))
	assert.True(t, strings.HasPrefix(ua, cut))
}
