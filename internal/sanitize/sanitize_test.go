package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "XAUUSD", want: "XAUUSD"},
		{name: "color codes", in: "\x1b[31mInsufficient balance\x1b[0m", want: "Insufficient balance"},
		{name: "cursor movement", in: "ok\x1b[2Jwiped", want: "okwiped"},
		{name: "newlines", in: "line1\nline2\r\n", want: "line1 line2  "},
		{name: "bell and nul", in: "a\x07b\x00c", want: "abc"},
		{name: "unicode kept", in: "✅ done", want: "✅ done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "", Truncate("abc", 0))
}
