package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertPlainTextToMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", "   "},
		{"mixed words and math", "Solve 2+2 now", `\text{Solve} \ 2+2 \ \text{now}`},
		{"math only", "3*4=12", "3*4=12"},
		{"two lines", "What is\n1+1", `\text{What} \ \text{is} \\ 1+1`},
		{"blank lines dropped", "a\n\n\nb", `\text{a} \\ \text{b}`},
		{"crlf", "a\r\nb", `\text{a} \\ \text{b}`},
		{"digits mixed with letters", "x2", `\text{x2}`},
		{"already escaped", `\text{Hi} \ 2`, `\text{Hi} \ 2`},
		// A lone backslash reads as a separator, so it is not kept as literal text.
		{"lone backslash becomes a thin space", `a \ b`, `\text{a} \ \text{b}`},
		{"double backslash becomes a line break", `1 \\ 2`, `1 \\ 2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertPlainTextToMarkup(tt.in))
		})
	}
}

func TestConvertPlainTextToMarkup_Idempotent(t *testing.T) {
	inputs := []string{
		"Solve 2+2 now",
		"1 + 2 = 3",
		"1\n2",
		"Find x\nwhen 2*x = 10",
		"a \\ b",
	}
	for _, in := range inputs {
		once := ConvertPlainTextToMarkup(in)
		assert.Equal(t, once, ConvertPlainTextToMarkup(once), "input %q", in)
	}
}

func TestChoiceLetter(t *testing.T) {
	assert.Equal(t, "a", ChoiceLetter(0))
	assert.Equal(t, "c", ChoiceLetter(2))
	assert.Equal(t, "z", ChoiceLetter(25))
	assert.Equal(t, "aa", ChoiceLetter(26))
	assert.Equal(t, "ab", ChoiceLetter(27))
	assert.Equal(t, "ba", ChoiceLetter(52))
	assert.Equal(t, "", ChoiceLetter(-1))
}
