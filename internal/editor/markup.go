package editor

import "strings"

// Markup notation produced for plain-mode text.
const (
	literalOpen    = `\text{`
	literalClose   = `}`
	tokenSeparator = ` \ `
	lineSeparator  = ` \\ `
)

const mathChars = "0123456789+-*/="

// ConvertPlainTextToMarkup turns everyday text into markup.
//
// Blank input and input that already holds a literal-text escape come back
// unchanged. Otherwise every line is split into whitespace-separated tokens;
// tokens made only of digits and + - * / = stay as they are, every other token
// is wrapped as literal text. Tokens are joined with a thin space and lines
// with a markup line break. Lines without tokens are dropped.
func ConvertPlainTextToMarkup(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if strings.Contains(text, literalOpen) {
		return text
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	converted := make([]string, 0, len(lines))
	for _, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		converted = append(converted, joinTokens(tokens))
	}
	return strings.Join(converted, lineSeparator)
}

func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			// An existing separator is never separated again; this keeps
			// already-converted math-only text stable.
			if isSeparator(tok) || isSeparator(tokens[i-1]) {
				b.WriteByte(' ')
			} else {
				b.WriteString(tokenSeparator)
			}
		}
		if isVerbatim(tok) {
			b.WriteString(tok)
		} else {
			b.WriteString(literalOpen)
			b.WriteString(tok)
			b.WriteString(literalClose)
		}
	}
	return b.String()
}

func isVerbatim(tok string) bool {
	if isSeparator(tok) {
		return true
	}
	for _, r := range tok {
		if !strings.ContainsRune(mathChars, r) {
			return false
		}
	}
	return true
}

func isSeparator(tok string) bool {
	return tok == `\` || tok == `\\`
}

// ChoiceLetter returns the display letter for a choice position: a..z, then aa, ab, ...
func ChoiceLetter(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('a' + (n-1)%26)}, buf...)
	}
	return string(buf)
}
