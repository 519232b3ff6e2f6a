package scriptgen

import (
	"strings"
	"unicode"
)

// Extracted cases come straight out of an LLM reply, so every string that
// lands inside a generated script is treated as hostile: titles feed file
// keys, action texts feed comments, selectors feed Python string literals.

// maxKeyTitleLen bounds the title fragment of an artifact key.
const maxKeyTitleLen = 40

// SafeTitle reduces a case title to a lowercase token usable inside an
// artifact key: alphanumerics kept, everything else collapsed to single
// underscores.
func SafeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > maxKeyTitleLen {
		out = strings.Trim(out[:maxKeyTitleLen], "_")
	}
	if out == "" {
		out = "untitled"
	}
	return out
}

// pyString renders a value as a single-quoted Python string literal. The
// escape set is what keeps a hostile selector from breaking out of the
// literal into code.
func pyString(value string) string {
	value = stripControl(value)
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// pyComment renders free text safe for a single-line Python comment.
func pyComment(text string) string {
	text = stripControl(text)
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// stripControl removes control and non-printable characters; generated
// scripts carry plain single-line strings only.
func stripControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
