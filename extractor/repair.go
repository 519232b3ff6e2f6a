package extractor

import (
	"strings"
)

// repairJSON closes a truncated JSON document. It scans with string
// awareness, tracking the stack of open objects and arrays; at end of input
// it terminates an unfinished string, drops a dangling comma, and unwinds
// the stack in nesting order. Counting unmatched openers through a plain
// character count would misclose nested structures, which is why the stack
// is kept.
func repairJSON(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	repaired := s
	if inString {
		repaired += `"`
	}
	repaired = strings.TrimRight(repaired, " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")
	if strings.HasSuffix(repaired, ":") {
		// Cut right after a key: give it a null value so the case is
		// dropped by validation instead of sinking the whole parse.
		repaired += "null"
	}

	var closers strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			closers.WriteByte('}')
		} else {
			closers.WriteByte(']')
		}
	}
	repaired += closers.String()

	// Agents also leave commas before closers mid-document.
	return stripDanglingCommas(repaired)
}

// stripDanglingCommas drops a comma whose next non-whitespace byte is a
// closer. It tracks strings the same way the stack walk does, so a ", }"
// sequence inside a string value is left alone.
func stripDanglingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\r' || s[j] == '\n') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
