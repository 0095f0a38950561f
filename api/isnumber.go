package api

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	decimalRe = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)$`)
	radixRe   = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// isNumber reports whether s converts to a number under JavaScript's string to number
// rules, where blank strings are zero.
func isNumber(s string) bool {
	s = strings.TrimFunc(s, isJSSpace)
	if s == "" {
		return true
	}
	return decimalRe.MatchString(s) || radixRe.MatchString(s)
}

// isJSSpace reports whether r is whitespace or a line terminator to JavaScript.
// unicode.IsSpace differs: it includes U+0085 and excludes U+FEFF.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
