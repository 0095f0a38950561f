package api

import (
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func TestIsNumberCoercion(t *testing.T) {
	numbers := []string{
		"0", "42", "-7", "+7", "3.", ".5", "1e10", "1E-3", "-1.25e+2",
		"Infinity", "-Infinity", "0x10", "0XfF", "0o17", "0b101",
		"", " ", " 12 ", "\t1\n", "\uFEFF1",
		"\u00a01", "1\u3000", "\u20281\u2029", "\v\f1\r",
	}
	for _, s := range numbers {
		assert.Check(t, isNumber(s), "%q should be a number", s)
	}

	notNumbers := []string{
		"abc", "12px", "1,000", "1e", "e5", ".", "+", "--1", "0x", "-0x10", "0b2",
		"0o8", "infinity", "NaN", "1 2", "Infinity1",
		"\u00851", "1\u0085", "\u180e1",
	}
	for _, s := range notNumbers {
		assert.Check(t, cmp.Equal(isNumber(s), false), "%q should not be a number", s)
	}
}
