package presets

import "strings"

// Token lists are in display order; matching is case-insensitive on trimmed
// input.
var (
	booleanTrueTokens  = []string{"true", "yes", "1", "t", "y", "on"}
	booleanFalseTokens = []string{"false", "no", "0", "f", "n", "off"}
)

// TrueTokens returns the default tokens recognized as boolean true.
func TrueTokens() []string {
	return append([]string(nil), booleanTrueTokens...)
}

// FalseTokens returns the default tokens recognized as boolean false.
func FalseTokens() []string {
	return append([]string(nil), booleanFalseTokens...)
}

func tokenMatch(value string, tokens []string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, t := range tokens {
		if v == t {
			return true
		}
	}
	return false
}

// IsTrueToken reports whether value matches a default true token.
func IsTrueToken(value string) bool {
	return tokenMatch(value, booleanTrueTokens)
}

// IsFalseToken reports whether value matches a default false token.
func IsFalseToken(value string) bool {
	return tokenMatch(value, booleanFalseTokens)
}

// IsBooleanToken reports whether value matches any default boolean token.
func IsBooleanToken(value string) bool {
	return IsTrueToken(value) || IsFalseToken(value)
}
