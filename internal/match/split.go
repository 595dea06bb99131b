// Package match finds the authoritative proposal, if any, backing a
// transaction, and owns the batch-scoped proposal reservation ledger.
package match

import (
	"strings"
	"unicode"
)

// SplitProcedures splits a report procedure-name field into individual
// procedure tokens. A comma separates tokens only when followed by a letter
// or an ordinal digit-sequence ("3º"); commas inside decimal numbers
// ("12,5Mg") never split.
func SplitProcedures(field string) []string {
	runes := []rune(field)
	var tokens []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != ',' {
			continue
		}
		if !splitsAt(runes, i) {
			continue
		}
		tokens = appendToken(tokens, runes[start:i])
		start = i + 1
	}
	return appendToken(tokens, runes[start:])
}

func appendToken(tokens []string, part []rune) []string {
	token := strings.TrimSpace(string(part))
	if token == "" {
		return tokens
	}
	return append(tokens, token)
}

// splitsAt reports whether the comma at index i starts a new token.
func splitsAt(runes []rune, i int) bool {
	j := i + 1
	for j < len(runes) && runes[j] == ' ' {
		j++
	}
	if j >= len(runes) {
		return false
	}
	if unicode.IsLetter(runes[j]) {
		return true
	}
	if !unicode.IsDigit(runes[j]) {
		return false
	}
	// A digit run is an ordinal ("3º Consulta") only when the marker follows;
	// otherwise it is the fractional part of a decimal number.
	for j < len(runes) && unicode.IsDigit(runes[j]) {
		j++
	}
	return j < len(runes) && isOrdinalMarker(runes[j])
}

func isOrdinalMarker(r rune) bool {
	return r == 'º' || r == 'ª' || r == '°'
}
