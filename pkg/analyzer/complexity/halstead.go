package complexity

import (
	"math"
	"strings"
	"unicode"
)

// halsteadOperators is the fixed operator vocabulary used by the
// approximation. Keyword operators are matched as substrings, so the
// counts are a rough estimate rather than a lexer-accurate tally.
var halsteadOperators = []string{
	"+", "-", "*", "/", "=", "==", "!=", "<", ">", "<=", ">=",
	"and", "or", "not", "if", "else", "for", "while", "def", "class",
}

// CalculateHalstead computes approximate Halstead volume, difficulty and
// effort over whitespace-tokenized content. Returns zeros when either
// distinct count is zero.
func CalculateHalstead(content string) Halstead {
	var totalOps int
	distinctOps := 0
	for _, op := range halsteadOperators {
		n := strings.Count(content, op)
		if n > 0 {
			distinctOps++
			totalOps += n
		}
	}

	operatorSet := make(map[string]bool, len(halsteadOperators))
	for _, op := range halsteadOperators {
		operatorSet[op] = true
	}

	tokens := strings.Fields(content)
	operands := make(map[string]bool)
	for _, tok := range tokens {
		if !operatorSet[tok] && isIdentifier(tok) {
			operands[tok] = true
		}
	}

	distinctOperands := len(operands)
	totalOperands := len(tokens) - totalOps
	if totalOperands < 0 {
		totalOperands = 0
	}

	if distinctOps == 0 || distinctOperands == 0 {
		return Halstead{}
	}

	volume := float64(totalOps+totalOperands) * math.Log2(float64(distinctOps+distinctOperands))
	difficulty := float64(distinctOps*totalOperands) / (2 * float64(distinctOperands))
	return Halstead{
		Volume:     volume,
		Difficulty: difficulty,
		Effort:     volume * difficulty,
	}
}

// isIdentifier reports whether a token is a plausible Python identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
