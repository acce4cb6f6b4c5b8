package models

import (
	"fmt"
	"strings"
)

// CountMode selects how text is converted into a budget cost.
type CountMode string

const (
	CountModeWords  CountMode = "words"  // whitespace-delimited words
	CountModeTokens CountMode = "tokens" // LLM tokenizer
)

// ParseCountMode accepts "words" or "tokens" in any case.
func ParseCountMode(s string) (CountMode, error) {
	switch CountMode(strings.ToLower(strings.TrimSpace(s))) {
	case CountModeWords, "":
		return CountModeWords, nil
	case CountModeTokens:
		return CountModeTokens, nil
	}
	return "", fmt.Errorf("unknown count mode %q (want words or tokens)", s)
}

func (m CountMode) String() string {
	return string(m)
}
