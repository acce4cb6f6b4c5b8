// Package counter converts text into a budget cost.
//
// Two strategies exist: WordStrategy, which has no dependencies, and
// TokenStrategy, which uses a tiktoken encoding. Resolve picks one for a
// session and falls back to words when the tokenizer cannot be loaded.
package counter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/chapterclip/models"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used for token counting.
const DefaultEncoding = "cl100k_base"

// ErrBackendUnavailable means the tokenizer could not be loaded. It is never
// returned to callers of Resolve; it is logged and reported as a fallback.
var ErrBackendUnavailable = errors.New("token counting backend unavailable")

// Strategy converts text into a non-negative cost.
type Strategy interface {
	Count(text string) int
	Mode() models.CountMode
	Name() string
}

// WordStrategy counts whitespace-delimited words.
type WordStrategy struct{}

func (WordStrategy) Count(text string) int  { return len(strings.Fields(text)) }
func (WordStrategy) Mode() models.CountMode { return models.CountModeWords }
func (WordStrategy) Name() string           { return "words" }

// TokenStrategy counts tokens with a tiktoken encoding.
type TokenStrategy struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// loadEncoding is swapped in tests to simulate a missing tokenizer.
var loadEncoding = tiktoken.GetEncoding

// NewTokenStrategy loads the named encoding. Loading may need network access
// the first time, since tiktoken-go downloads the BPE ranks on demand.
func NewTokenStrategy(encoding string) (*TokenStrategy, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := loadEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w: %w", encoding, ErrBackendUnavailable, err)
	}
	return &TokenStrategy{encoding: encoding, enc: enc}, nil
}

func (s *TokenStrategy) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(s.enc.Encode(text, nil, nil))
}

func (s *TokenStrategy) Mode() models.CountMode { return models.CountModeTokens }
func (s *TokenStrategy) Name() string           { return "tokens/" + s.encoding }

// Resolution is the strategy chosen for a session.
type Resolution struct {
	Strategy  Strategy
	Requested models.CountMode
	Fallback  bool
	Err       error // why the fallback happened
}

// Resolve returns the strategy for mode. A token request whose backend
// cannot be loaded resolves to WordStrategy with Fallback set, and the
// fallback is logged.
func Resolve(mode models.CountMode, encoding string, logger *slog.Logger) Resolution {
	if mode != models.CountModeTokens {
		return Resolution{Strategy: WordStrategy{}, Requested: models.CountModeWords}
	}
	ts, err := NewTokenStrategy(encoding)
	if err != nil {
		if logger != nil {
			logger.Warn("token counting unavailable, falling back to word counting", "encoding", encoding, "error", err)
		}
		return Resolution{Strategy: WordStrategy{}, Requested: mode, Fallback: true, Err: err}
	}
	return Resolution{Strategy: ts, Requested: mode}
}

// EstimateTokens gives a rough token figure from a word count, for summaries
// where the tokenizer is not loaded.
func EstimateTokens(words int) int {
	return words * 4 / 3
}
