// Package extractor ties classification, counting and chapter selection
// together for one loaded book.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/accumulator"
	"github.com/dtnitsch/chapterclip/pkg/caching"
	"github.com/dtnitsch/chapterclip/pkg/classifier"
	"github.com/dtnitsch/chapterclip/pkg/counter"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/normalizer"
	"github.com/dtnitsch/chapterclip/pkg/terms"
)

// ErrNoChapters means classification kept no items. It is distinct from a
// container that cannot be read.
var ErrNoChapters = errors.New("no chapters found in book")

// chapterSeparator goes between rendered chapters.
const chapterSeparator = "\n\n"

// CostKey identifies a cached chapter cost. Word and token costs differ, so
// the mode is part of the key.
type CostKey struct {
	ChapterID string
	Mode      models.CountMode
}

type textKey struct {
	ChapterID  string
	Formatting models.FormattingOptions
}

// Session holds one classified book. Chapter indices are stable for the
// life of the session.
type Session struct {
	Book     *epub.Book
	Chapters []models.Chapter
	Report   classifier.Report

	logger   *slog.Logger
	encoding string

	mu          sync.Mutex
	resolutions map[models.CountMode]counter.Resolution

	costs *caching.Memo[CostKey, int]
	texts *caching.Memo[textKey, string]
}

// Open loads and classifies the book at path.
func Open(path string, opts models.ClassifyOptions, encoding string, logger *slog.Logger) (*Session, error) {
	book, err := epub.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book: %w", err)
	}
	chapters, report := classifier.Classify(book, opts, logger)
	s := NewSession(chapters, encoding, logger)
	s.Book = book
	s.Report = report
	s.logger.Info("book classified", "path", path, "items", report.Considered, "chapters", report.Kept,
		"excluded_keyword", report.Excluded[classifier.ReasonKeyword],
		"excluded_short", report.Excluded[classifier.ReasonShort])
	return s, nil
}

// NewSession wraps already classified chapters.
func NewSession(chapters []models.Chapter, encoding string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		Chapters:    chapters,
		logger:      logger,
		encoding:    encoding,
		resolutions: make(map[models.CountMode]counter.Resolution),
		costs:       caching.NewMemo[CostKey, int](),
		texts:       caching.NewMemo[textKey, string](),
	}
}

// Close releases the underlying book, if any.
func (s *Session) Close() error {
	hits, misses := s.costs.Stats()
	s.logger.Debug("cost cache", "hits", hits, "misses", misses, "entries", s.costs.Len())
	if s.Book == nil {
		return nil
	}
	return s.Book.Close()
}

// Strategy returns the counting strategy for mode, resolving the tokenizer
// at most once per session.
func (s *Session) Strategy(mode models.CountMode) counter.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.resolutions[mode]; ok {
		return r
	}
	r := counter.Resolve(mode, s.encoding, s.logger)
	s.resolutions[mode] = r
	return r
}

// SetStrategy pins the resolution for a mode. Tests use it to simulate a
// missing tokenizer.
func (s *Session) SetStrategy(mode models.CountMode, r counter.Resolution) {
	s.mu.Lock()
	s.resolutions[mode] = r
	s.mu.Unlock()
}

// bodyOptions renders chapter bodies for costing. Costs therefore do not
// depend on the caller's formatting choices.
var bodyOptions = models.FormattingOptions{PreserveParagraphBreaks: true}

// Cost returns the chapter's body cost under strategy, cached per
// (chapter, mode).
func (s *Session) Cost(ch models.Chapter, strategy counter.Strategy) (int, error) {
	return s.costs.GetOrCompute(CostKey{ChapterID: ch.ID, Mode: strategy.Mode()}, func() (int, error) {
		return strategy.Count(s.Render(ch, bodyOptions)), nil
	})
}

// Render returns the chapter's plain text, cached per formatting.
func (s *Session) Render(ch models.Chapter, opts models.FormattingOptions) string {
	text, _ := s.texts.GetOrCompute(textKey{ChapterID: ch.ID, Formatting: opts}, func() (string, error) {
		return normalizer.Chapter(ch.Title, ch.Markup, opts), nil
	})
	return text
}

// Extract selects whole chapters from req.Start within req.Budget and
// renders them.
func (s *Session) Extract(req models.ExtractionRequest) (*models.ExtractionResult, error) {
	if len(s.Chapters) == 0 {
		return nil, ErrNoChapters
	}
	if req.Budget <= 0 {
		return nil, accumulator.ErrInvalidBudget
	}
	mode, err := models.ParseCountMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	res := s.Strategy(mode)
	sel, err := accumulator.Select(s.Chapters, req.Start, req.Budget, func(ch models.Chapter) (int, error) {
		return s.Cost(ch, res.Strategy)
	})
	if err != nil {
		return nil, err
	}

	selected := sel.Chapters(s.Chapters)
	parts := make([]string, 0, len(selected))
	titles := make([]string, 0, len(selected))
	for _, ch := range selected {
		if text := s.Render(ch, req.Formatting); text != "" {
			parts = append(parts, text)
		}
		titles = append(titles, ch.Title)
	}

	result := &models.ExtractionResult{
		Start:         sel.Start,
		End:           sel.End,
		Text:          strings.Join(parts, chapterSeparator),
		TotalCost:     sel.Total,
		Costs:         sel.Costs,
		Titles:        titles,
		Budget:        req.Budget,
		RequestedMode: mode,
		Mode:          res.Strategy.Mode(),
		Fallback:      res.Fallback,
		Oversized:     sel.Oversized,
	}
	if sel.Oversized {
		s.logger.Warn("start chapter exceeds budget on its own, including it anyway",
			"chapter", sel.Start, "cost", sel.Total, "budget", req.Budget)
	}
	s.logger.Info("extraction selected", "start", result.Start, "end", result.End,
		"total_cost", result.TotalCost, "mode", result.Mode, "fallback", result.Fallback)
	return result, nil
}

// ApplyTerms runs the engine over the extracted text and records the
// replacement count, rule warnings and the cost of the final text.
func (s *Session) ApplyTerms(result *models.ExtractionResult, engine *terms.Engine) {
	text, counts := engine.Apply(result.Text)
	result.Text = text
	result.Replacements = counts.Total()
	result.RuleWarnings = len(engine.Warnings())
	result.FinalCost = s.Strategy(result.RequestedMode).Strategy.Count(text)
	s.logger.Info("terms applied to extraction", "replacements", result.Replacements,
		"rule_warnings", result.RuleWarnings, "final_cost", result.FinalCost)
}
