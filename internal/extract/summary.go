package extract

import (
	"unicode/utf8"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/counter"
	"github.com/dtnitsch/chapterclip/pkg/extractor"
	"github.com/dtnitsch/chapterclip/pkg/terms"
)

// BuildSummary describes a finished extraction.
func BuildSummary(p Params, s *extractor.Session, r *models.ExtractionResult, engine *terms.Engine) Summary {
	summary := Summary{
		Status:       "success",
		Book:         p.EPUBPath,
		Selection:    r.Heading(),
		Start:        r.Start,
		End:          r.End,
		ChapterCount: r.ChapterCount(),
		BookChapters: len(s.Chapters),
		Titles:       r.Titles,
		Costs:        r.Costs,
		Budget:       r.Budget,
		TotalCost:    r.TotalCost,
		Mode:         r.Mode.String(),
		Fallback:     r.Fallback,
		Oversized:    r.Oversized,
		Characters:   common.Count(utf8.RuneCountInString(r.Text)),
	}
	if s.Book != nil {
		summary.Title = s.Book.Metadata.Title
	}
	if r.RequestedMode != r.Mode {
		summary.RequestedMode = r.RequestedMode.String()
	}
	if r.Mode == models.CountModeWords {
		summary.EstimatedTokens = counter.EstimateTokens(r.TotalCost)
	}

	if engine != nil {
		summary.TermsPath = p.TermsPath
		summary.Replacements = r.Replacements
		summary.RuleWarnings = r.RuleWarnings
		summary.FinalCost = r.FinalCost
		for _, w := range engine.Warnings() {
			summary.Warnings = append(summary.Warnings, w.Error())
		}
	}
	return summary
}
