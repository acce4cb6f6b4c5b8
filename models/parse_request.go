package models

import (
	"errors"
	"fmt"
)

// FormattingOptions control how chapter markup is rendered into plain text.
type FormattingOptions struct {
	PreserveParagraphBreaks bool `json:"preserve_paragraph_breaks" yaml:"preserve_paragraph_breaks"`
	RemoveLineBreaks        bool `json:"remove_line_breaks" yaml:"remove_line_breaks"`
	RemoveEmptyLines        bool `json:"remove_empty_lines" yaml:"remove_empty_lines"`
	FixTitleDuplication     bool `json:"fix_title_duplication" yaml:"fix_title_duplication"`
	IncludeChapterTitles    bool `json:"include_chapter_titles" yaml:"include_chapter_titles"`
}

// ExtractionRequest asks for a run of whole chapters starting at Start
// (1-based) whose combined cost stays within Budget.
type ExtractionRequest struct {
	Start      int
	Budget     int
	Mode       CountMode
	Formatting FormattingOptions
}

// Validate checks the request fields that do not depend on the book.
func (r ExtractionRequest) Validate() error {
	if r.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %d", r.Budget)
	}
	if r.Start < 1 {
		return errors.New("start chapter must be 1 or greater")
	}
	if _, err := ParseCountMode(string(r.Mode)); err != nil {
		return err
	}
	return nil
}
