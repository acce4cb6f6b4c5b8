package models

import (
	"fmt"
	"strings"
)

// TitleSource records where a chapter's display title came from.
type TitleSource string

const (
	TitleFromHeading  TitleSource = "heading"
	TitleFromFilename TitleSource = "filename"
)

// Chapter is a spine item classified as narrative content.
type Chapter struct {
	Index       int         `json:"index" yaml:"index"` // 1-based position in the filtered list
	ID          string      `json:"id" yaml:"id"`
	Path        string      `json:"path" yaml:"path"`
	Title       string      `json:"title" yaml:"title"`
	TitleSource TitleSource `json:"title_source" yaml:"title_source"`
	Words       int         `json:"words" yaml:"words"`
	Markup      []byte      `json:"-" yaml:"-"`
}

// ExtractionResult is the outcome of one extraction.
type ExtractionResult struct {
	Start         int       `json:"start" yaml:"start"`
	End           int       `json:"end" yaml:"end"`
	Text          string    `json:"-" yaml:"-"`
	TotalCost     int       `json:"total_cost" yaml:"total_cost"`
	Costs         []int     `json:"costs" yaml:"costs"`
	Titles        []string  `json:"titles" yaml:"titles"`
	Budget        int       `json:"budget" yaml:"budget"`
	RequestedMode CountMode `json:"requested_mode" yaml:"requested_mode"`
	Mode          CountMode `json:"mode" yaml:"mode"`
	Fallback      bool      `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Oversized     bool      `json:"oversized,omitempty" yaml:"oversized,omitempty"`

	// Set when term rules were applied to the rendered text.
	Replacements int `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	RuleWarnings int `json:"rule_warnings,omitempty" yaml:"rule_warnings,omitempty"`
	FinalCost    int `json:"final_cost,omitempty" yaml:"final_cost,omitempty"`
}

// ChapterCount returns the number of chapters in the inclusive range.
func (r *ExtractionResult) ChapterCount() int {
	return r.End - r.Start + 1
}

// Heading renders a one-line description of the range, e.g. "Chapters 1-3".
func (r *ExtractionResult) Heading() string {
	var sb strings.Builder
	if r.Start == r.End {
		fmt.Fprintf(&sb, "Chapter %d", r.Start)
	} else {
		fmt.Fprintf(&sb, "Chapters %d-%d", r.Start, r.End)
	}
	if len(r.Titles) > 0 {
		sb.WriteString(": ")
		sb.WriteString(r.Titles[0])
		if len(r.Titles) > 1 {
			sb.WriteString(" ... ")
			sb.WriteString(r.Titles[len(r.Titles)-1])
		}
	}
	return sb.String()
}
