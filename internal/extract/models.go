package extract

import (
	"github.com/dtnitsch/chapterclip/models"
)

// Params are the inputs of one extraction after flags and settings are
// merged.
type Params struct {
	EPUBPath     string
	Start        int
	Budget       int
	Mode         models.CountMode
	TermsPath    string
	ToStdout     bool
	OutputFormat string
	Formatting   models.FormattingOptions
}

// Delivery targets.
const (
	DeliveredClipboard = "clipboard"
	DeliveredTerminal  = "terminal"
	DeliveredStdout    = "stdout"
)

// Summary is the structured output for one extraction.
type Summary struct {
	Status        string   `json:"status" yaml:"status"`
	RunID         string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Book          string   `json:"book" yaml:"book"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	Selection     string   `json:"selection" yaml:"selection"`
	Start         int      `json:"start" yaml:"start"`
	End           int      `json:"end" yaml:"end"`
	ChapterCount  int      `json:"chapter_count" yaml:"chapter_count"`
	BookChapters  int      `json:"book_chapters" yaml:"book_chapters"`
	Titles        []string `json:"titles" yaml:"titles"`
	Costs         []int    `json:"costs" yaml:"costs"`
	Budget        int      `json:"budget" yaml:"budget"`
	TotalCost     int      `json:"total_cost" yaml:"total_cost"`
	Mode          string   `json:"mode" yaml:"mode"`
	RequestedMode string   `json:"requested_mode,omitempty" yaml:"requested_mode,omitempty"`
	Fallback      bool     `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Oversized     bool     `json:"oversized,omitempty" yaml:"oversized,omitempty"`

	EstimatedTokens int `json:"estimated_tokens,omitempty" yaml:"estimated_tokens,omitempty"`

	TermsPath    string   `json:"terms_path,omitempty" yaml:"terms_path,omitempty"`
	Replacements int      `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	RuleWarnings int      `json:"rule_warnings,omitempty" yaml:"rule_warnings,omitempty"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	FinalCost    int      `json:"final_cost,omitempty" yaml:"final_cost,omitempty"`

	Characters string `json:"characters" yaml:"characters"`
	Delivered  string `json:"delivered" yaml:"delivered"`
}
