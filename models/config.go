// Package models defines data structures shared by the extraction and
// substitution pipelines.
package models

// Settings is the process-wide configuration. It is loaded once, passed by
// value into each operation, and only replaced through the settings store.
type Settings struct {
	MaxBudget         int       `yaml:"max_budget" json:"max_budget"`
	CountMode         CountMode `yaml:"count_mode" json:"count_mode"`
	TokenizerEncoding string    `yaml:"tokenizer_encoding" json:"tokenizer_encoding"`

	IncludeChapterTitles    bool `yaml:"include_chapter_titles" json:"include_chapter_titles"`
	PreserveParagraphBreaks bool `yaml:"preserve_paragraph_breaks" json:"preserve_paragraph_breaks"`
	RemoveLineBreaks        bool `yaml:"remove_line_breaks" json:"remove_line_breaks"`
	RemoveEmptyLines        bool `yaml:"remove_empty_lines" json:"remove_empty_lines"`
	FixTitleDuplication     bool `yaml:"fix_title_duplication" json:"fix_title_duplication"`

	ExclusionKeywords []string `yaml:"exclusion_keywords" json:"exclusion_keywords"`
	MatchTitles       bool     `yaml:"match_titles" json:"match_titles"`
	MinWordsFilter    bool     `yaml:"min_words_filter" json:"min_words_filter"`
	MinChapterWords   int      `yaml:"min_chapter_words" json:"min_chapter_words"`

	Workers      int    `yaml:"workers" json:"workers"`
	OutputSuffix string `yaml:"output_suffix" json:"output_suffix"`
	LogLevel     string `yaml:"log_level" json:"log_level"`

	LastEPUBDirectory string          `yaml:"last_epub_directory" json:"last_epub_directory"`
	LastJSONDirectory string          `yaml:"last_json_directory" json:"last_json_directory"`
	LastExtraction    *LastExtraction `yaml:"last_extraction" json:"last_extraction,omitempty"`
}

// LastExtraction records the parameters of the most recent extraction so it
// can be repeated with redo.
type LastExtraction struct {
	EPUBPath  string    `yaml:"epub_path" json:"epub_path"`
	Start     int       `yaml:"start" json:"start"`
	Budget    int       `yaml:"budget" json:"budget"`
	Mode      CountMode `yaml:"mode" json:"mode"`
	TermsPath string    `yaml:"terms_path,omitempty" json:"terms_path,omitempty"`
}

// DefaultExclusionKeywords mark front and back matter.
var DefaultExclusionKeywords = []string{"cover", "info", "toc", "contents", "copyright", "acknowledgment"}

// DefaultSettings returns the settings used when config.yaml is missing keys.
func DefaultSettings() Settings {
	return Settings{
		MaxBudget:               20000,
		CountMode:               CountModeWords,
		TokenizerEncoding:       "cl100k_base",
		IncludeChapterTitles:    true,
		PreserveParagraphBreaks: true,
		FixTitleDuplication:     true,
		ExclusionKeywords:       append([]string(nil), DefaultExclusionKeywords...),
		MinWordsFilter:          true,
		MinChapterWords:         500,
		Workers:                 12,
		OutputSuffix:            "_TermsReplaced",
		LogLevel:                "INFO",
	}
}

// Formatting extracts the normalizer options from the settings.
func (s Settings) Formatting() FormattingOptions {
	return FormattingOptions{
		PreserveParagraphBreaks: s.PreserveParagraphBreaks,
		RemoveLineBreaks:        s.RemoveLineBreaks,
		RemoveEmptyLines:        s.RemoveEmptyLines,
		FixTitleDuplication:     s.FixTitleDuplication,
		IncludeChapterTitles:    s.IncludeChapterTitles,
	}
}

// Classification extracts the classifier options from the settings.
func (s Settings) Classification() ClassifyOptions {
	return ClassifyOptions{
		ExclusionKeywords: append([]string(nil), s.ExclusionKeywords...),
		MatchTitles:       s.MatchTitles,
		MinWordsFilter:    s.MinWordsFilter,
		MinChapterWords:   s.MinChapterWords,
	}
}

// ClassifyOptions controls which spine items count as chapters.
type ClassifyOptions struct {
	ExclusionKeywords []string
	MatchTitles       bool
	MinWordsFilter    bool
	MinChapterWords   int
}
