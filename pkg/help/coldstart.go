package help

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const ColdstartYAML = `# chapterclip Quick Start

count_modes:
  words: "Whitespace-delimited words (default, always available)"
  tokens: "cl100k_base tokens; falls back to words if the encoding cannot load"

commands:
  list_chapters: |
    chapterclip chapters --epub book.epub

  list_with_insight: |
    chapterclip chapters --epub book.epub --insight

  basic_extract: |
    chapterclip extract --epub book.epub --start 3

  token_budget: |
    chapterclip extract --epub book.epub --start 3 --budget 8000 --mode tokens

  extract_to_stdout: |
    chapterclip extract --epub book.epub --start 3 --stdout > part.txt

  extract_with_terms: |
    chapterclip extract --epub book.epub --start 3 --terms names.json

  repeat_last: |
    chapterclip redo

  rewrite_epub: |
    chapterclip replace --epub book.epub --terms names.json

  settings: |
    chapterclip settings show
    chapterclip settings set max_budget=8000 count_mode=tokens
    chapterclip settings reset

  history: |
    chapterclip history list --limit 20
    chapterclip history show latest

terms_file: |
  [
    {"search": "Mr. Smith", "replace": "Mr. Jones"},
    {"search": "colou?r", "replace": "hue", "is_regex": true, "case_sensitive": false},
    {"search": "cat", "replace": "dog", "whole_word": true}
  ]

selection_rules:
  - "Chapters are numbered from 1 after front and back matter is filtered out"
  - "The start chapter is always included, even if it alone exceeds the budget"
  - "Chapters are added while the running total stays within the budget"
  - "Only whole chapters are ever returned"

filtering:
  - "Items whose path or id contains an exclusion keyword are skipped"
  - "With min_words_filter on, items under min_chapter_words are skipped"
  - "Set match_titles=true to also match keywords against chapter titles"

key_files:
  - "config.yaml (settings, written on first run)"
  - "chapterclip.db (run history)"
  - "<book>_TermsReplaced.epub (replace output, next to the source)"
`

// Coldstart returns the quick-start document, checked to be valid YAML.
func Coldstart() (string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(ColdstartYAML), &doc); err != nil {
		return "", fmt.Errorf("failed to parse quick start: %w", err)
	}
	return ColdstartYAML, nil
}
