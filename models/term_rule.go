package models

import (
	"encoding/json"
	"fmt"
)

// TermRule is one search/replace directive. Rules are applied in the order
// they are declared and each rule sees the output of the previous ones.
type TermRule struct {
	Search        string `json:"search" yaml:"search"`
	Replace       string `json:"replace" yaml:"replace"`
	IsRegex       bool   `json:"is_regex" yaml:"is_regex"`
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
	WholeWord     bool   `json:"whole_word" yaml:"whole_word"`
}

// termRuleJSON accepts both the current keys and the legacy
// original/replacement/caseSensitive/isRegex keys.
type termRuleJSON struct {
	Search        *string `json:"search"`
	Replace       *string `json:"replace"`
	IsRegex       *bool   `json:"is_regex"`
	CaseSensitive *bool   `json:"case_sensitive"`
	WholeWord     *bool   `json:"whole_word"`

	Original        *string `json:"original"`
	Replacement     *string `json:"replacement"`
	LegacyRegex     *bool   `json:"isRegex"`
	LegacyCase      *bool   `json:"caseSensitive"`
	LegacyWholeWord *bool   `json:"wholeWord"`
}

// UnmarshalJSON fills a rule from either key shape. case_sensitive defaults
// to true when absent.
func (r *TermRule) UnmarshalJSON(data []byte) error {
	var raw termRuleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	search := firstString(raw.Search, raw.Original)
	if search == nil {
		return fmt.Errorf("term rule is missing \"search\"")
	}
	*r = TermRule{
		Search:        *search,
		IsRegex:       firstBool(false, raw.IsRegex, raw.LegacyRegex),
		CaseSensitive: firstBool(true, raw.CaseSensitive, raw.LegacyCase),
		WholeWord:     firstBool(false, raw.WholeWord, raw.LegacyWholeWord),
	}
	if rep := firstString(raw.Replace, raw.Replacement); rep != nil {
		r.Replace = *rep
	}
	return nil
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstBool(def bool, vals ...*bool) bool {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return def
}
