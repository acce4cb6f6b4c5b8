// Package terms applies ordered search/replace rules to text and markup.
//
// Rules run in declaration order and each rule sees the output of the rules
// before it. ["foo"->"bar", "bar"->"baz"] turns "foo" into "baz".
package terms

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtnitsch/chapterclip/models"
)

// ErrEmptySearch is the cause of a RuleCompileError for a blank search.
var ErrEmptySearch = errors.New("search pattern is empty")

// RuleCompileError reports a rule that could not be compiled. The rule is
// skipped and the remaining rules still apply.
type RuleCompileError struct {
	Index  int // 1-based position in the rule list
	Search string
	Err    error
}

func (e *RuleCompileError) Error() string {
	return fmt.Sprintf("rule %d (%q): %v", e.Index, e.Search, e.Err)
}

func (e *RuleCompileError) Unwrap() error { return e.Err }

// Counts maps a rule's 0-based index to its number of replacements.
type Counts map[int]int

// Total sums all rule counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

type compiledRule struct {
	index   int
	rule    models.TermRule
	re      *regexp.Regexp
	replace string
	literal bool
	// matches must start and end on a word boundary
	wholeWord bool
}

// Engine holds compiled rules. It is read-only after Compile and safe for
// concurrent use.
type Engine struct {
	rules    []compiledRule
	total    int
	warnings []*RuleCompileError
}

// Compile builds an Engine. Rules that fail to compile are logged, skipped
// and reported by Warnings.
func Compile(rules []models.TermRule, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{total: len(rules)}
	for i, r := range rules {
		cr, err := compileRule(i, r)
		if err != nil {
			rerr := &RuleCompileError{Index: i + 1, Search: r.Search, Err: err}
			logger.Warn("skipping term rule", "rule", i+1, "search", r.Search, "error", err)
			e.warnings = append(e.warnings, rerr)
			continue
		}
		e.rules = append(e.rules, cr)
	}
	return e
}

func compileRule(i int, r models.TermRule) (compiledRule, error) {
	if r.Search == "" {
		return compiledRule{}, ErrEmptySearch
	}
	pattern := r.Search
	if !r.IsRegex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if !r.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return compiledRule{}, err
	}

	replace := r.Replace
	if r.IsRegex {
		replace = translateBackrefs(replace)
	}
	return compiledRule{index: i, rule: r, re: re, replace: replace, literal: !r.IsRegex, wholeWord: r.WholeWord}, nil
}

var backref = regexp.MustCompile(`\\(\d+)|\\g<(\w+)>`)

// translateBackrefs rewrites \1 and \g<name> into ${1} and ${name}.
func translateBackrefs(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return backref.ReplaceAllStringFunc(s, func(m string) string {
		sub := backref.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		return "${" + name + "}"
	})
}

func (r *compiledRule) apply(s string) (string, int) {
	matches := r.re.FindAllStringSubmatchIndex(s, -1)
	if r.wholeWord {
		kept := matches[:0]
		for _, m := range matches {
			if atBoundary(s, m[0]) && atBoundary(s, m[1]) {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	if len(matches) == 0 {
		return s, 0
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	var buf []byte
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		if r.literal {
			b.WriteString(r.replace)
		} else {
			buf = r.re.ExpandString(buf[:0], r.replace, s, m)
			b.Write(buf)
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), len(matches)
}

// atBoundary reports whether offset i in s sits between a word rune and a
// non-word rune. Letters, digits and marks of any script are word runes, so
// "Zoë" is one word and "caf" does not end inside "café".
func atBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Apply runs every rule over text in order.
func (e *Engine) Apply(text string) (string, Counts) {
	counts := Counts{}
	for i := range e.rules {
		var n int
		text, n = e.rules[i].apply(text)
		if n > 0 {
			counts[e.rules[i].index] += n
		}
	}
	return text, counts
}

// Warnings lists the rules that were skipped.
func (e *Engine) Warnings() []*RuleCompileError {
	return e.warnings
}

// Active is the number of compiled rules.
func (e *Engine) Active() int { return len(e.rules) }

// Total is the number of rules given to Compile.
func (e *Engine) Total() int { return e.total }

// Label names a rule by its 0-based index for summaries.
func (e *Engine) Label(index int) string {
	for _, r := range e.rules {
		if r.index == index {
			return fmt.Sprintf("%d:%s", index+1, r.rule.Search)
		}
	}
	return fmt.Sprintf("%d", index+1)
}
