package terms

import (
	"errors"
	"regexp/syntax"
	"testing"

	"github.com/dtnitsch/chapterclip/models"
)

func TestEngine_SequentialComposition(t *testing.T) {
	e := Compile([]models.TermRule{
		{Search: "foo", Replace: "bar", CaseSensitive: true},
		{Search: "bar", Replace: "baz", CaseSensitive: true},
	}, nil)

	got, counts := e.Apply("foo foo")
	if got != "baz baz" {
		t.Errorf("Apply() = %q, want %q", got, "baz baz")
	}
	if counts.Total() != 4 {
		t.Errorf("counts.Total() = %d, want 4", counts.Total())
	}
	if counts[0] != 2 || counts[1] != 2 {
		t.Errorf("counts = %v, want {0:2 1:2}", counts)
	}
}

func TestEngine_Apply(t *testing.T) {
	tests := []struct {
		name  string
		rule  models.TermRule
		in    string
		want  string
		count int
	}{
		{
			name:  "literal case sensitive",
			rule:  models.TermRule{Search: "Cat", Replace: "Dog", CaseSensitive: true},
			in:    "Cat cat CAT",
			want:  "Dog cat CAT",
			count: 1,
		},
		{
			name:  "literal case insensitive",
			rule:  models.TermRule{Search: "cat", Replace: "dog"},
			in:    "Cat cat CAT",
			want:  "dog dog dog",
			count: 3,
		},
		{
			name:  "literal metacharacters are not a pattern",
			rule:  models.TermRule{Search: "a.b", Replace: "X", CaseSensitive: true},
			in:    "a.b axb",
			want:  "X axb",
			count: 1,
		},
		{
			name:  "literal replacement keeps dollar signs",
			rule:  models.TermRule{Search: "price", Replace: "$1 each", CaseSensitive: true},
			in:    "price",
			want:  "$1 each",
			count: 1,
		},
		{
			name:  "whole word",
			rule:  models.TermRule{Search: "cat", Replace: "dog", CaseSensitive: true, WholeWord: true},
			in:    "cat concatenate cat.",
			want:  "dog concatenate dog.",
			count: 2,
		},
		{
			name:  "whole word with accented ending",
			rule:  models.TermRule{Search: "Zoë", Replace: "Zoe", CaseSensitive: true, WholeWord: true},
			in:    "Zoë said hi to Zoë.",
			want:  "Zoe said hi to Zoe.",
			count: 2,
		},
		{
			name:  "whole word accented on both sides",
			rule:  models.TermRule{Search: "été", Replace: "summer", WholeWord: true},
			in:    "un été chaud",
			want:  "un summer chaud",
			count: 1,
		},
		{
			name:  "whole word does not stop before an accented letter",
			rule:  models.TermRule{Search: "caf", Replace: "X", CaseSensitive: true, WholeWord: true},
			in:    "café caf",
			want:  "café X",
			count: 1,
		},
		{
			name:  "whole word regex",
			rule:  models.TermRule{Search: `Jos[eé]`, Replace: "Joe", IsRegex: true, CaseSensitive: true, WholeWord: true},
			in:    "José, Josef and Jose",
			want:  "Joe, Josef and Joe",
			count: 2,
		},
		{
			name:  "regex with group",
			rule:  models.TermRule{Search: `(\w+)@example\.com`, Replace: "$1 at example", IsRegex: true, CaseSensitive: true},
			in:    "mail bob@example.com now",
			want:  "mail bob at example now",
			count: 1,
		},
		{
			name:  "python style backreference",
			rule:  models.TermRule{Search: `Mr\. (\w+)`, Replace: `Mister \1`, IsRegex: true, CaseSensitive: true},
			in:    "Mr. Smith and Mr. Jones",
			want:  "Mister Smith and Mister Jones",
			count: 2,
		},
		{
			name:  "no match",
			rule:  models.TermRule{Search: "zzz", Replace: "y", CaseSensitive: true},
			in:    "abc",
			want:  "abc",
			count: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Compile([]models.TermRule{tt.rule}, nil)
			got, counts := e.Apply(tt.in)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
			if counts.Total() != tt.count {
				t.Errorf("Apply() count = %d, want %d", counts.Total(), tt.count)
			}
		})
	}
}

func TestCompile_BadRuleSkipped(t *testing.T) {
	e := Compile([]models.TermRule{
		{Search: "(unclosed", Replace: "x", IsRegex: true},
		{Search: "", Replace: "x"},
		{Search: "good", Replace: "fine", CaseSensitive: true},
	}, nil)

	if e.Active() != 1 || e.Total() != 3 {
		t.Errorf("Active()/Total() = %d/%d, want 1/3", e.Active(), e.Total())
	}
	warnings := e.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("len(Warnings()) = %d, want 2", len(warnings))
	}
	if warnings[0].Index != 1 {
		t.Errorf("Warnings()[0].Index = %d, want 1", warnings[0].Index)
	}
	var serr *syntax.Error
	if !errors.As(warnings[0], &serr) {
		t.Errorf("Warnings()[0] = %v, want a regexp syntax error", warnings[0])
	}
	if !errors.Is(warnings[1], ErrEmptySearch) {
		t.Errorf("Warnings()[1] = %v, want ErrEmptySearch", warnings[1])
	}

	got, counts := e.Apply("a good day")
	if got != "a fine day" || counts.Total() != 1 {
		t.Errorf("Apply() = %q (%d), want %q (1)", got, counts.Total(), "a fine day")
	}
	if counts[2] != 1 {
		t.Errorf("counts = %v, want rule index 2 counted", counts)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	rules := []models.TermRule{
		{Search: `\bthe\b`, Replace: "THE", IsRegex: true},
		{Search: "THE", Replace: "a", CaseSensitive: true, WholeWord: true},
	}
	text := "The cat and the hat; then the end."
	e := Compile(rules, nil)
	out1, c1 := e.Apply(text)
	out2, c2 := Compile(rules, nil).Apply(text)
	if out1 != out2 || c1.Total() != c2.Total() {
		t.Errorf("Apply() not deterministic: %q/%d vs %q/%d", out1, c1.Total(), out2, c2.Total())
	}
}
