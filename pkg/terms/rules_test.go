package terms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/chapterclip/models"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		json string
		want []models.TermRule
	}{
		{
			name: "current keys",
			json: `[{"search":"a","replace":"b","is_regex":true,"case_sensitive":false,"whole_word":true}]`,
			want: []models.TermRule{{Search: "a", Replace: "b", IsRegex: true, CaseSensitive: false, WholeWord: true}},
		},
		{
			name: "legacy keys",
			json: `[{"original":"x","replacement":"y","caseSensitive":false,"isRegex":false}]`,
			want: []models.TermRule{{Search: "x", Replace: "y"}},
		},
		{
			name: "minimal shape defaults to case sensitive",
			json: `[{"search":"a","replace":"b"},{"search":"c"}]`,
			want: []models.TermRule{{Search: "a", Replace: "b", CaseSensitive: true}, {Search: "c", CaseSensitive: true}},
		},
		{
			name: "wrapped object",
			json: `{"terms":[{"search":"a","replace":"b"}]}`,
			want: []models.TermRule{{Search: "a", Replace: "b", CaseSensitive: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules([]byte(tt.json))
			if err != nil {
				t.Fatalf("ParseRules() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseRules() = %d rules, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("rule %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseRules_Errors(t *testing.T) {
	for _, in := range []string{"", "not json", `[{"replace":"b"}]`} {
		if _, err := ParseRules([]byte(in)); err == nil {
			t.Errorf("ParseRules(%q) error = nil, want error", in)
		}
	}
}

func TestLoadRules(t *testing.T) {
	p := filepath.Join(t.TempDir(), "terms.json")
	if err := os.WriteFile(p, []byte(`[{"search":"Ron","replace":"Ronald"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRules(p)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != 1 || rules[0].Replace != "Ronald" {
		t.Errorf("LoadRules() = %+v", rules)
	}
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadRules(missing) error = nil, want error")
	}
}
