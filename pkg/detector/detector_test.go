package detector

import (
	"strings"
	"testing"

	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/chapterclip/models"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short kept", "A short line.", 50, "A short line."},
		{"whitespace folded", "  one\n\ntwo\tthree ", 50, "one two three"},
		{"cut on word", "alpha beta gamma delta", 13, "alpha beta..."},
		{"trailing comma dropped", "alpha, beta gamma", 8, "alpha..."},
		{"no limit", "alpha beta", 0, "alpha beta"},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.text, tt.max); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestAnalyzeLanguage(t *testing.T) {
	d := New(lingua.English, lingua.French, lingua.German)

	english := "It was a bright cold day in April, and the clocks were striking thirteen. " +
		"Winston Smith slipped quickly through the glass doors of Victory Mansions."
	french := "Longtemps, je me suis couché de bonne heure. Parfois, à peine ma bougie éteinte, " +
		"mes yeux se fermaient si vite que je n'avais pas le temps de me dire."

	tests := []struct {
		name    string
		text    string
		wantISO string
	}{
		{"english", english, "en"},
		{"french", french, "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := models.Chapter{Path: "OEBPS/c1.xhtml", Markup: []byte("<html><body><p>" + tt.text + "</p></body></html>")}
			got := d.Analyze(ch, tt.text)
			if got.ISOCode != tt.wantISO {
				t.Errorf("Analyze().ISOCode = %q, want %q", got.ISOCode, tt.wantISO)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Errorf("Analyze().Confidence = %v, want in (0, 1]", got.Confidence)
			}
			if got.Excerpt == "" {
				t.Error("Analyze().Excerpt is empty")
			}
		})
	}
}

func TestAnalyzeShortText(t *testing.T) {
	d := New(lingua.English, lingua.French)
	ch := models.Chapter{Path: "c.xhtml", Markup: []byte("<p>Hi</p>")}
	got := d.Analyze(ch, "Hi")
	if got.Language != "unknown" || got.ISOCode != "" {
		t.Errorf("Analyze() = %+v, want unknown language", got)
	}
	if !strings.Contains(got.Excerpt, "Hi") {
		t.Errorf("Analyze().Excerpt = %q, want it to contain the text", got.Excerpt)
	}
}

func TestAnalyzeKeywords(t *testing.T) {
	d := New(lingua.English, lingua.French)
	text := "Marco rowed the boat. Marco sang to Elena while Elena watched the harbor."
	got := d.Analyze(models.Chapter{Path: "c.xhtml", Markup: []byte("<p>" + text + "</p>")}, text)
	if len(got.Keywords) < 2 || got.Keywords[0] != "elena" || got.Keywords[1] != "marco" {
		t.Errorf("Analyze().Keywords = %v, want elena and marco first", got.Keywords)
	}
}
