// Package detector derives cheap per-chapter insight: the dominant language,
// a short excerpt and the most frequent words.
package detector

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/analytics"
	"github.com/dtnitsch/chapterclip/pkg/normalizer"
)

// ExcerptRunes bounds the fallback excerpt length.
const ExcerptRunes = 160

// KeywordCount is how many frequent words an insight lists.
const KeywordCount = 5

// minLanguageRunes is the shortest text worth running detection on.
const minLanguageRunes = 20

// DefaultLanguages is the candidate set used when none is given. A small
// set keeps the detector's memory footprint modest.
var DefaultLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
}

// Insight contains detection results for one chapter
type Insight struct {
	Language   string  `json:"language" yaml:"language"`     // e.g. English, or unknown
	ISOCode    string  `json:"iso_code" yaml:"iso_code"`     // ISO 639-1, lower case
	Confidence float64 `json:"confidence" yaml:"confidence"` // 0-1
	Excerpt    string  `json:"excerpt" yaml:"excerpt"`
	Byline     string  `json:"byline,omitempty" yaml:"byline,omitempty"`

	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Detector holds a language detector built for a fixed candidate set.
type Detector struct {
	languages lingua.LanguageDetector
}

// New builds a detector over the given candidate languages.
func New(languages ...lingua.Language) *Detector {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}
	return &Detector{
		languages: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Analyze inspects a chapter. text is the chapter's normalized plain text.
func (d *Detector) Analyze(ch models.Chapter, text string) Insight {
	in := Insight{Language: "unknown", Keywords: analytics.TopWords(text, KeywordCount)}
	d.detectLanguage(&in, text)

	// Readability wants a base URL to resolve relative links against.
	base := &url.URL{Scheme: "epub", Path: "/" + strings.TrimPrefix(ch.Path, "/")}
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(normalizer.ExpandSelfClosing(ch.Markup)), base)
	if err == nil {
		in.Excerpt = normalizeSpace(article.Excerpt)
		in.Byline = normalizeSpace(article.Byline)
	}
	if in.Excerpt == "" {
		in.Excerpt = Excerpt(text, ExcerptRunes)
	}
	return in
}

func (d *Detector) detectLanguage(in *Insight, text string) {
	if utf8.RuneCountInString(text) < minLanguageRunes {
		return
	}
	lang, ok := d.languages.DetectLanguageOf(text)
	if !ok {
		return
	}
	in.Language = lang.String()
	in.ISOCode = strings.ToLower(lang.IsoCode639_1().String())
	in.Confidence = d.languages.ComputeLanguageConfidence(text, lang)
}

// Excerpt returns the first max runes of text on a word boundary, with an
// ellipsis when cut.
func Excerpt(text string, max int) string {
	text = normalizeSpace(text)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "..."
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
