// Package classifier decides which spine documents are chapters.
package classifier

import (
	"bytes"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/normalizer"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Exclusion reasons reported in Report.
const (
	ReasonKeyword = "keyword"
	ReasonShort   = "short"
)

// Report counts what classification kept and dropped.
type Report struct {
	Considered int            `json:"considered" yaml:"considered"`
	Kept       int            `json:"kept" yaml:"kept"`
	Excluded   map[string]int `json:"excluded" yaml:"excluded"`
}

// Classify returns the spine items of book that are chapters, in reading
// order with 1-based indices. It returns an empty list, not an error, when
// nothing qualifies.
func Classify(book *epub.Book, opts models.ClassifyOptions, logger *slog.Logger) ([]models.Chapter, Report) {
	return ClassifyItems(book.SpineItems(), opts, logger)
}

// ClassifyItems classifies documents already in reading order.
func ClassifyItems(items []epub.Item, opts models.ClassifyOptions, logger *slog.Logger) ([]models.Chapter, Report) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keywords := normalizeKeywords(opts.ExclusionKeywords)
	report := Report{Excluded: map[string]int{}}

	var chapters []models.Chapter
	for i, item := range items {
		report.Considered++

		if kw, ok := matchKeyword(keywords, item.Path, item.ID); ok {
			logger.Debug("excluded item", "id", item.ID, "path", item.Path, "reason", ReasonKeyword, "keyword", kw)
			report.Excluded[ReasonKeyword]++
			continue
		}

		title, source := DeriveTitle(item.Raw, item.Path, i+1)
		if opts.MatchTitles {
			if kw, ok := matchKeyword(keywords, title); ok {
				logger.Debug("excluded item", "id", item.ID, "title", title, "reason", ReasonKeyword, "keyword", kw)
				report.Excluded[ReasonKeyword]++
				continue
			}
		}

		words := normalizer.WordCount(normalizer.Text(item.Raw, models.FormattingOptions{}))
		if opts.MinWordsFilter && words < opts.MinChapterWords {
			logger.Debug("excluded item", "id", item.ID, "path", item.Path, "reason", ReasonShort, "words", words)
			report.Excluded[ReasonShort]++
			continue
		}

		chapters = append(chapters, models.Chapter{
			Index:       len(chapters) + 1,
			ID:          item.ID,
			Path:        item.Path,
			Title:       title,
			TitleSource: source,
			Words:       words,
			Markup:      item.Raw,
		})
	}
	report.Kept = len(chapters)
	return chapters, report
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// matchKeyword reports the first keyword contained in any of the fields.
// The outcome (match or not) does not depend on keyword order.
func matchKeyword(keywords []string, fields ...string) (string, bool) {
	for _, f := range fields {
		f = strings.ToLower(f)
		for _, k := range keywords {
			if strings.Contains(f, k) {
				return k, true
			}
		}
	}
	return "", false
}

const headings = "h1,h2,h3,h4,h5,h6"

// DeriveTitle returns the first heading's text, or a title built from the
// file name. n is used when the file name yields nothing.
func DeriveTitle(markup []byte, itemPath string, n int) (string, models.TitleSource) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(normalizer.ExpandSelfClosing(markup)))
	if err == nil {
		var title string
		doc.Find(headings).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			title = strings.Join(strings.Fields(s.Text()), " ")
			return title == ""
		})
		if title != "" {
			return title, models.TitleFromHeading
		}
	}
	return FilenameTitle(itemPath, n), models.TitleFromFilename
}

// FilenameTitle turns "OEBPS/text/chapter_01-the-end.xhtml" into
// "Chapter 01 The End".
func FilenameTitle(itemPath string, n int) string {
	base := path.Base(itemPath)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Chapter " + strconv.Itoa(n)
	}
	return cases.Title(language.English).String(base)
}
