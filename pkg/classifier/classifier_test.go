package classifier

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/epub/epubtest"
)

func doc(id, p, body string) epub.Item {
	return epub.Item{ID: id, Path: p, MediaType: "application/xhtml+xml", InSpine: true, Raw: []byte(epubtest.XHTML(body))}
}

func defaultOpts() models.ClassifyOptions {
	return models.DefaultSettings().Classification()
}

func ids(chapters []models.Chapter) []string {
	out := make([]string, len(chapters))
	for i, c := range chapters {
		out[i] = c.ID
	}
	return out
}

func TestClassifyItems_Exclusions(t *testing.T) {
	long := epubtest.Words(600)
	items := []epub.Item{
		doc("cover", "OEBPS/cover.xhtml", long),
		doc("nav", "OEBPS/TOC.xhtml", long),
		doc("c1", "OEBPS/text/ch01.xhtml", "<h1>Arrival</h1>"+long),
		doc("epigraph", "OEBPS/text/epigraph.xhtml", "<p>A short quote.</p>"),
		doc("c2", "OEBPS/text/ch02.xhtml", long),
		doc("legal", "OEBPS/Copyright-Page.xhtml", long),
		doc("ack", "OEBPS/text/thanks.xhtml", long),
	}
	items[6].ID = "Acknowledgments"

	chapters, report := ClassifyItems(items, defaultOpts(), nil)

	if got := strings.Join(ids(chapters), ","); got != "c1,c2" {
		t.Fatalf("chapter ids = %s, want c1,c2", got)
	}
	if chapters[0].Index != 1 || chapters[1].Index != 2 {
		t.Errorf("indices = %d,%d, want 1,2", chapters[0].Index, chapters[1].Index)
	}
	if chapters[0].Title != "Arrival" || chapters[0].TitleSource != models.TitleFromHeading {
		t.Errorf("chapters[0] title = %q (%s), want Arrival (heading)", chapters[0].Title, chapters[0].TitleSource)
	}
	if chapters[1].Title != "Ch02" || chapters[1].TitleSource != models.TitleFromFilename {
		t.Errorf("chapters[1] title = %q (%s), want Ch02 (filename)", chapters[1].Title, chapters[1].TitleSource)
	}
	if report.Excluded[ReasonKeyword] != 4 || report.Excluded[ReasonShort] != 1 {
		t.Errorf("report.Excluded = %v, want keyword=4 short=1", report.Excluded)
	}
	if report.Considered != 7 || report.Kept != 2 {
		t.Errorf("report = %+v, want considered=7 kept=2", report)
	}
}

func TestClassifyItems_TocPathAnyCase(t *testing.T) {
	long := epubtest.Words(600)
	for _, p := range []string{"OEBPS/toc.xhtml", "OEBPS/TOC.XHTML", "OEBPS/Toc.xhtml"} {
		chapters, _ := ClassifyItems([]epub.Item{doc("x", p, long)}, defaultOpts(), nil)
		if len(chapters) != 0 {
			t.Errorf("path %s classified as chapter, want excluded", p)
		}
	}
}

func TestClassifyItems_KeywordOrderIndependent(t *testing.T) {
	long := epubtest.Words(600)
	items := []epub.Item{
		doc("a", "OEBPS/cover.xhtml", long),
		doc("b", "OEBPS/ch1.xhtml", long),
		doc("c", "OEBPS/contents.xhtml", long),
		doc("d", "OEBPS/ch2.xhtml", long),
		doc("e", "OEBPS/info.xhtml", long),
	}
	keywords := models.DefaultExclusionKeywords
	base := defaultOpts()
	want := strings.Join(ids(mustClassify(items, base)), ",")

	// every rotation and the reverse
	perms := [][]string{}
	for r := range keywords {
		perms = append(perms, append(append([]string{}, keywords[r:]...), keywords[:r]...))
	}
	rev := make([]string, len(keywords))
	for i, k := range keywords {
		rev[len(keywords)-1-i] = k
	}
	perms = append(perms, rev)

	for _, p := range perms {
		opts := base
		opts.ExclusionKeywords = p
		if got := strings.Join(ids(mustClassify(items, opts)), ","); got != want {
			t.Errorf("keywords %v gave %s, want %s", p, got, want)
		}
	}
}

func mustClassify(items []epub.Item, opts models.ClassifyOptions) []models.Chapter {
	c, _ := ClassifyItems(items, opts, nil)
	return c
}

func TestClassifyItems_ThresholdToggle(t *testing.T) {
	items := []epub.Item{
		doc("short", "OEBPS/dedication.xhtml", "<p>For my family.</p>"),
		doc("long", "OEBPS/ch1.xhtml", epubtest.Words(499)),
	}

	opts := defaultOpts()
	if got := mustClassify(items, opts); len(got) != 0 {
		t.Errorf("with filter: %d chapters, want 0", len(got))
	}

	opts.MinWordsFilter = false
	if got := mustClassify(items, opts); len(got) != 2 {
		t.Errorf("without filter: %d chapters, want 2", len(got))
	}

	opts.MinWordsFilter = true
	opts.MinChapterWords = 3
	if got := strings.Join(ids(mustClassify(items, opts)), ","); got != "short,long" {
		t.Errorf("threshold 3: chapters = %s, want short,long", got)
	}
}

func TestClassifyItems_MatchTitles(t *testing.T) {
	items := []epub.Item{doc("c1", "OEBPS/ch1.xhtml", "<h2>Copyright Notice</h2>"+epubtest.Words(600))}
	opts := defaultOpts()
	if got := mustClassify(items, opts); len(got) != 1 {
		t.Errorf("titles not matched: %d chapters, want 1", len(got))
	}
	opts.MatchTitles = true
	if got := mustClassify(items, opts); len(got) != 0 {
		t.Errorf("titles matched: %d chapters, want 0", len(got))
	}
}

func TestClassifyItems_Empty(t *testing.T) {
	chapters, report := ClassifyItems(nil, defaultOpts(), nil)
	if len(chapters) != 0 || report.Kept != 0 {
		t.Errorf("ClassifyItems(nil) = %d chapters, want 0", len(chapters))
	}
}

func TestClassify_Book(t *testing.T) {
	dir := t.TempDir()
	docs := []epubtest.Doc{{ID: "cover", Href: "cover.xhtml", Body: "<p>cover</p>"}}
	for i := 1; i <= 3; i++ {
		docs = append(docs, epubtest.Doc{
			ID:   fmt.Sprintf("c%d", i),
			Href: fmt.Sprintf("chapter%d.xhtml", i),
			Body: fmt.Sprintf("<h1>Part %d</h1>", i) + epubtest.Words(600),
		})
	}
	book, err := epub.Open(epubtest.Write(t, dir, "b.epub", docs))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer book.Close()

	chapters, _ := Classify(book, defaultOpts(), nil)
	if got := strings.Join(ids(chapters), ","); got != "c1,c2,c3" {
		t.Errorf("Classify() ids = %s, want c1,c2,c3", got)
	}
	if chapters[2].Title != "Part 3" {
		t.Errorf("chapters[2].Title = %q, want %q", chapters[2].Title, "Part 3")
	}
}

func TestFilenameTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"OEBPS/text/chapter_01-the-end.xhtml", "Chapter 01 The End"},
		{"part.two.html", "Part Two"},
		{"OEBPS/.xhtml", "Chapter 7"},
	}
	for _, tt := range tests {
		if got := FilenameTitle(tt.path, 7); got != tt.want {
			t.Errorf("FilenameTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestClassifyItems_SelfClosingTitle(t *testing.T) {
	raw := `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title/></head>
<body><h1>The Storm</h1><p>` + strings.Repeat("rain ", 600) + `</p></body></html>`
	item := epub.Item{ID: "c1", Path: "OEBPS/c1.xhtml", MediaType: "application/xhtml+xml", InSpine: true, Raw: []byte(raw)}

	chapters, report := ClassifyItems([]epub.Item{item}, defaultOpts(), nil)
	if len(chapters) != 1 {
		t.Fatalf("len(chapters) = %d, want 1 (report %+v)", len(chapters), report)
	}
	if chapters[0].Title != "The Storm" || chapters[0].TitleSource != models.TitleFromHeading {
		t.Errorf("chapter title = %q (%s), want The Storm from heading", chapters[0].Title, chapters[0].TitleSource)
	}
	if chapters[0].Words != 602 {
		t.Errorf("chapter words = %d, want 602", chapters[0].Words)
	}
}
