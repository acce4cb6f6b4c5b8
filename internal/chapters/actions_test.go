package chapters

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/epub/epubtest"
	"github.com/dtnitsch/chapterclip/pkg/extractor"
	"github.com/dtnitsch/chapterclip/pkg/settings"
)

func setupEnv(t *testing.T) (*common.Env, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := settings.Open(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("settings.Open() error = %v", err)
	}
	return &common.Env{Logger: slog.New(slog.DiscardHandler), Settings: store}, dir
}

func TestRun(t *testing.T) {
	env, dir := setupEnv(t)
	book := epubtest.Write(t, dir, "novel.epub", []epubtest.Doc{
		{ID: "toc", Href: "toc.xhtml", Body: epubtest.Words(600)},
		{ID: "c1", Href: "one.xhtml", Body: "<h2>Beginnings</h2>" + epubtest.Words(599)},
		{ID: "c2", Href: "chapter_two.xhtml", Body: epubtest.Words(700)},
		{ID: "blurb", Href: "blurb.xhtml", Body: "<p>Short.</p>"},
	})

	got, err := Run(env, Params{EPUBPath: book, Mode: models.CountModeWords})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got.Chapters) != 2 {
		t.Fatalf("Run() chapters = %d, want 2", len(got.Chapters))
	}
	first, second := got.Chapters[0], got.Chapters[1]
	if first.Title != "Beginnings" || first.TitleSource != models.TitleFromHeading || first.Cost != 600 {
		t.Errorf("first = %+v, want Beginnings from heading costing 600", first)
	}
	if second.Title != "Chapter Two" || second.TitleSource != models.TitleFromFilename {
		t.Errorf("second = %+v, want Chapter Two from filename", second)
	}
	if second.Cumulative != 1300 || got.TotalCost != 1300 {
		t.Errorf("cumulative = %d total = %d, want 1300", second.Cumulative, got.TotalCost)
	}
	if got.Excluded["keyword"] != 1 || got.Excluded["short"] != 1 {
		t.Errorf("Excluded = %v, want one keyword and one short", got.Excluded)
	}
	if first.Insight != nil {
		t.Error("Insight set without the insight flag")
	}

	var buf bytes.Buffer
	PrintTable(&buf, got)
	if !strings.Contains(buf.String(), "Beginnings") || !strings.Contains(buf.String(), "1,300") {
		t.Errorf("PrintTable() = %q", buf.String())
	}
}

func TestRun_NoChapters(t *testing.T) {
	env, dir := setupEnv(t)
	book := epubtest.Write(t, dir, "thin.epub", []epubtest.Doc{
		{ID: "c1", Href: "one.xhtml", Body: "<p>Too short to count.</p>"},
	})
	if _, err := Run(env, Params{EPUBPath: book, Mode: models.CountModeWords}); !errors.Is(err, extractor.ErrNoChapters) {
		t.Errorf("Run() error = %v, want ErrNoChapters", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want short", got)
	}
	if got := truncate("a very long chapter title", 10); got != "a very ..." {
		t.Errorf("truncate() = %q, want %q", got, "a very ...")
	}
}

func TestRun_Insight(t *testing.T) {
	env, dir := setupEnv(t)
	book := epubtest.Write(t, dir, "novel.epub", []epubtest.Doc{
		{ID: "c1", Href: "one.xhtml", Body: "<h1>Harbor</h1>" + epubtest.Words(600)},
	})

	got, err := Run(env, Params{EPUBPath: book, Mode: models.CountModeWords, Insight: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	in := got.Chapters[0].Insight
	if in == nil {
		t.Fatal("Insight = nil with the insight flag")
	}
	if in.Excerpt == "" || len(in.Keywords) == 0 {
		t.Errorf("Insight = %+v, want excerpt and keywords", in)
	}
}
