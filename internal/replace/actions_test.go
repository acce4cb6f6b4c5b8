package replace

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/pkg/db"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/epub/epubtest"
	"github.com/dtnitsch/chapterclip/pkg/settings"
)

func setupEnv(t *testing.T) (*common.Env, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := settings.Open(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("settings.Open() error = %v", err)
	}
	history, err := db.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	env := &common.Env{Logger: slog.New(slog.DiscardHandler), Settings: store, History: history}
	t.Cleanup(func() { env.Close() })
	return env, dir
}

func writeTerms(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "terms.json")
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun(t *testing.T) {
	env, dir := setupEnv(t)
	book := epubtest.Write(t, dir, "novel.epub", []epubtest.Doc{
		{ID: "c1", Href: "one.xhtml", Body: `<p class="Tom">Tom met Ann.</p>`},
		{ID: "c2", Href: "two.xhtml", Body: `<p>Ann waved at Tom and Tom left.</p>`},
		{ID: "c3", Href: "three.xhtml", Body: `<p>Nobody here.</p>`},
	}, epubtest.Entry{Name: "OEBPS/style.css", Data: []byte("p { color: red; }")})
	original, err := os.ReadFile(book)
	if err != nil {
		t.Fatal(err)
	}
	termsPath := writeTerms(t, dir, `{"terms": [
		{"search": "Tom", "replace": "Tim", "whole_word": true},
		{"search": "Ann", "replace": "Anna"},
		{"search": "[", "replace": "x", "is_regex": true}
	]}`)

	got, err := Run(env, Params{EPUBPath: book, TermsPath: termsPath, Workers: 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOut := filepath.Join(dir, "novel_TermsReplaced.epub")
	if got.Output != wantOut {
		t.Errorf("Run().Output = %q, want %q", got.Output, wantOut)
	}
	if got.Replacements != 5 || got.ChangedItems != 2 || got.Items != 3 {
		t.Errorf("Run() = %d replacements in %d/%d items, want 5 in 2/3", got.Replacements, got.ChangedItems, got.Items)
	}
	if got.RuleWarnings != 1 || got.Rules != 3 {
		t.Errorf("Run() rules = %d warnings = %d, want 3 and 1", got.Rules, got.RuleWarnings)
	}
	if len(got.TopRules) != 2 || !strings.HasPrefix(got.TopRules[0], "1:Tom") {
		t.Errorf("Run().TopRules = %v, want Tom first", got.TopRules)
	}

	after, err := os.ReadFile(book)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(original, after) {
		t.Error("source book was modified")
	}

	out, err := epub.Open(wantOut)
	if err != nil {
		t.Fatalf("epub.Open(output) error = %v", err)
	}
	defer out.Close()
	one, err := out.ReadFile("OEBPS/one.xhtml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(one), `<p class="Tom">Tim met Anna.</p>`) {
		t.Errorf("rewritten item = %s, want text replaced and attribute kept", one)
	}

	run, err := env.History.GetRun(got.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != db.StatusOK || run.Replacement == nil || run.Replacement.Replacements != 5 {
		t.Errorf("history = %+v %+v, want ok with 5 replacements", run.Run, run.Replacement)
	}
}

func TestRun_InvalidBook(t *testing.T) {
	env, dir := setupEnv(t)
	bad := filepath.Join(dir, "bad.epub")
	if err := os.WriteFile(bad, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	termsPath := writeTerms(t, dir, `[{"search": "a", "replace": "b"}]`)

	_, err := Run(env, Params{EPUBPath: bad, TermsPath: termsPath})
	if !errors.Is(err, epub.ErrInvalidContainer) {
		t.Fatalf("Run() error = %v, want ErrInvalidContainer", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad_TermsReplaced.epub")); !os.IsNotExist(err) {
		t.Error("output file was created for an invalid book")
	}

	run, err := env.History.GetRun("latest")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != db.StatusFailed {
		t.Errorf("history status = %q, want failed", run.Status)
	}
}

func TestRun_MissingTerms(t *testing.T) {
	env, dir := setupEnv(t)
	book := epubtest.Write(t, dir, "novel.epub", []epubtest.Doc{{ID: "c1", Href: "one.xhtml", Body: "<p>x</p>"}})
	if _, err := Run(env, Params{EPUBPath: book, TermsPath: filepath.Join(dir, "none.json")}); err == nil {
		t.Error("Run() with missing terms file error = nil, want error")
	}
}
