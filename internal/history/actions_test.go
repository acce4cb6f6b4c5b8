package history

import (
	"bytes"
	"strings"
	"testing"
	"time"

	dbpkg "github.com/dtnitsch/chapterclip/pkg/db"
)

func TestPrintRuns(t *testing.T) {
	var empty bytes.Buffer
	PrintRuns(&empty, nil)
	if !strings.Contains(empty.String(), "No runs found") {
		t.Errorf("PrintRuns(nil) = %q", empty.String())
	}

	runs := []dbpkg.Run{
		{RunID: "0123456789abcdef", Kind: dbpkg.KindExtract, Status: dbpkg.StatusOK, BookTitle: "Novel", StartedAt: time.Now()},
		{RunID: "fedcba", Kind: dbpkg.KindReplace, Status: dbpkg.StatusFailed, BookPath: "/b/other.epub", StartedAt: time.Now()},
	}
	var buf bytes.Buffer
	PrintRuns(&buf, runs)
	out := buf.String()
	for _, want := range []string{"01234567 ", "Novel", "/b/other.epub", "fedcba", "Total: 2 runs"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintRuns() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789") {
		t.Error("PrintRuns() printed the full run id")
	}
}

func TestBuildDetail(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)
	r := &dbpkg.RunDetail{
		Run:        dbpkg.Run{RunID: "abc", Kind: dbpkg.KindExtract, Status: dbpkg.StatusOK, StartedAt: started, FinishedAt: &finished},
		Extraction: &dbpkg.Extraction{StartChapter: 2, EndChapter: 4},
	}
	got := BuildDetail(r)
	if got.Duration != "1.5s" {
		t.Errorf("BuildDetail().Duration = %q, want 1.5s", got.Duration)
	}
	if got.Extraction == nil || got.Extraction.EndChapter != 4 {
		t.Errorf("BuildDetail().Extraction = %+v", got.Extraction)
	}

	r.FinishedAt = nil
	if got := BuildDetail(r); got.Duration != "" {
		t.Errorf("BuildDetail() unfinished Duration = %q, want empty", got.Duration)
	}
}
