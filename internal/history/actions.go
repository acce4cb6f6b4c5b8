package history

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/chapterclip/internal/common"
	dbpkg "github.com/dtnitsch/chapterclip/pkg/db"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func ListAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	history, err := env.RequireHistory()
	if err != nil {
		return err
	}
	runs, err := history.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	PrintRuns(os.Stdout, runs)
	return nil
}

// PrintRuns writes runs as a table, newest first.
func PrintRuns(w io.Writer, runs []dbpkg.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return
	}

	fmt.Fprintf(w, "%-10s %-20s %-8s %-8s %-14s %-30s\n",
		"ID", "Started", "Kind", "Status", "When", "Book")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		book := r.BookTitle
		if book == "" {
			book = r.BookPath
		}
		fmt.Fprintf(w, "%-10s %-20s %-8s %-8s %-14s %-30s\n",
			shortID(r.RunID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind,
			r.Status,
			humanize.Time(r.StartedAt),
			book,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'chapterclip history show <id>' to see details\n")
}

// ShowAction shows one run; the id defaults to latest.
func ShowAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	id := c.Args().First()
	if id == "" {
		id = "latest"
	}
	history, err := env.RequireHistory()
	if err != nil {
		return err
	}
	detail, err := history.GetRun(id)
	if err != nil {
		return err
	}
	return common.WriteOutput(os.Stdout, BuildDetail(detail), c.String("output-format"))
}

// Detail is the printable form of a run.
type Detail struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Kind        string             `json:"kind" yaml:"kind"`
	Status      string             `json:"status" yaml:"status"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
	Book        string             `json:"book,omitempty" yaml:"book,omitempty"`
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Started     string             `json:"started" yaml:"started"`
	Duration    string             `json:"duration,omitempty" yaml:"duration,omitempty"`
	Extraction  *dbpkg.Extraction  `json:"extraction,omitempty" yaml:"extraction,omitempty"`
	Replacement *dbpkg.Replacement `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

// BuildDetail flattens a run for output.
func BuildDetail(r *dbpkg.RunDetail) Detail {
	d := Detail{
		RunID:       r.RunID,
		Kind:        r.Kind,
		Status:      r.Status,
		Error:       r.Error,
		Book:        r.BookPath,
		Title:       r.BookTitle,
		Started:     r.StartedAt.Local().Format("2006-01-02 15:04:05"),
		Extraction:  r.Extraction,
		Replacement: r.Replacement,
	}
	if r.FinishedAt != nil {
		d.Duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
	}
	return d
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
