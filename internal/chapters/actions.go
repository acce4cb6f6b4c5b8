package chapters

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/classifier"
	"github.com/dtnitsch/chapterclip/pkg/detector"
	"github.com/dtnitsch/chapterclip/pkg/extractor"
	"github.com/urfave/cli/v2"
)

// Params are the inputs of a chapter listing.
type Params struct {
	EPUBPath     string
	Mode         models.CountMode
	Insight      bool
	OutputFormat string
}

// Entry is one chapter in the listing.
type Entry struct {
	Index       int                `json:"index" yaml:"index"`
	Title       string             `json:"title" yaml:"title"`
	TitleSource models.TitleSource `json:"title_source" yaml:"title_source"`
	Path        string             `json:"path" yaml:"path"`
	Cost        int                `json:"cost" yaml:"cost"`
	Cumulative  int                `json:"cumulative" yaml:"cumulative"`
	Insight     *detector.Insight  `json:"insight,omitempty" yaml:"insight,omitempty"`
}

// Listing is the structured output of the chapters command.
type Listing struct {
	Book      string         `json:"book" yaml:"book"`
	Title     string         `json:"title,omitempty" yaml:"title,omitempty"`
	Creator   string         `json:"creator,omitempty" yaml:"creator,omitempty"`
	Mode      string         `json:"mode" yaml:"mode"`
	Fallback  bool           `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Items     int            `json:"items" yaml:"items"`
	Chapters  []Entry        `json:"chapters" yaml:"chapters"`
	Excluded  map[string]int `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	TotalCost int            `json:"total_cost" yaml:"total_cost"`
}

func ChaptersAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.Settings.Get()
	p := Params{
		EPUBPath:     common.ResolveInDir(c.String("epub"), cfg.LastEPUBDirectory),
		Mode:         cfg.CountMode,
		Insight:      c.Bool("insight"),
		OutputFormat: c.String("output-format"),
	}
	if c.IsSet("mode") {
		mode, err := models.ParseCountMode(c.String("mode"))
		if err != nil {
			return err
		}
		p.Mode = mode
	}

	listing, err := Run(env, p)
	if err != nil {
		return err
	}
	if p.OutputFormat == "table" {
		PrintTable(os.Stdout, listing)
		return nil
	}
	return common.WriteOutput(os.Stdout, listing, p.OutputFormat)
}

// Run classifies the book and costs every chapter.
func Run(env *common.Env, p Params) (*Listing, error) {
	cfg := env.Settings.Get()
	session, err := extractor.Open(p.EPUBPath, cfg.Classification(), cfg.TokenizerEncoding, env.Logger)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	if len(session.Chapters) == 0 {
		return nil, extractor.ErrNoChapters
	}

	res := session.Strategy(p.Mode)
	listing := &Listing{
		Book:     p.EPUBPath,
		Title:    session.Book.Metadata.Title,
		Creator:  session.Book.Metadata.Creator,
		Mode:     res.Strategy.Mode().String(),
		Fallback: res.Fallback,
		Items:    session.Report.Considered,
		Excluded: session.Report.Excluded,
	}

	var d *detector.Detector
	if p.Insight {
		d = detector.New()
	}
	formatting := models.FormattingOptions{PreserveParagraphBreaks: true}
	for _, ch := range session.Chapters {
		cost, err := session.Cost(ch, res.Strategy)
		if err != nil {
			return nil, fmt.Errorf("failed to cost chapter %d: %w", ch.Index, err)
		}
		listing.TotalCost += cost
		e := Entry{
			Index:       ch.Index,
			Title:       ch.Title,
			TitleSource: ch.TitleSource,
			Path:        ch.Path,
			Cost:        cost,
			Cumulative:  listing.TotalCost,
		}
		if d != nil {
			in := d.Analyze(ch, session.Render(ch, formatting))
			e.Insight = &in
		}
		listing.Chapters = append(listing.Chapters, e)
	}
	if len(listing.Excluded) == 0 {
		listing.Excluded = nil
	}
	return listing, nil
}

// PrintTable writes the listing as an aligned table.
func PrintTable(w io.Writer, l *Listing) {
	if l.Title != "" {
		fmt.Fprintf(w, "%s", l.Title)
		if l.Creator != "" {
			fmt.Fprintf(w, " by %s", l.Creator)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%-5s %-40s %10s %12s\n", "#", "Title", l.Mode, "Cumulative")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, e := range l.Chapters {
		fmt.Fprintf(w, "%-5d %-40s %10s %12s\n", e.Index, truncate(e.Title, 40), common.Count(e.Cost), common.Count(e.Cumulative))
		if e.Insight != nil {
			fmt.Fprintf(w, "      [%s] %s\n", e.Insight.Language, e.Insight.Excerpt)
			if len(e.Insight.Keywords) > 0 {
				fmt.Fprintf(w, "      keywords: %s\n", strings.Join(e.Insight.Keywords, ", "))
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d chapters, %s %s\n", len(l.Chapters), common.Count(l.TotalCost), l.Mode)
	if n := l.Excluded[classifier.ReasonKeyword] + l.Excluded[classifier.ReasonShort]; n > 0 {
		fmt.Fprintf(w, "Skipped %d of %d items (%d by keyword, %d too short)\n",
			n, l.Items, l.Excluded[classifier.ReasonKeyword], l.Excluded[classifier.ReasonShort])
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
