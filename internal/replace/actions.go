package replace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/db"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/mapreduce"
	"github.com/dtnitsch/chapterclip/pkg/rewriter"
	"github.com/dtnitsch/chapterclip/pkg/terms"
	"github.com/urfave/cli/v2"
)

// topRules is how many rules the summary lists by hit count.
const topRules = 10

// Params are the inputs of one book-wide replacement.
type Params struct {
	EPUBPath     string
	TermsPath    string
	Workers      int
	Suffix       string
	OutputFormat string
}

// Summary is the structured output for one replacement.
type Summary struct {
	Status       string   `json:"status" yaml:"status"`
	RunID        string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Book         string   `json:"book" yaml:"book"`
	Output       string   `json:"output" yaml:"output"`
	OutputSize   string   `json:"output_size,omitempty" yaml:"output_size,omitempty"`
	Items        int      `json:"items" yaml:"items"`
	ChangedItems int      `json:"changed_items" yaml:"changed_items"`
	FailedItems  int      `json:"failed_items,omitempty" yaml:"failed_items,omitempty"`
	Replacements int      `json:"replacements" yaml:"replacements"`
	Rules        int      `json:"rules" yaml:"rules"`
	RuleWarnings int      `json:"rule_warnings,omitempty" yaml:"rule_warnings,omitempty"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	TopRules     []string `json:"top_rules,omitempty" yaml:"top_rules,omitempty"`
	Workers      int      `json:"workers" yaml:"workers"`
	Entries      int      `json:"entries" yaml:"entries"`
}

func ReplaceAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.Settings.Get()
	p := Params{
		EPUBPath:     common.ResolveInDir(c.String("epub"), cfg.LastEPUBDirectory),
		TermsPath:    common.ResolveInDir(c.String("terms"), cfg.LastJSONDirectory),
		Workers:      cfg.Workers,
		Suffix:       cfg.OutputSuffix,
		OutputFormat: c.String("output-format"),
	}
	if c.IsSet("workers") {
		p.Workers = c.Int("workers")
	}
	if c.IsSet("suffix") {
		p.Suffix = c.String("suffix")
	}

	summary, err := Run(env, p)
	if err != nil {
		return err
	}
	return common.WriteOutput(os.Stdout, summary, p.OutputFormat)
}

// Run substitutes terms across every document of the book and writes the
// result next to the source. The source file is never modified.
func Run(env *common.Env, p Params) (summary *Summary, err error) {
	logger := env.Logger
	if p.Workers < 1 {
		p.Workers = terms.DefaultWorkers
	}

	rules, err := terms.LoadRules(p.TermsPath)
	if err != nil {
		return nil, err
	}

	book, err := epub.Open(p.EPUBPath)
	if err != nil {
		runID := env.StartRun(db.KindReplace, p.EPUBPath, nil, 0)
		env.FinishRun(runID, err)
		return nil, fmt.Errorf("failed to open book: %w", err)
	}
	defer book.Close()

	runID := env.StartRun(db.KindReplace, p.EPUBPath, &book.Metadata, 0)
	defer func() { env.FinishRun(runID, err) }()

	engine := terms.Compile(rules, logger)
	report := terms.Substitute(book, engine, p.Workers, logger)

	dest := rewriter.DestPath(p.EPUBPath, p.Suffix)
	stats, err := rewriter.Rewrite(book, report.Payloads(), dest, logger)
	if err != nil {
		return nil, err
	}

	s := BuildSummary(p, dest, engine, report, stats)
	s.RunID = runID

	if runID != "" {
		rec := db.Replacement{
			OutputPath:   dest,
			TermsPath:    p.TermsPath,
			Items:        len(report.Items),
			ChangedItems: report.Changed,
			FailedItems:  report.Failed,
			Replacements: report.Total,
			RuleWarnings: report.Warnings,
			Workers:      report.Workers,
			TopRules:     s.TopRules,
		}
		if err := env.History.RecordReplacement(runID, rec); err != nil {
			logger.Warn("failed to record replacement", "run_id", runID, "error", err)
		}
	}

	if _, err := env.Settings.Update(func(cfg *models.Settings) error {
		if abs, err := filepath.Abs(p.EPUBPath); err == nil {
			cfg.LastEPUBDirectory = filepath.Dir(abs)
		}
		if abs, err := filepath.Abs(p.TermsPath); err == nil {
			cfg.LastJSONDirectory = filepath.Dir(abs)
		}
		return nil
	}); err != nil {
		logger.Warn("failed to save last directories", "error", err)
	}
	return &s, nil
}

// BuildSummary describes a finished replacement. Rules are listed by hit
// count as "<n>:<search>:<count>".
func BuildSummary(p Params, dest string, engine *terms.Engine, report *terms.Report, stats rewriter.Stats) Summary {
	byLabel := make(map[string]int, len(report.PerRule))
	for idx, n := range report.PerRule {
		byLabel[engine.Label(idx)] += n
	}

	s := Summary{
		Status:       "success",
		Book:         p.EPUBPath,
		Output:       dest,
		OutputSize:   common.FileSize(dest),
		Items:        len(report.Items),
		ChangedItems: report.Changed,
		FailedItems:  report.Failed,
		Replacements: report.Total,
		Rules:        engine.Total(),
		RuleWarnings: report.Warnings,
		TopRules:     mapreduce.TopN(byLabel, topRules),
		Workers:      report.Workers,
		Entries:      stats.Entries,
	}
	for _, w := range engine.Warnings() {
		s.Warnings = append(s.Warnings, w.Error())
	}
	return s
}
