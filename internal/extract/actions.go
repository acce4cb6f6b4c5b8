package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/clipboard"
	"github.com/dtnitsch/chapterclip/pkg/db"
	"github.com/dtnitsch/chapterclip/pkg/extractor"
	"github.com/dtnitsch/chapterclip/pkg/terms"
	"github.com/urfave/cli/v2"
)

// ErrNoPreviousExtraction is returned by redo before any extraction ran.
var ErrNoPreviousExtraction = errors.New("no previous extraction to repeat")

func ExtractAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.Settings.Get()
	p := Params{
		EPUBPath:     common.ResolveInDir(c.String("epub"), cfg.LastEPUBDirectory),
		Start:        c.Int("start"),
		Budget:       cfg.MaxBudget,
		Mode:         cfg.CountMode,
		ToStdout:     c.Bool("stdout"),
		OutputFormat: c.String("output-format"),
		Formatting:   cfg.Formatting(),
	}
	if c.IsSet("budget") {
		p.Budget = c.Int("budget")
	}
	if c.IsSet("mode") {
		mode, err := models.ParseCountMode(c.String("mode"))
		if err != nil {
			return err
		}
		p.Mode = mode
	}
	if c.IsSet("terms") {
		p.TermsPath = common.ResolveInDir(c.String("terms"), cfg.LastJSONDirectory)
	}
	if c.Bool("no-titles") {
		p.Formatting.IncludeChapterTitles = false
	}

	summary, err := Run(env, p, os.Stdout, clipboard.System{})
	if err != nil {
		return err
	}
	return printSummary(p, summary)
}

// RedoAction repeats the last extraction with the current formatting
// settings.
func RedoAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := RedoParams(env.Settings.Get())
	if err != nil {
		return err
	}
	p.ToStdout = c.Bool("stdout")
	p.OutputFormat = c.String("output-format")

	summary, err := Run(env, p, os.Stdout, clipboard.System{})
	if err != nil {
		return err
	}
	return printSummary(p, summary)
}

// RedoParams rebuilds the parameters of the last extraction.
func RedoParams(cfg models.Settings) (Params, error) {
	last := cfg.LastExtraction
	if last == nil || last.EPUBPath == "" {
		return Params{}, ErrNoPreviousExtraction
	}
	return Params{
		EPUBPath:   last.EPUBPath,
		Start:      last.Start,
		Budget:     last.Budget,
		Mode:       last.Mode,
		TermsPath:  last.TermsPath,
		Formatting: cfg.Formatting(),
	}, nil
}

// printSummary writes the summary to stdout, or to stderr when stdout
// carries the extracted text.
func printSummary(p Params, summary *Summary) error {
	w := io.Writer(os.Stdout)
	if p.ToStdout {
		w = os.Stderr
	}
	return common.WriteOutput(w, summary, p.OutputFormat)
}

// Run performs one extraction: open and classify the book, select chapters,
// apply terms, deliver the text, remember the request and record history.
// The text goes to clip, or to out when clip fails or p.ToStdout is set.
func Run(env *common.Env, p Params, out io.Writer, clip clipboard.Writer) (summary *Summary, err error) {
	logger := env.Logger
	cfg := env.Settings.Get()

	req := models.ExtractionRequest{Start: p.Start, Budget: p.Budget, Mode: p.Mode, Formatting: p.Formatting}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := extractor.Open(p.EPUBPath, cfg.Classification(), cfg.TokenizerEncoding, logger)
	if err != nil {
		runID := env.StartRun(db.KindExtract, p.EPUBPath, nil, 0)
		env.FinishRun(runID, err)
		return nil, err
	}
	defer session.Close()

	runID := env.StartRun(db.KindExtract, p.EPUBPath, &session.Book.Metadata, len(session.Chapters))
	defer func() { env.FinishRun(runID, err) }()

	result, err := session.Extract(req)
	if err != nil {
		return nil, err
	}

	var engine *terms.Engine
	if p.TermsPath != "" {
		rules, err := terms.LoadRules(p.TermsPath)
		if err != nil {
			return nil, err
		}
		engine = terms.Compile(rules, logger)
		session.ApplyTerms(result, engine)
	}

	s := BuildSummary(p, session, result, engine)
	s.RunID = runID
	s.Delivered, err = deliver(env, p, result.Text, out, clip)
	if err != nil {
		return nil, err
	}

	remember(env, p)
	if runID != "" {
		rec := db.Extraction{
			StartChapter:  result.Start,
			EndChapter:    result.End,
			Budget:        result.Budget,
			RequestedMode: result.RequestedMode.String(),
			Mode:          result.Mode.String(),
			Fallback:      result.Fallback,
			Oversized:     result.Oversized,
			TotalCost:     result.TotalCost,
			FinalCost:     result.FinalCost,
			Replacements:  result.Replacements,
			RuleWarnings:  result.RuleWarnings,
			TermsPath:     p.TermsPath,
			Titles:        result.Titles,
		}
		if err := env.History.RecordExtraction(runID, rec); err != nil {
			logger.Warn("failed to record extraction", "run_id", runID, "error", err)
		}
	}
	return &s, nil
}

// deliver copies text to the clipboard, falling back to the terminal.
func deliver(env *common.Env, p Params, text string, out io.Writer, clip clipboard.Writer) (string, error) {
	if p.ToStdout {
		if _, err := io.WriteString(out, text+"\n"); err != nil {
			return "", fmt.Errorf("failed to write text: %w", err)
		}
		return DeliveredStdout, nil
	}

	ok, err := clipboard.Copy(clip, text)
	if ok {
		return DeliveredClipboard, nil
	}
	env.Logger.Warn("clipboard unavailable, printing text instead", "error", err)
	if _, err := fmt.Fprintf(out, "----- extracted text -----\n%s\n----- end -----\n", text); err != nil {
		return "", fmt.Errorf("failed to write text: %w", err)
	}
	return DeliveredTerminal, nil
}

// remember stores the request for redo and the directories for the next
// prompt. A failed save is logged; the extraction itself succeeded.
func remember(env *common.Env, p Params) {
	_, err := env.Settings.Update(func(cfg *models.Settings) error {
		cfg.LastExtraction = &models.LastExtraction{
			EPUBPath:  absPath(p.EPUBPath),
			Start:     p.Start,
			Budget:    p.Budget,
			Mode:      p.Mode,
			TermsPath: absPath(p.TermsPath),
		}
		cfg.LastEPUBDirectory = filepath.Dir(absPath(p.EPUBPath))
		if p.TermsPath != "" {
			cfg.LastJSONDirectory = filepath.Dir(absPath(p.TermsPath))
		}
		return nil
	})
	if err != nil {
		env.Logger.Warn("failed to save last extraction", "error", err)
	}
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
