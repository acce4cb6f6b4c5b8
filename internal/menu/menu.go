// Package menu is the interactive front end: a numbered menu over the same
// operations the subcommands run.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dtnitsch/chapterclip/internal/chapters"
	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/internal/extract"
	"github.com/dtnitsch/chapterclip/internal/history"
	"github.com/dtnitsch/chapterclip/internal/replace"
	settingscmd "github.com/dtnitsch/chapterclip/internal/settings"
	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/accumulator"
	"github.com/dtnitsch/chapterclip/pkg/clipboard"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/extractor"
	"github.com/dtnitsch/chapterclip/pkg/rewriter"
	"github.com/urfave/cli/v2"
)

// errInputClosed ends the loop when stdin reaches EOF.
var errInputClosed = errors.New("input closed")

// historyRows is how many runs the history entry shows.
const historyRows = 10

type Menu struct {
	env  *common.Env
	in   *bufio.Scanner
	out  io.Writer
	clip clipboard.Writer
}

func New(env *common.Env, in io.Reader, out io.Writer, clip clipboard.Writer) *Menu {
	return &Menu{env: env, in: bufio.NewScanner(in), out: out, clip: clip}
}

func MenuAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	return New(env, os.Stdin, os.Stdout, clipboard.System{}).Loop()
}

type entry struct {
	keys  []string
	label string
	run   func() error
}

func (m *Menu) entries() []entry {
	return []entry{
		{[]string{"1", "e", "extract"}, "Extract chapters", m.extract},
		{[]string{"2", "r", "redo"}, "Redo last extraction", m.redo},
		{[]string{"3", "c", "chapters"}, "List chapters", m.chapters},
		{[]string{"4", "t", "replace"}, "Replace terms in EPUB", m.replace},
		{[]string{"5", "s", "settings"}, "Settings", m.settings},
		{[]string{"6", "h", "history"}, "History", m.history},
	}
}

// Loop shows the menu until the user exits or input ends. Errors from an
// operation are printed and the menu is shown again.
func (m *Menu) Loop() error {
	entries := m.entries()
	for {
		fmt.Fprintln(m.out, "\n=== chapterclip ===")
		for _, e := range entries {
			fmt.Fprintf(m.out, "  %s) %s\n", e.keys[0], e.label)
		}
		fmt.Fprintln(m.out, "  0) Exit")

		choice, err := m.ask("Choose", "")
		if errors.Is(err, errInputClosed) {
			return nil
		}
		choice = strings.ToLower(choice)
		if choice == "0" || choice == "q" || choice == "exit" || choice == "quit" {
			return nil
		}

		found := false
		for _, e := range entries {
			if slices.Contains(e.keys, choice) {
				found = true
				err = e.run()
				break
			}
		}
		switch {
		case !found:
			fmt.Fprintf(m.out, "Unknown choice %q\n", choice)
		case errors.Is(err, errInputClosed):
			return nil
		case err != nil:
			m.report(err)
		}
	}
}

// report prints an operation failure in terms the user can act on.
func (m *Menu) report(err error) {
	var saveErr *rewriter.SaveError
	switch {
	case errors.Is(err, epub.ErrInvalidContainer):
		fmt.Fprintf(m.out, "Not a readable EPUB: %v\n", err)
	case errors.Is(err, extractor.ErrNoChapters):
		fmt.Fprintln(m.out, "No chapters found. Try lowering min_chapter_words or turning off min_words_filter in settings.")
	case errors.Is(err, extract.ErrNoPreviousExtraction):
		fmt.Fprintln(m.out, "Nothing to redo yet. Run an extraction first.")
	case errors.As(err, &saveErr):
		fmt.Fprintf(m.out, "Could not save %s: %v\nThe original file was not changed.\n", saveErr.Path, saveErr.Err)
	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
	m.env.Logger.Debug("menu operation failed", "error", err)
}

func (m *Menu) extract() error {
	cfg := m.env.Settings.Get()
	p := extract.Params{Formatting: cfg.Formatting()}

	var err error
	if p.EPUBPath, err = m.askPath("EPUB file", m.lastBook(cfg), cfg.LastEPUBDirectory); err != nil {
		return err
	}
	if p.Start, err = m.askInt("Start chapter", 1); err != nil {
		return err
	}
	if p.Budget, err = m.askInt("Budget", cfg.MaxBudget); err != nil {
		return err
	}
	modeText, err := m.ask("Mode (words/tokens)", cfg.CountMode.String())
	if err != nil {
		return err
	}
	if p.Mode, err = models.ParseCountMode(modeText); err != nil {
		return err
	}
	if p.TermsPath, err = m.askPath("Terms JSON (blank for none)", "", cfg.LastJSONDirectory); err != nil {
		return err
	}
	return m.runExtract(p)
}

func (m *Menu) redo() error {
	p, err := extract.RedoParams(m.env.Settings.Get())
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Repeating: %s from chapter %d, budget %d %s\n", p.EPUBPath, p.Start, p.Budget, p.Mode)
	return m.runExtract(p)
}

// runExtract re-prompts for the start chapter while it is out of range.
func (m *Menu) runExtract(p extract.Params) error {
	for {
		summary, err := extract.Run(m.env, p, m.out, m.clip)
		var nf *accumulator.ChapterNotFoundError
		if errors.As(err, &nf) && nf.Max > 0 {
			fmt.Fprintf(m.out, "Chapter %d does not exist. This book has chapters 1 to %d.\n", nf.Start, nf.Max)
			if p.Start, err = m.askInt("Start chapter", 1); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(m.out, "%s: %s %s", summary.Selection, common.Count(summary.TotalCost), summary.Mode)
		if summary.Fallback {
			fmt.Fprint(m.out, " (token counting unavailable, counted words)")
		}
		fmt.Fprintln(m.out)
		if summary.RuleWarnings > 0 {
			fmt.Fprintf(m.out, "%d replacements made, %d rules skipped\n", summary.Replacements, summary.RuleWarnings)
		} else if summary.TermsPath != "" {
			fmt.Fprintf(m.out, "%d replacements made\n", summary.Replacements)
		}
		if summary.Delivered == extract.DeliveredClipboard {
			fmt.Fprintln(m.out, "Copied to clipboard.")
		}
		return nil
	}
}

func (m *Menu) chapters() error {
	cfg := m.env.Settings.Get()
	path, err := m.askPath("EPUB file", m.lastBook(cfg), cfg.LastEPUBDirectory)
	if err != nil {
		return err
	}
	listing, err := chapters.Run(m.env, chapters.Params{EPUBPath: path, Mode: cfg.CountMode})
	if err != nil {
		return err
	}
	chapters.PrintTable(m.out, listing)
	return nil
}

func (m *Menu) replace() error {
	cfg := m.env.Settings.Get()
	p := replace.Params{Workers: cfg.Workers, Suffix: cfg.OutputSuffix}

	var err error
	if p.EPUBPath, err = m.askPath("EPUB file", m.lastBook(cfg), cfg.LastEPUBDirectory); err != nil {
		return err
	}
	if p.TermsPath, err = m.askPath("Terms JSON", "", cfg.LastJSONDirectory); err != nil {
		return err
	}
	if p.TermsPath == "" {
		return errors.New("a terms file is required")
	}

	summary, err := replace.Run(m.env, p)
	if err != nil {
		return err
	}
	return common.WriteOutput(m.out, summary, "yaml")
}

func (m *Menu) settings() error {
	if err := settingscmd.Show(m.out, m.env.Settings, "yaml"); err != nil {
		return err
	}
	for {
		line, err := m.ask("key=value to change, 'reset', or blank to return", "")
		if err != nil || line == "" {
			return err
		}
		if line == "reset" {
			if _, err := m.env.Settings.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(m.out, "Settings reset to defaults.")
			continue
		}
		if _, err := settingscmd.Set(m.env.Settings, strings.Fields(line)); err != nil {
			fmt.Fprintf(m.out, "Not saved: %v\n", err)
			continue
		}
		fmt.Fprintln(m.out, "Saved.")
	}
}

func (m *Menu) history() error {
	hist, err := m.env.RequireHistory()
	if err != nil {
		return err
	}
	runs, err := hist.ListRuns(historyRows)
	if err != nil {
		return err
	}
	history.PrintRuns(m.out, runs)
	return nil
}

func (m *Menu) lastBook(cfg models.Settings) string {
	if cfg.LastExtraction != nil {
		return cfg.LastExtraction.EPUBPath
	}
	return ""
}

// ask prints label with its default and returns the trimmed answer, or def
// for a blank line.
func (m *Menu) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(m.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(m.out, "%s: ", label)
	}
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errInputClosed
	}
	answer := strings.TrimSpace(m.in.Text())
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// askPath reads a file path. Bare names resolve against dir.
func (m *Menu) askPath(label, def, dir string) (string, error) {
	answer, err := m.ask(label, def)
	if err != nil {
		return "", err
	}
	return common.ResolveInDir(answer, dir), nil
}

// askInt repeats the question until it gets a positive integer.
func (m *Menu) askInt(label string, def int) (int, error) {
	for {
		answer, err := m.ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintf(m.out, "Please enter a whole number greater than 0.\n")
	}
}
