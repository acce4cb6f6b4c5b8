package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/chapterclip/internal/chapters"
	"github.com/dtnitsch/chapterclip/internal/extract"
	"github.com/dtnitsch/chapterclip/internal/history"
	"github.com/dtnitsch/chapterclip/internal/menu"
	"github.com/dtnitsch/chapterclip/internal/replace"
	"github.com/dtnitsch/chapterclip/internal/settings"
	"github.com/dtnitsch/chapterclip/pkg/help"
	settingspkg "github.com/dtnitsch/chapterclip/pkg/settings"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	outputFormat := &cli.StringFlag{
		Name:  "output-format",
		Value: "yaml",
		Usage: "Summary format: yaml or json",
	}
	epubFlag := &cli.StringFlag{
		Name:     "epub",
		Aliases:  []string{"e"},
		Usage:    "Path to the EPUB file",
		Required: true,
	}

	return &cli.App{
		Name:  "chapterclip",
		Usage: "Copy whole chapters of an EPUB within a word or token budget",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   settingspkg.DefaultPath,
				Usage:   "Settings file",
				EnvVars: []string{"CHAPTERCLIP_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "History database (default: chapterclip.db next to the settings file)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN or ERROR (overrides log_level in settings)",
			},
		},
		Action: menu.MenuAction,
		Commands: []*cli.Command{
			{
				Name:   "extract",
				Usage:  "Extract chapters from a start chapter within the budget",
				Action: extract.ExtractAction,
				Flags: []cli.Flag{
					epubFlag,
					&cli.IntFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "First chapter (1-based)",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "budget",
						Aliases: []string{"b"},
						Usage:   "Budget in words or tokens (default: max_budget)",
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "words or tokens (default: count_mode)",
					},
					&cli.StringFlag{
						Name:  "terms",
						Usage: "JSON terms file applied to the extracted text",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Write the text to stdout instead of the clipboard",
					},
					&cli.BoolFlag{
						Name:  "no-titles",
						Usage: "Leave chapter titles out of the text",
					},
					outputFormat,
				},
			},
			{
				Name:   "redo",
				Usage:  "Repeat the last extraction",
				Action: extract.RedoAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Write the text to stdout instead of the clipboard",
					},
					outputFormat,
				},
			},
			{
				Name:   "chapters",
				Usage:  "List the chapters of a book with their cost",
				Action: chapters.ChaptersAction,
				Flags: []cli.Flag{
					epubFlag,
					&cli.StringFlag{
						Name:  "mode",
						Usage: "words or tokens (default: count_mode)",
					},
					&cli.BoolFlag{
						Name:  "insight",
						Usage: "Detect each chapter's language and show an excerpt",
					},
					&cli.StringFlag{
						Name:  "output-format",
						Value: "table",
						Usage: "table, yaml or json",
					},
				},
			},
			{
				Name:   "replace",
				Usage:  "Apply a terms file to every document and save a new EPUB",
				Action: replace.ReplaceAction,
				Flags: []cli.Flag{
					epubFlag,
					&cli.StringFlag{
						Name:     "terms",
						Aliases:  []string{"t"},
						Usage:    "JSON terms file",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Parallel workers (default: workers setting)",
					},
					&cli.StringFlag{
						Name:  "suffix",
						Usage: "Output file suffix (default: output_suffix setting)",
					},
					outputFormat,
				},
			},
			{
				Name:  "settings",
				Usage: "View and change settings",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the current settings",
						Action: settings.ShowAction,
						Flags:  []cli.Flag{outputFormat},
					},
					{
						Name:      "set",
						Usage:     "Change settings",
						ArgsUsage: "key=value [key=value...]",
						Action:    settings.SetAction,
						Flags:     []cli.Flag{outputFormat},
					},
					{
						Name:   "reset",
						Usage:  "Restore the defaults",
						Action: settings.ResetAction,
					},
				},
			},
			{
				Name:  "history",
				Usage: "Inspect past runs",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List recent runs",
						Action: history.ListAction,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "Number of runs to show (0 for all)",
							},
						},
					},
					{
						Name:      "show",
						Usage:     "Show one run",
						ArgsUsage: "<run-id|latest>",
						Action:    history.ShowAction,
						Flags:     []cli.Flag{outputFormat},
					},
				},
			},
			{
				Name:   "menu",
				Usage:  "Interactive menu (the default)",
				Action: menu.MenuAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print the quick start guide",
				Action: func(c *cli.Context) error {
					doc, err := help.Coldstart()
					if err != nil {
						return err
					}
					fmt.Print(doc)
					return nil
				},
			},
		},
	}
}
