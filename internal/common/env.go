package common

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/chapterclip/pkg/db"
	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/settings"
	"github.com/urfave/cli/v2"
)

// Env is what every command action needs: a logger, the settings store and
// the run history.
type Env struct {
	Logger   *slog.Logger
	Settings *settings.Store
	History  *db.DB
}

// ErrNoHistory is returned by history commands when the database could not
// be opened.
var ErrNoHistory = errors.New("run history is unavailable")

// ParseLevel maps DEBUG|INFO|WARN|ERROR to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds the JSON stderr logger. quiet forces ERROR.
func NewLogger(level string, quiet bool) *slog.Logger {
	logLevel, err := ParseLevel(level)
	if err != nil {
		logLevel = slog.LevelInfo
	}
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// DBPath returns the --db flag, or the default database beside the
// settings file.
func DBPath(c *cli.Context, configPath string) string {
	if p := c.String("db"); p != "" {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), db.DefaultDBName)
}

// Setup loads settings and opens the history database from the global
// flags. Callers must Close the result.
func Setup(c *cli.Context) (*Env, error) {
	store, err := settings.Open(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	level := store.Get().LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger := NewLogger(level, c.Bool("quiet"))

	history := OpenHistory(DBPath(c, store.Path()), logger)
	return &Env{Logger: logger, Settings: store, History: history}, nil
}

// OpenHistory opens the run database. A database that cannot be opened is
// logged and nil returned; commands still run, they just leave no record.
func OpenHistory(path string, logger *slog.Logger) *db.DB {
	history, err := db.Open(path)
	if err != nil {
		logger.Warn("run history unavailable, continuing without it", "path", path, "error", err)
		return nil
	}
	return history
}

// RequireHistory returns the database for commands that only read history.
func (e *Env) RequireHistory() (*db.DB, error) {
	if e.History == nil {
		return nil, ErrNoHistory
	}
	return e.History, nil
}

// Close releases the history database.
func (e *Env) Close() error {
	if e.History == nil {
		return nil
	}
	return e.History.Close()
}

// StartRun records the book and a new run. History is best effort: on
// failure the error is logged and "" returned.
func (e *Env) StartRun(kind, bookPath string, meta *epub.Metadata, chapters int) string {
	if e.History == nil {
		return ""
	}
	var bookID int64
	if hash, err := FileHash(bookPath); err != nil {
		e.Logger.Warn("failed to hash book for history", "path", bookPath, "error", err)
	} else {
		b := db.Book{ContentHash: hash, Path: bookPath, ChapterCount: chapters}
		if meta != nil {
			b.Title, b.Creator, b.Language = meta.Title, meta.Creator, meta.Language
		}
		if bookID, err = e.History.UpsertBook(b); err != nil {
			e.Logger.Warn("failed to record book", "path", bookPath, "error", err)
		}
	}

	runID, err := e.History.StartRun(kind, bookID)
	if err != nil {
		e.Logger.Warn("failed to record run", "kind", kind, "error", err)
		return ""
	}
	return runID
}

// FinishRun closes a run started with StartRun.
func (e *Env) FinishRun(runID string, runErr error) {
	if e.History == nil || runID == "" {
		return
	}
	if err := e.History.FinishRun(runID, runErr); err != nil {
		e.Logger.Warn("failed to finish run", "run_id", runID, "error", err)
	}
}
