package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run kinds.
const (
	KindExtract = "extract"
	KindReplace = "replace"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is one extract or replace invocation.
type Run struct {
	RunID      string
	BookID     int64
	BookPath   string
	BookTitle  string
	Kind       string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Extraction is the detail row of an extract run.
type Extraction struct {
	StartChapter  int      `json:"start_chapter" yaml:"start_chapter"`
	EndChapter    int      `json:"end_chapter" yaml:"end_chapter"`
	Budget        int      `json:"budget" yaml:"budget"`
	RequestedMode string   `json:"requested_mode" yaml:"requested_mode"`
	Mode          string   `json:"mode" yaml:"mode"`
	Fallback      bool     `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Oversized     bool     `json:"oversized,omitempty" yaml:"oversized,omitempty"`
	TotalCost     int      `json:"total_cost" yaml:"total_cost"`
	FinalCost     int      `json:"final_cost,omitempty" yaml:"final_cost,omitempty"`
	Replacements  int      `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	RuleWarnings  int      `json:"rule_warnings,omitempty" yaml:"rule_warnings,omitempty"`
	TermsPath     string   `json:"terms_path,omitempty" yaml:"terms_path,omitempty"`
	Titles        []string `json:"titles" yaml:"titles"`
}

// Replacement is the detail row of a replace run.
type Replacement struct {
	OutputPath   string   `json:"output_path" yaml:"output_path"`
	TermsPath    string   `json:"terms_path,omitempty" yaml:"terms_path,omitempty"`
	Items        int      `json:"items" yaml:"items"`
	ChangedItems int      `json:"changed_items" yaml:"changed_items"`
	FailedItems  int      `json:"failed_items,omitempty" yaml:"failed_items,omitempty"`
	Replacements int      `json:"replacements" yaml:"replacements"`
	RuleWarnings int      `json:"rule_warnings,omitempty" yaml:"rule_warnings,omitempty"`
	Workers      int      `json:"workers" yaml:"workers"`
	TopRules     []string `json:"top_rules,omitempty" yaml:"top_rules,omitempty"`
}

// RunDetail is a run with whichever detail row its kind carries.
type RunDetail struct {
	Run
	Extraction  *Extraction
	Replacement *Replacement
}

// StartRun records a new running invocation and returns its id.
// bookID may be zero when the book could not be opened.
func (db *DB) StartRun(kind string, bookID int64) (string, error) {
	runID := uuid.New().String()
	var book sql.NullInt64
	if bookID > 0 {
		book = sql.NullInt64{Int64: bookID, Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO runs (run_id, book_id, kind, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, book, kind, StatusRunning, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// FinishRun marks the run ok, or failed with runErr's message.
func (db *DB) FinishRun(runID string, runErr error) error {
	status, msg := StatusOK, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	result, err := db.Exec(`
		UPDATE runs SET status = ?, error = ?, finished_at = ?
		WHERE run_id = ?
	`, status, NewNullString(msg), time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// RecordExtraction stores the detail row of an extract run.
func (db *DB) RecordExtraction(runID string, e Extraction) error {
	titles, err := json.Marshal(e.Titles)
	if err != nil {
		return fmt.Errorf("failed to encode titles: %w", err)
	}
	_, err = db.Exec(`
		INSERT OR REPLACE INTO extractions (
			run_id, start_chapter, end_chapter, budget, requested_mode, mode,
			fallback, oversized, total_cost, final_cost, replacements, rule_warnings,
			terms_path, titles
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, e.StartChapter, e.EndChapter, e.Budget, e.RequestedMode, e.Mode,
		e.Fallback, e.Oversized, e.TotalCost, e.FinalCost, e.Replacements, e.RuleWarnings,
		NewNullString(e.TermsPath), string(titles))
	if err != nil {
		return fmt.Errorf("failed to insert extraction: %w", err)
	}
	return nil
}

// RecordReplacement stores the detail row of a replace run.
func (db *DB) RecordReplacement(runID string, r Replacement) error {
	top, err := json.Marshal(r.TopRules)
	if err != nil {
		return fmt.Errorf("failed to encode top rules: %w", err)
	}
	_, err = db.Exec(`
		INSERT OR REPLACE INTO replacements (
			run_id, output_path, terms_path, items, changed_items, failed_items,
			replacements, rule_warnings, workers, top_rules
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.OutputPath, NewNullString(r.TermsPath), r.Items, r.ChangedItems, r.FailedItems,
		r.Replacements, r.RuleWarnings, r.Workers, string(top))
	if err != nil {
		return fmt.Errorf("failed to insert replacement: %w", err)
	}
	return nil
}

const runColumns = `
	r.run_id, COALESCE(r.book_id, 0), COALESCE(b.path, ''), COALESCE(b.title, ''),
	r.kind, r.status, COALESCE(r.error, ''), r.started_at, r.finished_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var finished sql.NullTime
	err := row.Scan(&run.RunID, &run.BookID, &run.BookPath, &run.BookTitle,
		&run.Kind, &run.Status, &run.Error, &run.StartedAt, &finished)
	if err != nil {
		return run, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + `
		FROM runs r LEFT JOIN books b ON b.book_id = r.book_id
		ORDER BY r.started_at DESC, r.rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a run with its detail row. The id "latest" selects the
// most recent run; any unambiguous id prefix is accepted.
func (db *DB) GetRun(runID string) (*RunDetail, error) {
	base := `SELECT ` + runColumns + ` FROM runs r LEFT JOIN books b ON b.book_id = r.book_id `
	var row *sql.Row
	switch {
	case runID == "" || strings.EqualFold(runID, "latest"):
		row = db.QueryRow(base + `ORDER BY r.started_at DESC, r.rowid DESC LIMIT 1`)
	default:
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM runs WHERE run_id LIKE ? || '%'`, runID).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to look up run: %w", err)
		}
		if n > 1 {
			return nil, fmt.Errorf("run id %q is ambiguous (%d matches)", runID, n)
		}
		row = db.QueryRow(base+`WHERE r.run_id LIKE ? || '%'`, runID)
	}

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	detail := &RunDetail{Run: run}
	switch run.Kind {
	case KindExtract:
		detail.Extraction, err = db.getExtraction(run.RunID)
	case KindReplace:
		detail.Replacement, err = db.getReplacement(run.RunID)
	}
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (db *DB) getExtraction(runID string) (*Extraction, error) {
	var e Extraction
	var terms sql.NullString
	var titles string
	err := db.QueryRow(`
		SELECT start_chapter, end_chapter, budget, requested_mode, mode, fallback, oversized,
			total_cost, final_cost, replacements, rule_warnings, terms_path, COALESCE(titles, '[]')
		FROM extractions WHERE run_id = ?
	`, runID).Scan(&e.StartChapter, &e.EndChapter, &e.Budget, &e.RequestedMode, &e.Mode,
		&e.Fallback, &e.Oversized, &e.TotalCost, &e.FinalCost, &e.Replacements, &e.RuleWarnings,
		&terms, &titles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	e.TermsPath = terms.String
	if err := json.Unmarshal([]byte(titles), &e.Titles); err != nil {
		return nil, fmt.Errorf("failed to decode titles: %w", err)
	}
	return &e, nil
}

func (db *DB) getReplacement(runID string) (*Replacement, error) {
	var r Replacement
	var terms sql.NullString
	var top string
	err := db.QueryRow(`
		SELECT output_path, terms_path, items, changed_items, failed_items,
			replacements, rule_warnings, workers, COALESCE(top_rules, '[]')
		FROM replacements WHERE run_id = ?
	`, runID).Scan(&r.OutputPath, &terms, &r.Items, &r.ChangedItems, &r.FailedItems,
		&r.Replacements, &r.RuleWarnings, &r.Workers, &top)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get replacement: %w", err)
	}
	r.TermsPath = terms.String
	if err := json.Unmarshal([]byte(top), &r.TopRules); err != nil {
		return nil, fmt.Errorf("failed to decode top rules: %w", err)
	}
	return &r, nil
}
