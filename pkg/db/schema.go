package db

const schema = `
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- One row per distinct book file content
CREATE TABLE IF NOT EXISTS books (
    book_id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash TEXT NOT NULL UNIQUE,
    path TEXT NOT NULL,
    title TEXT,
    creator TEXT,
    language TEXT,
    chapter_count INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Every extract or replace invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    book_id INTEGER,
    kind TEXT NOT NULL,              -- extract, replace
    status TEXT NOT NULL DEFAULT 'running', -- running, ok, failed
    error TEXT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    FOREIGN KEY (book_id) REFERENCES books(book_id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

CREATE TABLE IF NOT EXISTS extractions (
    run_id TEXT PRIMARY KEY,
    start_chapter INTEGER NOT NULL,
    end_chapter INTEGER NOT NULL,
    budget INTEGER NOT NULL,
    requested_mode TEXT NOT NULL,
    mode TEXT NOT NULL,
    fallback BOOLEAN DEFAULT 0,
    oversized BOOLEAN DEFAULT 0,
    total_cost INTEGER NOT NULL,
    final_cost INTEGER DEFAULT 0,
    replacements INTEGER DEFAULT 0,
    rule_warnings INTEGER DEFAULT 0,
    terms_path TEXT,
    titles TEXT,                     -- JSON array
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS replacements (
    run_id TEXT PRIMARY KEY,
    output_path TEXT NOT NULL,
    terms_path TEXT,
    items INTEGER NOT NULL,
    changed_items INTEGER NOT NULL,
    failed_items INTEGER NOT NULL,
    replacements INTEGER NOT NULL,
    rule_warnings INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    top_rules TEXT,                  -- JSON array of "rule:count"
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`
