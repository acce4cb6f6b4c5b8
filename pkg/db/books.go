package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Book is a history row for one EPUB, keyed by content hash so a moved
// or renamed file keeps its history.
type Book struct {
	BookID       int64
	ContentHash  string
	Path         string
	Title        string
	Creator      string
	Language     string
	ChapterCount int
}

// UpsertBook inserts the book or refreshes its path and metadata,
// returning the book_id.
func (db *DB) UpsertBook(b Book) (int64, error) {
	if b.ContentHash == "" {
		return 0, fmt.Errorf("failed to record book: empty content hash")
	}

	var existingID int64
	err := db.QueryRow("SELECT book_id FROM books WHERE content_hash = ?", b.ContentHash).Scan(&existingID)
	if err == nil {
		_, err = db.Exec(`
			UPDATE books
			SET path = ?, title = ?, creator = ?, language = ?, chapter_count = ?, updated_at = ?
			WHERE book_id = ?
		`, b.Path, NewNullString(b.Title), NewNullString(b.Creator), NewNullString(b.Language),
			b.ChapterCount, time.Now().UTC(), existingID)
		if err != nil {
			return 0, fmt.Errorf("failed to update book: %w", err)
		}
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing book: %w", err)
	}

	result, err := db.Exec(`
		INSERT INTO books (content_hash, path, title, creator, language, chapter_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ContentHash, b.Path, NewNullString(b.Title), NewNullString(b.Creator),
		NewNullString(b.Language), b.ChapterCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}

	bookID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get book ID: %w", err)
	}
	return bookID, nil
}

// GetBook returns the book with the given id, or nil if absent.
func (db *DB) GetBook(bookID int64) (*Book, error) {
	var b Book
	var title, creator, language sql.NullString
	err := db.QueryRow(`
		SELECT book_id, content_hash, path, title, creator, language, chapter_count
		FROM books WHERE book_id = ?
	`, bookID).Scan(&b.BookID, &b.ContentHash, &b.Path, &title, &creator, &language, &b.ChapterCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	b.Title, b.Creator, b.Language = title.String, creator.String, language.String
	return &b, nil
}

// NewNullString creates a sql.NullString from a string value.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
