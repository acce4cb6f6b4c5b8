// Package rewriter writes a copy of an EPUB with some documents replaced.
package rewriter

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/storage"
)

// DefaultSuffix is appended to the source name for rewritten books.
const DefaultSuffix = "_TermsReplaced"

// SaveError means the new container could not be written. The source file
// is never touched.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// DestPath returns the sibling path of src with suffix before the extension:
// books/novel.epub -> books/novel_TermsReplaced.epub.
func DestPath(src, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(src)
	if ext == "" {
		ext = ".epub"
	}
	return strings.TrimSuffix(src, filepath.Ext(src)) + suffix + ext
}

// Stats describes a finished rewrite.
type Stats struct {
	Entries  int
	Replaced int
	Copied   int
}

// Rewrite writes a new container at dest holding every entry of book, with
// the documents named in substitutions (keyed by item id) replaced. The
// mimetype entry is written first and stored uncompressed.
func Rewrite(book *epub.Book, substitutions map[string][]byte, dest string, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if same, err := samePath(book.Path, dest); err != nil || same {
		if err == nil {
			err = fmt.Errorf("destination is the source file")
		}
		return Stats{}, &SaveError{Path: dest, Err: err}
	}

	byPath := make(map[string][]byte, len(substitutions))
	for _, item := range book.Items {
		if data, ok := substitutions[item.ID]; ok {
			byPath[item.Path] = data
		}
	}

	var stats Stats
	s := &storage.Storage{}
	err := s.WriteAtomic(dest, func(w io.Writer) error {
		stats = Stats{}
		return writeContainer(w, book.Files(), byPath, &stats)
	})
	if err != nil {
		return Stats{}, &SaveError{Path: dest, Err: err}
	}
	logger.Info("rewrote book", "dest", dest, "entries", stats.Entries, "replaced", stats.Replaced, "copied", stats.Copied)
	return stats, nil
}

func writeContainer(w io.Writer, files []*zip.File, byPath map[string][]byte, stats *Stats) error {
	zw := zip.NewWriter(w)

	mimetype := []byte("application/epub+zip")
	for _, f := range files {
		if f.Name == "mimetype" {
			data, err := readAll(f)
			if err != nil {
				return err
			}
			mimetype = data
			break
		}
	}
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("failed to write mimetype: %w", err)
	}
	if _, err := mw.Write(mimetype); err != nil {
		return fmt.Errorf("failed to write mimetype: %w", err)
	}
	stats.Entries++

	for _, f := range files {
		if f.Name == "mimetype" {
			continue
		}
		stats.Entries++
		data, ok := byPath[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("failed to copy %s: %w", f.Name, err)
			}
			stats.Copied++
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", f.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		stats.Replaced++
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
