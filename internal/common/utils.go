package common

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/chapterclip/pkg/storage"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// FileHash streams a file through SHA256.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// CleanPath tidies a path typed or pasted into the terminal.
// Removes surrounding whitespace and quotes, a file:// prefix left by drag
// and drop, and expands a leading ~.
func CleanPath(raw string) string {
	cleaned := strings.TrimSpace(raw)

	// Example: "'/books/My Novel.epub'" -> "/books/My Novel.epub"
	for _, q := range []string{`"`, `'`} {
		if len(cleaned) >= 2 && strings.HasPrefix(cleaned, q) && strings.HasSuffix(cleaned, q) {
			cleaned = cleaned[1 : len(cleaned)-1]
		}
	}
	cleaned = strings.TrimPrefix(cleaned, "file://")

	// Shell-escaped spaces from drag and drop
	cleaned = strings.ReplaceAll(cleaned, `\ `, " ")

	if cleaned == "~" || strings.HasPrefix(cleaned, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cleaned = filepath.Join(home, strings.TrimPrefix(cleaned, "~"))
		}
	}
	return strings.TrimSpace(cleaned)
}

// ResolveInDir joins a bare file name onto dir, the last directory the user
// picked a file from. Absolute and relative paths with a directory part are
// returned unchanged.
func ResolveInDir(name, dir string) string {
	name = CleanPath(name)
	if name == "" || dir == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(dir, name)
}

// WriteOutput prints v as YAML (the default) or JSON.
func WriteOutput(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (use yaml or json)", format)
	}
	return nil
}

// FileSize returns a human readable size such as "1.2 MB", or "" when the
// file cannot be read.
func FileSize(path string) string {
	stats, err := (&storage.Storage{}).GetFileStats(path)
	if err != nil {
		return ""
	}
	return humanize.Bytes(uint64(stats.SizeBytes))
}

// Count renders n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}
