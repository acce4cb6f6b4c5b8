package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// maxEntrySize bounds the decompressed size of a single entry.
const maxEntrySize int64 = 64 * 1024 * 1024

type zipIndex struct {
	exact map[string]*zip.File
	lower map[string]*zip.File
}

func newZipIndex(zr *zip.Reader) zipIndex {
	idx := zipIndex{
		exact: make(map[string]*zip.File, len(zr.File)),
		lower: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		idx.exact[f.Name] = f
		lk := strings.ToLower(f.Name)
		if _, ok := idx.lower[lk]; !ok {
			idx.lower[lk] = f
		}
	}
	return idx
}

// find looks a name up exactly, then case-insensitively.
func (z zipIndex) find(name string) *zip.File {
	if f, ok := z.exact[name]; ok {
		return f
	}
	return z.lower[strings.ToLower(name)]
}

// resolveHref resolves an OPF-relative href to a container path. It returns
// "" for absolute or escaping paths.
func resolveHref(opfDir, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	p := path.Clean(path.Join(opfDir, href))
	if !isSafePath(p) {
		return ""
	}
	return p
}

func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func readEntry(f *zip.File) ([]byte, error) {
	return readEntryWithLimit(f, maxEntrySize)
}

func readEntryWithLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("unsafe entry path %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("entry %s too large: %d bytes", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// The declared size can lie, so read one byte past the limit.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("entry %s exceeds %d bytes", f.Name, limit)
	}
	return data, nil
}
