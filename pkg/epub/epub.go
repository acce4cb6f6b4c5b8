// Package epub reads the documents of an EPUB container in reading order.
package epub

import (
	"archive/zip"
	"fmt"
	"path"
)

// Item is one HTML/XHTML document of the book.
type Item struct {
	ID        string
	Path      string // container path, e.g. OEBPS/chapter1.xhtml
	MediaType string
	InSpine   bool
	Raw       []byte
}

// Metadata holds the Dublin Core fields used in summaries.
type Metadata struct {
	Title    string
	Creator  string
	Language string
}

// Book is a loaded EPUB. Items are in spine order, followed by documents
// the spine does not reference. Item bytes are never modified.
type Book struct {
	Path     string
	Metadata Metadata
	Items    []Item

	zr      *zip.ReadCloser
	index   zipIndex
	opfPath string
}

// Open loads the container at path. Errors that mean the file is not a
// usable EPUB wrap ErrInvalidContainer.
func Open(filePath string) (*Book, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, invalidf("failed to open %s as zip: %v", filePath, err)
	}

	b := &Book{Path: filePath, zr: zr, index: newZipIndex(&zr.Reader)}
	if err := b.load(); err != nil {
		zr.Close()
		return nil, err
	}
	return b, nil
}

func (b *Book) load() error {
	opfPath, err := findPackagePath(b.index, b.Entries())
	if err != nil {
		return err
	}
	f := b.index.find(opfPath)
	if f == nil {
		return invalidf("package document %s not in archive", opfPath)
	}
	b.opfPath = f.Name

	data, err := readEntry(f)
	if err != nil {
		return invalidf("failed to read package document: %v", err)
	}
	pkg, err := parseOPF(data)
	if err != nil {
		return err
	}

	b.Metadata = Metadata{
		Title:    firstNonEmpty(pkg.Metadata.Titles),
		Creator:  firstNonEmpty(pkg.Metadata.Creators),
		Language: firstNonEmpty(pkg.Metadata.Languages),
	}

	byID := make(map[string]opfItem, len(pkg.Manifest))
	for _, it := range pkg.Manifest {
		byID[it.ID] = it
	}

	opfDir := path.Dir(b.opfPath)
	seen := make(map[string]bool)
	for _, ref := range pkg.Spine {
		it, ok := byID[ref.IDRef]
		if !ok || seen[it.ID] || !isDocument(it.MediaType) {
			continue
		}
		item, err := b.readItem(opfDir, it)
		if err != nil {
			return err
		}
		if item == nil {
			continue
		}
		item.InSpine = true
		seen[it.ID] = true
		b.Items = append(b.Items, *item)
	}
	if len(b.Items) == 0 {
		return invalidf("spine references no readable documents")
	}

	for _, it := range pkg.Manifest {
		if seen[it.ID] || !isDocument(it.MediaType) {
			continue
		}
		item, err := b.readItem(opfDir, it)
		if err != nil {
			return err
		}
		if item != nil {
			seen[it.ID] = true
			b.Items = append(b.Items, *item)
		}
	}
	return nil
}

// readItem returns nil for manifest entries whose file is missing.
func (b *Book) readItem(opfDir string, it opfItem) (*Item, error) {
	p := resolveHref(opfDir, it.Href)
	if p == "" {
		return nil, nil
	}
	f := b.index.find(p)
	if f == nil {
		return nil, nil
	}
	data, err := readEntry(f)
	if err != nil {
		return nil, invalidf("failed to read %s: %v", f.Name, err)
	}
	return &Item{
		ID:        it.ID,
		Path:      f.Name,
		MediaType: it.MediaType,
		Raw:       data,
	}, nil
}

// SpineItems returns the documents referenced by the spine, in reading order.
func (b *Book) SpineItems() []Item {
	out := make([]Item, 0, len(b.Items))
	for _, it := range b.Items {
		if it.InSpine {
			out = append(out, it)
		}
	}
	return out
}

// Entries lists every file in the archive in archive order.
func (b *Book) Entries() []string {
	names := make([]string, 0, len(b.zr.File))
	for _, f := range b.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// Files exposes the archive entries for copying.
func (b *Book) Files() []*zip.File {
	return b.zr.File
}

// ReadFile returns the contents of one archive entry.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f := b.index.find(name)
	if f == nil {
		return nil, fmt.Errorf("entry %s not found", name)
	}
	return readEntry(f)
}

// Close releases the archive.
func (b *Book) Close() error {
	if b.zr == nil {
		return nil
	}
	err := b.zr.Close()
	b.zr = nil
	return err
}
