// Package epubtest builds small EPUB files for tests.
package epubtest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Doc is one XHTML document placed under OEBPS/.
type Doc struct {
	ID      string
	Href    string // relative to OEBPS/
	Body    string // inner <body> markup
	NoSpine bool
}

// Entry is a raw archive entry written after the generated files.
type Entry struct {
	Name string
	Data []byte
}

// Write creates an EPUB at dir/name and returns its path.
func Write(t testing.TB, dir, name string, docs []Doc, extra ...Entry) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create %s: %v", p, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("failed to write mimetype: %v", err)
	}
	mt.Write([]byte("application/epub+zip"))

	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write entry %s: %v", name, err)
		}
	}

	add("META-INF/container.xml", []byte(Container("OEBPS/content.opf")))
	add("OEBPS/content.opf", []byte(Package(docs)))
	for _, d := range docs {
		add("OEBPS/"+d.Href, []byte(XHTML(d.Body)))
	}
	for _, e := range extra {
		add(e.Name, e.Data)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return p
}

// Container renders META-INF/container.xml.
func Container(opfPath string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="` + opfPath + `" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
}

// Package renders an OPF document listing docs in order.
func Package(docs []Doc) string {
	var manifest, spine strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&manifest, `    <item id="%s" href="%s" media-type="application/xhtml+xml"/>`+"\n", d.ID, d.Href)
		if !d.NoSpine {
			fmt.Fprintf(&spine, `    <itemref idref="%s"/>`+"\n", d.ID)
		}
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
` + manifest.String() + `    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
` + spine.String() + `  </spine>
</package>`
}

// XHTML wraps body markup in a minimal XHTML document.
func XHTML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>ignored head title</title><style>p { margin: 0; }</style></head>
<body>` + body + `</body>
</html>`
}

// Words returns a paragraph of n filler words.
func Words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("word%d", i)
	}
	return "<p>" + strings.Join(w, " ") + "</p>"
}
