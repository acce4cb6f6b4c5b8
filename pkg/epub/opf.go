package epub

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

const containerPath = "META-INF/container.xml"

type containerDoc struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata struct {
		Titles    []string `xml:"title"`
		Creators  []string `xml:"creator"`
		Languages []string `xml:"language"`
	} `xml:"metadata"`
	Manifest []opfItem `xml:"manifest>item"`
	Spine    []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

func decodeXML(data []byte, v any) error {
	d := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	d.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		// Declared charsets other than UTF-8 are read as-is.
		return input, nil
	}
	return d.Decode(v)
}

// findPackagePath returns the OPF path named by container.xml, falling back
// to the first .opf entry in the archive.
func findPackagePath(idx zipIndex, entries []string) (string, error) {
	if f := idx.find(containerPath); f != nil {
		data, err := readEntry(f)
		if err != nil {
			return "", invalidf("failed to read %s: %v", containerPath, err)
		}
		var c containerDoc
		if err := decodeXML(data, &c); err != nil {
			return "", invalidf("failed to parse %s: %v", containerPath, err)
		}
		for _, rf := range c.Rootfiles {
			if rf.MediaType == "application/oebps-package+xml" && rf.FullPath != "" {
				return rf.FullPath, nil
			}
		}
		if len(c.Rootfiles) > 0 && c.Rootfiles[0].FullPath != "" {
			return c.Rootfiles[0].FullPath, nil
		}
	}
	for _, name := range entries {
		if strings.HasSuffix(strings.ToLower(name), ".opf") {
			return name, nil
		}
	}
	return "", invalidf("no package document found")
}

func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := decodeXML(data, &pkg); err != nil {
		return nil, invalidf("failed to parse package document: %v", err)
	}
	if len(pkg.Manifest) == 0 {
		return nil, invalidf("package document has an empty manifest")
	}
	return &pkg, nil
}

func isDocument(mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "application/xhtml+xml", "text/html", "application/html":
		return true
	}
	return false
}

func firstNonEmpty(vals []string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
