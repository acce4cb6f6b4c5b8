// Package normalizer renders chapter markup as plain text.
package normalizer

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/chapterclip/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Caption: true, atom.Dd: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

var skipTags = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Svg: true, atom.Math: true, atom.Template: true, atom.Title: true,
}

// Text renders markup as plain text. Title options are ignored.
func Text(markup []byte, opts models.FormattingOptions) string {
	return render(collect(markup), opts)
}

// Chapter renders a chapter body, prefixing title as its own paragraph when
// IncludeChapterTitles is set. With FixTitleDuplication the body's first
// line is dropped when it repeats the title.
func Chapter(title string, markup []byte, opts models.FormattingOptions) string {
	paras := collect(markup)
	title = collapse(title)
	if opts.IncludeChapterTitles && title != "" {
		if opts.FixTitleDuplication {
			paras = dropDuplicateTitle(paras, title)
		}
		paras = append([][]string{{title}}, paras...)
	}
	return render(paras, opts)
}

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// collector splits a document into paragraphs of raw lines. A paragraph ends
// at a block element or at a blank line inside text. <br> ends a line.
type collector struct {
	paras [][]string
	lines []string
	cur   strings.Builder
	// the current line was opened by a newline in text, not by <br> or a block
	textLine bool
}

var selfClosingRaw = regexp.MustCompile(`(?i)<(title|script|style|textarea|iframe|noscript|noembed|noframes|xmp)(\s[^<>]*?)?\s*/>`)

// ExpandSelfClosing rewrites XHTML's empty <title/>, <script src=".."/> and
// the like into an open and close pair. The HTML parser reads those tags as
// the start of raw text and would swallow the rest of the document.
func ExpandSelfClosing(markup []byte) []byte {
	if !bytes.Contains(markup, []byte("/>")) {
		return markup
	}
	return selfClosingRaw.ReplaceAll(markup, []byte("<$1$2></$1>"))
}

func collect(markup []byte) [][]string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ExpandSelfClosing(markup)))
	if err != nil {
		// html.Parse only fails on reader errors.
		return [][]string{strings.Split(string(markup), "\n")}
	}
	c := &collector{}
	for _, n := range doc.Selection.Nodes {
		c.walk(n)
	}
	c.endParagraph()
	return c.paras
}

func (c *collector) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.text(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			c.endLine()
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.DataAtom]
	if block {
		c.endParagraph()
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
	if block {
		c.endParagraph()
	}
}

func (c *collector) text(s string) {
	segments := strings.Split(s, "\n")
	c.cur.WriteString(segments[0])
	for _, seg := range segments[1:] {
		blank := strings.TrimSpace(c.cur.String()) == ""
		switch {
		case blank && c.textLine:
			c.endParagraph()
		case blank:
			// newline right after <br> or a block start
			c.cur.Reset()
		default:
			c.endLine()
		}
		c.textLine = true
		c.cur.WriteString(seg)
	}
}

func (c *collector) endLine() {
	c.lines = append(c.lines, c.cur.String())
	c.cur.Reset()
	c.textLine = false
}

func (c *collector) endParagraph() {
	if c.cur.Len() > 0 {
		c.lines = append(c.lines, c.cur.String())
		c.cur.Reset()
	}
	if len(c.lines) > 0 {
		c.paras = append(c.paras, c.lines)
		c.lines = nil
	}
	c.textLine = false
}

func render(paras [][]string, opts models.FormattingOptions) string {
	keepEmpty := opts.PreserveParagraphBreaks && !opts.RemoveEmptyLines && !opts.RemoveLineBreaks
	lineSep := "\n"
	if opts.RemoveLineBreaks {
		lineSep = " "
	}
	paraSep := " "
	if opts.PreserveParagraphBreaks {
		paraSep = "\n\n"
	}

	out := make([]string, 0, len(paras))
	for _, raw := range paras {
		lines := cleanLines(raw, keepEmpty)
		if len(lines) == 0 {
			continue
		}
		out = append(out, strings.Join(lines, lineSep))
	}
	return strings.TrimSpace(strings.Join(out, paraSep))
}

// cleanLines collapses whitespace, trims each line, drops empty lines at the
// edges and collapses inner runs of empty lines to one (or none).
func cleanLines(raw []string, keepEmpty bool) []string {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = collapse(l)
		if l == "" {
			if !keepEmpty || len(lines) == 0 || lines[len(lines)-1] == "" {
				continue
			}
		}
		lines = append(lines, l)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// collapse folds whitespace runs to one space and trims.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func dropDuplicateTitle(paras [][]string, title string) [][]string {
	for i, p := range paras {
		lines := cleanLines(p, false)
		if len(lines) == 0 {
			continue
		}
		if !SameTitle(lines[0], title) {
			return paras
		}
		rest := lines[1:]
		out := make([][]string, 0, len(paras))
		out = append(out, paras[:i]...)
		if len(rest) > 0 {
			out = append(out, rest)
		}
		return append(out, paras[i+1:]...)
	}
	return paras
}

var (
	chapterPrefix = regexp.MustCompile(`(?i)^chapter\s*`)
	numberColon   = regexp.MustCompile(`^\d+[:.]\s*`)
	numberPrefix  = regexp.MustCompile(`^\d+\s*`)
)

// DedupKey strips "Chapter", "N:", "N." and "N" prefixes so
// "Chapter 3: Home" and "Home" compare equal.
func DedupKey(s string) string {
	s = strings.ToLower(collapse(norm.NFC.String(s)))
	s = chapterPrefix.ReplaceAllString(s, "")
	s = numberColon.ReplaceAllString(s, "")
	s = numberPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SameTitle reports whether line repeats title.
func SameTitle(line, title string) bool {
	a, b := collapse(norm.NFC.String(line)), collapse(norm.NFC.String(title))
	if strings.EqualFold(a, b) {
		return true
	}
	ka, kb := DedupKey(a), DedupKey(b)
	return ka != "" && ka == kb
}
