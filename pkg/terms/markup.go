package terms

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidEncoding marks a payload that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("payload is not valid UTF-8")

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ApplyMarkup runs the rules over the text of an HTML or XHTML document.
// Tags, attributes, comments and script/style bodies are copied unchanged,
// and text a rule did not touch keeps its original bytes. A rule cannot
// match across a tag boundary.
func (e *Engine) ApplyMarkup(markup []byte) ([]byte, Counts, error) {
	if !utf8.Valid(markup) {
		return nil, nil, ErrInvalidEncoding
	}

	z := html.NewTokenizer(bytes.NewReader(markup))
	var out bytes.Buffer
	out.Grow(len(markup))
	counts := Counts{}
	rawDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, nil, fmt.Errorf("failed to tokenize markup: %w", err)
			}
			return out.Bytes(), counts, nil

		case html.TextToken:
			raw := z.Raw()
			if rawDepth > 0 {
				out.Write(raw)
				continue
			}
			text, c := e.Apply(html.UnescapeString(string(raw)))
			if len(c) == 0 {
				out.Write(raw)
				continue
			}
			out.WriteString(textEscaper.Replace(text))
			for k, v := range c {
				counts[k] += v
			}

		case html.StartTagToken:
			out.Write(z.Raw())
			if isRawText(z) {
				rawDepth++
			}

		case html.SelfClosingTagToken:
			// <title/> and <script/> are empty in XHTML; the tokenizer
			// would otherwise read the rest of the document as raw text.
			z.NextIsNotRawText()
			out.Write(z.Raw())

		case html.EndTagToken:
			out.Write(z.Raw())
			if isRawText(z) && rawDepth > 0 {
				rawDepth--
			}

		default:
			out.Write(z.Raw())
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	a := atom.Lookup(name)
	return a == atom.Script || a == atom.Style
}
