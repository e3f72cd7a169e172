package htmlutil

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StripHTMLTags removes tags, comments and doctypes from s and keeps
// everything else exactly as written.  Entity references are not
// converted; see TextFromHTML for that.
func StripHTMLTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// z.Err() is io.EOF at the end of a string.
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// skipped elements contribute nothing to TextFromHTML.
var skipped = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
}

// blocks are elements that should start on a new line.
var blocks = map[string]bool{
	"address":    true,
	"article":    true,
	"blockquote": true,
	"br":         true,
	"dd":         true,
	"div":        true,
	"dl":         true,
	"dt":         true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"hr":         true,
	"li":         true,
	"ol":         true,
	"p":          true,
	"pre":        true,
	"section":    true,
	"table":      true,
	"td":         true,
	"th":         true,
	"tr":         true,
	"ul":         true,
}

// TextFromHTML returns a readable plain-text rendition of an HTML
// document or fragment.
//
// The contents of head, script, style, noscript and svg elements are
// dropped.  Block-level elements start new lines.  Entities are
// converted, runs of white space are collapsed to a single space,
// and blank lines are removed.
func TextFromHTML(s string) string {
	return TextFromReader(strings.NewReader(s))
}

// TextFromReader is TextFromHTML for an io.Reader.
func TextFromReader(r io.Reader) string {
	var (
		b    strings.Builder
		skip = 0
		z    = html.NewTokenizer(r)
	)

LOOP:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			break LOOP
		case html.TextToken:
			if skip == 0 {
				b.WriteString(ConvertCharacterEntities(string(z.Raw())))
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "body" {
				// A missing </head> shouldn't hide the
				// whole document.
				skip = 0
			}
			if skipped[tag] && tt != html.SelfClosingTagToken {
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
				continue
			}
			if blocks[tag] {
				b.WriteByte('\n')
			}
		}
	}

	lines := strings.Split(b.String(), "\n")
	acc := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			acc = append(acc, line)
		}
	}
	return strings.Join(acc, "\n")
}
