package text

import (
	"bytes"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWrapWidth is used when a WordWrapper's Width isn't positive.
const DefaultWrapWidth = 79

// WordWrapper fills text to a given width.
//
// Words are runs of non-whitespace.  Whitespace between words is
// collapsed to a single space, but newlines in the input are kept, so
// paragraphs (and blank lines between them) survive.  A word wider
// than the available width gets a line to itself; words are never
// split.
//
// Widths are display cells, not bytes or runes, so wide characters
// count double.
type WordWrapper struct {
	// Width is the maximum line width including indentation and
	// prefix.
	Width int

	// Indent is the number of spaces to put at the start of every
	// line.
	Indent int

	// Prefix follows the indentation on every line.
	Prefix string
}

// NewWordWrapper makes a WordWrapper for the given width.
func NewWordWrapper(width int) *WordWrapper {
	return &WordWrapper{
		Width: width,
	}
}

func (ww *WordWrapper) leader() string {
	return strings.Repeat(" ", ww.Indent) + ww.Prefix
}

func (ww *WordWrapper) available() int {
	width := ww.Width
	if width <= 0 {
		width = DefaultWrapWidth
	}
	n := width - ww.Indent - runewidth.StringWidth(ww.Prefix)
	if n < 1 {
		n = 1
	}
	return n
}

// Wrap returns s filled to the WordWrapper's width.
func (ww *WordWrapper) Wrap(s string) string {
	if s == "" {
		return ""
	}

	trailingNewline := strings.HasSuffix(s, "\n")
	if trailingNewline {
		s = s[:len(s)-1]
	}

	var (
		leader = ww.leader()
		avail  = ww.available()
		out    = make([]string, 0, 8)
	)

	for _, line := range strings.Split(s, "\n") {
		out = ww.wrapLine(out, line, leader, avail)
	}

	wrapped := strings.Join(out, "\n")
	if trailingNewline {
		wrapped += "\n"
	}
	return wrapped
}

func (ww *WordWrapper) wrapLine(acc []string, line, leader string, avail int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return append(acc, strings.TrimRight(leader, " "))
	}

	var (
		cur      strings.Builder
		curWidth = 0
	)
	for _, w := range words {
		width := runewidth.StringWidth(w)
		if curWidth > 0 && curWidth+1+width > avail {
			acc = append(acc, leader+cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(w)
		curWidth += width
	}
	return append(acc, leader+cur.String())
}

// WrapWriter is an io.WriteCloser that wraps complete lines as they
// arrive and passes them on.  Close flushes any partial last line but
// does not close the underlying writer.
type WrapWriter struct {
	w   io.Writer
	ww  *WordWrapper
	buf bytes.Buffer
}

// NewWrapWriter makes a WrapWriter.  A nil WordWrapper means default
// settings.
func NewWrapWriter(w io.Writer, ww *WordWrapper) *WrapWriter {
	if ww == nil {
		ww = &WordWrapper{}
	}
	return &WrapWriter{
		w:  w,
		ww: ww,
	}
}

func (w *WrapWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)

	data := w.buf.Bytes()
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		return len(p), nil
	}

	complete := string(data[:last+1])
	if _, err := io.WriteString(w.w, w.ww.Wrap(complete)); err != nil {
		return 0, err
	}
	w.buf.Next(last + 1)
	return len(p), nil
}

// Close writes whatever is left in the buffer.
func (w *WrapWriter) Close() error {
	if w.buf.Len() == 0 {
		return nil
	}
	rest := w.buf.String()
	w.buf.Reset()
	_, err := io.WriteString(w.w, w.ww.Wrap(rest))
	return err
}
