package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<p>Hello <b>&amp; world</b></p><!-- c -->", "Hello &amp; world"},
		{"<!DOCTYPE html><br/>a<br>b", "ab"},
		{"x < y", "x < y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripHTMLTags(tt.in), tt.in)
	}
}

func TestTextFromHTML(t *testing.T) {
	doc := `<html><head><title>T</title><style>p { color: red; }</style></head>
<body>
  <p>Hello&nbsp;&amp;   <b>world</b></p>
  <script>alert("no");</script>
  <div>Caf&eacute;</div>
  <ul><li>one</li><li>two</li></ul>
</body></html>`

	assert.Equal(t, "Hello & world\nCafé\none\ntwo", TextFromHTML(doc))
}

func TestTextFromHTMLUnclosedHead(t *testing.T) {
	assert.Equal(t, "visible", TextFromHTML("<head><title>x</title><body>visible</body>"))
}

func TestTextFromHTMLFragment(t *testing.T) {
	assert.Equal(t, "a b\nc", TextFromHTML("a   b<br>c"))
}
