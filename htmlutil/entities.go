// Package htmlutil converts between characters and HTML character
// entities, and pulls text out of HTML.
//
// The entity table (HTML 4 plus &apos;) lives in entities.yaml, which
// is embedded and parsed the first time it's needed.
package htmlutil

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v2"
)

//go:embed entities.yaml
var entitiesYAML []byte

type entityTable struct {
	Entities map[string]int `yaml:"entities"`
}

var (
	loadOnce sync.Once

	// byName maps an entity name (without '&' and ';') to its
	// character.
	byName map[string]rune

	// byRune is the inverse of byName.
	byRune map[rune]string
)

func parseEntities(src []byte) (map[string]rune, map[rune]string, error) {
	var t entityTable
	if err := yaml.Unmarshal(src, &t); err != nil {
		return nil, nil, err
	}
	names := make(map[string]rune, len(t.Entities))
	runes := make(map[rune]string, len(t.Entities))
	for name, cp := range t.Entities {
		r := rune(cp)
		if !utf8.ValidRune(r) {
			return nil, nil, fmt.Errorf("entity %q has bad code point %d", name, cp)
		}
		if other, have := runes[r]; have {
			return nil, nil, fmt.Errorf("entities %q and %q share code point %d", name, other, cp)
		}
		names[name] = r
		runes[r] = name
	}
	return names, runes, nil
}

func entities() (map[string]rune, map[rune]string) {
	loadOnce.Do(func() {
		var err error
		if byName, byRune, err = parseEntities(entitiesYAML); err != nil {
			// The table is compiled in, so this is a
			// programming error.
			panic("htmlutil: bad entity table: " + err.Error())
		}
	})
	return byName, byRune
}

// RuneForEntity returns the character for the named entity.  The
// name is case-sensitive and doesn't include the '&' or ';'.
func RuneForEntity(name string) (rune, bool) {
	names, _ := entities()
	r, have := names[name]
	return r, have
}

// EntityForRune returns the entity name for r, if there is one.
func EntityForRune(r rune) (string, bool) {
	_, runes := entities()
	name, have := runes[r]
	return name, have
}

// maxEntityLen bounds how far we look for the ';' that ends a
// reference.  The longest name in the table is "thetasym", and a
// numeric reference can't usefully be longer than "#x10FFFF".
const maxEntityLen = 10

// decodeReference interprets ref, which is the text between '&' and
// ';'.
func decodeReference(ref string) (rune, bool) {
	if strings.HasPrefix(ref, "#") {
		var (
			n   uint64
			err error
		)
		switch {
		case len(ref) > 2 && (ref[1] == 'x' || ref[1] == 'X'):
			n, err = strconv.ParseUint(ref[2:], 16, 32)
		case len(ref) > 1:
			n, err = strconv.ParseUint(ref[1:], 10, 32)
		default:
			return 0, false
		}
		if err != nil || n == 0 {
			return 0, false
		}
		r := rune(n)
		if !utf8.ValidRune(r) {
			return 0, false
		}
		return r, true
	}
	return RuneForEntity(ref)
}

// ConvertCharacterEntities replaces entity references (&name;,
// &#NNN; and &#xHHHH;) with the characters they represent.
//
// References that aren't recognized, or that aren't terminated with a
// ';', are left alone.
func ConvertCharacterEntities(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}

		limit := i + 1 + maxEntityLen
		if limit > len(s) {
			limit = len(s)
		}
		end := strings.IndexByte(s[i+1:limit], ';')
		if end <= 0 {
			b.WriteByte('&')
			i++
			continue
		}

		ref := s[i+1 : i+1+end]
		r, ok := decodeReference(ref)
		if !ok {
			b.WriteByte('&')
			i++
			continue
		}
		b.WriteRune(r)
		i += end + 2
	}

	return b.String()
}

// MakeCharacterEntities is the inverse of ConvertCharacterEntities.
//
// Markup characters (& < > ") and every non-ASCII character are
// replaced with a named entity when the table has one, or a decimal
// numeric reference when it doesn't.
func MakeCharacterEntities(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '&', r == '<', r == '>', r == '"', r > 127:
			if name, have := EntityForRune(r); have {
				b.WriteByte('&')
				b.WriteString(name)
				b.WriteByte(';')
			} else {
				b.WriteString("&#")
				b.WriteString(strconv.Itoa(int(r)))
				b.WriteByte(';')
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes only the characters that are significant in
// markup: & < > and ".
func EscapeHTML(s string) string {
	return escaper.Replace(s)
}
