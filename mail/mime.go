package mail

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// NewMessageID makes a Message-ID in the given domain.
func NewMessageID(domain string) string {
	if domain == "" {
		domain = "localhost"
	}
	return "<" + uuid.New().String() + "@" + domain + ">"
}

// envelope splits the addresses into To, Cc and Bcc lists with each
// address (ignoring case) in only the first list that has it.
func (m *Message) envelope() (to, cc, bcc []string) {
	seen := make(map[string]bool)
	add := func(acc []string, as []*Address) []string {
		for _, a := range as {
			k := strings.ToLower(a.Email)
			if seen[k] {
				continue
			}
			seen[k] = true
			acc = append(acc, a.String())
		}
		return acc
	}
	to = add(nil, m.To)
	cc = add(nil, m.Cc)
	bcc = add(nil, m.Bcc)
	return
}

// render builds the go-mail message that both WriteTo and
// SMTPTransport use.
func (m *Message) render() (*gomail.Msg, error) {
	g := gomail.NewMsg(gomail.WithNoDefaultUserAgent())

	domain := ""
	if m.From != nil {
		if err := g.From(m.From.String()); err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		domain = m.From.Domain()
	}

	to, cc, bcc := m.envelope()
	if 0 < len(to) {
		if err := g.To(to...); err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
	}
	if 0 < len(cc) {
		if err := g.Cc(cc...); err != nil {
			return nil, fmt.Errorf("cc: %w", err)
		}
	}
	if 0 < len(bcc) {
		if err := g.Bcc(bcc...); err != nil {
			return nil, fmt.Errorf("bcc: %w", err)
		}
	}
	if 0 < len(m.ReplyTo) {
		g.SetGenHeader(gomail.HeaderReplyTo, joinAddresses(m.ReplyTo))
	}

	g.Subject(m.Subject)

	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	g.SetDateWithValue(date)

	id := m.MessageID
	if id == "" {
		id = NewMessageID(domain)
	}
	g.SetMessageIDWithValue(strings.Trim(id, "<>"))

	for _, h := range m.headers {
		g.SetGenHeader(gomail.Header(h.name), h.value)
	}

	switch {
	case m.Text != "" && m.HTML != "":
		g.SetBodyString(gomail.TypeTextPlain, m.Text)
		g.AddAlternativeString(gomail.TypeTextHTML, m.HTML)
	case m.HTML != "":
		g.SetBodyString(gomail.TypeTextHTML, m.HTML)
	default:
		g.SetBodyString(gomail.TypeTextPlain, m.Text)
	}

	for _, a := range m.Attachments {
		err := g.AttachReader(a.Filename, bytes.NewReader(a.Data),
			gomail.WithFileContentType(gomail.ContentType(a.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
	}

	return g, nil
}

// WriteTo writes the message in RFC 5322 form with MIME bodies.
//
// Bcc recipients are never written.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	g, err := m.render()
	if err != nil {
		return 0, err
	}
	return g.WriteTo(w)
}
