// Package mail builds MIME email messages and sends them over SMTP.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"
)

var (
	// ErrNoSender is returned when a Message has no From address.
	ErrNoSender = errors.New("message has no sender")

	// ErrNoRecipients is returned when a Message has no To, Cc or
	// Bcc addresses.
	ErrNoRecipients = errors.New("message has no recipients")
)

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type header struct {
	name  string
	value string
}

// Message is an email message.
//
// The body is Text, HTML, or both (in which case the message is
// multipart/alternative).  Attachments make the message
// multipart/mixed.
type Message struct {
	From    *Address
	ReplyTo []*Address
	To      []*Address
	Cc      []*Address

	// Bcc addresses get the message but never appear in it.
	Bcc []*Address

	Subject string

	// Date defaults to the time the message is written.
	Date time.Time

	// MessageID defaults to a random ID in the sender's domain.
	MessageID string

	Text string
	HTML string

	Attachments []*Attachment

	headers []header
}

// NewMessage makes an empty Message.
func NewMessage() *Message {
	return &Message{}
}

// SetFrom parses and sets the sender.
func (m *Message) SetFrom(s string) error {
	a, err := ParseAddress(s)
	if err != nil {
		return err
	}
	m.From = a
	return nil
}

func addAddresses(acc []*Address, ss []string) ([]*Address, error) {
	for _, s := range ss {
		as, err := ParseAddressList(s)
		if err != nil {
			return acc, err
		}
		acc = append(acc, as...)
	}
	return acc, nil
}

// AddTo adds recipients.  Each string can hold a comma-separated
// list.
func (m *Message) AddTo(ss ...string) (err error) {
	m.To, err = addAddresses(m.To, ss)
	return
}

// AddCc adds carbon-copy recipients.
func (m *Message) AddCc(ss ...string) (err error) {
	m.Cc, err = addAddresses(m.Cc, ss)
	return
}

// AddBcc adds blind carbon-copy recipients.
func (m *Message) AddBcc(ss ...string) (err error) {
	m.Bcc, err = addAddresses(m.Bcc, ss)
	return
}

// AddReplyTo adds Reply-To addresses.
func (m *Message) AddReplyTo(ss ...string) (err error) {
	m.ReplyTo, err = addAddresses(m.ReplyTo, ss)
	return
}

// reserved headers are generated from Message fields.
var reserved = map[string]bool{
	"Bcc":                       true,
	"Cc":                        true,
	"Content-Transfer-Encoding": true,
	"Content-Type":              true,
	"Date":                      true,
	"From":                      true,
	"Message-Id":                true,
	"Mime-Version":              true,
	"Reply-To":                  true,
	"Subject":                   true,
	"To":                        true,
}

func canonicalHeader(name string) string {
	parts := strings.Split(strings.ToLower(name), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// SetHeader sets an additional header, replacing any previous value.
// Headers that are generated from the Message's fields can't be set
// this way.
func (m *Message) SetHeader(name, value string) error {
	name = canonicalHeader(name)
	if reserved[name] {
		return fmt.Errorf("header %s is set from the message fields", name)
	}
	if strings.ContainsAny(name+value, "\r\n") {
		return fmt.Errorf("header %s contains a line break", name)
	}
	for i, h := range m.headers {
		if h.name == name {
			m.headers[i].value = value
			return nil
		}
	}
	m.headers = append(m.headers, header{name: name, value: value})
	return nil
}

// Header returns the value of an additional header.
func (m *Message) Header(name string) (string, bool) {
	name = canonicalHeader(name)
	for _, h := range m.headers {
		if h.name == name {
			return h.value, true
		}
	}
	return "", false
}

// SetMarkdown uses md as the text body and its rendering as the HTML
// body.
func (m *Message) SetMarkdown(md string) {
	m.Text = md
	m.HTML = string(blackfriday.Run([]byte(md)))
}

// Attach adds an attachment.  If contentType is empty, it's guessed
// from the filename's extension.
func (m *Message) Attach(filename, contentType string, data []byte) {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m.Attachments = append(m.Attachments, &Attachment{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Data:        data,
	})
}

// AttachFile reads a file and attaches it.
func (m *Message) AttachFile(filename string) error {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	m.Attach(filename, "", bs)
	return nil
}

// Recipients returns the envelope recipients: To, Cc and Bcc, with
// duplicates (ignoring case) removed.
func (m *Message) Recipients() []string {
	var (
		seen = make(map[string]bool)
		acc  = make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	)
	for _, as := range [][]*Address{m.To, m.Cc, m.Bcc} {
		for _, a := range as {
			k := strings.ToLower(a.Email)
			if seen[k] {
				continue
			}
			seen[k] = true
			acc = append(acc, a.Email)
		}
	}
	return acc
}

// Validate checks that the Message can be sent.
func (m *Message) Validate() error {
	if m.From == nil || m.From.Email == "" {
		return ErrNoSender
	}
	if len(m.Recipients()) == 0 {
		return ErrNoRecipients
	}
	return nil
}

// Bytes renders the message.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
