// Command emailtool builds an email message and sends it over SMTP.
//
// The SMTP server comes from a YAML configuration file (-C) and the
// SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASSWORD environment
// variables.  With -n, the message is written to standard output
// instead of being sent.
package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/mail"
)

var log = logging.New("emailtool")

type emailtool struct {
	in  io.Reader
	out io.Writer

	msg *mail.Message

	from        string
	config      string
	markdown    string
	html        string
	attachments []string
	dryRun      bool
	bodyFile    string

	// transport, if not nil, is used instead of the configured
	// SMTP server.
	transport mail.Transport
}

func newEmailtool() *emailtool {
	return &emailtool{
		in:  os.Stdin,
		out: os.Stdout,
		msg: mail.NewMessage(),
	}
}

func (e *emailtool) UsageInfo() *cmdline.UsageInfo {
	u := cmdline.NewUsageInfo()
	u.Prologue = "Send an email message. The text body is read from the file or from standard input unless -m or -H is given."
	u.AddOption('f', "from", "address", "Sender. Defaults to the configured sender.").
		AddOption('t', "to", "addresses", "Recipients. Can be repeated.").
		AddOption('c', "cc", "addresses", "Carbon-copy recipients. Can be repeated.").
		AddOption('b', "bcc", "addresses", "Blind carbon-copy recipients. Can be repeated.").
		AddOption('r', "reply-to", "address", "Reply-To address.").
		AddOption('s', "subject", "subject", "Subject.").
		AddOption('a', "attach", "file", "Attach a file. Can be repeated.").
		AddOption('m', "markdown", "file", "Markdown body; sent as text and HTML.").
		AddOption('H', "html", "file", "HTML body.").
		AddOption('X', "header", "name:value", "Add a header. Can be repeated.").
		AddOption('C', "config", "file", "SMTP configuration (YAML).").
		AddOption('n', "dry-run", "", "Write the message to standard output instead of sending it.")
	u.AddParameter("file", "Text body.", false)
	u.Epilogue = "Addresses can be lists separated by commas."
	return u
}

func (e *emailtool) ParseOption(short rune, long string, it *cmdline.ArgIterator) error {
	if short == 'n' {
		e.dryRun = true
		return nil
	}

	s, err := it.NextArg("-" + string(short))
	if err != nil {
		return err
	}

	switch short {
	case 'f':
		e.from = s
	case 't':
		err = e.msg.AddTo(s)
	case 'c':
		err = e.msg.AddCc(s)
	case 'b':
		err = e.msg.AddBcc(s)
	case 'r':
		err = e.msg.AddReplyTo(s)
	case 's':
		e.msg.Subject = s
	case 'a':
		e.attachments = append(e.attachments, s)
	case 'm':
		e.markdown = s
	case 'H':
		e.html = s
	case 'X':
		i := strings.IndexByte(s, ':')
		if i <= 0 {
			return cmdline.Usagef("bad header %q (want name:value)", s)
		}
		err = e.msg.SetHeader(s[:i], strings.TrimSpace(s[i+1:]))
	case 'C':
		e.config = s
	}
	if err != nil {
		return cmdline.Usagef("%s", err)
	}
	return nil
}

func (e *emailtool) ParsePostOptions(it *cmdline.ArgIterator) error {
	if s, have := it.Next(); have {
		e.bodyFile = s
	}
	if e.markdown != "" && e.html != "" {
		return cmdline.Usagef("-m and -H can't be used together")
	}
	return nil
}

func readFile(filename string) (string, error) {
	bs, err := os.ReadFile(filename)
	return string(bs), err
}

func (e *emailtool) body() error {
	m := e.msg
	switch {
	case e.markdown != "":
		md, err := readFile(e.markdown)
		if err != nil {
			return err
		}
		m.SetMarkdown(md)
	case e.html != "":
		html, err := readFile(e.html)
		if err != nil {
			return err
		}
		m.HTML = html
	}

	switch {
	case e.bodyFile != "":
		s, err := readFile(e.bodyFile)
		if err != nil {
			return err
		}
		m.Text = s
	case m.Text == "" && m.HTML == "":
		bs, err := io.ReadAll(e.in)
		if err != nil {
			return err
		}
		m.Text = string(bs)
	}

	for _, filename := range e.attachments {
		if err := m.AttachFile(filename); err != nil {
			return err
		}
	}
	return nil
}

func (e *emailtool) Run(ctx context.Context) error {
	var (
		cfg *mail.Config
		err error
	)
	if e.config != "" || !e.dryRun {
		if cfg, err = mail.LoadConfig(e.config); err != nil {
			return err
		}
	}

	from := e.from
	if from == "" && cfg != nil {
		from = cfg.From
	}
	if from == "" {
		return cmdline.Usagef("no sender")
	}
	if err = e.msg.SetFrom(from); err != nil {
		return cmdline.Usagef("%s", err)
	}

	if err = e.body(); err != nil {
		return err
	}
	if err = e.msg.Validate(); err != nil {
		return cmdline.Usagef("%s", err)
	}

	if e.dryRun {
		_, err = e.msg.WriteTo(e.out)
		return err
	}

	t := e.transport
	if t == nil {
		if t, err = cfg.Transport(); err != nil {
			return err
		}
	}
	log.Info("sending", "to", e.msg.Recipients(), "subject", e.msg.Subject)
	return t.Send(ctx, e.msg)
}

func main() {
	cmdline.Main("emailtool", newEmailtool())
}
