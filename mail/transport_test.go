package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Hello string
	Auth  string
	From  string
	To    []string
	Data  string
}

// fakeSMTP accepts one connection on 127.0.0.1 and records the
// exchange.  Extensions are advertised in the EHLO response.
func fakeSMTP(t *testing.T, exts ...string) (host string, port int, got <-chan *envelope) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	c := make(chan *envelope, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var (
			tp  = textproto.NewConn(conn)
			env = &envelope{}
		)
		defer func() { c <- env }()

		tp.PrintfLine("220 localhost fake ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				env.Hello = strings.TrimSpace(line[4:])
				if len(exts) == 0 {
					tp.PrintfLine("250 localhost")
					continue
				}
				tp.PrintfLine("250-localhost")
				for i, ext := range exts {
					if i == len(exts)-1 {
						tp.PrintfLine("250 %s", ext)
					} else {
						tp.PrintfLine("250-%s", ext)
					}
				}
			case strings.HasPrefix(cmd, "AUTH PLAIN "):
				env.Auth = line[len("AUTH PLAIN "):]
				tp.PrintfLine("235 ok")
			case strings.HasPrefix(cmd, "MAIL FROM:"):
				env.From = strings.Trim(line[len("MAIL FROM:"):], "<>")
				tp.PrintfLine("250 ok")
			case strings.HasPrefix(cmd, "RCPT TO:"):
				env.To = append(env.To, strings.Trim(line[len("RCPT TO:"):], "<>"))
				tp.PrintfLine("250 ok")
			case cmd == "DATA":
				tp.PrintfLine("354 go ahead")
				bs, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				env.Data = string(bs)
				tp.PrintfLine("250 queued")
			case cmd == "NOOP", cmd == "RSET":
				tp.PrintfLine("250 ok")
			case cmd == "QUIT":
				tp.PrintfLine("221 bye")
				return
			default:
				tp.PrintfLine("502 not implemented")
			}
		}
	}()

	a := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", a.Port, c
}

func receive(t *testing.T, c <-chan *envelope) *envelope {
	select {
	case env := <-c:
		return env
	case <-time.After(5 * time.Second):
		t.Fatal("fake SMTP server timed out")
	}
	return nil
}

func TestSMTPSend(t *testing.T) {
	host, port, got := fakeSMTP(t)

	m := newTestMessage(t)
	m.Text = "Mmm, donuts."

	tr := &SMTPTransport{
		Host:      host,
		Port:      port,
		LocalName: "springfield.example.com",
		Timeout:   5 * time.Second,
	}
	require.NoError(t, tr.Send(context.Background(), m))

	env := receive(t, got)
	assert.Equal(t, "springfield.example.com", env.Hello)
	assert.Empty(t, env.Auth)
	assert.Equal(t, "homer@example.com", env.From)
	assert.Equal(t, []string{
		"marge@example.com",
		"bart@example.com",
		"lisa@example.com",
		"maggie@example.com",
	}, env.To)
	assert.Contains(t, env.Data, "Subject: Donuts\n")
	assert.NotContains(t, env.Data, "Bcc:")
	assert.Contains(t, env.Data, "Mmm, donuts.")
	assert.NotContains(t, env.Data, "maggie")
}

func TestSMTPAuth(t *testing.T) {
	host, port, got := fakeSMTP(t, "AUTH PLAIN")

	m := newTestMessage(t)
	m.Text = "hi"

	tr := &SMTPTransport{
		Host:     host,
		Port:     port,
		Username: "homer",
		Password: "donuts",
	}
	require.NoError(t, tr.Send(context.Background(), m))

	env := receive(t, got)
	bs, err := base64.StdEncoding.DecodeString(env.Auth)
	require.NoError(t, err)
	assert.Equal(t, "\x00homer\x00donuts", string(bs))
}

func TestSMTPAuthUnsupported(t *testing.T) {
	host, port, _ := fakeSMTP(t)

	m := newTestMessage(t)
	m.Text = "hi"

	tr := &SMTPTransport{
		Host:     host,
		Port:     port,
		Username: "homer",
		Password: "donuts",
	}
	err := tr.Send(context.Background(), m)
	var se *SMTPError
	require.True(t, errors.As(err, &se), "%v", err)
	assert.Equal(t, "auth", se.Op)
}

func TestSMTPDuplicateRecipients(t *testing.T) {
	host, port, got := fakeSMTP(t)

	m := newTestMessage(t)
	m.Text = "hi"
	require.NoError(t, m.AddCc("MARGE@example.com"))
	require.NoError(t, m.AddBcc("bart@example.com"))

	tr := &SMTPTransport{Host: host, Port: port}
	require.NoError(t, tr.Send(context.Background(), m))

	env := receive(t, got)
	assert.Equal(t, m.Recipients(), env.To)
}

func TestSMTPInvalidMessage(t *testing.T) {
	tr := &SMTPTransport{Host: "127.0.0.1", Port: 1}
	assert.Equal(t, ErrNoSender, tr.Send(context.Background(), NewMessage()))
}

func TestSMTPContextDeadline(t *testing.T) {
	// A server that never says hello.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			time.Sleep(2 * time.Second)
			conn.Close()
		}
	}()

	m := newTestMessage(t)
	m.Text = "hi"

	tr := &SMTPTransport{
		Host: "127.0.0.1",
		Port: ln.Addr().(*net.TCPAddr).Port,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	then := time.Now()
	err = tr.Send(ctx, m)
	var se *SMTPError
	require.True(t, errors.As(err, &se), "%v", err)
	assert.Less(t, time.Since(then), time.Second)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "mail.example.com:"+strconv.Itoa(DefaultPort), (&SMTPTransport{Host: "mail.example.com"}).addr())
	assert.Equal(t, "mail.example.com:587", (&SMTPTransport{Host: "mail.example.com", Port: 587}).addr())
}
