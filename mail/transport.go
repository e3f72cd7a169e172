package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bmc/javautil-sub002/logging"

	gomail "github.com/wneessen/go-mail"
)

var log = logging.New("mail")

const (
	DefaultPort    = 25
	DefaultTimeout = 30 * time.Second
)

// Transport delivers messages.
type Transport interface {
	Send(ctx context.Context, m *Message) error
}

// SMTPError wraps a failure in one step of an SMTP exchange.
type SMTPError struct {
	Op  string
	Err error
}

func (e *SMTPError) Error() string {
	return "smtp " + e.Op + ": " + e.Err.Error()
}

func (e *SMTPError) Unwrap() error {
	return e.Err
}

// SMTPTransport sends messages to an SMTP server.
//
// STARTTLS is used when the server offers it unless DisableTLS is
// set.  If Username is set, PLAIN authentication is required, and a
// server that doesn't offer AUTH gets nothing.
type SMTPTransport struct {
	Host      string
	Port      int
	Username  string
	Password  string
	LocalName string

	DisableTLS bool
	TLSConfig  *tls.Config

	// Timeout bounds the whole exchange when the context has no
	// earlier deadline.
	Timeout time.Duration
}

func (t *SMTPTransport) port() int {
	if t.Port == 0 {
		return DefaultPort
	}
	return t.Port
}

func (t *SMTPTransport) addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.port()))
}

// client makes a go-mail client whose connection is closed as soon as
// ctx is done.  Call the returned stop function when finished.
func (t *SMTPTransport) client(ctx context.Context, timeout time.Duration) (*gomail.Client, func(), error) {
	var (
		mu    sync.Mutex
		stops []func() bool
	)
	dial := func(dctx context.Context, network, addr string) (net.Conn, error) {
		log.Debug("dialing", "addr", addr)
		var d net.Dialer
		conn, err := d.DialContext(dctx, network, addr)
		if err != nil {
			return nil, err
		}
		if dl, ok := ctx.Deadline(); ok {
			conn.SetDeadline(dl)
		}
		mu.Lock()
		stops = append(stops, context.AfterFunc(ctx, func() {
			conn.Close()
		}))
		mu.Unlock()
		return conn, nil
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		for _, f := range stops {
			f()
		}
	}

	opts := []gomail.Option{
		gomail.WithPort(t.port()),
		gomail.WithTimeout(timeout),
		gomail.WithDialContextFunc(dial),
	}
	if t.DisableTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
		if t.TLSConfig != nil {
			opts = append(opts, gomail.WithTLSConfig(t.TLSConfig))
		}
	}
	if t.LocalName != "" {
		opts = append(opts, gomail.WithHELO(t.LocalName))
	}
	if t.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.Username),
			gomail.WithPassword(t.Password))
	}

	c, err := gomail.NewClient(t.Host, opts...)
	if err != nil {
		return nil, nil, err
	}
	return c, stop, nil
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, m *Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	g, err := m.render()
	if err != nil {
		return err
	}

	timeout := t.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, stop, err := t.client(ctx, timeout)
	if err != nil {
		return &SMTPError{Op: "client", Err: err}
	}
	defer stop()

	log.Debug("sending", "addr", t.addr())
	if err = c.DialAndSendWithContext(ctx, g); err != nil {
		switch {
		case ctx.Err() != nil:
			return &SMTPError{Op: "send", Err: ctx.Err()}
		case errors.Is(err, gomail.ErrNoAuth):
			return &SMTPError{Op: "auth", Err: err}
		}
		return &SMTPError{Op: "send", Err: err}
	}
	log.Debug("sent", "to", m.Recipients())
	return nil
}
