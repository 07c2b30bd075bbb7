package email

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when the relay has no credentials to send with.
var ErrNotConfigured = errors.New("smtp password is not set")

// Message is one outgoing email with an HTML body and a plain-text alternative.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(msg Message) error
}

// StdoutSender logs messages instead of delivering them.
type StdoutSender struct {
	Logger zerolog.Logger
}

func (s StdoutSender) Send(msg Message) error {
	s.Logger.Info().
		Str("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Msg(msg.Text)
	return nil
}

type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	// Secure dials implicit TLS (port 465); otherwise STARTTLS is used when offered.
	Secure  bool
	Timeout time.Duration
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 1025
	}
	if from == "" {
		from = user
	}
	if from == "" {
		from = "no-reply@portfolio.local"
	}
	return &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		FromName: "Portfolio Contact Form",
		Timeout:  15 * time.Second,
	}
}

func (s *SMTPSender) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *SMTPSender) Send(msg Message) error {
	if s.Password == "" {
		return ErrNotConfigured
	}
	if msg.To == "" {
		return errors.New("recipient is required")
	}
	body, err := s.compose(msg)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	c, err := s.dial()
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.Addr(), err)
	}
	defer func() { _ = c.Close() }()

	if !s.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if ok, _ := c.Extension("AUTH"); ok {
		if err := c.Auth(smtp.PlainAuth("", s.User, s.Password, s.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(s.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return c.Quit()
}

func (s *SMTPSender) dial() (*smtp.Client, error) {
	d := &net.Dialer{Timeout: s.Timeout}
	if s.Secure {
		conn, err := tls.DialWithDialer(d, "tcp", s.Addr(), &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, s.Host)
	}
	conn, err := d.Dial("tcp", s.Addr())
	if err != nil {
		return nil, err
	}
	return smtp.NewClient(conn, s.Host)
}

// compose renders a multipart/alternative message.
func (s *SMTPSender) compose(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	from := mail.Address{Name: s.FromName, Address: s.From}
	headers := []struct{ k, v string }{
		{"From", from.String()},
		{"To", headerText(msg.To)},
		{"Subject", mimeHeader(msg.Subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.Host)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	if msg.ReplyTo != "" {
		headers = append(headers, struct{ k, v string }{"Reply-To", headerText(msg.ReplyTo)})
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.k, h.v)
	}
	buf.WriteString("\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		if part.body == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// headerText folds CR and LF into spaces so a value cannot start a new header line.
func headerText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
}

func mimeHeader(s string) string {
	s = headerText(s)
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", s)
		}
	}
	return s
}
