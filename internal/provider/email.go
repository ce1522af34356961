package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// EmailAdapter delivers via SMTP. Port 465 uses implicit TLS; other ports
// upgrade with STARTTLS when the server offers it. Every submission failure
// is retryable — transient SMTP trouble (greylisting, connection resets)
// is indistinguishable from the wire.
type EmailAdapter struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
}

// NewEmailAdapter returns domain.ErrChannelDisabled when the SMTP host or
// sender address is not configured; the caller is expected to degrade the
// email channel rather than abort startup.
func NewEmailAdapter(host, port, username, password, from string, timeout time.Duration) (*EmailAdapter, error) {
	if host == "" || from == "" {
		return nil, fmt.Errorf("smtp host and sender address required: %w", domain.ErrChannelDisabled)
	}
	if port == "" {
		port = "587"
	}
	return &EmailAdapter{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
	}, nil
}

func (a *EmailAdapter) Channel() domain.Channel { return domain.ChannelEmail }

func (a *EmailAdapter) Send(ctx context.Context, d *domain.DeliveryRecord) (*SendResult, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), a.host)
	msg, err := a.buildMessage(d, messageID)
	if err != nil {
		return nil, &ProviderError{Message: "build mime message", Retryable: false, Cause: err}
	}

	if err := a.submit(ctx, d.Recipient, msg); err != nil {
		return nil, &ProviderError{Message: "smtp submission failed", Retryable: true, Cause: err}
	}
	return &SendResult{MessageID: messageID}, nil
}

// buildMessage assembles the MIME envelope: plain text only, or a
// multipart/alternative body when an HTML variant exists.
func (a *EmailAdapter) buildMessage(d *domain.DeliveryRecord, messageID string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", a.from)
	fmt.Fprintf(&buf, "To: %s\r\n", d.Recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", d.Subject)
	fmt.Fprintf(&buf, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if d.HTMLBody == "" {
		buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		buf.WriteString(d.Content)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	// plain part first: clients pick the last alternative they support
	plain, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=\"utf-8\""}})
	if err != nil {
		return nil, err
	}
	if _, err := plain.Write([]byte(d.Content)); err != nil {
		return nil, err
	}

	html, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=\"utf-8\""}})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(d.HTMLBody)); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *EmailAdapter) submit(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(a.host, a.port)

	dialer := &net.Dialer{Timeout: a.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	// Connection deadline bounds the whole SMTP conversation, not just
	// the dial: a stalled server counts as a timeout.
	_ = conn.SetDeadline(time.Now().Add(a.timeout))

	if a.port == "465" {
		conn = tls.Client(conn, &tls.Config{ServerName: a.host})
	}

	client, err := smtp.NewClient(conn, a.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	if a.port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: a.host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if a.username != "" {
		auth := smtp.PlainAuth("", a.username, a.password, a.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(a.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return w.Close()
}

var _ Adapter = (*EmailAdapter)(nil)
