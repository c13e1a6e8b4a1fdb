// Package mailer delivers transactional storefront email over SMTP.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Verify checks that the SMTP endpoint is reachable. Called once at boot;
// a failure is reported but never fatal.
func (m *Mailer) Verify() error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	return conn.Close()
}

// Send delivers a single message to the given recipients. Port 465 uses
// implicit TLS; everything else goes through smtp.SendMail (STARTTLS when
// the server offers it).
func (m *Mailer) Send(to []string, subject, htmlBody, textBody string) error {
	cfg := m.cfg
	if cfg.Username == "" {
		return fmt.Errorf("mailer: SMTP_USER not configured")
	}

	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	raw := buildRaw(from, to, subject, htmlBody, textBody)

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.Port == "465" {
		return m.sendTLS(addr, auth, to, raw)
	}
	return smtp.SendMail(addr, auth, cfg.From, to, raw)
}

func (m *Mailer) sendTLS(addr string, auth smtp.Auth, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("mailer: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(raw)
	return err
}

func buildRaw(from string, to []string, subject, htmlBody, textBody string) []byte {
	body := htmlBody
	contentType := "text/html"
	if body == "" {
		body = textBody
		contentType = "text/plain"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
