package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"lab-inventory/pkg/logger"
)

// Mailer delivers one-time passwords.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// New returns an SMTP mailer when a host is configured and a LogMailer otherwise.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		logger.Logger.Warn().Msg("SMTP_HOST not set, OTP codes will only be logged")
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{to}, BuildOTPMessage(m.cfg.From, to, name, code)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	logger.Info(ctx).Str("to", to).Msg("OTP mail sent")
	return nil
}

// BuildOTPMessage renders the RFC 5322 message body.
func BuildOTPMessage(from, to, name, code string) []byte {
	greeting := "Hello"
	if name = strings.TrimSpace(name); name != "" {
		greeting = "Hello " + name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Laboratory Inventory verification code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	fmt.Fprintf(&b, "%s,\r\n\r\nYour verification code is %s.\r\n", greeting, code)
	b.WriteString("It expires shortly. If you did not register, ignore this message.\r\n")
	return []byte(b.String())
}

// LogMailer writes the code to the log. Development only.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, to, _, code string) error {
	logger.Info(ctx).Str("to", to).Str("otp", code).Msg("OTP issued")
	return nil
}
