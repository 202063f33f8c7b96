package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPMailerSendOTP(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "lab@example.com"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		if a != nil {
			t.Error("Expected no auth without username")
		}
		return nil
	}

	if err := m.SendOTP(context.Background(), "ana@example.com", "Ana", "123456"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotAddr != "smtp.example.com:2525" {
		t.Errorf("Expected addr smtp.example.com:2525, got %s", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "ana@example.com" {
		t.Errorf("Expected single recipient, got %v", gotTo)
	}
	if !strings.Contains(string(gotMsg), "123456") {
		t.Error("Expected message to contain the code")
	}
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	if _, ok := New(SMTPConfig{}).(LogMailer); !ok {
		t.Error("Expected LogMailer when no host is configured")
	}
	if _, ok := New(SMTPConfig{Host: "smtp"}).(*SMTPMailer); !ok {
		t.Error("Expected SMTPMailer when a host is configured")
	}
}

func TestBuildOTPMessageGreeting(t *testing.T) {
	msg := string(BuildOTPMessage("a@x", "b@x", "", "000111"))
	if !strings.Contains(msg, "Hello,") {
		t.Errorf("Expected anonymous greeting, got %q", msg)
	}
}
