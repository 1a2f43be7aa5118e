package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"gatherly/sessionhub/internal/config"
)

// smtpNotifier delivers events as plain-text email. Events without a
// recipient address are skipped.
type smtpNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) (Notifier, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be greater than 0")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("smtp from_email is required")
	}
	if _, err := mail.ParseAddress(cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("invalid smtp from_email: %w", err)
	}
	return &smtpNotifier{cfg: cfg}, nil
}

func (n *smtpNotifier) Dispatch(_ context.Context, event Event) error {
	to := strings.TrimSpace(event.Recipient)
	if to == "" {
		return nil
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	subject, body := renderEvent(event)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	defer client.Close()

	if n.cfg.UseSTARTTLS {
		ok, _ := client.Extension("STARTTLS")
		if !ok {
			return fmt.Errorf("smtp server does not support STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{
			ServerName:         n.cfg.Host,
			InsecureSkipVerify: n.cfg.SkipTLSVerify,
		}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if strings.TrimSpace(n.cfg.Username) != "" {
		ok, _ := client.Extension("AUTH")
		if !ok {
			return fmt.Errorf("smtp server does not support AUTH")
		}
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(n.cfg.FromEmail); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}

	fromHeader := n.cfg.FromEmail
	if strings.TrimSpace(n.cfg.FromName) != "" {
		fromHeader = (&mail.Address{
			Name:    n.cfg.FromName,
			Address: n.cfg.FromEmail,
		}).String()
	}
	subjectHeader := mime.QEncoding.Encode("UTF-8", subject)
	msg := strings.Builder{}
	msg.WriteString("From: " + fromHeader + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subjectHeader + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if _, err := writer.Write([]byte(msg.String())); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write smtp body failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close smtp writer failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp quit failed: %w", err)
	}
	return nil
}

func renderEvent(event Event) (subject, body string) {
	switch event.Type {
	case EventMemberJoined:
		return "You joined " + event.SessionTitle,
			"Your spot in \"" + event.SessionTitle + "\" is confirmed."
	case EventMemberPending:
		return "Join request received for " + event.SessionTitle,
			"The host of \"" + event.SessionTitle + "\" will review your request."
	case EventMemberApproved:
		return "You're in: " + event.SessionTitle,
			"The host approved your request to join \"" + event.SessionTitle + "\"."
	case EventMemberLeft, EventMemberRemoved:
		return "Membership update for " + event.SessionTitle,
			"You are no longer a participant of \"" + event.SessionTitle + "\"."
	case EventSessionCancelled:
		return event.SessionTitle + " was cancelled",
			"The host cancelled \"" + event.SessionTitle + "\"."
	}
	return "Update for " + event.SessionTitle, "Your session \"" + event.SessionTitle + "\" changed."
}
