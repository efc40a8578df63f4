package mailer

import (
	"errors"
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPMailer struct {
	fromEmail string
	dialer    *mail.Dialer
}

func NewSMTPMailer(host string, port int, username, password, fromEmail string) (*SMTPMailer, error) {
	if host == "" || fromEmail == "" {
		return nil, errors.New("smtp host and from email are required")
	}
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{fromEmail: fromEmail, dialer: d}, nil
}

func (m *SMTPMailer) Send(templateFile, username, email string, data any) error {
	subject, body, err := Render(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			return nil
		}
		// linear backoff
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
