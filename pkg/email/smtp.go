package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"portfolio-admin-backend/internal/domain"
)

// SMTPMailer delivers the passcode over SMTP (Brevo compatible).
type SMTPMailer struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, username, password, fromEmail string) *SMTPMailer {
	if fromEmail == "" {
		// Brevo uses the login email as from address
		fromEmail = username
	}
	return &SMTPMailer{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		send:      smtp.SendMail,
	}
}

var passcodeTemplate = template.Must(template.New("passcode").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your authentication code</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .code { font-size: 28px; letter-spacing: 6px; font-weight: bold; color: #4f46e5; }
        .footer { color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <p>Hello {{.ToName}},</p>
        <p>{{.Message}}</p>
        <p class="code">{{.Passcode}}</p>
        <p class="footer">Valid until {{.Time}}.</p>
    </div>
</body>
</html>`))

func (s *SMTPMailer) SendPasscode(_ context.Context, msg domain.PasscodeEmail) error {
	var body bytes.Buffer
	if err := passcodeTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		msg.ToEmail,
		"Your portfolio admin authentication code",
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{msg.ToEmail}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the mailer has valid SMTP configuration
func (s *SMTPMailer) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
