package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// OTPNotifier is the outbound notification collaborator of the account flows.
// Best-effort transport: failures are reported, never swallowed.
type OTPNotifier interface {
	SendOTPEmail(to, code string) error
}

type MailService interface {
	OTPNotifier
	SendEmailWithAttachments(to, subject, text string, attachmentPaths []string) error
}

type mailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) MailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &mailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *mailService) SendOTPEmail(to, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your verification code")

	body := fmt.Sprintf(`
		<h2>Email verification</h2>
		<p>Thank you for signing up! Use the following code to complete your registration:</p>
		<p style="font-size:24px;font-weight:bold;letter-spacing:3px;">%s</p>
		<p>This code expires in <strong>30 minutes</strong>.</p>
		<p>If you didn't request this verification, you can ignore this email.</p>
	`, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *mailService) SendEmailWithAttachments(to, subject, text string, attachmentPaths []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	for _, p := range attachmentPaths {
		m.Attach(p)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
