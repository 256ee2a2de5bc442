// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendEscalationAlert(toEmail, sessionID, question string, reasons []string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	consoleURL  string // Moderator console, to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail, consoleURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		consoleURL:  consoleURL,
	}
}

func (s *emailService) SendEscalationAlert(toEmail, sessionID, question string, reasons []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Visitor question needs review (%s)", sessionID))

	reviewLink := fmt.Sprintf("%s/review?session_id=%s", s.consoleURL, sessionID)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A visitor question is waiting for a human reply</h2>
			<p><strong>Session:</strong> %s</p>
			<p><strong>Question:</strong></p>
			<blockquote style="border-left: 3px solid #007BFF; padding-left: 10px;">%s</blockquote>
			<p><strong>Escalated because:</strong> %s</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Review Console</a>
			<p>The visitor has been told their question is with our team.</p>
		</div>
	`, html.EscapeString(sessionID), html.EscapeString(question), html.EscapeString(strings.Join(reasons, ", ")), reviewLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send escalation alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Escalation alert sent to %s\n", toEmail)
	return nil
}
