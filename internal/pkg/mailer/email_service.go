package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, name string, isDoctor bool) error
	SendFollowUpReminder(toEmail, name string, reminder FollowUp) error
}

// FollowUp is the next-visit block taken from an extracted prescription.
type FollowUp struct {
	Date        string
	Reason      string
	Medications []string
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	fmt.Printf("[MAILER] %q sent to %s\n", subject, toEmail)
	return nil
}

func (s *emailService) SendWelcome(toEmail, name string, isDoctor bool) error {
	return s.send(toEmail, "Welcome to CogniMed", welcomeBody(name, isDoctor))
}

func (s *emailService) SendFollowUpReminder(toEmail, name string, reminder FollowUp) error {
	return s.send(toEmail, "Your next visit", followUpBody(name, reminder))
}

func welcomeBody(name string, isDoctor bool) string {
	role := "patient"
	if isDoctor {
		role = "doctor"
	}
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to CogniMed, %s!</h2>
			<p>Your %s account is ready. You can now post questions, share prescriptions and chat with the assistant.</p>
		</div>
	`, html.EscapeString(name), role)
}

func followUpBody(name string, reminder FollowUp) string {
	var meds strings.Builder
	for _, m := range reminder.Medications {
		meds.WriteString("<li>")
		meds.WriteString(html.EscapeString(m))
		meds.WriteString("</li>")
	}

	reason := reminder.Reason
	if reason == "" {
		reason = "Follow-up"
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>Your next visit is scheduled for <strong>%s</strong> (%s).</p>
			<p>Current medications:</p>
			<ul>%s</ul>
		</div>
	`, html.EscapeString(name), html.EscapeString(reminder.Date), html.EscapeString(reason), meds.String())
}
