package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
)

// Notifier tells the organizer about new responses, by email (with the
// workbook attached) and/or SMS. Channels are configured independently;
// unconfigured channels are skipped.
type Notifier struct {
	smtpHost  string
	smtpPort  int
	emailUser string
	emailPass string
	emailTo   string

	twilioClient *twilio.RestClient
	smsFrom      string
	smsTo        string
}

func NewNotifier() *Notifier {
	n := &Notifier{
		smtpHost:  os.Getenv("SMTP_HOST"),
		smtpPort:  587,
		emailUser: os.Getenv("EMAIL_USER"),
		emailPass: os.Getenv("EMAIL_PASS"),
		emailTo:   os.Getenv("NOTIFICATION_EMAIL"),
		smsFrom:   os.Getenv("TWILIO_PHONE_NUMBER"),
		smsTo:     os.Getenv("NOTIFICATION_PHONE"),
	}
	if n.smtpHost == "" {
		n.smtpHost = "smtp.gmail.com"
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			n.smtpPort = p
		}
	}

	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if accountSid != "" && authToken != "" {
		n.twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}

	return n
}

func (n *Notifier) emailConfigured() bool {
	return n.emailUser != "" && n.emailPass != "" && n.emailTo != ""
}

func (n *Notifier) smsConfigured() bool {
	return n.twilioClient != nil && n.smsFrom != "" && n.smsTo != ""
}

func (n *Notifier) Configured() bool {
	return n.emailConfigured() || n.smsConfigured()
}

func (n *Notifier) sendEmail(subject, htmlBody, attachmentPath string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.emailUser)
	m.SetHeader("To", n.emailTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	if attachmentPath != "" {
		m.Attach(attachmentPath)
	}

	d := gomail.NewDialer(n.smtpHost, n.smtpPort, n.emailUser, n.emailPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Println("📧 Email sent successfully")
	return nil
}

func (n *Notifier) sendSMS(body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.smsTo)
	params.SetFrom(n.smsFrom)
	params.SetBody(body)

	resp, err := n.twilioClient.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if resp.Sid != nil {
		log.Printf("📱 SMS sent, SID: %s", *resp.Sid)
	}
	return nil
}

// NotifyNewRSVP announces one new submission with the running total.
func (n *Notifier) NotifyNewRSVP(weddingID string, total int, attachmentPath string) error {
	var errs []error

	if n.emailConfigured() {
		body := fmt.Sprintf(`
			<h2>New RSVP Response Received</h2>
			<p>A guest has submitted their RSVP for <strong>%s</strong>. Please find the updated Excel sheet attached.</p>
			<p><strong>Total Responses:</strong> %d</p>
			<br>
			<p>Best regards,<br>Wedding RSVP System</p>
		`, weddingID, total)
		if err := n.sendEmail("Wedding RSVP - New Response Received", body, attachmentPath); err != nil {
			log.Printf("❌ Error sending email: %v", err)
			errs = append(errs, err)
		}
	}

	if n.smsConfigured() {
		msg := fmt.Sprintf("New RSVP received for %s. Total responses: %d", weddingID, total)
		if err := n.sendSMS(msg); err != nil {
			log.Printf("❌ Error sending SMS: %v", err)
			errs = append(errs, err)
		}
	}

	if !n.Configured() {
		return errors.New("no notification channel configured")
	}
	return errors.Join(errs...)
}

// SendSummary delivers the daily digest for one wedding.
func (n *Notifier) SendSummary(weddingID string, stats RSVPStats) error {
	var errs []error

	if n.emailConfigured() {
		body := fmt.Sprintf(`
			<h2>Daily RSVP Summary — %s</h2>
			<ul>
				<li>Total responses: %d</li>
				<li>Attending: %d</li>
				<li>Maybe: %d</li>
				<li>Not attending: %d</li>
			</ul>
		`, weddingID, stats.Total, stats.Attending, stats.Maybe, stats.NotAttending)
		if err := n.sendEmail(fmt.Sprintf("Daily RSVP Summary — %s", weddingID), body, ""); err != nil {
			errs = append(errs, err)
		}
	}

	if n.smsConfigured() {
		msg := fmt.Sprintf("%s RSVP summary: %d total, %d yes, %d maybe, %d no",
			weddingID, stats.Total, stats.Attending, stats.Maybe, stats.NotAttending)
		if err := n.sendSMS(msg); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
