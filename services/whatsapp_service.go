package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"wedding-rsvp-backend/models"
	"wedding-rsvp-backend/utils"

	"github.com/go-resty/resty/v2"
)

const graphAPIBaseURL = "https://graph.facebook.com/v21.0"

// ErrWhatsAppNotConfigured labels missing Meta credentials.
var ErrWhatsAppNotConfigured = errors.New("whatsapp not configured: META_PHONE_NUMBER_ID or META_ACCESS_TOKEN not set")

// SendResult is the per-message outcome surfaced to the admin UI.
type SendResult struct {
	Success     bool   `json:"success"`
	MessageID   string `json:"messageId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BulkSendResult is one row of a bulk-send report.
type BulkSendResult struct {
	Guest     string `json:"guest"`
	Phone     string `json:"phone"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type graphMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// WhatsAppService talks to the Meta WhatsApp Business Cloud API. Every send
// returns the provider message id or an error; nothing panics across this
// boundary.
type WhatsAppService struct {
	client        *resty.Client
	phoneNumberID string
	accessToken   string
	verifyToken   string
	countryCode   string
	frontendURL   string

	// Provider rate limiting: BatchSize concurrent sends, then BatchDelay.
	BatchSize  int
	BatchDelay time.Duration
}

func NewWhatsAppService() *WhatsAppService {
	return &WhatsAppService{
		client: resty.New().
			SetBaseURL(graphAPIBaseURL).
			SetTimeout(30 * time.Second),
		phoneNumberID: os.Getenv("META_PHONE_NUMBER_ID"),
		accessToken:   os.Getenv("META_ACCESS_TOKEN"),
		verifyToken:   os.Getenv("META_WEBHOOK_VERIFY_TOKEN"),
		countryCode:   utils.DefaultCountryCode(),
		frontendURL:   os.Getenv("FRONTEND_URL"),
		BatchSize:     5,
		BatchDelay:    2 * time.Second,
	}
}

func (s *WhatsAppService) Configured() bool {
	return s.phoneNumberID != "" && s.accessToken != ""
}

func (s *WhatsAppService) send(body map[string]interface{}) (string, error) {
	if !s.Configured() {
		return "", ErrWhatsAppNotConfigured
	}

	var ok graphMessageResponse
	var apiErr graphErrorResponse

	resp, err := s.client.R().
		SetAuthToken(s.accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&ok).
		SetError(&apiErr).
		Post("/" + s.phoneNumberID + "/messages")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", errors.New(apiErr.Error.Message)
		}
		return "", fmt.Errorf("whatsapp api: %s", resp.Status())
	}
	if len(ok.Messages) == 0 {
		return "", errors.New("no message id in provider response")
	}
	return ok.Messages[0].ID, nil
}

// SendText sends a plain text message with link previews enabled.
func (s *WhatsAppService) SendText(phoneNumber, message string) (string, error) {
	to := utils.FormatPhoneNumber(phoneNumber, s.countryCode)

	id, err := s.send(map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": true,
			"body":        message,
		},
	})
	if err != nil {
		return "", err
	}
	log.Printf("Text message sent to %s: %s", to, id)
	return id, nil
}

// SendTemplate sends a pre-approved template with the guest name as the
// single header parameter. Required by Meta for unsolicited contact.
func (s *WhatsAppService) SendTemplate(phoneNumber, guestName, templateName, languageCode string) (string, error) {
	to := utils.FormatPhoneNumber(phoneNumber, s.countryCode)
	if languageCode == "" {
		languageCode = "en"
	}

	id, err := s.send(map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     templateName,
			"language": map[string]interface{}{"code": languageCode},
			"components": []map[string]interface{}{
				{
					"type": "header",
					"parameters": []map[string]interface{}{
						{"type": "text", "text": guestName},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	log.Printf("✅ Template sent to %s: %s", guestName, id)
	return id, nil
}

// SendMedia sends an image or document link with a caption.
func (s *WhatsAppService) SendMedia(phoneNumber, mediaURL, caption, mediaType string) (string, error) {
	to := utils.FormatPhoneNumber(phoneNumber, s.countryCode)
	if mediaType == "" {
		mediaType = "image"
	}

	id, err := s.send(map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              mediaType,
		mediaType: map[string]interface{}{
			"link":    mediaURL,
			"caption": caption,
		},
	})
	if err != nil {
		return "", err
	}
	log.Printf("Media message sent to %s: %s", to, id)
	return id, nil
}

// SendConfirmation acknowledges a submitted RSVP with a canned message per
// attendance value.
func (s *WhatsAppService) SendConfirmation(phoneNumber, guestName string, attending models.Attendance) (string, error) {
	var message string
	switch attending {
	case models.AttendingYes:
		message = fmt.Sprintf("Thank you %s! 🎉\n\nWe're delighted you'll be joining us for our special day. We'll send you more details soon!\n\nWith love ❤️", guestName)
	case models.AttendingMaybe:
		message = fmt.Sprintf("Thank you for your response, %s! 🤔\n\nWe understand you're not sure yet. Please update your RSVP when you've decided. We hope to see you there!\n\nWith love ❤️", guestName)
	default:
		message = fmt.Sprintf("Thank you for letting us know, %s.\n\nWe'll miss you at our celebration, but we appreciate your response.\n\nWith love ❤️", guestName)
	}

	id, err := s.send(map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                utils.FormatPhoneNumber(phoneNumber, s.countryCode),
		"type":              "text",
		"text":              map[string]interface{}{"body": message},
	})
	if err != nil {
		return "", err
	}
	log.Printf("Confirmation sent to %s: %s", guestName, id)
	return id, nil
}

// RSVPLink builds the per-guest form link embedded in invitations.
func (s *WhatsAppService) RSVPLink(guestID, guestName string) string {
	base := s.frontendURL
	if base == "" {
		base = "http://localhost:3000"
	}
	return fmt.Sprintf("%s/rsvp?id=%s&name=%s", base, guestID, url.QueryEscape(guestName))
}

// NewGuestID makes a short unique id for invitation links.
func NewGuestID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatInt(rand.Int63(), 36)
}

// ComposeInvitation renders the free-text invitation for a guest.
func ComposeInvitation(guestName string, w *models.Wedding, rsvpLink string) string {
	coupleName := w.CoupleName
	if coupleName == "" {
		coupleName = fmt.Sprintf("%s & %s", w.BrideName, w.GroomName)
	}
	return fmt.Sprintf(`🎉 *Wedding Invitation* 🎉

Dear %s,

You are cordially invited to celebrate the wedding of:

*%s & %s*

📅 Date: %s
🕐 Time: %s
📍 Venue: %s

Please RSVP by clicking the link below:
%s

We look forward to celebrating with you! 💕

With love,
%s`, guestName, w.BrideName, w.GroomName, w.Date, w.Time, w.Venue, rsvpLink, coupleName)
}

// VerifyWebhook answers Meta's subscription handshake: the challenge is
// echoed back iff the mode and token match, otherwise empty (HTTP 403 at
// the handler).
func (s *WhatsAppService) VerifyWebhook(mode, token, challenge string) string {
	if mode == "subscribe" && token != "" && token == s.verifyToken {
		log.Println("Webhook verified successfully")
		return challenge
	}
	return ""
}

// Provider-shaped webhook payload. Only the fields we read.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile *struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseInbound extracts the first message of the first change of the first
// entry, defensively: nil whenever an expected field is absent.
func (s *WhatsAppService) ParseInbound(payload *WebhookPayload) *models.IncomingMessage {
	if payload == nil || payload.Object != "whatsapp_business_account" {
		return nil
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return nil
	}
	msg := value.Messages[0]

	name := "Unknown"
	if len(value.Contacts) > 0 {
		contact := value.Contacts[0]
		if contact.Profile != nil && contact.Profile.Name != "" {
			name = contact.Profile.Name
		} else if contact.WaID != "" {
			name = contact.WaID
		}
	}

	body := ""
	if msg.Text != nil {
		body = msg.Text.Body
	}

	log.Printf("📨 Message from %s (%s): %s", name, msg.From, body)
	return &models.IncomingMessage{
		From:      msg.From,
		Name:      name,
		Body:      body,
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
		Type:      msg.Type,
	}
}

// SendBulk runs send over the guest list in batches of BatchSize, all sends
// in a batch concurrent, pausing BatchDelay between batches (not after the
// last). Results come back in submission order; one guest failing never
// stops the rest.
func (s *WhatsAppService) SendBulk(guests []models.GuestContact, send func(models.GuestContact) (string, error)) []BulkSendResult {
	results := make([]BulkSendResult, len(guests))

	for i := 0; i < len(guests); i += s.BatchSize {
		end := i + s.BatchSize
		if end > len(guests) {
			end = len(guests)
		}

		var wg sync.WaitGroup
		for j := i; j < end; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				guest := guests[j]
				result := BulkSendResult{Guest: guest.Name, Phone: guest.PhoneNumber}

				id, err := send(guest)
				if err != nil {
					result.Error = err.Error()
				} else {
					result.Success = true
					result.MessageID = id
				}
				results[j] = result
			}(j)
		}
		wg.Wait()

		if end < len(guests) {
			log.Printf("Processed batch %d, waiting before next batch...", i/s.BatchSize+1)
			time.Sleep(s.BatchDelay)
		}
	}

	return results
}
