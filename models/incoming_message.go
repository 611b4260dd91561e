package models

// IncomingMessage is one guest reply delivered through the provider webhook.
// Messages live in a capped in-memory buffer, newest first; all weddings
// share the buffer because they share one WhatsApp number.
type IncomingMessage struct {
	From      string `json:"from"`
	Name      string `json:"name"`
	Body      string `json:"message"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}
