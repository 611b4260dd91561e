package controllers

import (
	"net/http"

	"wedding-rsvp-backend/services"

	"github.com/gin-gonic/gin"
)

type WebhookController struct {
	wa    *services.WhatsAppService
	store services.Store
}

func NewWebhookController(wa *services.WhatsAppService, store services.Store) *WebhookController {
	return &WebhookController{wa: wa, store: store}
}

// Verify answers the provider's subscription handshake.
func (wc *WebhookController) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if result := wc.wa.VerifyWebhook(mode, token, challenge); result != "" {
		c.String(http.StatusOK, result)
		return
	}
	c.Status(http.StatusForbidden)
}

// Receive buffers an inbound guest message. Always 200 so the provider
// doesn't retry payloads we simply don't care about.
func (wc *WebhookController) Receive(c *gin.Context) {
	var payload services.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusOK)
		return
	}

	if msg := wc.wa.ParseInbound(&payload); msg != nil {
		wc.store.AddIncomingMessage(*msg)
	}
	c.Status(http.StatusOK)
}
