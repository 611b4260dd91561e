package controllers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wedding-rsvp-backend/models"
	"wedding-rsvp-backend/services"
	"wedding-rsvp-backend/utils"

	"github.com/gin-gonic/gin"
)

type WhatsAppController struct {
	wa    *services.WhatsAppService
	store services.Store
}

func NewWhatsAppController(wa *services.WhatsAppService, store services.Store) *WhatsAppController {
	return &WhatsAppController{wa: wa, store: store}
}

// recordSend upserts the guest with the outcome of a send attempt. Guest
// bookkeeping is best-effort next to the send itself.
func (wc *WhatsAppController) recordSend(weddingID, name, phone, messageID, rsvpLink string, sent bool) {
	guest := &models.Guest{
		WeddingID:         weddingID,
		Name:              name,
		PhoneNumber:       utils.FormatPhoneNumber(phone, utils.DefaultCountryCode()),
		InvitationSent:    sent,
		WhatsAppMessageID: messageID,
		RSVPLink:          rsvpLink,
	}
	if sent {
		now := time.Now()
		guest.InvitationSentAt = &now
	}
	if err := wc.store.SaveGuest(guest); err != nil {
		log.Printf("⚠️ Could not record guest %s: %v", name, err)
	}
}

// SendInvitation sends a free-text invitation, with the uploaded media file
// attached when one is provided.
func (wc *WhatsAppController) SendInvitation(c *gin.Context) {
	phoneNumber := c.PostForm("phoneNumber")
	guestName := c.PostForm("guestName")
	message := c.PostForm("message")

	if phoneNumber == "" || guestName == "" || message == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing required fields: phoneNumber, guestName, message")
		return
	}
	if !utils.ValidatePhone(phoneNumber) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	weddingID := weddingIDParam(c)

	var messageID string
	var err error

	if fh, ferr := c.FormFile("invitationFile"); ferr == nil {
		dir := filepath.Join("uploads", "invitations")
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Could not prepare upload directory")
			return
		}
		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fh.Filename))
		if saveErr := c.SaveUploadedFile(fh, filepath.Join(dir, filename)); saveErr != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Could not save invitation file")
			return
		}

		mediaURL := fmt.Sprintf("%s/uploads/invitations/%s", os.Getenv("FRONTEND_URL"), filename)
		mediaType := "document"
		if strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			mediaType = "image"
		}
		messageID, err = wc.wa.SendMedia(phoneNumber, mediaURL, message, mediaType)
	} else {
		messageID, err = wc.wa.SendText(phoneNumber, message)
	}

	wc.recordSend(weddingID, guestName, phoneNumber, messageID, "", err == nil)

	if err != nil {
		c.JSON(http.StatusOK, services.SendResult{Success: false, PhoneNumber: phoneNumber, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.SendResult{Success: true, MessageID: messageID, PhoneNumber: phoneNumber})
}

type templateInvitationRequest struct {
	WeddingID        string `json:"weddingId"`
	PhoneNumber      string `json:"phoneNumber" binding:"required"`
	GuestName        string `json:"guestName" binding:"required"`
	TemplateName     string `json:"templateName" binding:"required"`
	TemplateLanguage string `json:"templateLanguage"`
}

func (wc *WhatsAppController) SendTemplateInvitation(c *gin.Context) {
	var req templateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing required fields: phoneNumber, guestName, templateName")
		return
	}

	weddingID := req.WeddingID
	if weddingID == "" {
		weddingID = weddingIDParam(c)
	}

	messageID, err := wc.wa.SendTemplate(req.PhoneNumber, req.GuestName, req.TemplateName, req.TemplateLanguage)
	wc.recordSend(weddingID, req.GuestName, req.PhoneNumber, messageID, "", err == nil)

	if err != nil {
		c.JSON(http.StatusOK, services.SendResult{Success: false, PhoneNumber: req.PhoneNumber, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.SendResult{Success: true, MessageID: messageID, PhoneNumber: req.PhoneNumber})
}

type confirmationRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	GuestName   string `json:"guestName" binding:"required"`
	Attending   string `json:"attending" binding:"required"`
}

func (wc *WhatsAppController) SendConfirmation(c *gin.Context) {
	var req confirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	messageID, err := wc.wa.SendConfirmation(req.PhoneNumber, req.GuestName, models.Attendance(req.Attending))
	if err != nil {
		c.JSON(http.StatusOK, services.SendResult{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.SendResult{Success: true, MessageID: messageID})
}

// SendBulk reads an uploaded guest spreadsheet and invites everyone on it,
// template or free text, rate limited by the service.
func (wc *WhatsAppController) SendBulk(c *gin.Context) {
	fh, err := c.FormFile("guestList")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing guestList spreadsheet upload")
		return
	}

	file, err := fh.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Could not read guest list")
		return
	}
	defer file.Close()

	guests, err := services.ParseGuestList(file)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	weddingID := weddingIDParam(c)
	useTemplate := c.PostForm("useTemplate") == "true"
	templateName := c.PostForm("templateName")
	templateLanguage := c.PostForm("templateLanguage")
	message := c.PostForm("message")

	var wedding *models.Wedding
	if !useTemplate && message == "" {
		wedding, err = wc.store.GetWedding(weddingID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest,
				"No message provided and no wedding details saved to compose one from")
			return
		}
	}
	if useTemplate && templateName == "" {
		templateName = "wedding_invitation"
	}

	results := wc.wa.SendBulk(guests, func(guest models.GuestContact) (string, error) {
		if useTemplate {
			return wc.wa.SendTemplate(guest.PhoneNumber, guest.Name, templateName, templateLanguage)
		}
		body := message
		if body == "" {
			link := wc.wa.RSVPLink(services.NewGuestID(), guest.Name)
			body = services.ComposeInvitation(guest.Name, wedding, link)
		}
		return wc.wa.SendText(guest.PhoneNumber, body)
	})

	sent, failed := 0, 0
	for _, r := range results {
		wc.recordSend(weddingID, r.Guest, r.Phone, r.MessageID, "", r.Success)
		if r.Success {
			sent++
		} else {
			failed++
		}
	}

	utils.RespondWithJSON(c, http.StatusOK, gin.H{
		"results": results,
		"sent":    sent,
		"failed":  failed,
	})
}

// IncomingMessages returns the buffered inbound feed, newest first.
func (wc *WhatsAppController) IncomingMessages(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	messages := wc.store.IncomingMessages(limit)
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"messages": messages})
}

// ListGuests returns the per-wedding guest records with their send status.
func (wc *WhatsAppController) ListGuests(c *gin.Context) {
	guests, err := wc.store.ListGuests(weddingIDParam(c))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching guests")
		return
	}
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"guests": guests, "count": len(guests)})
}
