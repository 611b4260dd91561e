package controllers

import (
	"net/http"
	"time"

	"wedding-rsvp-backend/services"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	wa    *services.WhatsAppService
	drive *services.DriveService
}

func NewHealthController(wa *services.WhatsAppService, drive *services.DriveService) *HealthController {
	return &HealthController{wa: wa, drive: drive}
}

func (hc *HealthController) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"message":               "Wedding RSVP Backend is running",
		"timestamp":             time.Now().Format(time.RFC3339),
		"whatsappConfigured":    hc.wa.Configured(),
		"googleDriveConfigured": hc.drive.Configured(),
	})
}
