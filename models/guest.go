package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Guest struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WeddingID string    `gorm:"index;not null" json:"weddingId"`

	Name        string `gorm:"not null" json:"name"`
	PhoneNumber string `gorm:"not null" json:"phoneNumber"`
	Email       string `json:"email,omitempty"`

	InvitationSent    bool       `gorm:"default:false" json:"invitationSent"`
	InvitationSentAt  *time.Time `json:"invitationSentAt,omitempty"`
	WhatsAppMessageID string     `json:"whatsappMessageId,omitempty"`
	RSVPLink          string     `json:"rsvpLink,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (g *Guest) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}

// GuestContact is one row of an uploaded guest list, the unit the bulk
// sender works through.
type GuestContact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}
