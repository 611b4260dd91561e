package models

import "gorm.io/gorm"

// Wedding holds the event details the invitation composer reads.
type Wedding struct {
	WeddingID    string `gorm:"uniqueIndex;not null" json:"weddingId"`
	BrideName    string `gorm:"not null" json:"brideName"`
	GroomName    string `gorm:"not null" json:"groomName"`
	Date         string `gorm:"not null" json:"date"`
	Time         string `gorm:"not null" json:"time"`
	Venue        string `gorm:"not null" json:"venue"`
	VenueAddress string `json:"venueAddress,omitempty"`
	CoupleName   string `json:"coupleName,omitempty"`

	gorm.Model `json:"-"`
}
