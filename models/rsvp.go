package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Attendance is the guest's answer on the RSVP form.
type Attendance string

const (
	AttendingYes   Attendance = "yes"
	AttendingMaybe Attendance = "maybe"
	AttendingNo    Attendance = "no"
)

func (a Attendance) Valid() bool {
	return a == AttendingYes || a == AttendingMaybe || a == AttendingNo
}

// StringSlice stores an ordered list of strings as a JSON column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(b, s)
}

type RSVPEntry struct {
	WeddingID      string      `gorm:"uniqueIndex:idx_wedding_serial,priority:1;not null" json:"weddingId"`
	SerialNo       int         `gorm:"uniqueIndex:idx_wedding_serial,priority:2;not null" json:"serialNo"`
	GuestName      string      `gorm:"not null" json:"guestName"`
	NumberOfGuests int         `json:"numberOfGuests"`
	ArrivalDate    string      `json:"arrivalDate,omitempty"`
	DepartureDate  string      `json:"departureDate,omitempty"`
	Attending      Attendance  `gorm:"type:varchar(10);not null" json:"attending"`
	DocumentPaths  StringSlice `gorm:"type:jsonb" json:"documentPaths"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	Email          string      `json:"email,omitempty"`
	SubmittedAt    time.Time   `json:"submittedAt"`

	gorm.Model `json:"-"`
}

// SerialCounter backs the per-wedding serial sequence in the database store.
type SerialCounter struct {
	WeddingID string `gorm:"primaryKey"`
	Value     int    `gorm:"not null"`
}

// DriveFileRecord remembers the synced spreadsheet per wedding so later
// submissions update the same Drive file instead of uploading a new one.
type DriveFileRecord struct {
	WeddingID   string `gorm:"primaryKey"`
	FileID      string `gorm:"not null"`
	WebViewLink string
}
