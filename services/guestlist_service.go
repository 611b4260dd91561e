package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"wedding-rsvp-backend/models"

	"github.com/xuri/excelize/v2"
)

// Accepted header spellings for the uploaded guest list, matched
// case-insensitively.
var (
	guestNameAliases  = []string{"name", "guest name", "guest", "full name"}
	guestPhoneAliases = []string{"phone", "phone number", "mobile", "whatsapp", "contact", "contact number"}
)

// ParseGuestList reads the first sheet of an uploaded workbook into guest
// contacts. Rows missing a name or phone are skipped.
func ParseGuestList(r io.Reader) ([]models.GuestContact, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open guest list: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("guest list has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read guest list: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("guest list is empty")
	}

	nameCol, phoneCol := -1, -1
	for i, header := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(header))
		if nameCol == -1 && matchesAlias(h, guestNameAliases) {
			nameCol = i
		}
		if phoneCol == -1 && matchesAlias(h, guestPhoneAliases) {
			phoneCol = i
		}
	}
	if nameCol == -1 || phoneCol == -1 {
		return nil, errors.New("guest list must have name and phone columns")
	}

	var guests []models.GuestContact
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		phone := cellAt(row, phoneCol)
		if name == "" || phone == "" {
			continue
		}
		guests = append(guests, models.GuestContact{Name: name, PhoneNumber: phone})
	}

	if len(guests) == 0 {
		return nil, errors.New("guest list has no usable rows")
	}
	return guests, nil
}

func matchesAlias(header string, aliases []string) bool {
	for _, alias := range aliases {
		if header == alias {
			return true
		}
	}
	return false
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
