package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func guestListWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseGuestList(t *testing.T) {
	buf := guestListWorkbook(t, [][]string{
		{"Name", "Phone"},
		{"Asha Rao", "9876543210"},
		{"Vikram Shah", "919812345678"},
	})

	guests, err := ParseGuestList(buf)
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, "Asha Rao", guests[0].Name)
	assert.Equal(t, "9876543210", guests[0].PhoneNumber)
	assert.Equal(t, "Vikram Shah", guests[1].Name)
}

func TestParseGuestList_HeaderAliases(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"canonical", []string{"Name", "Phone"}},
		{"guest name and whatsapp", []string{"Guest Name", "WhatsApp"}},
		{"full name and contact number", []string{"Full Name", "Contact Number"}},
		{"mixed case with spaces", []string{"  GUEST  ", " Mobile "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := guestListWorkbook(t, [][]string{
				tt.headers,
				{"Asha Rao", "9876543210"},
			})

			guests, err := ParseGuestList(buf)
			require.NoError(t, err)
			require.Len(t, guests, 1)
			assert.Equal(t, "Asha Rao", guests[0].Name)
		})
	}
}

func TestParseGuestList_ExtraColumns(t *testing.T) {
	buf := guestListWorkbook(t, [][]string{
		{"Side", "Guest Name", "City", "Phone Number"},
		{"Bride", "Asha Rao", "Pune", "9876543210"},
	})

	guests, err := ParseGuestList(buf)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Asha Rao", guests[0].Name)
	assert.Equal(t, "9876543210", guests[0].PhoneNumber)
}

func TestParseGuestList_SkipsIncompleteRows(t *testing.T) {
	buf := guestListWorkbook(t, [][]string{
		{"Name", "Phone"},
		{"Asha Rao", "9876543210"},
		{"", "9811111111"},
		{"No Phone Guest", ""},
		{"Vikram Shah", "919812345678"},
	})

	guests, err := ParseGuestList(buf)
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, "Asha Rao", guests[0].Name)
	assert.Equal(t, "Vikram Shah", guests[1].Name)
}

func TestParseGuestList_MissingColumns(t *testing.T) {
	buf := guestListWorkbook(t, [][]string{
		{"Name", "City"},
		{"Asha Rao", "Pune"},
	})

	_, err := ParseGuestList(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name and phone columns")
}

func TestParseGuestList_NoUsableRows(t *testing.T) {
	buf := guestListWorkbook(t, [][]string{
		{"Name", "Phone"},
	})

	_, err := ParseGuestList(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}

func TestParseGuestList_NotAWorkbook(t *testing.T) {
	_, err := ParseGuestList(strings.NewReader("definitely,not,xlsx"))
	require.Error(t, err)
}
