package services

import (
	"os"
	"testing"
	"time"

	"wedding-rsvp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelService_InitializeWritesHeader(t *testing.T) {
	svc := NewExcelService(t.TempDir())

	require.NoError(t, svc.Initialize("wedding1"))

	f, err := excelize.OpenFile(svc.FilePath("wedding1"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rsvpSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, excelHeaders, rows[0])
}

func TestExcelService_AppendRowRoundTrip(t *testing.T) {
	svc := NewExcelService(t.TempDir())
	require.NoError(t, svc.Initialize("wedding1"))

	entry := &models.RSVPEntry{
		WeddingID:      "wedding1",
		SerialNo:       1,
		GuestName:      "Asha Rao",
		NumberOfGuests: 2,
		ArrivalDate:    "2026-11-20",
		DepartureDate:  "2026-11-22",
		Attending:      models.AttendingYes,
		DocumentPaths:  models.StringSlice{"uploads/wedding1/doc-1.pdf"},
		SubmittedAt:    time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, svc.AppendRow("wedding1", entry))

	f, err := excelize.OpenFile(svc.FilePath("wedding1"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rsvpSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "Asha Rao", row[1])
	assert.Equal(t, "2", row[2])
	assert.Equal(t, "2026-11-20", row[3])
	assert.Equal(t, "2026-11-22", row[4])
	assert.Equal(t, "yes", row[5])
	assert.Equal(t, "uploads/wedding1/doc-1.pdf", row[6])
}

func TestExcelService_AppendRowDefaultsMissingDates(t *testing.T) {
	svc := NewExcelService(t.TempDir())
	require.NoError(t, svc.Initialize("wedding1"))

	entry := &models.RSVPEntry{
		SerialNo:    1,
		GuestName:   "Ravi Kumar",
		Attending:   models.AttendingNo,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, svc.AppendRow("wedding1", entry))

	f, err := excelize.OpenFile(svc.FilePath("wedding1"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rsvpSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Not Provided", rows[1][3])
	assert.Equal(t, "Not Provided", rows[1][4])
}

func TestExcelService_AppendCreatesWorkbookOnFirstUse(t *testing.T) {
	svc := NewExcelService(t.TempDir())

	_, err := os.Stat(svc.FilePath("wedding2"))
	require.True(t, os.IsNotExist(err))

	entry := &models.RSVPEntry{SerialNo: 1, GuestName: "Meera", Attending: models.AttendingMaybe, SubmittedAt: time.Now()}
	require.NoError(t, svc.AppendRow("wedding2", entry))

	_, err = os.Stat(svc.FilePath("wedding2"))
	assert.NoError(t, err)
}

func TestExcelService_SeparateWorkbooksPerWedding(t *testing.T) {
	svc := NewExcelService(t.TempDir())

	require.NoError(t, svc.AppendRow("wedding1", &models.RSVPEntry{SerialNo: 1, GuestName: "A", Attending: models.AttendingYes, SubmittedAt: time.Now()}))
	require.NoError(t, svc.AppendRow("wedding2", &models.RSVPEntry{SerialNo: 1, GuestName: "B", Attending: models.AttendingYes, SubmittedAt: time.Now()}))

	assert.NotEqual(t, svc.FilePath("wedding1"), svc.FilePath("wedding2"))

	f, err := excelize.OpenFile(svc.FilePath("wedding1"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(rsvpSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[1][1])
}
