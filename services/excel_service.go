package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"wedding-rsvp-backend/models"

	"github.com/xuri/excelize/v2"
)

const rsvpSheetName = "RSVP Responses"

var excelHeaders = []string{
	"S.No",
	"Guest Name",
	"Number of Guests",
	"Arrival Date",
	"Departure Date",
	"Attending",
	"Document Paths",
	"Submission Time",
	"Documents",
}

var excelColumnWidths = []float64{10, 25, 18, 15, 15, 15, 50, 25, 20}

// Extensions excelize can embed as a picture; anything else is listed in
// the paths column only.
var embeddableImageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
}

// ExcelService maintains one workbook per wedding under dir. Appends are
// exclusive per wedding so rows and serial order never interleave.
type ExcelService struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewExcelService(dir string) *ExcelService {
	if dir == "" {
		dir = "exports"
	}
	return &ExcelService{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// FilePath returns where the wedding's workbook lives on disk.
func (s *ExcelService) FilePath(weddingID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-rsvp-data.xlsx", weddingID))
}

// FileName is the workbook name used for Drive sync and mail attachments.
func (s *ExcelService) FileName(weddingID string) string {
	return fmt.Sprintf("%s-rsvp-data.xlsx", weddingID)
}

func (s *ExcelService) lock(weddingID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[weddingID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[weddingID] = l
	}
	return l
}

// Initialize writes a fresh workbook with the styled header row,
// overwriting any existing file for the wedding.
func (s *ExcelService) Initialize(weddingID string) error {
	l := s.lock(weddingID)
	l.Lock()
	defer l.Unlock()

	return s.initLocked(weddingID)
}

func (s *ExcelService) initLocked(weddingID string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rsvpSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range excelHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(rsvpSheetName, cell, header); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(rsvpSheetName, col, col, excelColumnWidths[i]); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "middle"},
		Border: []excelize.Border{
			{Type: "top", Style: 5, Color: "000000"},
			{Type: "left", Style: 5, Color: "000000"},
			{Type: "bottom", Style: 5, Color: "000000"},
			{Type: "right", Style: 5, Color: "000000"},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(excelHeaders), 1)
	if err := f.SetCellStyle(rsvpSheetName, "A1", lastCell, headerStyle); err != nil {
		return err
	}
	if err := f.SetRowHeight(rsvpSheetName, 1, 30); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("mkdir exports dir: %w", err)
	}
	if err := f.SaveAs(s.FilePath(weddingID)); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	log.Printf("✅ Excel file initialized for %s", weddingID)
	return nil
}

// AppendRow adds one RSVP below the last used row and embeds document
// thumbnails in the final column. The workbook is created on first use.
func (s *ExcelService) AppendRow(weddingID string, entry *models.RSVPEntry) error {
	l := s.lock(weddingID)
	l.Lock()
	defer l.Unlock()

	path := s.FilePath(weddingID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.initLocked(weddingID); err != nil {
			return err
		}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rsvpSheetName)
	if err != nil {
		return fmt.Errorf("worksheet %q not found: %w", rsvpSheetName, err)
	}
	rowNum := len(rows) + 1

	arrival := entry.ArrivalDate
	if arrival == "" {
		arrival = "Not Provided"
	}
	departure := entry.DepartureDate
	if departure == "" {
		departure = "Not Provided"
	}

	values := []interface{}{
		entry.SerialNo,
		entry.GuestName,
		entry.NumberOfGuests,
		arrival,
		departure,
		string(entry.Attending),
		strings.Join(entry.DocumentPaths, ", "),
		entry.SubmittedAt.Format("02/01/2006, 3:04:05 pm"),
		"See images →",
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(rsvpSheetName, cell, v); err != nil {
			return err
		}
	}

	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "middle", WrapText: true},
		Border: []excelize.Border{
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return fmt.Errorf("row style: %w", err)
	}

	firstCell, _ := excelize.CoordinatesToCellName(1, rowNum)
	lastCell, _ := excelize.CoordinatesToCellName(len(excelHeaders), rowNum)
	if err := f.SetCellStyle(rsvpSheetName, firstCell, lastCell, rowStyle); err != nil {
		return err
	}
	if err := f.SetRowHeight(rsvpSheetName, rowNum, 100); err != nil {
		return err
	}

	// Offset successive thumbnails so they don't fully cover each other.
	anchor, _ := excelize.CoordinatesToCellName(len(excelHeaders), rowNum)
	added := 0
	for _, docPath := range entry.DocumentPaths {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(docPath)), ".")
		if !embeddableImageExts[ext] {
			log.Printf("⚠️ Skipping non-image file: %s", docPath)
			continue
		}
		opts := &excelize.GraphicOptions{
			ScaleX:  0.35,
			ScaleY:  0.35,
			OffsetX: added * 30,
			OffsetY: added * 5,
		}
		if err := f.AddPicture(rsvpSheetName, anchor, docPath, opts); err != nil {
			log.Printf("⚠️ Could not add image %s: %v", docPath, err)
			continue
		}
		added++
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	log.Printf("✅ Excel row %d written for %s (S.No %d)", rowNum, weddingID, entry.SerialNo)
	return nil
}
