package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wedding-rsvp-backend/models"
)

// ValidationError rejects a submission before any side effect runs.
// Handlers turn it into HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SideEffect reports one best-effort action taken after the entry was
// stored. A failed side effect never rolls the entry back.
type SideEffect struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type SubmitResult struct {
	SerialNo    int          `json:"serialNo"`
	DriveLink   string       `json:"driveLink,omitempty"`
	SideEffects []SideEffect `json:"sideEffects"`
}

type SubmitInput struct {
	WeddingID      string
	GuestName      string
	NumberOfGuests int
	Attending      string
	ArrivalDate    string
	DepartureDate  string
	PhoneNumber    string
	Email          string

	// DocumentPaths are files the handler already saved (multipart route);
	// InlineDocuments are base64 payloads still to be written. Order is
	// preserved, saved files first.
	DocumentPaths   []string
	InlineDocuments []string
}

// RSVPService owns RSVP entry creation: it validates, assigns the serial,
// stores the entry, then runs the export/sync/notify side effects.
type RSVPService struct {
	store    Store
	excel    *ExcelService
	drive    *DriveService
	notifier *Notifier

	uploadDir string
}

func NewRSVPService(store Store, excel *ExcelService, drive *DriveService, notifier *Notifier) *RSVPService {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &RSVPService{
		store:     store,
		excel:     excel,
		drive:     drive,
		notifier:  notifier,
		uploadDir: uploadDir,
	}
}

// UploadDir returns the event-scoped directory for a wedding's documents.
func (s *RSVPService) UploadDir(weddingID string) string {
	return filepath.Join(s.uploadDir, weddingID)
}

// SaveBase64Document decodes an inline document and writes it under the
// wedding's upload directory, keyed by timestamp to stay unique.
func (s *RSVPService) SaveBase64Document(weddingID, b64 string, index int) (string, error) {
	if idx := strings.Index(b64, "base64,"); idx >= 0 {
		b64 = b64[idx+7:]
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	dir := s.UploadDir(weddingID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	filename := fmt.Sprintf("%d-%d-document.jpg", time.Now().UnixNano(), index)
	fullpath := filepath.Join(dir, filename)

	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(fullpath), nil
}

func (s *RSVPService) validate(input *SubmitInput) error {
	if strings.TrimSpace(input.GuestName) == "" {
		return &ValidationError{Message: "guestName is required"}
	}
	attending := models.Attendance(input.Attending)
	if !attending.Valid() {
		return &ValidationError{Message: "attending must be one of: yes, maybe, no"}
	}
	if attending != models.AttendingNo {
		if input.NumberOfGuests < 1 {
			return &ValidationError{Message: "numberOfGuests must be at least 1 when attending"}
		}
		if len(input.DocumentPaths)+len(input.InlineDocuments) == 0 {
			return &ValidationError{Message: "at least one ID document is required when attending"}
		}
	}
	return nil
}

// Submit processes one RSVP. The stored entry and its serial number are
// authoritative; each side effect is attempted independently and reported
// in the result rather than failing the request.
func (s *RSVPService) Submit(ctx context.Context, input *SubmitInput) (*SubmitResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	weddingID := input.WeddingID
	if weddingID == "" {
		weddingID = DefaultWeddingID
	}

	docPaths := append([]string{}, input.DocumentPaths...)
	for i, inline := range input.InlineDocuments {
		path, err := s.SaveBase64Document(weddingID, inline, i)
		if err != nil {
			return nil, &ValidationError{Message: "error processing documents: " + err.Error()}
		}
		docPaths = append(docPaths, path)
	}

	serialNo, err := s.store.NextSerial(weddingID)
	if err != nil {
		return nil, fmt.Errorf("assign serial number: %w", err)
	}

	entry := &models.RSVPEntry{
		WeddingID:      weddingID,
		SerialNo:       serialNo,
		GuestName:      input.GuestName,
		NumberOfGuests: input.NumberOfGuests,
		ArrivalDate:    input.ArrivalDate,
		DepartureDate:  input.DepartureDate,
		Attending:      models.Attendance(input.Attending),
		DocumentPaths:  docPaths,
		PhoneNumber:    input.PhoneNumber,
		Email:          input.Email,
		SubmittedAt:    time.Now(),
	}

	if err := s.store.AppendRSVP(weddingID, entry); err != nil {
		return nil, fmt.Errorf("store rsvp: %w", err)
	}
	log.Printf("🎉 RSVP stored for %s — %s (S.No %d)", weddingID, entry.GuestName, serialNo)

	result := &SubmitResult{SerialNo: serialNo}
	result.SideEffects = append(result.SideEffects, s.exportToExcel(weddingID, entry))

	driveEffect, driveLink := s.syncToDrive(ctx, weddingID)
	result.SideEffects = append(result.SideEffects, driveEffect)
	result.DriveLink = driveLink

	result.SideEffects = append(result.SideEffects, s.notify(weddingID))

	return result, nil
}

func (s *RSVPService) exportToExcel(weddingID string, entry *models.RSVPEntry) SideEffect {
	effect := SideEffect{Name: "excel"}
	if err := s.excel.AppendRow(weddingID, entry); err != nil {
		log.Printf("❌ Excel update failed for %s: %v", weddingID, err)
		effect.Error = err.Error()
		return effect
	}
	effect.Success = true
	return effect
}

func (s *RSVPService) syncToDrive(ctx context.Context, weddingID string) (SideEffect, string) {
	effect := SideEffect{Name: "drive"}
	if !s.drive.Configured() {
		effect.Error = ErrDriveNotConfigured.Error()
		return effect, ""
	}

	knownID, knownLink, _ := s.store.DriveFile(weddingID)
	ref, err := s.drive.Sync(ctx, s.excel.FilePath(weddingID), s.excel.FileName(weddingID), knownID)
	if err != nil {
		log.Printf("❌ Drive sync failed for %s: %v", weddingID, err)
		effect.Error = err.Error()
		return effect, knownLink
	}

	link := ref.WebViewLink
	if link == "" {
		link = knownLink
	}
	if err := s.store.SetDriveFile(weddingID, ref.ID, link); err != nil {
		log.Printf("⚠️ Could not remember Drive file for %s: %v", weddingID, err)
	}

	effect.Success = true
	return effect, link
}

func (s *RSVPService) notify(weddingID string) SideEffect {
	effect := SideEffect{Name: "notify"}
	if !s.notifier.Configured() {
		effect.Error = "no notification channel configured"
		return effect
	}

	stats, err := s.store.Stats(weddingID)
	if err != nil {
		effect.Error = err.Error()
		return effect
	}

	attachment := s.excel.FilePath(weddingID)
	if _, err := os.Stat(attachment); err != nil {
		attachment = ""
	}

	if err := s.notifier.NotifyNewRSVP(weddingID, stats.Total, attachment); err != nil {
		effect.Error = err.Error()
		return effect
	}
	effect.Success = true
	return effect
}
