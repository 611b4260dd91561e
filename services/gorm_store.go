package services

import (
	"errors"

	"wedding-rsvp-backend/models"

	"gorm.io/gorm"
)

// GormStore persists weddings to Postgres. The inbound message buffer is
// inherited from messageBuffer and stays in memory.
type GormStore struct {
	messageBuffer

	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// NextSerial bumps the wedding's counter row atomically; the RETURNING
// value is this caller's reserved serial. Concurrent submissions each get
// their own number without an explicit lock.
func (s *GormStore) NextSerial(weddingID string) (int, error) {
	var value int
	err := s.db.Raw(`
		INSERT INTO serial_counters (wedding_id, value) VALUES (?, 1)
		ON CONFLICT (wedding_id) DO UPDATE SET value = serial_counters.value + 1
		RETURNING value
	`, weddingID).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *GormStore) AppendRSVP(weddingID string, entry *models.RSVPEntry) error {
	entry.WeddingID = weddingID
	return s.db.Create(entry).Error
}

func (s *GormStore) ListRSVPs(weddingID string) ([]models.RSVPEntry, error) {
	var entries []models.RSVPEntry
	err := s.db.Where("wedding_id = ?", weddingID).Order("serial_no ASC").Find(&entries).Error
	return entries, err
}

func (s *GormStore) AllRSVPs() (map[string][]models.RSVPEntry, error) {
	var entries []models.RSVPEntry
	if err := s.db.Order("wedding_id, serial_no ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	all := make(map[string][]models.RSVPEntry)
	for _, e := range entries {
		all[e.WeddingID] = append(all[e.WeddingID], e)
	}
	return all, nil
}

func (s *GormStore) Stats(weddingID string) (RSVPStats, error) {
	var stats RSVPStats

	count := func(attending models.Attendance) (int64, error) {
		var n int64
		q := s.db.Model(&models.RSVPEntry{}).Where("wedding_id = ?", weddingID)
		if attending != "" {
			q = q.Where("attending = ?", attending)
		}
		err := q.Count(&n).Error
		return n, err
	}

	total, err := count("")
	if err != nil {
		return stats, err
	}
	yes, err := count(models.AttendingYes)
	if err != nil {
		return stats, err
	}
	maybe, err := count(models.AttendingMaybe)
	if err != nil {
		return stats, err
	}
	no, err := count(models.AttendingNo)
	if err != nil {
		return stats, err
	}

	stats.Total = int(total)
	stats.Attending = int(yes)
	stats.Maybe = int(maybe)
	stats.NotAttending = int(no)
	return stats, nil
}

func (s *GormStore) SaveGuest(guest *models.Guest) error {
	var existing models.Guest
	err := s.db.Where("wedding_id = ? AND phone_number = ?", guest.WeddingID, guest.PhoneNumber).
		First(&existing).Error
	if err == nil {
		guest.ID = existing.ID
		guest.CreatedAt = existing.CreatedAt
		return s.db.Save(guest).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(guest).Error
}

func (s *GormStore) ListGuests(weddingID string) ([]models.Guest, error) {
	var guests []models.Guest
	err := s.db.Where("wedding_id = ?", weddingID).Order("name ASC").Find(&guests).Error
	return guests, err
}

func (s *GormStore) SaveWedding(w *models.Wedding) error {
	var existing models.Wedding
	err := s.db.Where("wedding_id = ?", w.WeddingID).First(&existing).Error
	if err == nil {
		w.Model = existing.Model
		return s.db.Save(w).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(w).Error
}

func (s *GormStore) GetWedding(weddingID string) (*models.Wedding, error) {
	var w models.Wedding
	err := s.db.Where("wedding_id = ?", weddingID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *GormStore) SetDriveFile(weddingID, fileID, webViewLink string) error {
	record := models.DriveFileRecord{WeddingID: weddingID, FileID: fileID, WebViewLink: webViewLink}
	return s.db.Save(&record).Error
}

func (s *GormStore) DriveFile(weddingID string) (string, string, bool) {
	var record models.DriveFileRecord
	if err := s.db.First(&record, "wedding_id = ?", weddingID).Error; err != nil {
		return "", "", false
	}
	return record.FileID, record.WebViewLink, record.FileID != ""
}

func (s *GormStore) SaveAdmin(admin *models.AdminUser) error {
	return s.db.Create(admin).Error
}

func (s *GormStore) FindAdminByEmail(email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := s.db.Where("email = ?", email).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
