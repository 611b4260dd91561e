package services

import (
	"errors"
	"sort"
	"sync"

	"wedding-rsvp-backend/models"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// incomingMessageCap bounds the shared inbound WhatsApp buffer.
const incomingMessageCap = 100

// DefaultWeddingID keeps single-event deployments working without a
// weddingId parameter.
const DefaultWeddingID = "wedding1"

type RSVPStats struct {
	Total        int `json:"total"`
	Attending    int `json:"attending"`
	Maybe        int `json:"maybe"`
	NotAttending int `json:"notAttending"`
}

// Store holds every wedding's guests, RSVP entries and details, plus the
// shared inbound message buffer. NextSerial must hand out strictly
// increasing numbers per wedding with no duplicates under concurrent calls;
// the serial is reserved at that point, so a later AppendRSVP can never
// collide with another in-flight submission.
type Store interface {
	NextSerial(weddingID string) (int, error)
	AppendRSVP(weddingID string, entry *models.RSVPEntry) error
	ListRSVPs(weddingID string) ([]models.RSVPEntry, error)
	AllRSVPs() (map[string][]models.RSVPEntry, error)
	Stats(weddingID string) (RSVPStats, error)

	SaveGuest(guest *models.Guest) error
	ListGuests(weddingID string) ([]models.Guest, error)

	SaveWedding(w *models.Wedding) error
	GetWedding(weddingID string) (*models.Wedding, error)

	SetDriveFile(weddingID, fileID, webViewLink string) error
	DriveFile(weddingID string) (fileID, webViewLink string, ok bool)

	SaveAdmin(admin *models.AdminUser) error
	FindAdminByEmail(email string) (*models.AdminUser, error)

	AddIncomingMessage(msg models.IncomingMessage)
	IncomingMessages(limit int) []models.IncomingMessage
}

// messageBuffer is the capped, newest-first inbound message feed. It stays
// in memory for both store implementations; the feed is a transient admin
// convenience, not a durable record.
type messageBuffer struct {
	mu       sync.Mutex
	messages []models.IncomingMessage
}

func (b *messageBuffer) AddIncomingMessage(msg models.IncomingMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append([]models.IncomingMessage{msg}, b.messages...)
	if len(b.messages) > incomingMessageCap {
		b.messages = b.messages[:incomingMessageCap]
	}
}

func (b *messageBuffer) IncomingMessages(limit int) []models.IncomingMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > len(b.messages) {
		limit = len(b.messages)
	}
	out := make([]models.IncomingMessage, limit)
	copy(out, b.messages[:limit])
	return out
}

// weddingState is everything owned by one wedding. Its mutex makes serial
// assignment and list mutation exclusive per wedding, as two submissions to
// different weddings never contend.
type weddingState struct {
	mu      sync.Mutex
	serial  int
	entries []models.RSVPEntry
	guests  []models.Guest
	wedding *models.Wedding

	driveFileID string
	driveLink   string
}

// MemoryStore keeps everything process-local. It is the default when no
// DB_URL is configured and the fixture for tests; a restart loses the data,
// matching the spreadsheet-is-the-real-record deployment style.
type MemoryStore struct {
	messageBuffer

	mu       sync.Mutex
	weddings map[string]*weddingState

	adminMu sync.Mutex
	admins  map[string]*models.AdminUser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		weddings: make(map[string]*weddingState),
		admins:   make(map[string]*models.AdminUser),
	}
}

func (s *MemoryStore) wedding(weddingID string) *weddingState {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.weddings[weddingID]
	if !ok {
		w = &weddingState{}
		s.weddings[weddingID] = w
	}
	return w
}

func (s *MemoryStore) NextSerial(weddingID string) (int, error) {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.serial++
	return w.serial, nil
}

func (s *MemoryStore) AppendRSVP(weddingID string, entry *models.RSVPEntry) error {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = append(w.entries, *entry)
	return nil
}

func (s *MemoryStore) ListRSVPs(weddingID string) ([]models.RSVPEntry, error) {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]models.RSVPEntry, len(w.entries))
	copy(out, w.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNo < out[j].SerialNo })
	return out, nil
}

func (s *MemoryStore) AllRSVPs() (map[string][]models.RSVPEntry, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.weddings))
	for id := range s.weddings {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	all := make(map[string][]models.RSVPEntry, len(ids))
	for _, id := range ids {
		entries, _ := s.ListRSVPs(id)
		if len(entries) > 0 {
			all[id] = entries
		}
	}
	return all, nil
}

func (s *MemoryStore) Stats(weddingID string) (RSVPStats, error) {
	entries, _ := s.ListRSVPs(weddingID)

	stats := RSVPStats{Total: len(entries)}
	for _, e := range entries {
		switch e.Attending {
		case models.AttendingYes:
			stats.Attending++
		case models.AttendingMaybe:
			stats.Maybe++
		case models.AttendingNo:
			stats.NotAttending++
		}
	}
	return stats, nil
}

func (s *MemoryStore) SaveGuest(guest *models.Guest) error {
	w := s.wedding(guest.WeddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.guests {
		if w.guests[i].PhoneNumber == guest.PhoneNumber {
			w.guests[i] = *guest
			return nil
		}
	}
	w.guests = append(w.guests, *guest)
	return nil
}

func (s *MemoryStore) ListGuests(weddingID string) ([]models.Guest, error) {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]models.Guest, len(w.guests))
	copy(out, w.guests)
	return out, nil
}

func (s *MemoryStore) SaveWedding(wd *models.Wedding) error {
	w := s.wedding(wd.WeddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	copied := *wd
	w.wedding = &copied
	return nil
}

func (s *MemoryStore) GetWedding(weddingID string) (*models.Wedding, error) {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.wedding == nil {
		return nil, ErrNotFound
	}
	copied := *w.wedding
	return &copied, nil
}

func (s *MemoryStore) SetDriveFile(weddingID, fileID, webViewLink string) error {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.driveFileID = fileID
	w.driveLink = webViewLink
	return nil
}

func (s *MemoryStore) DriveFile(weddingID string) (string, string, bool) {
	w := s.wedding(weddingID)
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.driveFileID, w.driveLink, w.driveFileID != ""
}

func (s *MemoryStore) SaveAdmin(admin *models.AdminUser) error {
	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	if _, exists := s.admins[admin.Email]; exists {
		return errors.New("admin already exists")
	}
	copied := *admin
	s.admins[admin.Email] = &copied
	return nil
}

func (s *MemoryStore) FindAdminByEmail(email string) (*models.AdminUser, error) {
	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	admin, ok := s.admins[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *admin
	return &copied, nil
}
