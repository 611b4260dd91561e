// services/digest_service.go
package services

import (
	"log"

	"github.com/robfig/cron/v3"
)

// DigestService mails the organizer a per-wedding response summary once a
// day. Purely informational; nothing in the RSVP flow depends on it.
type DigestService struct {
	store    Store
	notifier *Notifier
}

func NewDigestService(store Store, notifier *Notifier) *DigestService {
	return &DigestService{store: store, notifier: notifier}
}

func (s *DigestService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendDailyDigest)

	c.Start()
	log.Println("Digest scheduler started")
}

func (s *DigestService) SendDailyDigest() {
	log.Println("Starting daily digest processing...")

	all, err := s.store.AllRSVPs()
	if err != nil {
		log.Printf("Failed to fetch RSVPs: %v", err)
		return
	}

	for weddingID := range all {
		stats, err := s.store.Stats(weddingID)
		if err != nil {
			log.Printf("Wedding %s: failed to get stats: %v", weddingID, err)
			continue
		}
		if err := s.notifier.SendSummary(weddingID, stats); err != nil {
			log.Printf("Wedding %s: failed to send summary: %v", weddingID, err)
		}
	}

	log.Println("Daily digest processing completed")
}
