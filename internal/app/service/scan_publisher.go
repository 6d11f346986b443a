package service

import (
	"encoding/json"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// ScanPublisher publishes raw scan events to NATS JetStream so redirects
// never wait on geo or user-agent enrichment.
type ScanPublisher struct {
	js nats.JetStreamContext
}

// NewScanPublisher creates a new scan event publisher
func NewScanPublisher(js nats.JetStreamContext) *ScanPublisher {
	return &ScanPublisher{js: js}
}

// Publish emits a raw scan onto the stream.
func (p *ScanPublisher) Publish(linkID, ip, userAgent, referrer string) error {
	event := model.RawScan{
		ID:        uuid.New().String(),
		LinkID:    linkID,
		IP:        ip,
		UserAgent: userAgent,
		Referrer:  referrer,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ScanStreamSubject, data)
	return err
}
