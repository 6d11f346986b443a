package service

import (
	"context"
	"fmt"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	infraProm "github.com/GSMS-B/ProjectQR/internal/infra/prometheus"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScanRecorder turns a raw scan into an enriched, persisted ScanEvent and
// bumps the parent link's counter. Enrichment failures never block the
// write: geo and agent fields fall back to Unknown.
type ScanRecorder struct {
	logger  *zap.Logger
	scans   repository.ScanRepository
	locator Locator
}

// NewScanRecorder creates a recorder with the provided dependencies.
func NewScanRecorder(logger *zap.Logger, scans repository.ScanRepository, locator Locator) *ScanRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanRecorder{logger: logger, scans: scans, locator: locator}
}

// Record persists one scan. The returned event carries the enriched fields.
func (r *ScanRecorder) Record(ctx context.Context, raw model.RawScan) (*model.ScanEvent, error) {
	agent := ClassifyAgent(raw.UserAgent)
	loc := r.locate(ctx, raw.IP)

	id := raw.ID
	if id == "" {
		id = uuid.New().String()
	}
	at := raw.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	event := &model.ScanEvent{
		ID:          id,
		LinkID:      raw.LinkID,
		ScannedAt:   at,
		IP:          raw.IP,
		Country:     loc.Country,
		CountryCode: loc.CountryCode,
		City:        loc.City,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		DeviceType:  agent.Device,
		OS:          agent.OS,
		Browser:     agent.Browser,
		UserAgent:   raw.UserAgent,
		Referrer:    raw.Referrer,
	}

	if err := r.scans.Record(ctx, event); err != nil {
		infraProm.ScanRecordFailures.Inc()
		return nil, fmt.Errorf("record scan: %w", err)
	}

	infraProm.ScansRecorded.Inc()
	return event, nil
}

// locate wraps the locator so a panic or missing dependency degrades to
// Unknown instead of dropping the scan.
func (r *ScanRecorder) locate(ctx context.Context, ip string) Location {
	if r.locator == nil {
		return UnknownLocation()
	}
	loc := r.locator.Locate(ctx, ip)
	if loc.Country == "" {
		return UnknownLocation()
	}
	return loc
}
