package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocator struct {
	loc Location
}

func (s *stubLocator) Locate(ctx context.Context, ip string) Location {
	return s.loc
}

func TestScanRecorder_PersistsEnrichedEvent(t *testing.T) {
	var stored *model.ScanEvent
	scans := &mockScanRepository{
		recordFn: func(ctx context.Context, event *model.ScanEvent) error {
			stored = event
			return nil
		},
	}
	lat, lon := 52.5, 13.4
	locator := &stubLocator{loc: Location{
		Country: "Germany", CountryCode: "DE", City: "Berlin",
		Latitude: &lat, Longitude: &lon,
	}}

	recorder := NewScanRecorder(nil, scans, locator)
	raw := model.RawScan{
		LinkID:    "link-1",
		IP:        "203.0.113.10",
		UserAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		Referrer:  "https://social.example.com",
		Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	event, err := recorder.Record(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.NotEmpty(t, event.ID, "missing id is filled in")
	assert.Equal(t, "link-1", stored.LinkID)
	assert.Equal(t, "Germany", stored.Country)
	assert.Equal(t, "Berlin", stored.City)
	assert.Equal(t, model.DeviceMobile, stored.DeviceType)
	assert.Equal(t, raw.Timestamp, stored.ScannedAt)
	assert.Equal(t, "https://social.example.com", stored.Referrer)
}

func TestScanRecorder_MissingLocatorDegradesToUnknown(t *testing.T) {
	var stored *model.ScanEvent
	scans := &mockScanRepository{
		recordFn: func(ctx context.Context, event *model.ScanEvent) error {
			stored = event
			return nil
		},
	}

	recorder := NewScanRecorder(nil, scans, nil)
	_, err := recorder.Record(context.Background(), model.RawScan{LinkID: "link-1"})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "Unknown", stored.Country)
	assert.Equal(t, model.DeviceUnknown, stored.DeviceType)
	assert.False(t, stored.ScannedAt.IsZero(), "missing timestamp is filled in")
}

func TestScanRecorder_EmptyLocationDegradesToUnknown(t *testing.T) {
	var stored *model.ScanEvent
	scans := &mockScanRepository{
		recordFn: func(ctx context.Context, event *model.ScanEvent) error {
			stored = event
			return nil
		},
	}
	recorder := NewScanRecorder(nil, scans, &stubLocator{})

	_, err := recorder.Record(context.Background(), model.RawScan{LinkID: "link-1"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", stored.Country)
}

func TestScanRecorder_StorageFailurePropagates(t *testing.T) {
	scans := &mockScanRepository{
		recordFn: func(ctx context.Context, event *model.ScanEvent) error {
			return errors.New("connection lost")
		},
	}
	recorder := NewScanRecorder(nil, scans, nil)

	_, err := recorder.Record(context.Background(), model.RawScan{LinkID: "link-1"})
	assert.Error(t, err)
}
