package service

import (
	"context"
	"testing"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockScanRepository struct {
	recordFn    func(ctx context.Context, event *model.ScanEvent) error
	listSinceFn func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error)
	countFn     func(ctx context.Context, linkIDs []string, since time.Time) (int64, error)
}

func (m *mockScanRepository) Record(ctx context.Context, event *model.ScanEvent) error {
	if m.recordFn != nil {
		return m.recordFn(ctx, event)
	}
	return nil
}

func (m *mockScanRepository) ListSince(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
	if m.listSinceFn != nil {
		return m.listSinceFn(ctx, linkID, since)
	}
	return nil, nil
}

func (m *mockScanRepository) CountSince(ctx context.Context, linkIDs []string, since time.Time) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, linkIDs, since)
	}
	return 0, nil
}

type mockStatsRepository struct {
	globalFn func(ctx context.Context) (*repository.GlobalStats, error)
}

func (m *mockStatsRepository) Global(ctx context.Context) (*repository.GlobalStats, error) {
	if m.globalFn != nil {
		return m.globalFn(ctx)
	}
	return &repository.GlobalStats{}, nil
}

// fixedNow is a Sunday noon, so weekday bucketing is exercised at the
// Monday-first wrap-around.
var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestAnalytics(links repository.LinkRepository, scans repository.ScanRepository) *analyticsService {
	return &analyticsService{
		links: links,
		scans: scans,
		stats: &mockStatsRepository{},
		now:   func() time.Time { return fixedNow },
	}
}

func linkFixture() *model.Link {
	return &model.Link{ID: "link-1", ShortCode: "abc123", TotalScans: 5}
}

func scanAt(at time.Time, country, city, device, browser, os string) model.ScanEvent {
	return model.ScanEvent{
		LinkID:     "link-1",
		ScannedAt:  at,
		Country:    country,
		City:       city,
		DeviceType: device,
		Browser:    browser,
		OS:         os,
	}
}

func TestLinkAnalytics_TimelineZeroFilled(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			return []model.ScanEvent{
				scanAt(fixedNow.Add(-2*time.Hour), "Germany", "Berlin", model.DeviceMobile, "Chrome 120", "Android 14"),
			}, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	require.Len(t, report.Timeline, 8, "window of 7 days yields days+1 entries")
	assert.Equal(t, "2026-03-08", report.Timeline[0].Date)
	assert.Equal(t, "2026-03-15", report.Timeline[7].Date)

	seen := make(map[string]bool)
	var total int64
	for _, day := range report.Timeline {
		assert.False(t, seen[day.Date], "date %s appears twice", day.Date)
		seen[day.Date] = true
		total += day.Count
	}
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), report.Timeline[7].Count, "scan lands on today's bucket")
}

func TestLinkAnalytics_TodayUsesUTCDayBoundary(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			return []model.ScanEvent{
				// 00:30 today counts, 23:30 yesterday does not.
				scanAt(time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC), "Germany", "", model.DeviceDesktop, "Firefox 130", "Linux"),
				scanAt(time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC), "Germany", "", model.DeviceDesktop, "Firefox 130", "Linux"),
			}, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.TotalScans)
	assert.Equal(t, int64(1), report.ScansToday)
}

func TestLinkAnalytics_TopCountriesStableTieOrder(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			at := fixedNow.Add(-time.Hour)
			return []model.ScanEvent{
				scanAt(at, "France", "", model.DeviceMobile, "Safari 18", "iOS 18"),
				scanAt(at, "Japan", "", model.DeviceMobile, "Safari 18", "iOS 18"),
				scanAt(at, "Brazil", "", model.DeviceMobile, "Safari 18", "iOS 18"),
				scanAt(at, "Japan", "", model.DeviceMobile, "Safari 18", "iOS 18"),
			}, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	require.Len(t, report.TopCountries, 3)
	assert.Equal(t, "Japan", report.TopCountries[0].Label)
	assert.Equal(t, int64(2), report.TopCountries[0].Count)
	// France and Brazil tie at one; first-seen order breaks the tie.
	assert.Equal(t, "France", report.TopCountries[1].Label)
	assert.Equal(t, "Brazil", report.TopCountries[2].Label)
}

func TestLinkAnalytics_BrowserAndOSGroupByFirstToken(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			at := fixedNow.Add(-time.Hour)
			return []model.ScanEvent{
				scanAt(at, "Germany", "", model.DeviceDesktop, "Chrome 119", "Windows 10"),
				scanAt(at, "Germany", "", model.DeviceDesktop, "Chrome 120", "Windows 11"),
				scanAt(at, "Germany", "", model.DeviceDesktop, "Firefox 130", "Linux"),
			}, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	require.Len(t, report.Browsers, 2)
	assert.Equal(t, LabelCount{Label: "Chrome", Count: 2}, report.Browsers[0])
	assert.Equal(t, LabelCount{Label: "Firefox", Count: 1}, report.Browsers[1])

	require.Len(t, report.OSes, 2)
	assert.Equal(t, LabelCount{Label: "Windows", Count: 2}, report.OSes[0])
	assert.Equal(t, LabelCount{Label: "Linux", Count: 1}, report.OSes[1])
}

func TestLinkAnalytics_HourAndWeekdayHistograms(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			return []model.ScanEvent{
				// Sunday 09:00 and Friday 22:00.
				scanAt(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC), "Germany", "", model.DeviceMobile, "Chrome 120", "Android 14"),
				scanAt(time.Date(2026, 3, 13, 22, 0, 0, 0, time.UTC), "Germany", "", model.DeviceMobile, "Chrome 120", "Android 14"),
			}, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.Hours[9])
	assert.Equal(t, int64(1), report.Hours[22])
	assert.Equal(t, int64(1), report.Weekdays[6], "Sunday is the last Monday-first bucket")
	assert.Equal(t, int64(1), report.Weekdays[4], "Friday lands at index 4")
}

func TestLinkAnalytics_LocationLabelsAndTopTen(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			at := fixedNow.Add(-time.Hour)
			events := make([]model.ScanEvent, 0, 13)
			cities := []string{"Berlin", "Hamburg", "Munich", "Cologne", "Frankfurt",
				"Stuttgart", "Leipzig", "Dresden", "Bremen", "Hanover", "Bonn", "Essen"}
			for _, city := range cities {
				events = append(events, scanAt(at, "Germany", city, model.DeviceMobile, "Chrome 120", "Android 14"))
			}
			events = append(events, scanAt(at, "Germany", "Unknown", model.DeviceMobile, "Chrome 120", "Android 14"))
			return events, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	require.Len(t, report.TopLocations, 10, "top list is capped at ten")
	assert.Equal(t, "Berlin, Germany", report.TopLocations[0].Label)
	for _, loc := range report.TopLocations {
		assert.NotEqual(t, "Unknown, Germany", loc.Label, "unknown city falls back to country label")
	}
}

func TestLinkAnalytics_RecentCappedAtTwenty(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			events := make([]model.ScanEvent, 0, 25)
			for i := 0; i < 25; i++ {
				events = append(events, scanAt(fixedNow.Add(-time.Duration(i)*time.Minute),
					"Germany", "Berlin", model.DeviceMobile, "Chrome 120", "Android 14"))
			}
			return events, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 7)
	require.NoError(t, err)

	assert.Equal(t, int64(25), report.TotalScans)
	assert.Len(t, report.Recent, 20)
}

func TestLinkAnalytics_ClampsWindow(t *testing.T) {
	var capturedSince time.Time
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		listSinceFn: func(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
			capturedSince = since
			return nil, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	report, err := svc.LinkAnalytics(context.Background(), "abc123", "", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.WindowDays)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), capturedSince)
	require.Len(t, report.Timeline, 2)
}

func TestLinkAnalytics_ScopedToOwner(t *testing.T) {
	owner := "acc-1"
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{ID: "link-1", ShortCode: "abc123", OwnerID: &owner}, nil
		},
	}
	svc := newTestAnalytics(links, &mockScanRepository{})

	_, err := svc.LinkAnalytics(context.Background(), "abc123", "acc-2", 7)
	assert.ErrorIs(t, err, ErrNotOwner, "another account cannot read the report")

	_, err = svc.LinkSummary(context.Background(), "abc123", "acc-2")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.LinkAnalytics(context.Background(), "abc123", "acc-1", 7)
	assert.NoError(t, err, "the owner still can")
}

func TestLinkAnalytics_AnonymousLinkIsOpen(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	svc := newTestAnalytics(links, &mockScanRepository{})

	_, err := svc.LinkAnalytics(context.Background(), "abc123", "acc-2", 7)
	assert.NoError(t, err, "links without an owner have no analytics scope")
}

func TestLinkSummary(t *testing.T) {
	links := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return linkFixture(), nil
		},
	}
	scans := &mockScanRepository{
		countFn: func(ctx context.Context, linkIDs []string, since time.Time) (int64, error) {
			if since.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
				return 1, nil
			}
			return 3, nil
		},
	}

	svc := newTestAnalytics(links, scans)
	summary, err := svc.LinkSummary(context.Background(), "abc123", "")
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalScans)
	assert.Equal(t, int64(3), summary.ScansWeek)
	assert.Equal(t, int64(1), summary.ScansToday)
}
