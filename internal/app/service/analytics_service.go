package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
)

const (
	minWindowDays = 1
	maxWindowDays = 365
	topListSize   = 10
	recentSize    = 20
)

// LabelCount is one bucket of a grouped count, ordered by the aggregator.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DayCount is one day of the zero-filled timeline.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ScanSummary is the trimmed view of a scan used in the recent-activity list.
type ScanSummary struct {
	ScannedAt  time.Time `json:"scanned_at"`
	Country    string    `json:"country"`
	City       string    `json:"city"`
	DeviceType string    `json:"device_type"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	Referrer   string    `json:"referrer,omitempty"`
}

// LinkAnalytics is the full per-link report over a day window.
type LinkAnalytics struct {
	ShortCode    string        `json:"short_code"`
	WindowDays   int           `json:"window_days"`
	TotalScans   int64         `json:"total_scans"`
	ScansToday   int64         `json:"scans_today"`
	TopLocations []LabelCount  `json:"top_locations"`
	TopCountries []LabelCount  `json:"top_countries"`
	Devices      []LabelCount  `json:"devices"`
	Browsers     []LabelCount  `json:"browsers"`
	OSes         []LabelCount  `json:"operating_systems"`
	Timeline     []DayCount    `json:"timeline"`
	Hours        [24]int64     `json:"hours"`
	Weekdays     [7]int64      `json:"weekdays"`
	Recent       []ScanSummary `json:"recent"`
}

// LinkSummary is the quick 7-day view shown in the dashboard list.
type LinkSummary struct {
	ShortCode  string `json:"short_code"`
	TotalScans int64  `json:"total_scans"`
	ScansWeek  int64  `json:"scans_week"`
	ScansToday int64  `json:"scans_today"`
}

// AnalyticsService aggregates scan events into per-link and global reports.
// Per-link reports are scoped to the link's owner; anonymous links are open.
type AnalyticsService interface {
	LinkAnalytics(ctx context.Context, code, actorID string, days int) (*LinkAnalytics, error)
	LinkSummary(ctx context.Context, code, actorID string) (*LinkSummary, error)
	GlobalStats(ctx context.Context) (*repository.GlobalStats, error)
}

type analyticsService struct {
	links repository.LinkRepository
	scans repository.ScanRepository
	stats repository.StatsRepository

	// now is swapped out in tests.
	now func() time.Time
}

// NewAnalyticsService wires the aggregator over its repositories.
func NewAnalyticsService(links repository.LinkRepository, scans repository.ScanRepository, stats repository.StatsRepository) AnalyticsService {
	return &analyticsService{
		links: links,
		scans: scans,
		stats: stats,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// LinkAnalytics produces the grouped report in a single pass over the rows in
// the window. The timeline always has days+1 entries, today included.
func (s *analyticsService) LinkAnalytics(ctx context.Context, code, actorID string, days int) (*LinkAnalytics, error) {
	if days < minWindowDays {
		days = minWindowDays
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}

	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if err := checkOwner(link, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	todayStart := startOfDay(now)
	windowStart := todayStart.AddDate(0, 0, -days)

	scans, err := s.scans.ListSince(ctx, link.ID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("load scans: %w", err)
	}

	report := &LinkAnalytics{
		ShortCode:  link.ShortCode,
		WindowDays: days,
		TotalScans: int64(len(scans)),
	}

	locations := newOrderedCounter()
	countries := newOrderedCounter()
	devices := newOrderedCounter()
	browsers := newOrderedCounter()
	oses := newOrderedCounter()
	byDay := make(map[string]int64, days+1)

	for _, scan := range scans {
		at := scan.ScannedAt.UTC()
		if !at.Before(todayStart) {
			report.ScansToday++
		}

		locations.Add(locationLabel(scan))
		countries.Add(scan.Country)
		devices.Add(scan.DeviceType)
		browsers.Add(firstToken(scan.Browser))
		oses.Add(firstToken(scan.OS))

		byDay[at.Format("2006-01-02")]++
		report.Hours[at.Hour()]++
		report.Weekdays[mondayIndex(at.Weekday())]++

		if len(report.Recent) < recentSize {
			report.Recent = append(report.Recent, ScanSummary{
				ScannedAt:  scan.ScannedAt,
				Country:    scan.Country,
				City:       scan.City,
				DeviceType: scan.DeviceType,
				Browser:    scan.Browser,
				OS:         scan.OS,
				Referrer:   scan.Referrer,
			})
		}
	}

	report.TopLocations = locations.Top(topListSize)
	report.TopCountries = countries.Top(topListSize)
	report.Devices = devices.Top(0)
	report.Browsers = browsers.Top(0)
	report.OSes = oses.Top(0)

	report.Timeline = make([]DayCount, 0, days+1)
	for d := 0; d <= days; d++ {
		date := windowStart.AddDate(0, 0, d).Format("2006-01-02")
		report.Timeline = append(report.Timeline, DayCount{Date: date, Count: byDay[date]})
	}

	return report, nil
}

// LinkSummary is the quick 7-day view: counter totals plus window counts.
func (s *analyticsService) LinkSummary(ctx context.Context, code, actorID string) (*LinkSummary, error) {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if err := checkOwner(link, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	todayStart := startOfDay(now)
	weekStart := todayStart.AddDate(0, 0, -7)

	ids := []string{link.ID}
	week, err := s.scans.CountSince(ctx, ids, weekStart)
	if err != nil {
		return nil, fmt.Errorf("count week: %w", err)
	}
	today, err := s.scans.CountSince(ctx, ids, todayStart)
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}

	return &LinkSummary{
		ShortCode:  link.ShortCode,
		TotalScans: link.TotalScans,
		ScansWeek:  week,
		ScansToday: today,
	}, nil
}

func (s *analyticsService) GlobalStats(ctx context.Context) (*repository.GlobalStats, error) {
	return s.stats.Global(ctx)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// mondayIndex maps time.Weekday (Sunday=0) onto a Monday-first histogram.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// firstToken truncates a label to its first whitespace-delimited token so
// versioned names ("Chrome 120") group by family.
func firstToken(label string) string {
	if label == "" {
		return model.DeviceUnknown
	}
	if i := strings.IndexByte(label, ' '); i > 0 {
		return label[:i]
	}
	return label
}

func locationLabel(scan model.ScanEvent) string {
	if scan.City != "" && scan.City != "Unknown" {
		return scan.City + ", " + scan.Country
	}
	return scan.Country
}

// orderedCounter counts labels while remembering first-seen order so equal
// counts sort deterministically.
type orderedCounter struct {
	counts map[string]int64
	order  []string
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int64)}
}

func (c *orderedCounter) Add(label string) {
	if label == "" {
		label = model.DeviceUnknown
	}
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// Top returns up to n buckets sorted by descending count, ties in first-seen
// order. n <= 0 returns all buckets.
func (c *orderedCounter) Top(n int) []LabelCount {
	out := make([]LabelCount, 0, len(c.order))
	for _, label := range c.order {
		out = append(out, LabelCount{Label: label, Count: c.counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
