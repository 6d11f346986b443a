package model

import "time"

// ScanEvent is the immutable record of one redirect through a short link.
// Rows are append-only; they are removed only by cascade with the parent link.
type ScanEvent struct {
	ID          string    `db:"id" gorm:"primaryKey;size:36" json:"id"`
	LinkID      string    `db:"link_id" gorm:"size:36;index:idx_scans_link_time;not null" json:"link_id"`
	ScannedAt   time.Time `db:"scanned_at" gorm:"index:idx_scans_link_time" json:"scanned_at"`
	IP          string    `db:"ip" gorm:"size:45" json:"ip"`
	Country     string    `db:"country" gorm:"size:100" json:"country"`
	CountryCode string    `db:"country_code" gorm:"size:3" json:"country_code"`
	City        string    `db:"city" gorm:"size:100" json:"city"`
	Latitude    *float64  `db:"latitude" json:"latitude"`
	Longitude   *float64  `db:"longitude" json:"longitude"`
	DeviceType  string    `db:"device_type" gorm:"size:50" json:"device_type"`
	OS          string    `db:"os" gorm:"size:100" json:"os"`
	Browser     string    `db:"browser" gorm:"size:100" json:"browser"`
	UserAgent   string    `db:"user_agent" gorm:"type:text" json:"user_agent"`
	Referrer    string    `db:"referrer" gorm:"type:text" json:"referrer"`
}

// RawScan is the wire form published to JetStream by the redirect path,
// before geo and user-agent enrichment.
type RawScan struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"link_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	ScanStreamName     = "SCANS"
	ScanStreamSubject  = "scans.events"
	ScanConsumerName   = "scan-recorder"
	ScanStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)

// Device categories produced by user-agent classification.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
	DeviceBot     = "Bot"
	DeviceUnknown = "Unknown"
)
