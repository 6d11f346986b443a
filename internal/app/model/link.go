package model

import "time"

// Link describes a QR short link stored in Postgres. TotalScans is a
// denormalized counter kept in step with the scan_events table.
type Link struct {
	ID               string     `db:"id" gorm:"primaryKey;size:36"`
	OwnerID          *string    `db:"owner_id" gorm:"size:36;index"`
	ShortCode        string     `db:"short_code" gorm:"size:32;uniqueIndex;not null"`
	Destination      string     `db:"destination" gorm:"type:text;not null"`
	Title            string     `db:"title" gorm:"size:255"`
	Active           bool       `db:"active" gorm:"not null;default:true"`
	ShowPreview      bool       `db:"show_preview" gorm:"not null;default:true"`
	AnalyticsEnabled bool       `db:"analytics_enabled" gorm:"not null;default:true"`
	QRColor          string     `db:"qr_color" gorm:"size:7;not null;default:#000000"`
	QRBackground     string     `db:"qr_background" gorm:"size:7;not null;default:#FFFFFF"`
	TotalScans       int64      `db:"total_scans" gorm:"not null;default:0"`
	ExpiresAt        *time.Time `db:"expires_at" gorm:"index"`
	CreatedAt        time.Time  `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `db:"updated_at" gorm:"autoUpdateTime"`

	Scans   []ScanEvent   `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`
	History []LinkHistory `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`
}

// LinkHistory records every destination change for the audit trail.
type LinkHistory struct {
	ID        string    `db:"id" gorm:"primaryKey;size:36"`
	LinkID    string    `db:"link_id" gorm:"size:36;index;not null"`
	OldURL    string    `db:"old_url" gorm:"type:text;not null"`
	NewURL    string    `db:"new_url" gorm:"type:text;not null"`
	ChangedBy *string   `db:"changed_by" gorm:"size:36"`
	ChangedAt time.Time `db:"changed_at" gorm:"autoCreateTime;index"`
}
