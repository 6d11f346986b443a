package model

import "time"

// Report statuses walk pending -> reviewed -> dismissed/actioned.
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewed  = "reviewed"
	ReportStatusDismissed = "dismissed"
	ReportStatusActioned  = "actioned"
)

// Report is a user-submitted abuse flag against a link.
type Report struct {
	ID         string    `db:"id" gorm:"primaryKey;size:36"`
	LinkID     string    `db:"link_id" gorm:"size:36;index;not null"`
	ReporterIP string    `db:"reporter_ip" gorm:"size:45"`
	Reason     string    `db:"reason" gorm:"type:text"`
	Status     string    `db:"status" gorm:"size:20;not null;default:pending"`
	ReportedAt time.Time `db:"reported_at" gorm:"autoCreateTime"`
}
