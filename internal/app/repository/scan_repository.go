package repository

import (
	"context"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"gorm.io/gorm"
)

// ScanRepository defines the data access contract for scan events.
type ScanRepository interface {
	// Record appends the event and bumps the parent link's counter in one
	// transaction, so the counter always equals the number of scan rows.
	Record(ctx context.Context, event *model.ScanEvent) error
	ListSince(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error)
	CountSince(ctx context.Context, linkIDs []string, since time.Time) (int64, error)
}

type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository returns a GORM-backed ScanRepository.
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) Record(ctx context.Context, event *model.ScanEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return tx.Model(&model.Link{}).
			Where("id = ?", event.LinkID).
			UpdateColumn("total_scans", gorm.Expr("total_scans + 1")).Error
	})
}

func (r *scanRepository) ListSince(ctx context.Context, linkID string, since time.Time) ([]model.ScanEvent, error) {
	var scans []model.ScanEvent
	if err := r.db.WithContext(ctx).
		Where("link_id = ? AND scanned_at >= ?", linkID, since).
		Order("scanned_at DESC").
		Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

func (r *scanRepository) CountSince(ctx context.Context, linkIDs []string, since time.Time) (int64, error) {
	if len(linkIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ScanEvent{}).
		Where("link_id IN ? AND scanned_at >= ?", linkIDs, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
