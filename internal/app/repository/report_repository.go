package repository

import (
	"context"
	"errors"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"gorm.io/gorm"
)

// ErrReportNotFound signals that the requested abuse report does not exist.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository defines the data access contract for abuse reports.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]model.Report, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a GORM-backed ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]model.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var reports []model.Report
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("reported_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
