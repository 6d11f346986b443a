package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/google/uuid"
)

// ErrEmptyReason signals a report submitted without any reason text.
var ErrEmptyReason = errors.New("report reason is required")

var validStatuses = map[string]bool{
	model.ReportStatusPending:   true,
	model.ReportStatusReviewed:  true,
	model.ReportStatusDismissed: true,
	model.ReportStatusActioned:  true,
}

// ReportService handles abuse reports against links.
type ReportService interface {
	FileReport(ctx context.Context, code, reporterIP, reason string) (*model.Report, error)
	PendingReports(ctx context.Context, limit, offset int) ([]model.Report, error)
	SetStatus(ctx context.Context, id, status string) error
}

type reportService struct {
	links   repository.LinkRepository
	reports repository.ReportRepository
}

// NewReportService wires the report flow over its repositories.
func NewReportService(links repository.LinkRepository, reports repository.ReportRepository) ReportService {
	return &reportService{links: links, reports: reports}
}

func (s *reportService) FileReport(ctx context.Context, code, reporterIP, reason string) (*model.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}

	report := &model.Report{
		ID:         uuid.New().String(),
		LinkID:     link.ID,
		ReporterIP: reporterIP,
		Reason:     reason,
		Status:     model.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

func (s *reportService) PendingReports(ctx context.Context, limit, offset int) ([]model.Report, error) {
	return s.reports.ListByStatus(ctx, model.ReportStatusPending, limit, offset)
}

func (s *reportService) SetStatus(ctx context.Context, id, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("unknown report status %q", status)
	}
	return s.reports.UpdateStatus(ctx, id, status)
}
