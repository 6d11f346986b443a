package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/google/uuid"
)

// ErrNotOwner signals that the caller does not own the link it tried to change.
var ErrNotOwner = errors.New("link belongs to another account")

// LinkService defines behaviour-level operations on links.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	GetLink(ctx context.Context, code string) (*model.Link, error)
	ListLinks(ctx context.Context, ownerID string, limit, offset int) ([]model.Link, error)
	UpdateLink(ctx context.Context, code, actorID string, input UpdateLinkInput) (*model.Link, error)
	DeleteLink(ctx context.Context, code, actorID string) error
	LinkHistory(ctx context.Context, code, actorID string) ([]model.LinkHistory, error)
}

type linkService struct {
	repo      repository.LinkRepository
	generator *CodeGenerator
}

// NewLinkService returns a service implementation backed by the given repository.
func NewLinkService(repo repository.LinkRepository, generator *CodeGenerator) LinkService {
	return &linkService{repo: repo, generator: generator}
}

// CreateLinkInput captures data required to create a link. Code is optional;
// when empty a short code is generated.
type CreateLinkInput struct {
	OwnerID          *string
	Code             string
	Destination      string
	Title            string
	ShowPreview      *bool
	AnalyticsEnabled *bool
	QRColor          string
	QRBackground     string
	ExpiresAt        *time.Time
}

// UpdateLinkInput captures fields that can be changed on an existing link.
// A destination change is written to the link's history.
type UpdateLinkInput struct {
	Destination      *string
	Title            *string
	Active           *bool
	ShowPreview      *bool
	AnalyticsEnabled *bool
	QRColor          *string
	QRBackground     *string
	ExpiresAt        *time.Time
}

func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	code := input.Code
	if code == "" {
		generated, err := s.generator.Generate(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		code = generated
	} else if s.generator != nil {
		s.generator.Reserve(code)
	}

	link := &model.Link{
		ID:               uuid.New().String(),
		OwnerID:          input.OwnerID,
		ShortCode:        code,
		Destination:      input.Destination,
		Title:            input.Title,
		Active:           true,
		ShowPreview:      true,
		AnalyticsEnabled: true,
		QRColor:          "#000000",
		QRBackground:     "#FFFFFF",
		ExpiresAt:        input.ExpiresAt,
	}
	if input.ShowPreview != nil {
		link.ShowPreview = *input.ShowPreview
	}
	if input.AnalyticsEnabled != nil {
		link.AnalyticsEnabled = *input.AnalyticsEnabled
	}
	if input.QRColor != "" {
		link.QRColor = input.QRColor
	}
	if input.QRBackground != "" {
		link.QRBackground = input.QRBackground
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, ownerID string, limit, offset int) ([]model.Link, error) {
	links, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) UpdateLink(ctx context.Context, code, actorID string, input UpdateLinkInput) (*model.Link, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if err := checkOwner(link, actorID); err != nil {
		return nil, err
	}

	oldDestination := link.Destination

	if input.Destination != nil {
		link.Destination = *input.Destination
	}
	if input.Title != nil {
		link.Title = *input.Title
	}
	if input.Active != nil {
		link.Active = *input.Active
	}
	if input.ShowPreview != nil {
		link.ShowPreview = *input.ShowPreview
	}
	if input.AnalyticsEnabled != nil {
		link.AnalyticsEnabled = *input.AnalyticsEnabled
	}
	if input.QRColor != nil {
		link.QRColor = *input.QRColor
	}
	if input.QRBackground != nil {
		link.QRBackground = *input.QRBackground
	}
	if input.ExpiresAt != nil {
		link.ExpiresAt = input.ExpiresAt
	}

	if err := s.repo.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}

	if input.Destination != nil && *input.Destination != oldDestination {
		entry := &model.LinkHistory{
			ID:        uuid.New().String(),
			LinkID:    link.ID,
			OldURL:    oldDestination,
			NewURL:    link.Destination,
			ChangedAt: time.Now().UTC(),
		}
		if actorID != "" {
			entry.ChangedBy = &actorID
		}
		if err := s.repo.AppendHistory(ctx, entry); err != nil {
			return nil, fmt.Errorf("append history: %w", err)
		}
	}

	return link, nil
}

// DeleteLink deactivates the link. Scan history is kept.
func (s *linkService) DeleteLink(ctx context.Context, code, actorID string) error {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("load link: %w", err)
	}
	if err := checkOwner(link, actorID); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, code)
}

func (s *linkService) LinkHistory(ctx context.Context, code, actorID string) ([]model.LinkHistory, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if err := checkOwner(link, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, link.ID)
}

func checkOwner(link *model.Link, actorID string) error {
	if link.OwnerID == nil {
		return nil
	}
	if actorID == "" || *link.OwnerID != actorID {
		return ErrNotOwner
	}
	return nil
}
